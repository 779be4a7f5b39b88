package models

// Page is one window of an ordered result set. Page numbers start at 1.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
	NextPage   *int  `json:"nextPage"`
	PrevPage   *int  `json:"prevPage"`
}

// NewPage fills in the derived navigation fields.
func NewPage[T any](items []T, total int64, page, perPage int) Page[T] {
	if items == nil {
		items = []T{}
	}
	p := Page[T]{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
	if perPage > 0 {
		p.TotalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	if int64(page)*int64(perPage) < total {
		next := page + 1
		p.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p
}

// Offset is the number of rows skipped before page.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}

// All lists every model handled by AutoMigrate.
func All() []any {
	return []any{&User{}, &Tag{}, &BlogPost{}}
}
