package api

import (
	"time"

	"github.com/rpupo63/multiblog-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	blogPostHandler blogPostHandler
	accountHandler  accountHandler
	healthHandler   healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string              `json:"error" example:"Internal Server Error"`
	Status  string              `json:"status" example:"error"`
	Field   string              `json:"field,omitempty" example:"title"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Details string              `json:"details,omitempty" example:"Additional error details"`
}

type statusResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// authorView is the public face of a user; emails stay private.
type authorView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type blogPostView struct {
	ID        uint         `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Image     *string      `json:"image,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	Author    authorView   `json:"author"`
	Tags      []models.Tag `json:"tags"`
}

func newBlogPostView(p models.BlogPost) blogPostView {
	tags := p.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	return blogPostView{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
		Author:    authorView{ID: p.AuthorID, Name: p.Author.DisplayName()},
		Tags:      tags,
	}
}

func newBlogPostViews(posts []models.BlogPost) []blogPostView {
	views := make([]blogPostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newBlogPostView(p))
	}
	return views
}

func newBlogPostPage(page models.Page[models.BlogPost]) models.Page[blogPostView] {
	return models.Page[blogPostView]{
		Items:      newBlogPostViews(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
		NextPage:   page.NextPage,
		PrevPage:   page.PrevPage,
	}
}

type homeResponse struct {
	RecentBlogs []blogPostView `json:"recentBlogs"`
	Tags        []models.Tag   `json:"tags"`
}

type blogListResponse struct {
	Blogs        models.Page[blogPostView] `json:"blogs"`
	Tags         []models.Tag              `json:"tags"`
	SelectedTags []string                  `json:"selectedTags"`
	Search       string                    `json:"search"`
}

type blogDetailResponse struct {
	Blog         blogPostView   `json:"blog"`
	RelatedBlogs []blogPostView `json:"relatedBlogs,omitempty"`
}

type myBlogsResponse struct {
	Blogs models.Page[blogPostView] `json:"blogs"`
}

type blogFormResponse struct {
	Blog *blogPostView `json:"blog,omitempty"`
	Tags []models.Tag  `json:"tags"`
}

type loginResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type formFieldsResponse struct {
	Fields []string `json:"fields"`
}

type healthResponse struct {
	Status      string    `json:"status"`
	StartupTime time.Time `json:"startupTime"`
	Uptime      string    `json:"uptime"`
	Database    string    `json:"database"`
}
