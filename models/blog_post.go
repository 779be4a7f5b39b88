package models

import (
	"time"
)

// BlogPost is an authored article; Content is always sanitized HTML
type BlogPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Image     *string   `json:"image,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;index:idx_blog_posts_created_at"`
	AuthorID  uint      `json:"authorId" gorm:"not null;index:idx_blog_posts_author_id"`
	Author    User      `json:"author" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	Tags      []Tag     `json:"tags" gorm:"many2many:blog_post_tags;constraint:OnDelete:CASCADE"`
}

// TagIDs returns the ids of the post's tags in their loaded order.
func (p BlogPost) TagIDs() []uint {
	ids := make([]uint, 0, len(p.Tags))
	for _, tag := range p.Tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

// HasTag reports whether the post carries the tag with the given slug.
func (p BlogPost) HasTag(tagSlug string) bool {
	for _, tag := range p.Tags {
		if tag.Slug == tagSlug {
			return true
		}
	}
	return false
}
