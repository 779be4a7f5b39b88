package models

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Tag labels blog posts; the slug is what list filters match on
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"type:varchar(50);not null;uniqueIndex:idx_tags_name"`
	Slug string `json:"slug" gorm:"type:varchar(60);not null;uniqueIndex:idx_tags_slug"`
}

// BeforeCreate derives the slug from the name once, when none was given.
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
	return nil
}

// Slugify turns a tag name into its URL-safe form ("Machine Learning" -> "machine-learning").
func Slugify(name string) string {
	return slug.Make(name)
}
