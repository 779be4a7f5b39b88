// Package services holds the blog's business rules. Handlers call services;
// services call the stores below and return *errs.ApiErr for expected failures.
package services

import (
	"context"

	"github.com/rpupo63/multiblog-backend/database"
	"github.com/rpupo63/multiblog-backend/models"
	"github.com/rpupo63/multiblog-backend/storage"
)

const (
	RecentLimit  = 3
	RelatedLimit = 3
)

// BlogPostStore is implemented by database.BlogPostRepo.
type BlogPostStore interface {
	Recent(ctx context.Context, limit int) ([]models.BlogPost, error)
	List(ctx context.Context, filter database.ListFilter, page, perPage int) (models.Page[models.BlogPost], error)
	FindByID(ctx context.Context, id uint) (*models.BlogPost, error)
	Related(ctx context.Context, post *models.BlogPost, limit int) ([]models.BlogPost, error)
	Add(ctx context.Context, post *models.BlogPost, tags []models.Tag) error
	Update(ctx context.Context, post *models.BlogPost, tags []models.Tag) error
	Delete(ctx context.Context, post *models.BlogPost) error
	Count(ctx context.Context) (int64, error)
}

// TagStore is implemented by database.TagRepo.
type TagStore interface {
	FindAll(ctx context.Context) ([]models.Tag, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	Add(ctx context.Context, tag *models.Tag) error
	Count(ctx context.Context) (int64, error)
}

// UserStore is implemented by database.UserRepo.
type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Add(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	FindAll(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

// ImageStore is implemented by the storage backends.
type ImageStore interface {
	Save(ctx context.Context, upload storage.Upload) (string, error)
}

var (
	_ BlogPostStore = (*database.BlogPostRepo)(nil)
	_ TagStore      = (*database.TagRepo)(nil)
	_ UserStore     = (*database.UserRepo)(nil)
	_ ImageStore    = (storage.Store)(nil)
)
