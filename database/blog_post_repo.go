package database

import (
	"context"
	"strings"

	"github.com/rpupo63/multiblog-backend/errs"
	"github.com/rpupo63/multiblog-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilter narrows a blog post listing. Zero values mean "no restriction".
type ListFilter struct {
	TagSlugs []string
	Search   string
	AuthorID uint
}

type BlogPostRepo struct {
	db *gorm.DB
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db}
}

// newestFirst orders by creation time; equal timestamps keep insertion order (newest id first).
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("blog_posts.created_at DESC").Order("blog_posts.id DESC")
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags", func(db *gorm.DB) *gorm.DB {
		return db.Order("tags.name")
	}).Preload("Author")
}

// withTags requires every slug: each one adds its own membership condition.
func withTags(base *gorm.DB, slugs []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, tagSlug := range slugs {
			sub := base.Table("blog_post_tags").
				Select("blog_post_tags.blog_post_id").
				Joins("JOIN tags ON tags.id = blog_post_tags.tag_id").
				Where("tags.slug = ?", tagSlug)
			db = db.Where("blog_posts.id IN (?)", sub)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func titleContains(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		return db.Where(`LOWER(blog_posts.title) LIKE ? ESCAPE '\'`, pattern)
	}
}

func byAuthor(authorID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if authorID == 0 {
			return db
		}
		return db.Where("blog_posts.author_id = ?", authorID)
	}
}

// Recent returns the newest posts.
func (r *BlogPostRepo) Recent(ctx context.Context, limit int) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	err := r.db.WithContext(ctx).
		Scopes(newestFirst, withRelations).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find recent", "blog posts", err)
	}
	return posts, nil
}

// List returns one page of posts matching filter, newest first.
func (r *BlogPostRepo) List(ctx context.Context, filter ListFilter, page, perPage int) (models.Page[models.BlogPost], error) {
	if page < 1 {
		page = 1
	}
	db := r.db.WithContext(ctx)
	filtered := func() *gorm.DB {
		return db.Model(&models.BlogPost{}).Scopes(
			withTags(db, filter.TagSlugs),
			titleContains(filter.Search),
			byAuthor(filter.AuthorID),
		)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return models.Page[models.BlogPost]{}, errs.NewDatabaseError("count", "blog posts", err)
	}

	var posts []models.BlogPost
	if total > 0 {
		err := filtered().
			Scopes(newestFirst, withRelations).
			Offset(models.Offset(page, perPage)).
			Limit(perPage).
			Find(&posts).Error
		if err != nil {
			return models.Page[models.BlogPost]{}, errs.NewDatabaseError("find", "blog posts", err)
		}
	}

	return models.NewPage(posts, total, page, perPage), nil
}

// Count returns the number of stored posts.
func (r *BlogPostRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BlogPost{}).Count(&count).Error; err != nil {
		return 0, errs.NewDatabaseError("count", "blog posts", err)
	}
	return count, nil
}

// FindByID returns a blog post with its author and tags.
func (r *BlogPostRepo) FindByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	var blogPost models.BlogPost
	err := r.db.WithContext(ctx).Scopes(withRelations).First(&blogPost, id).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog post", err)
	}
	return &blogPost, nil
}

// Related picks up to limit other posts sharing at least one tag with post, in random order.
func (r *BlogPostRepo) Related(ctx context.Context, post *models.BlogPost, limit int) ([]models.BlogPost, error) {
	tagIDs := post.TagIDs()
	if len(tagIDs) == 0 {
		return []models.BlogPost{}, nil
	}

	db := r.db.WithContext(ctx)
	shared := db.Table("blog_post_tags").
		Select("blog_post_tags.blog_post_id").
		Where("blog_post_tags.tag_id IN ?", tagIDs)

	var posts []models.BlogPost
	err := db.Scopes(withRelations).
		Where("blog_posts.id IN (?)", shared).
		Where("blog_posts.id <> ?", post.ID).
		Order("RANDOM()").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, errs.NewDatabaseError("find related", "blog posts", err)
	}
	return posts, nil
}

func replaceTags(tx *gorm.DB, blogPost *models.BlogPost, tags []models.Tag) error {
	if len(tags) == 0 {
		return tx.Model(blogPost).Association("Tags").Clear()
	}
	return tx.Model(blogPost).Association("Tags").Replace(tags)
}

// Add inserts a new blog post and links its tags.
func (r *BlogPostRepo) Add(ctx context.Context, blogPost *models.BlogPost, tags []models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(blogPost).Error; err != nil {
			return err
		}
		return replaceTags(tx, blogPost, tags)
	})
	if err != nil {
		return errs.NewDatabaseError("create", "blog post", err)
	}
	return nil
}

// Update saves the post's columns and replaces its tag set.
func (r *BlogPostRepo) Update(ctx context.Context, blogPost *models.BlogPost, tags []models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(blogPost).Error; err != nil {
			return err
		}
		return replaceTags(tx, blogPost, tags)
	})
	if err != nil {
		return errs.NewDatabaseError("update", "blog post", err)
	}
	return nil
}

// Delete removes a blog post together with its tag links.
func (r *BlogPostRepo) Delete(ctx context.Context, blogPost *models.BlogPost) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(blogPost).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.BlogPost{}, blogPost.ID).Error
	})
	if err != nil {
		return errs.NewDatabaseError("delete", "blog post", err)
	}
	return nil
}
