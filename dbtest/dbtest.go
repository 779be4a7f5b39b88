// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rpupo63/multiblog-backend/database"
	"github.com/rpupo63/multiblog-backend/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated, private sqlite database closed when t ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.New(db).Migrate(context.Background()))
	return db
}

// Fixtures creates rows directly, bypassing services.
type Fixtures struct {
	t  testing.TB
	db *gorm.DB
}

func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

// User creates an active user whose password is "password123".
func (f *Fixtures) User(email string, staff bool) *models.User {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(f.t, err)
	user := &models.User{
		Email:        models.NormalizeEmail(email),
		PasswordHash: string(hash),
		IsActive:     true,
		IsStaff:      staff,
	}
	require.NoError(f.t, f.db.Create(user).Error)
	return user
}

func (f *Fixtures) Tag(name string) models.Tag {
	f.t.Helper()
	tag := models.Tag{Name: name}
	require.NoError(f.t, f.db.Create(&tag).Error)
	return tag
}

// Post creates a post whose creation time is offset from a fixed base, so
// ordering in tests never depends on the wall clock.
func (f *Fixtures) Post(author *models.User, title string, offset time.Duration, tags ...models.Tag) *models.BlogPost {
	f.t.Helper()
	post := &models.BlogPost{
		Title:     title,
		Content:   "<p>" + title + "</p>",
		AuthorID:  author.ID,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).Add(offset),
	}
	require.NoError(f.t, database.NewBlogPostRepo(f.db).Add(context.Background(), post, tags))
	return post
}
