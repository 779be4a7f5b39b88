package services

import (
	"context"
	"testing"
	"time"

	"github.com/rpupo63/multiblog-backend/database"
	"github.com/rpupo63/multiblog-backend/dbtest"
	"github.com/rpupo63/multiblog-backend/errs"
	"github.com/rpupo63/multiblog-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestSeeder(db *gorm.DB, opts ...SeederOption) *Seeder {
	opts = append([]SeederOption{
		WithSeed(42),
		WithSeedClock(func() time.Time { return seedNow }),
		WithSeedHashCost(bcrypt.MinCost),
	}, opts...)
	return NewSeeder(database.NewUserRepo(db), database.NewTagRepo(db), database.NewBlogPostRepo(db), opts...)
}

func seededPosts(t *testing.T, db *gorm.DB) []models.BlogPost {
	t.Helper()
	page, err := database.NewBlogPostRepo(db).List(context.Background(), database.ListFilter{}, 1, 100)
	require.NoError(t, err)
	return page.Items
}

func TestSeedFillsEmptyDatabase(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	seeder := newTestSeeder(db, WithSampleImages("/media/food.jpg", "/media/tech.png"))

	result, err := seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Users: SeedUserCount, Tags: len(DefaultTags), Posts: SeedPostCount}, result)

	posts := seededPosts(t, db)
	require.Len(t, posts, SeedPostCount)

	oldest := seedNow.AddDate(0, 0, -maxSeedAgeDays)
	for _, post := range posts {
		assert.GreaterOrEqual(t, len(post.Tags), minSeedPostTags, post.Title)
		assert.LessOrEqual(t, len(post.Tags), maxSeedPostTags, post.Title)
		assert.False(t, post.CreatedAt.Before(oldest), post.Title)
		assert.False(t, post.CreatedAt.After(seedNow), post.Title)
		assert.NotEmpty(t, post.Content)
		assert.NotZero(t, post.Author.ID)
		if post.Image != nil {
			assert.Contains(t, []string{"/media/food.jpg", "/media/tech.png"}, *post.Image)
		}
	}

	result, err = seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, result)
	assert.Len(t, seededPosts(t, db), SeedPostCount)
}

func TestSeedSpreadsCreationDates(t *testing.T) {
	db := dbtest.Open(t)
	_, err := newTestSeeder(db).Seed(context.Background())
	require.NoError(t, err)

	days := map[string]bool{}
	for _, post := range seededPosts(t, db) {
		days[post.CreatedAt.Format(time.DateOnly)] = true
	}
	assert.Greater(t, len(days), 1)
}

func TestSeedPostsWithoutSampleImages(t *testing.T) {
	db := dbtest.Open(t)
	_, err := newTestSeeder(db).Seed(context.Background())
	require.NoError(t, err)

	for _, post := range seededPosts(t, db) {
		assert.Nil(t, post.Image, post.Title)
	}
}

func TestSeedUsersCanLogIn(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	created, err := newTestSeeder(db).SeedUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedUserCount, created)

	user, err := NewUserService(database.NewUserRepo(db)).Authenticate(ctx, "user1@example.com", SeedUserPassword)
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	require.NotNil(t, user.Username)
	assert.Equal(t, "user1", *user.Username)
}

func TestSeedUsersSkipsPopulatedDatabase(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		created  int
	}{
		{name: "lone superuser", existing: []string{"admin@example.com"}, created: SeedUserCount},
		{name: "lone user with a seed email", existing: []string{"user3@example.com"}, created: SeedUserCount - 1},
		{name: "several users", existing: []string{"a@example.com", "b@example.com"}, created: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := dbtest.Open(t)
			fx := dbtest.NewFixtures(t, db)
			for _, email := range tt.existing {
				fx.User(email, true)
			}

			created, err := newTestSeeder(db).SeedUsers(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.created, created)
		})
	}
}

func TestSeedPostsNeedsUsersAndTags(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	ctx := context.Background()
	seeder := newTestSeeder(db)

	_, err := seeder.SeedPosts(ctx)
	assert.ErrorIs(t, err, errs.ErrBadRequest)

	fx.User("writer@example.com", false)
	_, err = seeder.SeedPosts(ctx)
	assert.ErrorIs(t, err, errs.ErrBadRequest)

	fx.Tag("Go")
	created, err := seeder.SeedPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedPostCount, created)
	for _, post := range seededPosts(t, db) {
		assert.Len(t, post.Tags, 1, post.Title)
	}
}

func TestSeedPostsSkipsWhenPostsExist(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	author := fx.User("writer@example.com", false)
	fx.Post(author, "Existing", 0, fx.Tag("Go"))

	created, err := newTestSeeder(db).SeedPosts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Len(t, seededPosts(t, db), 1)
}
