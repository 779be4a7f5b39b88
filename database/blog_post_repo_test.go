package database_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rpupo63/multiblog-backend/database"
	"github.com/rpupo63/multiblog-backend/dbtest"
	"github.com/rpupo63/multiblog-backend/errs"
	"github.com/rpupo63/multiblog-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(posts []models.BlogPost) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func TestBlogPostRepoListFiltersByEveryTag(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	repo := database.NewBlogPostRepo(db)
	ctx := context.Background()

	author := fx.User("author@example.com", false)
	a := fx.Tag("Alpha")
	b := fx.Tag("Beta")
	c := fx.Tag("Gamma")

	fx.Post(author, "Only A", 1*time.Minute, a)
	fx.Post(author, "A and B", 2*time.Minute, a, b)
	fx.Post(author, "A, B and C", 3*time.Minute, a, b, c)
	fx.Post(author, "Only B", 4*time.Minute, b)

	page, err := repo.List(ctx, database.ListFilter{TagSlugs: []string{"alpha", "beta"}}, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, []string{"A, B and C", "A and B"}, titles(page.Items))

	page, err = repo.List(ctx, database.ListFilter{TagSlugs: []string{"beta"}}, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)

	page, err = repo.List(ctx, database.ListFilter{TagSlugs: []string{"missing"}}, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Empty(t, page.Items)
}

func TestBlogPostRepoListSearchIsCaseInsensitive(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	repo := database.NewBlogPostRepo(db)

	author := fx.User("author@example.com", false)
	fx.Post(author, "Learning Go", time.Minute)
	fx.Post(author, "GOLANG tips", 2*time.Minute)
	fx.Post(author, "Cooking pasta", 3*time.Minute)
	fx.Post(author, "100% done", 4*time.Minute)

	page, err := repo.List(context.Background(), database.ListFilter{Search: "go"}, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"GOLANG tips", "Learning Go"}, titles(page.Items))

	// LIKE wildcards in the search term are literal
	page, err = repo.List(context.Background(), database.ListFilter{Search: "%"}, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"100% done"}, titles(page.Items))
}

func TestBlogPostRepoListPaginatesNewestFirst(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	repo := database.NewBlogPostRepo(db)

	author := fx.User("author@example.com", false)
	for i := 1; i <= 7; i++ {
		fx.Post(author, fmt.Sprintf("Blog%d", i), time.Duration(i)*time.Hour)
	}

	first, err := repo.List(context.Background(), database.ListFilter{}, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blog7", "Blog6", "Blog5", "Blog4", "Blog3", "Blog2"}, titles(first.Items))
	assert.Equal(t, 2, first.TotalPages)

	second, err := repo.List(context.Background(), database.ListFilter{}, 2, 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blog1"}, titles(second.Items))
	assert.Nil(t, second.NextPage)
	require.NotNil(t, second.PrevPage)
	assert.Equal(t, 1, *second.PrevPage)

	beyond, err := repo.List(context.Background(), database.ListFilter{}, 9, 6)
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, int64(7), beyond.Total)
}

func TestBlogPostRepoListByAuthor(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	repo := database.NewBlogPostRepo(db)

	alice := fx.User("alice@example.com", false)
	bob := fx.User("bob@example.com", false)
	fx.Post(alice, "Alice 1", time.Minute)
	fx.Post(bob, "Bob 1", 2*time.Minute)
	fx.Post(alice, "Alice 2", 3*time.Minute)

	page, err := repo.List(context.Background(), database.ListFilter{AuthorID: alice.ID}, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice 2", "Alice 1"}, titles(page.Items))
}

func TestBlogPostRepoRecent(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	repo := database.NewBlogPostRepo(db)

	author := fx.User("author@example.com", false)
	tag := fx.Tag("Tech")
	for i := 1; i <= 5; i++ {
		fx.Post(author, fmt.Sprintf("Post %d", i), time.Duration(i)*time.Minute, tag)
	}

	posts, err := repo.Recent(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Post 5", "Post 4", "Post 3"}, titles(posts))
	assert.Equal(t, "author@example.com", posts[0].Author.Email)
	require.Len(t, posts[0].Tags, 1)
	assert.Equal(t, "tech", posts[0].Tags[0].Slug)
}

func TestBlogPostRepoFindByIDNotFound(t *testing.T) {
	db := dbtest.Open(t)
	repo := database.NewBlogPostRepo(db)

	_, err := repo.FindByID(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestBlogPostRepoRelated(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	repo := database.NewBlogPostRepo(db)
	ctx := context.Background()

	author := fx.User("author@example.com", false)
	goTag := fx.Tag("Go")
	web := fx.Tag("Web")
	food := fx.Tag("Food")

	post := fx.Post(author, "Main", time.Minute, goTag, web)
	fx.Post(author, "Shares Go", 2*time.Minute, goTag)
	fx.Post(author, "Shares Web", 3*time.Minute, web)
	fx.Post(author, "Shares both", 4*time.Minute, goTag, web)
	fx.Post(author, "Unrelated", 5*time.Minute, food)
	untagged := fx.Post(author, "No tags", 6*time.Minute)

	loaded, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)

	related, err := repo.Related(ctx, loaded, 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Shares Go", "Shares Web", "Shares both"}, titles(related))

	limited, err := repo.Related(ctx, loaded, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	assert.NotContains(t, titles(limited), "Main")

	loadedUntagged, err := repo.FindByID(ctx, untagged.ID)
	require.NoError(t, err)
	none, err := repo.Related(ctx, loadedUntagged, 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBlogPostRepoUpdateReplacesTags(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	repo := database.NewBlogPostRepo(db)
	ctx := context.Background()

	author := fx.User("author@example.com", false)
	oldTag := fx.Tag("Old")
	newTag := fx.Tag("New")
	post := fx.Post(author, "Before", time.Minute, oldTag)

	loaded, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	loaded.Title = "After"
	require.NoError(t, repo.Update(ctx, loaded, []models.Tag{newTag}))

	updated, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "new", updated.Tags[0].Slug)
}

func TestBlogPostRepoDeleteRemovesTagLinks(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	repo := database.NewBlogPostRepo(db)
	ctx := context.Background()

	author := fx.User("author@example.com", false)
	tag := fx.Tag("Tech")
	post := fx.Post(author, "Doomed", time.Minute, tag)

	require.NoError(t, repo.Delete(ctx, post))

	_, err := repo.FindByID(ctx, post.ID)
	assert.True(t, errs.IsNotFound(err))

	var links int64
	require.NoError(t, db.Table("blog_post_tags").Where("blog_post_id = ?", post.ID).Count(&links).Error)
	assert.Zero(t, links)

	var tags int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tags).Error)
	assert.Equal(t, int64(1), tags, "deleting a post keeps its tags")
}

func TestBlogPostRepoEqualTimestampsKeepInsertionOrder(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	repo := database.NewBlogPostRepo(db)
	ctx := context.Background()

	author := fx.User("author@example.com", false)
	first := fx.Post(author, "First", time.Hour)
	second := fx.Post(author, "Second", time.Hour)
	third := fx.Post(author, "Third", time.Hour)
	require.Equal(t, first.CreatedAt, third.CreatedAt)
	require.Less(t, second.ID, third.ID)

	page, err := repo.List(ctx, database.ListFilter{}, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"Third", "Second", "First"}, titles(page.Items))

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Third", "Second"}, titles(recent))
}

func TestBlogPostRepoCount(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	repo := database.NewBlogPostRepo(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	author := fx.User("author@example.com", false)
	fx.Post(author, "One", time.Minute)
	fx.Post(author, "Two", 2*time.Minute)

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
