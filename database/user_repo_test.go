package database_test

import (
	"context"
	"testing"

	"github.com/rpupo63/multiblog-backend/database"
	"github.com/rpupo63/multiblog-backend/dbtest"
	"github.com/rpupo63/multiblog-backend/errs"
	"github.com/rpupo63/multiblog-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepoFindByEmail(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	repo := database.NewUserRepo(db)
	ctx := context.Background()

	created := fx.User("reader@example.com", false)

	found, err := repo.FindByEmail(ctx, "  Reader@Example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := repo.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepoAddDuplicateEmailConflicts(t *testing.T) {
	db := dbtest.Open(t)
	repo := database.NewUserRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, &models.User{Email: "dup@example.com", PasswordHash: "x", IsActive: true}))

	err := repo.Add(ctx, &models.User{Email: "DUP@example.com", PasswordHash: "y", IsActive: true})
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserRepoFindByIDNotFound(t *testing.T) {
	db := dbtest.Open(t)
	repo := database.NewUserRepo(db)

	_, err := repo.FindByID(context.Background(), 99)
	assert.True(t, errs.IsNotFound(err))
}

func TestUserRepoUpdate(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	repo := database.NewUserRepo(db)
	ctx := context.Background()

	user := fx.User("writer@example.com", false)
	name := "writer"
	user.Username = &name
	require.NoError(t, repo.Update(ctx, user))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Username)
	assert.Equal(t, "writer", *reloaded.Username)
	assert.True(t, reloaded.IsActive)
}

func TestUserRepoFindAllAndCount(t *testing.T) {
	db := dbtest.Open(t)
	fx := dbtest.NewFixtures(t, db)
	repo := database.NewUserRepo(db)
	ctx := context.Background()

	first := fx.User("first@example.com", false)
	second := fx.User("second@example.com", true)

	users, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, first.ID, users[0].ID)
	assert.Equal(t, second.ID, users[1].ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
