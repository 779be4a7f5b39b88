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

func TestTagRepo(t *testing.T) {
	db := dbtest.Open(t)
	repo := database.NewTagRepo(db)
	ctx := context.Background()

	for _, name := range []string{"Travel", "Machine Learning", "Art"} {
		require.NoError(t, repo.Add(ctx, &models.Tag{Name: name}))
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Art", all[0].Name)
	assert.Equal(t, "machine-learning", all[1].Slug)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	bySlug, err := repo.FindBySlug(ctx, "travel")
	require.NoError(t, err)
	assert.Equal(t, "Travel", bySlug.Name)

	some, err := repo.FindByIDs(ctx, []uint{all[0].ID, all[2].ID, 999})
	require.NoError(t, err)
	assert.Len(t, some, 2)
}

func TestTagRepoDuplicateNameConflicts(t *testing.T) {
	db := dbtest.Open(t)
	repo := database.NewTagRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, &models.Tag{Name: "Go"}))
	err := repo.Add(ctx, &models.Tag{Name: "Go"})
	assert.True(t, errs.IsConflict(err))
}
