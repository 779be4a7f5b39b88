package services

import (
	"context"
	"testing"

	"github.com/rpupo63/multiblog-backend/database"
	"github.com/rpupo63/multiblog-backend/dbtest"
	"github.com/rpupo63/multiblog-backend/errs"
	"github.com/rpupo63/multiblog-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestUserService(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	return NewUserService(database.NewUserRepo(db)).WithHashCost(bcrypt.MinCost), db
}

func TestRegisterCreatesQueryableUser(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "New.User@Example.com", "s3cretpass")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.NotEqual(t, "s3cretpass", user.PasswordHash)

	found, err := svc.GetByEmail(ctx, "new.user@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, db := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "taken@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "TAKEN@example.com", "otherpass1")
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))

	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{"Email already registered"}, apiErr.Fields["email"])

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	svc, db := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "member@example.com", "password123")
	require.NoError(t, err)

	inactive, err := svc.Register(ctx, "inactive@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "ghost@example.com", "password123"},
		{"wrong password", "member@example.com", "wrongpass1"},
		{"inactive account", "inactive@example.com", "password123"},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, errs.IsInvalidCredentialsError(err))
			messages = append(messages, err.Error())
		})
	}

	require.Len(t, messages, 3)
	assert.Equal(t, messages[0], messages[1])
	assert.Equal(t, messages[1], messages[2])
}

func TestAuthenticateSucceeds(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "member@example.com", "password123")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, " MEMBER@example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestCreateSuperuser(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.CreateSuperuser(context.Background(), "admin@example.com", "password123", " admin ")
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	require.NotNil(t, user.Username)
	assert.Equal(t, "admin", *user.Username)
}

func TestUpdateUsername(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "member@example.com", "password123")
	require.NoError(t, err)

	updated, err := svc.UpdateUsername(ctx, user, "  member  ")
	require.NoError(t, err)
	require.NotNil(t, updated.Username)
	assert.Equal(t, "member", *updated.Username)
	assert.Equal(t, "member@example.com", updated.Email)

	_, err = svc.UpdateUsername(ctx, user, "   ")
	assert.True(t, errs.IsValidation(err))
}
