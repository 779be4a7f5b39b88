package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestConstructorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      *ApiErr
		status   int
		sentinel error
	}{
		{"forbidden", NewForbiddenError("nope"), http.StatusForbidden, ErrForbidden},
		{"bad request", NewBadRequestError("bad"), http.StatusBadRequest, ErrBadRequest},
		{"internal", NewInternalError("boom"), http.StatusInternalServerError, ErrInternal},
		{"field conflict", NewFieldConflictError("email", "taken"), http.StatusConflict, ErrConflict},
		{"validation", NewFieldError("title", "required"), http.StatusBadRequest, ErrValidation},
		{"login required", NewLoginRequiredError(), http.StatusUnauthorized, ErrLoginRequired},
		{"malformed payload", NewMalformedPayloadError("JSON", errors.New("eof")), http.StatusBadRequest, ErrMalformedPayload},
		{"unsupported media type", NewUnsupportedMediaTypeError("text/plain", []string{"application/json"}), http.StatusUnsupportedMediaType, ErrUnsupportedMediaType},
		{"body too large", NewMaxBodySizeExceededError(10), http.StatusRequestEntityTooLarge, ErrMaxBodySizeExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.ErrorIs(t, fmt.Errorf("wrapped: %w", tt.err), tt.sentinel)
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsForbidden(NewForbiddenError("nope")))
	assert.True(t, IsConflict(NewFieldConflictError("email", "taken")))
	assert.True(t, IsValidation(NewFieldError("title", "required")))
	assert.True(t, IsLoginRequiredError(NewLoginRequiredError()))
	assert.False(t, IsNotFound(NewForbiddenError("nope")))
}

func TestMessageKeepsHumanText(t *testing.T) {
	err := NewForbiddenError("you do not have permission to modify this blog post")
	assert.Equal(t, "you do not have permission to modify this blog post", err.Message())
}

func TestFieldErrors(t *testing.T) {
	err := NewValidationError().
		AddFieldError("title", "This field is required.").
		AddFieldError("tags", "This field is required.").
		AddFieldError("title", "Too long.")

	assert.Equal(t, "title", err.Field)
	assert.Len(t, err.Fields, 2)
	assert.Equal(t, []string{"This field is required.", "Too long."}, err.Fields["title"])
}

func TestInvalidCredentialsIsUniform(t *testing.T) {
	err := NewInvalidCredentialsError()

	assert.Equal(t, http.StatusUnauthorized, err.StatusCode)
	assert.True(t, IsInvalidCredentialsError(err))
	assert.Equal(t, []string{ErrInvalidCredentials.Error()}, err.Fields["email"])
}

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		status int
	}{
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, http.StatusConflict},
		{"sqlite unique", errors.New("UNIQUE constraint failed: users.email"), http.StatusConflict},
		{"postgres unique", errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`), http.StatusConflict},
		{"foreign key", gorm.ErrForeignKeyViolated, http.StatusBadRequest},
		{"connection", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable},
		{"other", errors.New("syntax error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("find", "user", tt.cause)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestNewDatabaseErrorPassesApiErrThrough(t *testing.T) {
	original := NewForbiddenError("nope")
	assert.Same(t, original, NewDatabaseError("update", "blog post", original))
}

func TestDatabaseNotFoundIsNotFound(t *testing.T) {
	err := NewDatabaseError("find", "blog post", gorm.ErrRecordNotFound)
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, ErrNotFound)
}
