package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	c := map[string]string{
		"NAME":     "blog",
		"EMPTY":    "",
		"SIZE":     " 12 ",
		"BAD_INT":  "twelve",
		"ENABLED":  "true",
		"BAD_BOOL": "maybe",
		"TTL":      "90m",
		"ORIGINS":  "http://a.test, ,http://b.test",
	}

	assert.Equal(t, "blog", GetString(c, "NAME", "x"))
	assert.Equal(t, "x", GetString(c, "EMPTY", "x"))
	assert.Equal(t, "x", GetString(nil, "NAME", "x"))

	assert.Equal(t, 12, GetInt(c, "SIZE", 6))
	assert.Equal(t, 6, GetInt(c, "BAD_INT", 6))
	assert.Equal(t, 6, GetInt(c, "MISSING", 6))

	assert.True(t, GetBool(c, "ENABLED", false))
	assert.False(t, GetBool(c, "BAD_BOOL", false))

	assert.Equal(t, 90*time.Minute, GetDuration(c, "TTL", time.Hour))
	assert.Equal(t, time.Hour, GetDuration(c, "MISSING", time.Hour))

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, GetList(c, "ORIGINS"))
	assert.Nil(t, GetList(c, "MISSING"))
}

func TestLoadDefaults(t *testing.T) {
	s := Load(map[string]string{})

	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, DefaultPageSize, s.PageSize)
	assert.Equal(t, DefaultTokenTTL, s.TokenTTL)
	assert.Equal(t, "local", s.Storage.Backend)
	assert.Equal(t, int64(DefaultMaxImageBytes), s.Storage.MaxImageBytes)
	assert.Equal(t, "/media/", s.Storage.PublicPrefix)
	assert.Contains(t, s.DatabaseURL, "host=localhost")
	assert.Nil(t, s.AcceptedOrigins)
	assert.Empty(t, s.SecretKey)
}

func TestValidateRequiresSecretKey(t *testing.T) {
	assert.ErrorIs(t, Load(map[string]string{}).Validate(), ErrMissingSecretKey)
	assert.NoError(t, Load(map[string]string{"SECRET_KEY": "s3cret"}).Validate())
}

func TestLoadOverrides(t *testing.T) {
	s := Load(map[string]string{
		"PORT":           "9000",
		"BLOG_PAGE_SIZE": "0",
		"DATABASE_URL":   "postgres://u:p@db/blog",
		"IMAGE_STORAGE":  "minio",
		"TOKEN_TTL":      "2h",
		"COOKIE_SECURE":  "true",
	})

	assert.Equal(t, "9000", s.Port)
	assert.Equal(t, DefaultPageSize, s.PageSize, "non-positive page sizes fall back to the default")
	assert.Equal(t, "postgres://u:p@db/blog", s.DatabaseURL)
	assert.Equal(t, "minio", s.Storage.Backend)
	assert.Equal(t, 2*time.Hour, s.TokenTTL)
	assert.True(t, s.CookieSecure)
}

func TestLoadSupabaseDSN(t *testing.T) {
	s := Load(map[string]string{
		"DB_TYPE":          "supa",
		"SUPABASE_DB_HOST": "db.supabase.co",
	})

	assert.Contains(t, s.DatabaseURL, "host=db.supabase.co")
	assert.Contains(t, s.DatabaseURL, "sslmode=require")
}
