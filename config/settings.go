package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingSecretKey stops the server from signing sessions with a guessable key.
var ErrMissingSecretKey = errors.New("SECRET_KEY must be set")

const (
	DefaultPageSize      = 6
	DefaultMaxImageBytes = 5 << 20
	DefaultTokenTTL      = 24 * time.Hour
)

// Settings is the typed view of the environment used to wire the application.
type Settings struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	DBType       string
	DatabaseURL  string
	ReplicaURL   string
	DBMaxOpen    int
	DBMaxIdle    int
	AutoMigrate  bool
	SlowQueryLog time.Duration

	SecretKey    string
	TokenTTL     time.Duration
	CookieSecure bool

	PageSize        int
	AcceptedOrigins []string

	Storage StorageSettings

	LogLevel  string
	LogPretty bool
	LogFile   string
}

// StorageSettings selects and configures the image storage provider.
type StorageSettings struct {
	Backend       string // local, s3 or minio
	MaxImageBytes int64

	LocalDir     string
	PublicPrefix string

	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PublicURL string
}

// Load builds Settings from an env map produced by New.
func Load(c map[string]string) Settings {
	s := Settings{
		Port:         GetString(c, "PORT", "8080"),
		ReadTimeout:  time.Duration(GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second,
		WriteTimeout: time.Duration(GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second,
		IdleTimeout:  time.Duration(GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second,

		DBType:       GetString(c, "DB_TYPE", "postgres"),
		ReplicaURL:   GetString(c, "DB_REPLICA_URL", ""),
		DBMaxOpen:    GetInt(c, "DB_MAX_OPEN_CONNS", 20),
		DBMaxIdle:    GetInt(c, "DB_MAX_IDLE_CONNS", 5),
		AutoMigrate:  GetBool(c, "AUTO_MIGRATE", false),
		SlowQueryLog: GetDuration(c, "DB_SLOW_QUERY", time.Second),

		SecretKey:    GetString(c, "SECRET_KEY", ""),
		TokenTTL:     GetDuration(c, "TOKEN_TTL", DefaultTokenTTL),
		CookieSecure: GetBool(c, "COOKIE_SECURE", false),

		PageSize:        GetInt(c, "BLOG_PAGE_SIZE", DefaultPageSize),
		AcceptedOrigins: GetList(c, "ACCEPTED_ORIGINS"),

		Storage: StorageSettings{
			Backend:       GetString(c, "IMAGE_STORAGE", "local"),
			MaxImageBytes: int64(GetInt(c, "MAX_IMAGE_BYTES", DefaultMaxImageBytes)),
			LocalDir:      GetString(c, "MEDIA_ROOT", "media"),
			PublicPrefix:  GetString(c, "MEDIA_URL", "/media/"),
			Bucket:        GetString(c, "IMAGE_BUCKET", ""),
			Region:        GetString(c, "IMAGE_REGION", "us-east-1"),
			Endpoint:      GetString(c, "IMAGE_ENDPOINT", ""),
			AccessKey:     GetString(c, "IMAGE_ACCESS_KEY", ""),
			SecretKey:     GetString(c, "IMAGE_SECRET_KEY", ""),
			UseSSL:        GetBool(c, "IMAGE_USE_SSL", true),
			PublicURL:     GetString(c, "IMAGE_PUBLIC_URL", ""),
		},

		LogLevel:  GetString(c, "LOG_LEVEL", "info"),
		LogPretty: GetBool(c, "LOG_PRETTY", false),
		LogFile:   GetString(c, "LOG_FILE", ""),
	}
	if s.PageSize < 1 {
		s.PageSize = DefaultPageSize
	}
	s.DatabaseURL = databaseURL(c, s.DBType)
	return s
}

// Validate reports settings the HTTP server cannot run without.
func (s Settings) Validate() error {
	if s.SecretKey == "" {
		return ErrMissingSecretKey
	}
	return nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN from parts.
func databaseURL(c map[string]string, dbType string) string {
	if url := GetString(c, "DATABASE_URL", ""); url != "" {
		return url
	}
	switch dbType {
	case "supa":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			GetString(c, "SUPABASE_DB_HOST", ""),
			GetString(c, "SUPABASE_DB_USER", ""),
			GetString(c, "SUPABASE_DB_PASSWORD", ""),
			GetString(c, "SUPABASE_DB_NAME", ""),
			GetString(c, "SUPABASE_DB_PORT", "5432"),
		)
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			GetString(c, "DB_HOST", "localhost"),
			GetString(c, "DB_USER", "postgres"),
			GetString(c, "DB_PASSWORD", "postgres"),
			GetString(c, "DB_NAME", "blog"),
			GetString(c, "DB_PORT", "5432"),
			GetString(c, "DB_SSLMODE", "disable"),
		)
	}
}
