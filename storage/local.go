package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes images below a directory served at a public URL prefix.
type LocalStore struct {
	dir    string
	prefix string
}

func NewLocalStore(dir, prefix string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("local image directory is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, "images"), 0o755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &LocalStore{dir: dir, prefix: prefix}, nil
}

func (s *LocalStore) Save(ctx context.Context, upload Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := objectKey(upload)
	target := filepath.Join(s.dir, filepath.FromSlash(key))

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, upload.Body); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("close image file: %w", err)
	}

	return s.prefix + key, nil
}

// Prefix is the URL path images are served under.
func (s *LocalStore) Prefix() string {
	return s.prefix
}

// Handler serves stored images; mount it at Prefix.
func (s *LocalStore) Handler() http.Handler {
	return http.StripPrefix(s.prefix, http.FileServer(http.Dir(s.dir)))
}
