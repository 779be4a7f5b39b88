// Package storage saves uploaded blog images and returns the URL they are served from.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/multiblog-backend/config"
)

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store persists an upload and returns a reference suitable for BlogPost.Image.
type Store interface {
	Save(ctx context.Context, upload Upload) (string, error)
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AllowedContentTypes lists the image types accepted for upload.
func AllowedContentTypes() []string {
	return []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
}

// IsAllowedContentType reports whether contentType is an accepted image type.
func IsAllowedContentType(contentType string) bool {
	_, ok := extensions[contentType]
	return ok
}

// objectKey names a stored image "images/<uuid><ext>"; the client filename is never trusted.
func objectKey(upload Upload) string {
	ext, ok := extensions[upload.ContentType]
	if !ok {
		ext = strings.ToLower(path.Ext(upload.Filename))
	}
	return "images/" + uuid.NewString() + ext
}

// New builds the store selected by settings.Backend.
func New(ctx context.Context, settings config.StorageSettings) (Store, error) {
	switch settings.Backend {
	case "", "local":
		return NewLocalStore(settings.LocalDir, settings.PublicPrefix)
	case "s3":
		return NewS3Store(ctx, settings)
	case "minio":
		return NewMinioStore(ctx, settings)
	default:
		return nil, fmt.Errorf("unsupported IMAGE_STORAGE %q", settings.Backend)
	}
}
