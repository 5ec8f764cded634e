// Package media stores binary assets (profile and listing pictures) outside
// the database.  Only the returned URLs are persisted.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/tripadvisor-api/internal/config"
)

// Store uploads and removes objects by key.
type Store interface {
	// Put stores r under key and returns the public URL.
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	// Delete removes the object behind url.  Deleting a missing object is
	// not an error.
	Delete(ctx context.Context, url string) error
}

// New returns the store selected by cfg.Driver.
func New(cfg config.MediaConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return NewLocalStore(cfg.Dir, cfg.BaseURL), nil
	case "cloudinary":
		if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
			return nil, fmt.Errorf("cloudinary driver needs CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
		}
		return NewCloudinaryStore(cfg.CloudName, cfg.APIKey, cfg.APISecret, cfg.Folder, nil), nil
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.Driver)
	}
}

// ObjectKey builds "<prefix>/<id>/<uuid>_<name>".  The random part keeps two
// uploads with the same file name from overwriting each other.
func ObjectKey(prefix string, id uint64, filename string) string {
	name := sanitize(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		name = "file"
	}
	return fmt.Sprintf("%s/%d/%s_%s", prefix, id, uuid.NewString(), name)
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
