package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects below a directory that the HTTP server exposes
// under baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir is the root directory, for mounting as a static route.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Put(ctx context.Context, key, _ string, r io.Reader) (string, error) {
	dst, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("media: mkdir: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("media: create: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("media: write: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("media: close: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *LocalStore) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		return fmt.Errorf("media: %q is not served by this store", url)
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("media: remove: %w", err)
	}
	return nil
}

// path resolves key inside dir and refuses keys escaping it.
func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("media: invalid key %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}
