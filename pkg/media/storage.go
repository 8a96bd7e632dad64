package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// BlobStore abstracts where uploaded files physically live. The production
// implementation is the local disk; tests use an in-memory stub.
type BlobStore interface {
	// Save stores the content under key and returns the public URL.
	Save(ctx context.Context, key string, r io.Reader) (string, error)
	// Delete removes the blob a previously returned URL points at.
	Delete(ctx context.Context, url string) error
}

// DiskStore stores blobs under a directory served as static files at baseURL.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *DiskStore) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	key = path.Clean("/" + key)[1:] // no traversal outside the storage dir
	target := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

func (s *DiskStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		return fmt.Errorf("url %q is not served by this store", url)
	}
	key = path.Clean("/" + key)[1:]

	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}
