package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Object is the stable reference returned after storing raw bytes. LocalPath
// is only set by stores that keep a copy on the local filesystem.
type Object struct {
	URL       string
	LocalPath string
}

// Store is the asset upload capability consumed by the catalog service.
// The service stores only the returned references and never manages file
// lifecycle itself.
type Store interface {
	Save(ctx context.Context, key string, data []byte) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey derives a collision-free storage key for a product image
func ObjectKey(productID uuid.UUID, contentType string) string {
	return productID.String() + "-" + uuid.New().String() + ExtensionFor(contentType)
}

// ExtensionFor maps an image content type to a file extension
func ExtensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// LocalStore writes assets to a directory on disk and serves them under a
// base URL.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a LocalStore rooted at dir
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create assets directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

// Save writes data to disk, replacing any existing file under the same key
func (s *LocalStore) Save(_ context.Context, key string, data []byte) (*Object, error) {
	path := filepath.Join(s.dir, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write asset %s: %w", key, err)
	}

	return &Object{
		URL:       s.baseURL + "/" + key,
		LocalPath: path,
	}, nil
}

// Delete removes the file under key; deleting a missing asset is not an error
func (s *LocalStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete asset %s: %w", key, err)
	}
	return nil
}
