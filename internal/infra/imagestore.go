package infra

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImagesURLPrefix is the public route the stored images are served under.
const ImagesURLPrefix = "/static/products"

// ImageStore writes product images to a local directory.
type ImageStore struct {
	dir    string
	domain string
}

func NewImageStore(dir, domain string) *ImageStore {
	return &ImageStore{dir: dir, domain: strings.TrimRight(domain, "/")}
}

// Dir is the directory served under ImagesURLPrefix.
func (s *ImageStore) Dir() string { return s.dir }

// Save copies r into a new file named after a random uuid and returns the
// public URL of the image.
func (s *ImageStore) Save(productID uint, ext string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("imagestore: mkdir: %w", err)
	}
	name := fmt.Sprintf("%d_%s%s", productID, uuid.NewString(), ext)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("imagestore: create: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("imagestore: write: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("imagestore: close: %w", err)
	}
	return s.domain + ImagesURLPrefix + "/" + name, nil
}

// Remove deletes the file behind a URL returned by Save. URLs that do not
// point into the store are ignored.
func (s *ImageStore) Remove(url string) error {
	i := strings.LastIndex(url, ImagesURLPrefix+"/")
	if i < 0 {
		return nil
	}
	name := filepath.Base(url[i+len(ImagesURLPrefix)+1:])
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("imagestore: remove: %w", err)
	}
	return nil
}
