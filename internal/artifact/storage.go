package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage persists generated artifacts and exposes their public URLs. The
// local implementation mirrors the served uploads directory; swapping in an
// object store only needs this interface.
type Storage interface {
	Save(ctx context.Context, relPath string, data []byte) error
	Open(ctx context.Context, relPath string) (io.ReadCloser, error)
	PublicURL(relPath string) string
}

type LocalStorage struct {
	root          string
	publicBaseURL string
}

func NewLocalStorage(root, publicBaseURL string) *LocalStorage {
	return &LocalStorage{root: root, publicBaseURL: strings.TrimSuffix(publicBaseURL, "/")}
}

func (s *LocalStorage) Save(ctx context.Context, relPath string, data []byte) error {
	abs := filepath.Join(s.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", relPath, err)
	}
	return nil
}

func (s *LocalStorage) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(relPath)))
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", relPath, err)
	}
	return f, nil
}

func (s *LocalStorage) PublicURL(relPath string) string {
	return s.publicBaseURL + "/" + relPath
}

func (s *LocalStorage) Root() string { return s.root }
