package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FSStore keeps blobs on the local filesystem under a single directory
// and serves them under a configured base URL.
type FSStore struct {
	dir     string
	baseURL string
}

func NewFSStore(dir, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &FSStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *FSStore) Store(ctx context.Context, name string, r io.Reader) (string, error) {
	// Random prefix keeps uploads from colliding or overwriting each other.
	fileName := uuid.NewString() + "-" + filepath.Base(name)

	f, err := os.Create(filepath.Join(s.dir, fileName))
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}

	return s.baseURL + "/" + fileName, nil
}

func (s *FSStore) Delete(ctx context.Context, url string) error {
	fileName := filepath.Base(url)
	if fileName == "." || fileName == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, fileName))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
