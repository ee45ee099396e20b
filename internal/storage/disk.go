package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("unsupported file type")

// PictureStore saves an uploaded profile picture and returns the URL path it
// will be served from.
type PictureStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// DiskStore writes pictures under a local directory served at /uploads/.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.dir, name))

	if err != nil {
		return "", err
	}

	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}

	return "/uploads/" + name, nil
}

func (s *DiskStore) Dir() string {
	return s.dir
}
