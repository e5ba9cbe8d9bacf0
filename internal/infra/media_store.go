package infra

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Vovarama1992/qrpage/internal/models"
	"github.com/Vovarama1992/qrpage/internal/ports"
)

// FilesystemMediaStore keeps page blobs flat in one directory; the
// directory is also what /media serves.
type FilesystemMediaStore struct {
	basePath string
}

var _ ports.MediaStore = (*FilesystemMediaStore)(nil)

func NewFilesystemMediaStore(basePath string) (*FilesystemMediaStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &FilesystemMediaStore{basePath: basePath}, nil
}

func (fs *FilesystemMediaStore) Dir() string { return fs.basePath }

// Save writes r to a temp file next to the target and renames it into
// place, so readers never see a partial file under name.
func (fs *FilesystemMediaStore) Save(name string, r io.Reader) (int64, error) {
	if !models.ValidMediaName(name) {
		return 0, models.ErrInvalidMediaName
	}

	tmp, err := os.CreateTemp(fs.basePath, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("write media %s: %w", name, err)
	}

	if err := os.Rename(tmpPath, filepath.Join(fs.basePath, name)); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("rename media %s: %w", name, err)
	}
	return n, nil
}

func (fs *FilesystemMediaStore) Delete(name string) error {
	if !models.ValidMediaName(name) {
		return models.ErrInvalidMediaName
	}
	err := os.Remove(filepath.Join(fs.basePath, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete media %s: %w", name, err)
	}
	return nil
}

func (fs *FilesystemMediaStore) Exists(name string) bool {
	if !models.ValidMediaName(name) {
		return false
	}
	info, err := os.Stat(filepath.Join(fs.basePath, name))
	return err == nil && info.Mode().IsRegular()
}
