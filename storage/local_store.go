package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps physical file bytes on disk under a base directory,
// namespaced per numeric user id. Blob names are generated and unguessable;
// the original extension is preserved so previews keep working.
type LocalStore struct {
	basePath string
}

func NewLocalStore(basePath string) *LocalStore {
	return &LocalStore{basePath: basePath}
}

func (s *LocalStore) BasePath() string {
	return s.basePath
}

// Save streams src into a freshly named blob in the user's directory and
// returns the generated name, the path relative to the store root, and the
// number of bytes written. A failed write leaves nothing behind.
func (s *LocalStore) Save(userID uint, originalName string, src io.Reader) (name string, relPath string, size int64, err error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	name = uuid.New().String() + ext
	relDir := filepath.Join("uploads", fmt.Sprintf("%d", userID))
	relPath = filepath.Join(relDir, name)

	absDir := filepath.Join(s.basePath, relDir)
	if err = os.MkdirAll(absDir, 0o755); err != nil {
		return "", "", 0, fmt.Errorf("create user dir: %w", err)
	}

	absPath := filepath.Join(absDir, name)
	dst, err := os.Create(absPath)
	if err != nil {
		return "", "", 0, fmt.Errorf("create blob: %w", err)
	}

	size, err = io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(absPath)
		return "", "", 0, fmt.Errorf("write blob: %w", err)
	}
	return name, relPath, size, nil
}

func (s *LocalStore) Abs(relPath string) string {
	return filepath.Join(s.basePath, relPath)
}

func (s *LocalStore) Exists(relPath string) bool {
	_, err := os.Stat(s.Abs(relPath))
	return err == nil
}

func (s *LocalStore) Open(relPath string) (*os.File, error) {
	return os.Open(s.Abs(relPath))
}

// Remove deletes a blob. A missing blob is not an error: deletion is
// idempotent so delete/delete and delete/cleanup races stay quiet.
func (s *LocalStore) Remove(relPath string) error {
	err := os.Remove(s.Abs(relPath))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// ThumbnailPath returns the relative path a thumbnail for the given blob
// name should live at. The file itself is written by the thumbnail helper.
func (s *LocalStore) ThumbnailPath(userID uint, blobName string) string {
	base := strings.TrimSuffix(blobName, filepath.Ext(blobName))
	return filepath.Join("thumbnails", fmt.Sprintf("%d", userID), base+"_thumb.jpg")
}
