package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/youruser/staffbadge/internal/util"
)

// ErrUnsafeFilename is returned for names that would leave the output directory.
var ErrUnsafeFilename = errors.New("unsafe badge filename")

// LocalStore writes badges into a single directory. Writing an existing
// name replaces the file.
type LocalStore struct {
	dir string
	log *zap.Logger
}

// NewLocalStore creates dir if it does not exist.
func NewLocalStore(dir string, log *zap.Logger) (*LocalStore, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, log: log}, nil
}

// Dir is the output directory.
func (s *LocalStore) Dir() string { return s.dir }

// Save writes data as dir/name and returns the full path.
func (s *LocalStore) Save(name string, data []byte) (string, error) {
	if !safeName(name) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeFilename, name)
	}
	if err := util.EnsureDir(s.dir); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.Error("Failed to save badge", zap.String("path", path), zap.Error(err))
		return "", err
	}

	s.log.Info("Badge saved", zap.String("path", path), zap.Int("size", len(data)))
	return path, nil
}

func safeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return filepath.Base(name) == name
}
