package mapper

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"syscall"
)

// DirectoryResolver maps a request onto the directory holding its response files.
type DirectoryResolver interface {
	Resolve(req *Request) (string, error)
}

// BaseDirResolver resolves request paths relative to a base directory.
type BaseDirResolver struct {
	baseDir string
}

// NewBaseDirResolver creates a resolver rooted at baseDir.
func NewBaseDirResolver(baseDir string) *BaseDirResolver {
	return &BaseDirResolver{baseDir: baseDir}
}

// BaseDir returns the configured base directory.
func (r *BaseDirResolver) BaseDir() string {
	return r.baseDir
}

// Resolve returns base + request path when it names an existing directory.
// The URL path is cleaned as an absolute path first, so ".." segments can
// never climb above the base directory.
func (r *BaseDirResolver) Resolve(req *Request) (string, error) {
	clean := path.Clean("/" + req.Path)
	dir := filepath.Join(r.baseDir, filepath.FromSlash(clean))

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return "", fmt.Errorf("%w: no directory for %s", ErrNotFound, clean)
		}
		return "", fmt.Errorf("resolve %s: %w", clean, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrNotFound, clean)
	}
	return dir, nil
}
