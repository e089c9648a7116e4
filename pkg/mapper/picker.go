package mapper

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilePicker selects the response file for a request inside a resolved directory.
type FilePicker interface {
	Pick(dir string, req *Request) (string, error)
}

// PlaceholderExt is the extension of files created for missing responses.
const PlaceholderExt = ".json"

// RoundRobinPicker cycles through the candidate files of a directory,
// one per call, using a shared CursorState.
type RoundRobinPicker struct {
	cursors       *CursorState
	createMissing bool
	sorted        bool
	atomic        bool
	onCreate      func(path string)
}

// PickerOption configures a RoundRobinPicker.
type PickerOption func(*RoundRobinPicker)

// WithCreateMissing makes the picker create an empty "<method>.json" file
// when a directory has no candidate for the request method.
func WithCreateMissing(enabled bool) PickerOption {
	return func(p *RoundRobinPicker) {
		p.createMissing = enabled
	}
}

// WithSortedCandidates orders candidates by file name. When disabled the
// cycle follows the raw directory enumeration order, which varies between
// filesystems.
func WithSortedCandidates(enabled bool) PickerOption {
	return func(p *RoundRobinPicker) {
		p.sorted = enabled
	}
}

// WithAtomicPick holds the cursor lock across listing, placeholder creation
// and cursor update so concurrent requests for one directory agree on the
// candidate list. All picks are serialized while it is enabled.
func WithAtomicPick(enabled bool) PickerOption {
	return func(p *RoundRobinPicker) {
		p.atomic = enabled
	}
}

// WithCreateHook registers a callback invoked after a placeholder is created.
func WithCreateHook(fn func(path string)) PickerOption {
	return func(p *RoundRobinPicker) {
		p.onCreate = fn
	}
}

// NewRoundRobinPicker creates a picker backed by cursors. Candidates are
// sorted by default.
func NewRoundRobinPicker(cursors *CursorState, opts ...PickerOption) *RoundRobinPicker {
	if cursors == nil {
		cursors = NewCursorState()
	}
	p := &RoundRobinPicker{cursors: cursors, sorted: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cursors returns the cursor state shared by the picker.
func (p *RoundRobinPicker) Cursors() *CursorState {
	return p.cursors
}

// Pick returns the next candidate for req in dir.
func (p *RoundRobinPicker) Pick(dir string, req *Request) (string, error) {
	if !p.atomic {
		return p.pick(dir, req, p.cursors.Next)
	}

	var (
		path string
		err  error
	)
	p.cursors.withLock(func() {
		path, err = p.pick(dir, req, p.cursors.nextLocked)
	})
	return path, err
}

func (p *RoundRobinPicker) pick(dir string, req *Request, next func(dir string, count int) int) (string, error) {
	method := req.methodKey()
	candidates, err := listCandidates(dir, method, p.sorted)
	if err != nil {
		return "", err
	}

	if len(candidates) == 0 {
		if !p.createMissing {
			return "", errNoFiles
		}
		path, err := createPlaceholder(dir, method)
		if err != nil {
			return "", err
		}
		if p.onCreate != nil {
			p.onCreate(path)
		}
		return path, nil
	}

	idx := next(dir, len(candidates))
	return filepath.Join(dir, candidates[idx]), nil
}

// FirstMatchPicker always returns the first candidate in name order. It keeps
// no state and never creates files.
type FirstMatchPicker struct{}

// Pick returns the lexically first candidate for req in dir.
func (FirstMatchPicker) Pick(dir string, req *Request) (string, error) {
	candidates, err := listCandidates(dir, req.methodKey(), true)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", errNoFiles
	}
	return filepath.Join(dir, candidates[0]), nil
}

// Candidates lists the names of the files in dir that answer method,
// in name order.
func Candidates(dir, method string) ([]string, error) {
	return listCandidates(dir, strings.ToLower(method), true)
}

// listCandidates returns the regular files in dir matching method (lowercase).
func listCandidates(dir, method string, sorted bool) ([]string, error) {
	entries, err := readDir(dir, sorted)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !matchesMethod(entry.Name(), method) {
			continue
		}
		if !isRegular(dir, entry) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func readDir(dir string, sorted bool) ([]fs.DirEntry, error) {
	if sorted {
		return os.ReadDir(dir)
	}
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return f.ReadDir(-1)
}

// isRegular reports whether entry is a regular file, following symlinks.
func isRegular(dir string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

// matchesMethod reports whether a file name answers method. The stem must
// equal the method or start with "<method>_", ignoring case.
func matchesMethod(name, method string) bool {
	stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	return stem == method || strings.HasPrefix(stem, method+"_")
}

func createPlaceholder(dir, method string) (string, error) {
	path := filepath.Join(dir, method+PlaceholderExt)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("create placeholder: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("create placeholder: %w", err)
	}
	return path, nil
}
