package mapper

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
)

// ErrNotFound is returned when a request has no directory or no candidate file.
var ErrNotFound = errors.New("not found")

// errNoFiles is the not-found error returned when a directory has no candidate.
var errNoFiles = fmt.Errorf("%w: no files available", ErrNotFound)

// MutationError reports the mutation that aborted a request.
type MutationError struct {
	Name string
	Err  error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("mutation %q failed: %v", e.Name, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure that aborts the whole request. No HTTP
// response is produced for it.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "request aborted: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the requested resource does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// StatusFor maps a mapper error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
