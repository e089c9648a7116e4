package mapper

import (
	"net/http"
	"strings"
)

// Request is the part of an HTTP request the mapper looks at.
type Request struct {
	// Method is the HTTP method as received. Matching lowercases it.
	Method string
	// Path is the URL path without the query string.
	Path string
}

// NewRequest extracts the method and path from an HTTP request.
func NewRequest(r *http.Request) *Request {
	path := r.URL.Path
	if path == "" {
		path = "/"
	}
	return &Request{Method: r.Method, Path: path}
}

// ParseRequest builds a Request from a method and a raw request target
// (which may still carry a query string).
func ParseRequest(method, target string) *Request {
	path, _, _ := strings.Cut(target, "?")
	if path == "" {
		path = "/"
	}
	return &Request{Method: method, Path: path}
}

// methodKey is the lowercase method used for file matching.
func (r *Request) methodKey() string {
	return strings.ToLower(r.Method)
}
