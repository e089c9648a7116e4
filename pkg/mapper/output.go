package mapper

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultHeaders are set on every response the mapper builds.
var DefaultHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "*",
	"Access-Control-Allow-Headers": "*",
}

// Result is the outcome of picking a file: a path or an error.
type Result struct {
	Path string
	Err  error
}

// OK reports whether the result names a file.
func (r Result) OK() bool {
	return r.Err == nil
}

// Response is the response handed back to the transport.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Write copies the response onto w.
func (r *Response) Write(w http.ResponseWriter) error {
	h := w.Header()
	for k, v := range r.Header {
		h[k] = v
	}
	h.Set("Content-Length", strconv.Itoa(len(r.Body)))
	w.WriteHeader(r.Status)
	_, err := w.Write(r.Body)
	return err
}

// Output is everything known about one request while it is being handled.
// Mutations change it in place. Result is the picker's result as produced;
// ReadErr is set when the picked file could not be read.
type Output struct {
	Request  *Request
	Result   Result
	ReadErr  error
	Response *Response
}

// Err returns the error the response was built from: the picker's error, or
// else the read error.
func (o *Output) Err() error {
	if o.Result.Err != nil {
		return o.Result.Err
	}
	return o.ReadErr
}

// NewOutput builds the response for result. A file that cannot be read turns
// the output into an error response carrying the read error.
func NewOutput(req *Request, result Result) *Output {
	out := &Output{Request: req, Result: result}

	if result.Err == nil {
		body, err := os.ReadFile(result.Path)
		if err == nil {
			out.Response = fileResponse(result.Path, body)
			return out
		}
		out.ReadErr = err
	}

	out.Response = errorResponse(out.Err())
	return out
}

func fileResponse(path string, body []byte) *Response {
	resp := &Response{Status: http.StatusOK, Header: defaultHeader(), Body: body}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		resp.Header.Set("Content-Type", "application/json")
	}
	return resp
}

func errorResponse(err error) *Response {
	return &Response{
		Status: StatusFor(err),
		Header: defaultHeader(),
		Body:   []byte(err.Error()),
	}
}

func defaultHeader() http.Header {
	h := make(http.Header, len(DefaultHeaders)+1)
	for k, v := range DefaultHeaders {
		h.Set(k, v)
	}
	return h
}
