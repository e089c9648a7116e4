package requestlog

import (
	"time"

	"github.com/picklenerd/counterfeit/pkg/mapper"
)

// Entry describes one handled request.
type Entry struct {
	// ID is assigned by the store when empty.
	ID string `json:"id"`

	// Timestamp is when the request finished. Set by the store when zero.
	Timestamp time.Time `json:"timestamp"`

	Method string `json:"method"`
	Path   string `json:"path"`

	// Status is the response status, or zero when the request was aborted.
	Status int `json:"status,omitempty"`

	// File is the response file that was served.
	File string `json:"file,omitempty"`

	// BodySize is the length of the response body in bytes.
	BodySize int `json:"bodySize"`

	// Error is the mapping error behind a 404/500 response, or the reason
	// the request was aborted.
	Error string `json:"error,omitempty"`

	Aborted bool `json:"aborted,omitempty"`

	DurationMs int64 `json:"durationMs"`
}

// FromEvent converts a handler event into an entry.
func FromEvent(ev mapper.Event) *Entry {
	e := &Entry{
		Method:     ev.Request.Method,
		Path:       ev.Request.Path,
		DurationMs: ev.Duration.Milliseconds(),
	}
	if ev.Output != nil {
		e.File = ev.Output.Result.Path
		if err := ev.Output.Err(); err != nil {
			e.Error = err.Error()
		}
	}
	if ev.Err != nil {
		e.Aborted = true
		e.Error = ev.Err.Error()
		return e
	}
	if ev.Output != nil && ev.Output.Response != nil {
		e.Status = ev.Output.Response.Status
		e.BodySize = len(ev.Output.Response.Body)
	}
	return e
}

// Observer returns a mapper.Observer that records every event in l.
func Observer(l Logger) mapper.Observer {
	return func(ev mapper.Event) {
		l.Log(FromEvent(ev))
	}
}
