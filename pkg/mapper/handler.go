package mapper

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/picklenerd/counterfeit/pkg/logging"
)

// Event describes one handled request. Err is set when the request was
// aborted; Output is nil in that case only if the failure happened before a
// response was built.
type Event struct {
	Request  *Request
	Output   *Output
	Err      error
	Duration time.Duration
}

// Observer receives an Event after every request.
type Observer func(ev Event)

// Handler answers requests from response files. It implements http.Handler.
type Handler struct {
	resolver    DirectoryResolver
	picker      FilePicker
	chain       *Chain
	log         *slog.Logger
	logRequests bool
	observers   []Observer
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithRequestLogging logs every request and its outcome.
func WithRequestLogging(enabled bool) HandlerOption {
	return func(h *Handler) {
		h.logRequests = enabled
	}
}

// WithMutations appends mutations to the handler's chain.
func WithMutations(mutations ...Mutation) HandlerOption {
	return func(h *Handler) {
		h.chain = NewChain(append(h.chain.mutations, mutations...)...)
	}
}

// WithObserver registers fn to be called after every request.
func WithObserver(fn Observer) HandlerOption {
	return func(h *Handler) {
		if fn != nil {
			h.observers = append(h.observers, fn)
		}
	}
}

// NewHandler creates a Handler from a resolver and a picker.
func NewHandler(resolver DirectoryResolver, picker FilePicker, opts ...HandlerOption) *Handler {
	h := &Handler{
		resolver: resolver,
		picker:   picker,
		chain:    NewChain(),
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Chain returns the handler's mutation chain.
func (h *Handler) Chain() *Chain {
	return h.chain
}

// ServeHTTP implements http.Handler. Aborted requests drop the connection
// without writing a response.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Serve(NewRequest(r))
	if err != nil {
		panic(http.ErrAbortHandler)
	}
	if err := resp.Write(w); err != nil {
		h.log.Debug("failed to write response", "path", r.URL.Path, "error", err)
	}
}

// Serve runs the mapping pipeline for req. A non-nil error is a
// *TransportError and no response must be sent.
func (h *Handler) Serve(req *Request) (*Response, error) {
	start := time.Now()
	if h.logRequests {
		h.log.Debug("request received", "method", req.Method, "path", req.Path)
	}

	dir, err := h.resolver.Resolve(req)
	if err != nil && !IsNotFound(err) {
		return nil, h.abort(req, nil, err, start)
	}

	var out *Output
	if err != nil {
		out = NewOutput(req, Result{Err: err})
	} else {
		path, pickErr := h.picker.Pick(dir, req)
		out = NewOutput(req, Result{Path: path, Err: pickErr})
	}

	if err := h.chain.Apply(out); err != nil {
		return nil, h.abort(req, out, err, start)
	}

	if h.logRequests {
		attrs := []any{"method", req.Method, "path", req.Path, "status", out.Response.Status}
		if err := out.Err(); err != nil {
			attrs = append(attrs, "error", err)
		} else {
			attrs = append(attrs, "file", out.Result.Path)
		}
		h.log.Info("request served", attrs...)
	}

	h.notify(Event{Request: req, Output: out, Duration: time.Since(start)})
	return out.Response, nil
}

func (h *Handler) abort(req *Request, out *Output, err error, start time.Time) error {
	terr := &TransportError{Err: err}
	h.log.Error("request aborted", "method", req.Method, "path", req.Path, "error", err)
	h.notify(Event{Request: req, Output: out, Err: terr, Duration: time.Since(start)})
	return terr
}

func (h *Handler) notify(ev Event) {
	for _, fn := range h.observers {
		fn(ev)
	}
}
