package engine

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/picklenerd/counterfeit/pkg/httputil"
	"github.com/picklenerd/counterfeit/pkg/requestlog"
)

// AdminPrefix is the path prefix of the admin endpoints.
const AdminPrefix = "/__counterfeit"

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    int    `json:"uptime"`
	BaseDir   string `json:"baseDir"`
	Cursors   int    `json:"cursors"`
	Requests  int    `json:"requests"`
}

// RequestListResponse is returned by the request history endpoint.
type RequestListResponse struct {
	Requests []*requestlog.Entry `json:"requests"`
	Count    int                 `json:"count"`
	Total    int                 `json:"total"`
}

func (s *Server) routes() http.Handler {
	admin := http.NewServeMux()
	admin.HandleFunc("GET "+AdminPrefix+"/health", s.handleHealth)
	admin.HandleFunc("GET "+AdminPrefix+"/requests", s.handleListRequests)
	admin.HandleFunc("DELETE "+AdminPrefix+"/requests", s.handleClearRequests)
	admin.HandleFunc("GET "+AdminPrefix+"/requests/stream", s.handleStreamRequests)
	admin.HandleFunc("GET "+AdminPrefix+"/requests/{id}", s.handleGetRequest)
	admin.HandleFunc("DELETE "+AdminPrefix+"/cursors", s.handleResetCursors)
	if s.metrics != nil {
		admin.Handle("GET "+AdminPrefix+"/metrics", s.metrics.Handler())
	}

	var adminHandler http.Handler = admin
	if s.metrics != nil {
		adminHandler = s.metrics.Middleware(admin)
	}

	mux := http.NewServeMux()
	mux.Handle(AdminPrefix+"/", adminHandler)
	mux.Handle("/", s.mapper)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    s.Uptime(),
		BaseDir:   s.cfg.BaseDir,
		Cursors:   s.cursors.Len(),
		Requests:  s.requestLog.Count(),
	})
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid_filter", err.Error())
		return
	}
	entries := s.requestLog.List(filter)
	httputil.WriteOK(w, RequestListResponse{
		Requests: entries,
		Count:    len(entries),
		Total:    s.requestLog.Count(),
	})
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	entry := s.requestLog.Get(id)
	if entry == nil {
		httputil.WriteNotFound(w, "not_found", "no request with id "+id)
		return
	}
	httputil.WriteOK(w, entry)
}

// handleStreamRequests handles GET /requests/stream - SSE endpoint that
// pushes every new request-log entry until the client leaves or the server
// stops.
func (s *Server) handleStreamRequests(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	sub, unsubscribe := s.requestLog.Subscribe()
	defer unsubscribe()
	stopping := s.stopping()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	_, _ = fmt.Fprintf(w, "event: connected\ndata: {\"message\": \"Connected to request stream\"}\n\n")
	if err := rc.Flush(); err != nil {
		s.log.Debug("request stream not supported", "error", err)
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopping:
			return
		case entry, ok := <-sub:
			if !ok {
				return
			}
			data, err := json.Marshal(entry)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: request\ndata: %s\n\n", entry.ID, data); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleClearRequests(w http.ResponseWriter, _ *http.Request) {
	s.requestLog.Clear()
	httputil.WriteNoContent(w)
}

func (s *Server) handleResetCursors(w http.ResponseWriter, _ *http.Request) {
	s.cursors.ResetAll()
	s.log.Info("round-robin cursors reset")
	httputil.WriteNoContent(w)
}

func parseFilter(r *http.Request) (*requestlog.Filter, error) {
	q := r.URL.Query()
	f := &requestlog.Filter{
		Method: q.Get("method"),
		Path:   q.Get("path"),
	}

	var err error
	if f.Status, err = httputil.QueryInt(r, "status", 0); err != nil {
		return nil, err
	}
	if f.Limit, err = httputil.QueryInt(r, "limit", 0); err != nil {
		return nil, err
	}
	if f.Offset, err = httputil.QueryInt(r, "offset", 0); err != nil {
		return nil, err
	}
	if f.HasError, err = httputil.QueryBool(r, "error"); err != nil {
		return nil, err
	}
	if f.Aborted, err = httputil.QueryBool(r, "aborted"); err != nil {
		return nil, err
	}
	return f, nil
}
