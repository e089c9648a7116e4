package mapper

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFunc func(req *Request) (string, error)

func (f resolverFunc) Resolve(req *Request) (string, error) { return f(req) }

func newTestHandler(t *testing.T, files map[string]string, opts ...HandlerOption) (*Handler, string) {
	t.Helper()
	base := t.TempDir()
	writeTree(t, base, files)
	h := NewHandler(NewBaseDirResolver(base), NewRoundRobinPicker(NewCursorState()), opts...)
	return h, base
}

func TestHandler_Widgets(t *testing.T) {
	h, _ := newTestHandler(t, map[string]string{"widgets/get.json": `{"id":1}`})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"id":1}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/widgets", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found: no files available", rec.Body.String())
}

func TestHandler_QueryStringIgnored(t *testing.T) {
	h, _ := newTestHandler(t, map[string]string{"widgets/get.json": `[]`})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets?page=3", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[]`, rec.Body.String())
}

func TestHandler_RoundRobin(t *testing.T) {
	h, _ := newTestHandler(t, map[string]string{
		"orders/get_1.json": `1`,
		"orders/get_2.json": `2`,
	})

	var bodies []string
	for range 4 {
		resp, err := h.Serve(&Request{Method: "GET", Path: "/orders"})
		require.NoError(t, err)
		bodies = append(bodies, string(resp.Body))
	}
	assert.Equal(t, []string{"1", "2", "1", "2"}, bodies)
}

func TestHandler_MissingDirectory(t *testing.T) {
	h, base := newTestHandler(t, map[string]string{"widgets/get.json": `{}`})

	resp, err := h.Serve(&Request{Method: "GET", Path: "/gadgets"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, []string{"widgets"}, listNames(t, base))
}

func TestHandler_CreateMissingEndToEnd(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{"users/get.json": `[]`})
	h := NewHandler(NewBaseDirResolver(base), NewRoundRobinPicker(NewCursorState(), WithCreateMissing(true)))

	resp, err := h.Serve(&Request{Method: "PATCH", Path: "/users"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, resp.Body)
	assert.FileExists(t, filepath.Join(base, "users", "patch.json"))

	// A missing directory is still a 404; nothing is created for it.
	resp, err = h.Serve(&Request{Method: "PATCH", Path: "/accounts"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.NoDirExists(t, filepath.Join(base, "accounts"))
}

func TestHandler_MutationOrder(t *testing.T) {
	var order []string
	record := func(name string) Mutation {
		return MutationFunc{Label: name, Fn: func(out *Output) error {
			order = append(order, name)
			out.Response.Header.Add("X-Order", name)
			return nil
		}}
	}
	h, _ := newTestHandler(t, map[string]string{"get.json": `{}`},
		WithMutations(record("a")),
		WithMutations(record("b"), record("c")),
	)
	assert.Equal(t, []string{"a", "b", "c"}, h.Chain().Names())

	resp, err := h.Serve(&Request{Method: "GET", Path: "/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, []string{"a", "b", "c"}, resp.Header.Values("X-Order"))
}

func TestHandler_MutationSeesNotFound(t *testing.T) {
	var seen Result
	h, _ := newTestHandler(t, map[string]string{},
		WithMutations(MutationFunc{Label: "spy", Fn: func(out *Output) error {
			seen = out.Result
			out.Response.Status = http.StatusTeapot
			return nil
		}}),
	)

	resp, err := h.Serve(&Request{Method: "GET", Path: "/missing"})
	require.NoError(t, err)
	assert.True(t, IsNotFound(seen.Err))
	assert.Equal(t, http.StatusTeapot, resp.Status)
}

func TestHandler_MutationFailureAborts(t *testing.T) {
	boom := errors.New("boom")
	appliedB := false
	h, _ := newTestHandler(t, map[string]string{"get.json": `{}`},
		WithMutations(
			MutationFunc{Label: "a", Fn: func(*Output) error { return boom }},
			MutationFunc{Label: "b", Fn: func(*Output) error { appliedB = true; return nil }},
		),
	)

	resp, err := h.Serve(&Request{Method: "GET", Path: "/"})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.False(t, appliedB)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	var merr *MutationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "a", merr.Name)
	assert.ErrorIs(t, err, boom)
}

func TestHandler_ResolverFailureAborts(t *testing.T) {
	broken := errors.New("permission denied")
	h := NewHandler(
		resolverFunc(func(*Request) (string, error) { return "", broken }),
		NewRoundRobinPicker(NewCursorState()),
	)

	_, err := h.Serve(&Request{Method: "GET", Path: "/"})
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.ErrorIs(t, err, broken)

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestHandler_AbortDropsConnection(t *testing.T) {
	h, _ := newTestHandler(t, map[string]string{"get.json": `{}`},
		WithMutations(MutationFunc{Label: "fail", Fn: func(*Output) error { return errors.New("nope") }}),
	)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err == nil {
		_ = resp.Body.Close()
	}
	require.Error(t, err)
}

func TestHandler_Observer(t *testing.T) {
	var events []Event
	h, _ := newTestHandler(t, map[string]string{"get.json": `{}`},
		WithObserver(func(ev Event) { events = append(events, ev) }),
	)

	_, err := h.Serve(&Request{Method: "GET", Path: "/"})
	require.NoError(t, err)
	_, err = h.Serve(&Request{Method: "PUT", Path: "/"})
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.NoError(t, events[0].Err)
	assert.Equal(t, http.StatusOK, events[0].Output.Response.Status)
	assert.Equal(t, http.StatusNotFound, events[1].Output.Response.Status)
}

func TestHandler_RequestLogging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h, _ := newTestHandler(t, map[string]string{"get.json": `{}`},
		WithLogger(log),
		WithRequestLogging(true),
	)
	_, err := h.Serve(&Request{Method: "GET", Path: "/"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "request received")
	assert.Contains(t, out, "request served")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "get.json")
}

func TestHandler_RequestLoggingDisabled(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h, _ := newTestHandler(t, map[string]string{"get.json": `{}`}, WithLogger(log))
	_, err := h.Serve(&Request{Method: "GET", Path: "/"})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestHandler_LargeBody(t *testing.T) {
	body := strings.Repeat("x", 1<<16)
	h, _ := newTestHandler(t, map[string]string{"get.txt": body})
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
	assert.Equal(t, int64(len(body)), resp.ContentLength)
}
