package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON with correct content type", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusOK, map[string]string{"foo": "bar"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var result map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "bar", result["foo"])
	})

	t.Run("handles nil data", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusAccepted, nil)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestWriteErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { WriteBadRequest(w, "invalid_limit", "bad") }, http.StatusBadRequest, "invalid_limit"},
		{"not found", func(w http.ResponseWriter) { WriteNotFound(w, "not_found", "gone") }, http.StatusNotFound, "not_found"},
		{"custom", func(w http.ResponseWriter) { WriteError(w, http.StatusTeapot, "teapot", "short and stout") }, http.StatusTeapot, "teapot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestWriteNoContent(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	WriteNoContent(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestQueryInt(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/?limit=5&bad=x&neg=-1", nil)

	n, err := QueryInt(r, "limit", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = QueryInt(r, "offset", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = QueryInt(r, "bad", 0)
	assert.Error(t, err)
	_, err = QueryInt(r, "neg", 0)
	assert.Error(t, err)
}

func TestQueryBool(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/?aborted=true&bad=maybe", nil)

	b, err := QueryBool(r, "aborted")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, *b)

	b, err = QueryBool(r, "missing")
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = QueryBool(r, "bad")
	assert.Error(t, err)
}
