package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picklenerd/counterfeit/pkg/config"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestVersion(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "counterfeit ")
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)

	out, err = runCommand(t, "version", "--json")
	require.NoError(t, err)
	var v VersionOutput
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, runtime.Version(), v.Go)
	assert.NotEmpty(t, v.Version)
}

func TestValidate(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "widgets", "get.json"), `{}`)
	writeFile(t, filepath.Join(base, "widgets", "post_created.json"), `{}`)
	writeFile(t, filepath.Join(base, "widgets", "notes.txt"), `ignored`)
	writeFile(t, filepath.Join(base, "get.json"), `{}`)

	t.Run("valid", func(t *testing.T) {
		out, err := runCommand(t, "validate", "--base-dir", base)
		require.NoError(t, err)
		assert.Contains(t, out, "configuration is valid")
	})

	t.Run("json", func(t *testing.T) {
		out, err := runCommand(t, "validate", "--base-dir", base, "--json")
		require.NoError(t, err)

		var res ValidateResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.True(t, res.Valid)
		assert.Equal(t, 2, res.Directories)
		assert.Equal(t, 3, res.Files)
	})

	t.Run("missing base dir", func(t *testing.T) {
		out, err := runCommand(t, "validate", "--base-dir", filepath.Join(base, "nope"), "--json")
		require.Error(t, err)
		var invalid *errInvalid
		assert.True(t, errors.As(err, &invalid))

		var res ValidateResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.False(t, res.Valid)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "base directory")
	})

	t.Run("bad mutation", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "counterfeit.yaml")
		writeFile(t, cfgPath, "baseDir: "+base+"\nmutations:\n  - type: status\n    status: 201\n    when: \"status +\"\n")

		out, err := runCommand(t, "validate", "--config", cfgPath)
		require.Error(t, err)
		assert.Contains(t, out, "when")
	})

	t.Run("invalid config file", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "counterfeit.json")
		writeFile(t, cfgPath, `{"port": 99999}`)

		_, err := runCommand(t, "validate", "--config", cfgPath)
		require.Error(t, err)
	})
}

func TestConfigShow_Precedence(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "counterfeit.toml")
	writeFile(t, cfgPath, "baseDir = \"fixtures\"\nport = 4000\ncreateMissing = true\nlogLevel = \"warn\"\n")

	t.Setenv(config.EnvPort, "5000")
	t.Setenv(config.EnvLogLevel, "debug")

	out, err := runCommand(t, "config", "show", "--config", cfgPath, "--port", "6000", "--json")
	require.NoError(t, err)

	var cfg config.ServerConfiguration
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "fixtures", cfg.BaseDir)
	assert.True(t, cfg.CreateMissing)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 6000, cfg.Port)
}

func TestConfigShow_Sources(t *testing.T) {
	t.Setenv(config.EnvWatch, "true")

	out, err := runCommand(t, "config", "show", "--create-missing", "--sources")
	require.NoError(t, err)
	assert.Contains(t, out, "createMissing: true")
	assert.Regexp(t, regexp.MustCompile(`createMissing\s+flag`), out)
	assert.Regexp(t, regexp.MustCompile(`watch\s+env`), out)
}

func TestConfigShow_BadFile(t *testing.T) {
	_, err := runCommand(t, "config", "show", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrFileNotFound)
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCommand(t, "frobnicate")
	assert.Error(t, err)
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunServer(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "ping", "get.txt"), "pong")

	cfg := config.DefaultServerConfiguration()
	cfg.BaseDir = base
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.LogLevel = "error"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, &out, cfg, true) }()

	var info startupInfo
	require.Eventually(t, func() bool {
		return json.Unmarshal([]byte(out.String()), &info) == nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, base, info.BaseDir)

	resp, err := http.Get(info.URL + "/ping")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
