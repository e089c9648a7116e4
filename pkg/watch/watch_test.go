package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string) <-chan Event {
	t.Helper()
	events := make(chan Event, 64)
	w := New(root, func(ev Event) { events <- ev }, nil)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return events
}

func waitFor(t *testing.T, events <-chan Event, match func(Event) bool) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if match(ev) {
				return ev
			}
		case <-timeout:
			t.Fatal("timed out waiting for watch event")
			return Event{}
		}
	}
}

func TestWatcher_CreateAndRemove(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "widgets")
	require.NoError(t, os.Mkdir(dir, 0755))

	events := startWatcher(t, root)

	path := filepath.Join(dir, "get_2.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	ev := waitFor(t, events, func(ev Event) bool { return ev.Path == path && ev.Op == OpCreate })
	assert.Equal(t, dir, ev.Dir)

	require.NoError(t, os.Remove(path))
	ev = waitFor(t, events, func(ev Event) bool { return ev.Path == path && ev.Op == OpRemove })
	assert.Equal(t, dir, ev.Dir)
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	root := t.TempDir()
	events := startWatcher(t, root)

	sub := filepath.Join(root, "orders")
	require.NoError(t, os.Mkdir(sub, 0755))
	waitFor(t, events, func(ev Event) bool { return ev.Path == sub && ev.Op == OpCreate })

	path := filepath.Join(sub, "get.json")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	ev := waitFor(t, events, func(ev Event) bool { return ev.Path == path })
	assert.Equal(t, sub, ev.Dir)
}

func TestWatcher_StartMissingRoot(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), nil, nil)
	assert.Error(t, w.Start())
	assert.NoError(t, w.Stop())
}

func TestWatcher_StartStopIdempotent(t *testing.T) {
	w := New(t.TempDir(), nil, nil)
	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
