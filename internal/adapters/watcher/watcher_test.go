package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/asmres/internal/adapters/watcher"
	"go.trai.ch/asmres/internal/core/ports"
	"go.trai.ch/asmres/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newWatcher(t *testing.T) *watcher.Watcher {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

// waitFor reads events until one for path arrives or the deadline passes.
func waitFor(t *testing.T, w *watcher.Watcher, path string) ports.WatchEvent {
	t.Helper()

	found := make(chan ports.WatchEvent, 1)
	go func() {
		for event := range w.Events() {
			if event.Path == path {
				found <- event
				return
			}
		}
	}()

	select {
	case event := <-found:
		return event
	case <-time.After(5 * time.Second):
		t.Fatalf("no event for %s", path)
		return ports.WatchEvent{}
	}
}

func TestWatcher_ReportsNestedFiles(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "App")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	w := newWatcher(t)
	require.NoError(t, w.Start(t.Context(), root))

	path := filepath.Join(nested, "App.csproj")
	require.NoError(t, os.WriteFile(path, []byte("<Project />"), 0o600))

	event := waitFor(t, w, path)
	assert.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, event.Operation)
}

func TestWatcher_AddOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	w := newWatcher(t)
	require.NoError(t, w.Start(t.Context(), root))
	require.NoError(t, w.Add(outside))
	require.NoError(t, w.Add(filepath.Join(outside, "missing")))

	path := filepath.Join(outside, "LibA.dll")
	require.NoError(t, os.WriteFile(path, []byte("MZ"), 0o600))

	waitFor(t, w, path)
}

func TestWatcher_StartTwice(t *testing.T) {
	w := newWatcher(t)
	require.NoError(t, w.Start(t.Context(), t.TempDir()))
	require.Error(t, w.Start(t.Context(), t.TempDir()))
}

func TestWatcher_StopEndsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	w := newWatcher(t)
	require.NoError(t, w.Start(ctx, t.TempDir()))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	done := make(chan struct{})
	go func() {
		for range w.Events() {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("events did not end after Stop")
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w := newWatcher(t)
	require.NoError(t, w.Stop())

	for range w.Events() {
		t.Fatal("unexpected event")
	}
}
