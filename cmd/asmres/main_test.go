package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/asmres/internal/adapters/clr"
	"go.trai.ch/asmres/internal/adapters/loader"
	"go.trai.ch/asmres/internal/adapters/telemetry"
	"go.trai.ch/asmres/internal/adapters/trace"
	"go.trai.ch/asmres/internal/adapters/watcher"
	"go.trai.ch/asmres/internal/adapters/workspace"
	"go.trai.ch/asmres/internal/app"
	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/core/ports/mocks"
	"go.trai.ch/asmres/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

func newProvider(t *testing.T) (ComponentProvider, *mocks.MockLogger, *bool) {
	t.Helper()

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	sink := trace.NewSink(log.Info)
	reader := clr.NewReader()

	application := app.New(
		workspace.NewLoader(log),
		resolver.NewFactory(reader, sink, telemetry.NewNoOpTracer()),
		loader.NewFactory(reader, sink),
		watcher.NewFactory(log),
		log,
		sink,
	)

	cleaned := false
	provider := func(_ context.Context) (*app.Components, func(), error) {
		c := &app.Components{App: application, Logger: log, Trace: sink}
		return c, func() {
			cleaned = true
			_ = c.Close()
		}, nil
	}
	return provider, log, &cleaned
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	provider, _, cleaned := newProvider(t)

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, strings.NewReader(""), stdout, new(bytes.Buffer), provider)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "asmres version")
	assert.True(t, *cleaned)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, strings.NewReader(""), new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that command failures are logged and return 1.
func TestRun_ExecutionError(t *testing.T) {
	provider, log, _ := newProvider(t)

	missing := filepath.Join(t.TempDir(), domain.WorkFileName)
	log.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrWorkspaceReadFailed)
	})

	exitCode := run(context.Background(), []string{"dirs", "-w", missing},
		strings.NewReader(""), new(bytes.Buffer), new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_UnresolvedIsNotLogged verifies that a miss sets the exit code without an error log.
func TestRun_UnresolvedIsNotLogged(t *testing.T) {
	provider, log, _ := newProvider(t)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"resolve", "LibA", "-w", writeEmptyWorkspace(t)},
		strings.NewReader(""), stdout, new(bytes.Buffer), provider)

	assert.Equal(t, 1, exitCode)
	assert.Equal(t, "LibA\tnot found\n", stdout.String())
}

func writeEmptyWorkspace(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), domain.WorkFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\n"), 0o600))
	return path
}
