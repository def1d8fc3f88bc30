package loader_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/asmres/internal/adapters/clr"
	"go.trai.ch/asmres/internal/adapters/clr/clrtest"
	"go.trai.ch/asmres/internal/adapters/loader"
	"go.trai.ch/asmres/internal/adapters/trace"
	"go.trai.ch/asmres/internal/core/domain"
)

func newProbing(t *testing.T, dirs ...string) *loader.Probing {
	t.Helper()
	sink := trace.NewSink(func(string) {})
	t.Cleanup(func() { _ = sink.Close() })
	return loader.NewProbing(clr.NewReader(), sink, dirs, nil)
}

func TestProbing_TryLoad(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	clrtest.Write(t, filepath.Join(first, "LibA.dll"), clrtest.Assembly{Name: "LibA", Version: [4]uint16{1, 0, 0, 0}})
	want := clrtest.Write(t, filepath.Join(second, "LibA.dll"), clrtest.Assembly{Name: "LibA", Version: [4]uint16{2, 0, 0, 0}})

	p := newProbing(t, first, second)

	path, ok, err := p.TryLoad(t.Context(), "LibA, Version=2.0.0.0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, path)

	path, ok, err = p.TryLoad(t.Context(), "LibA")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(first, "LibA.dll"), path)
}

func TestProbing_TryLoad_DoesNotDescend(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	clrtest.Write(t, filepath.Join(base, "plugins", "LibA.dll"), clrtest.Assembly{Name: "LibA"})

	_, ok, err := newProbing(t, base).TryLoad(t.Context(), "LibA")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProbing_TryLoad_Malformed(t *testing.T) {
	t.Parallel()

	_, ok, err := newProbing(t, t.TempDir()).TryLoad(t.Context(), "LibA, Version=x")
	require.ErrorIs(t, err, domain.ErrMalformedIdentity)
	assert.False(t, ok)
}

func TestProbing_TryLoad_NoDirectories(t *testing.T) {
	t.Parallel()

	_, ok, err := newProbing(t).TryLoad(t.Context(), "not even parsed, Version=x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProbing_TryLoad_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, _, err := newProbing(t, t.TempDir()).TryLoad(ctx, "LibA")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFactory_New(t *testing.T) {
	t.Parallel()

	sink := trace.NewSink(func(string) {})
	t.Cleanup(func() { _ = sink.Close() })
	f := loader.NewFactory(clr.NewReader(), sink)

	assert.Nil(t, f.New(nil, nil))
	assert.NotNil(t, f.New([]string{t.TempDir()}, []string{".dll"}))
}
