package probe_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/core/ports/mocks"
	"go.trai.ch/asmres/internal/engine/probe"
	"go.uber.org/mock/gomock"
)

type traceRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *traceRecorder) Tracef(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("MZ"), 0o600))
	return path
}

func identity(name string, major uint16) domain.FoundIdentity {
	return domain.FoundIdentity{
		Name:    name,
		Version: domain.NewVersion(major, 0, 0, 0),
		Token:   domain.PublicKeyToken{},
	}
}

func request(t *testing.T, s string) domain.RequestedIdentity {
	t.Helper()
	id, err := domain.ParseIdentity(s)
	require.NoError(t, err)
	return id
}

func TestFindBinary_ParentBeforeChild(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockIdentityReader(ctrl)
	root := t.TempDir()
	top := touch(t, filepath.Join(root, "LibA.dll"))
	touch(t, filepath.Join(root, "nested", "LibA.dll"))

	reader.EXPECT().ReadIdentity(top).Return(identity("LibA", 1), nil)

	p := probe.New(reader, &traceRecorder{}, nil)
	path, ok := p.FindBinary(root, request(t, "LibA"))

	require.True(t, ok)
	assert.Equal(t, top, path)
}

func TestFindBinary_SkipsIncompatibleCandidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockIdentityReader(ctrl)
	root := t.TempDir()
	v1 := touch(t, filepath.Join(root, "a", "LibA.dll"))
	v2 := touch(t, filepath.Join(root, "b", "LibA.dll"))

	gomock.InOrder(
		reader.EXPECT().ReadIdentity(v1).Return(identity("LibA", 1), nil),
		reader.EXPECT().ReadIdentity(v2).Return(identity("LibA", 2), nil),
	)

	p := probe.New(reader, &traceRecorder{}, nil)
	path, ok := p.FindBinary(root, request(t, "LibA, Version=2.0.0.0"))

	require.True(t, ok)
	assert.Equal(t, v2, path)
}

func TestFindBinary_UnreadableFileIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockIdentityReader(ctrl)
	trace := &traceRecorder{}
	root := t.TempDir()
	corrupt := touch(t, filepath.Join(root, "a", "LibA.dll"))
	good := touch(t, filepath.Join(root, "b", "LibA.dll"))

	reader.EXPECT().ReadIdentity(corrupt).Return(domain.FoundIdentity{}, errors.Join(domain.ErrUnreadableBinary, errors.New("bad magic")))
	reader.EXPECT().ReadIdentity(good).Return(identity("LibA", 1), nil)

	p := probe.New(reader, trace, nil)
	path, ok := p.FindBinary(root, request(t, "LibA"))

	require.True(t, ok)
	assert.Equal(t, good, path)
	require.Len(t, trace.lines, 1)
	assert.Contains(t, trace.lines[0], corrupt)
}

func TestFindBinary_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockIdentityReader(ctrl)
	root := t.TempDir()
	touch(t, filepath.Join(root, "Other.dll"))

	p := probe.New(reader, &traceRecorder{}, nil)

	_, ok := p.FindBinary(root, request(t, "LibA"))
	assert.False(t, ok)

	_, ok = p.FindBinary(filepath.Join(root, "missing"), request(t, "LibA"))
	assert.False(t, ok)
}

func TestFindBinary_DirectoryNamedLikeBinaryIsIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockIdentityReader(ctrl)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "LibA.dll"), 0o750))

	p := probe.New(reader, &traceRecorder{}, nil)
	_, ok := p.FindBinary(root, request(t, "LibA"))

	assert.False(t, ok)
}

func TestFindBinary_ConfiguredExtensions(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockIdentityReader(ctrl)
	root := t.TempDir()
	exe := touch(t, filepath.Join(root, "Tool.exe"))

	reader.EXPECT().ReadIdentity(exe).Return(identity("Tool", 1), nil)

	p := probe.New(reader, &traceRecorder{}, []string{".dll", ".exe"})
	path, ok := p.FindBinary(root, request(t, "Tool"))

	require.True(t, ok)
	assert.Equal(t, exe, path)
}

func TestDirectories_Order(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"b/y", "a", "b/x", "c"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0o750))
	}
	touch(t, filepath.Join(root, "file.txt"))

	got := slices.Collect(probe.Directories(root))

	want := []string{
		root,
		filepath.Join(root, "a"),
		filepath.Join(root, "b"),
		filepath.Join(root, "b", "x"),
		filepath.Join(root, "b", "y"),
		filepath.Join(root, "c"),
	}
	assert.Equal(t, want, got)
}

func TestDirectories_SymlinkCycle(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	if err := os.Symlink(root, filepath.Join(sub, "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	got := slices.Collect(probe.Directories(root))

	assert.Equal(t, []string{root, sub}, got)
}

func TestDirectories_FollowsSymlinkedDirectory(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(outside, "lib"), 0o750))
	if err := os.Symlink(outside, filepath.Join(root, "linked")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	got := slices.Collect(probe.Directories(root))

	assert.Equal(t, []string{
		root,
		filepath.Join(root, "linked"),
		filepath.Join(root, "linked", "lib"),
	}, got)
}

func TestBinaries(t *testing.T) {
	root := t.TempDir()
	a := touch(t, filepath.Join(root, "A.dll"))
	b := touch(t, filepath.Join(root, "deep", "B.DLL"))
	touch(t, filepath.Join(root, "notes.txt"))

	p := probe.New(mocks.NewMockIdentityReader(gomock.NewController(t)), &traceRecorder{}, nil)
	got := slices.Collect(p.Binaries(root))

	assert.Equal(t, []string{a, b}, got)
}

func TestFindIn_DoesNotDescend(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockIdentityReader(ctrl)
	root := t.TempDir()
	touch(t, filepath.Join(root, "nested", "LibA.dll"))

	p := probe.New(reader, &traceRecorder{}, nil)
	_, ok := p.FindIn(root, request(t, "LibA"))
	assert.False(t, ok)

	exe := touch(t, filepath.Join(root, "LibA.exe"))
	reader.EXPECT().ReadIdentity(exe).Return(identity("LibA", 1), nil)

	p = probe.New(reader, &traceRecorder{}, []string{".dll", ".exe"})
	path, ok := p.FindIn(root, request(t, "LibA, Version=1.0.0.0"))
	require.True(t, ok)
	assert.Equal(t, exe, path)
}
