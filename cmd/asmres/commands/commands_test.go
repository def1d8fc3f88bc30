package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/asmres/cmd/asmres/commands"
	"go.trai.ch/asmres/internal/app"
	"go.trai.ch/asmres/internal/build"
	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/engine/resolver"
)

type mockApp struct {
	resolveFunc func(ctx context.Context, identities []string, opts app.Options) ([]app.Result, error)
	dirsFunc    func(ctx context.Context, opts app.Options) (*domain.DirectorySet, error)
	scanFunc    func(ctx context.Context, opts app.Options) ([]resolver.InventoryEntry, error)
	serveFunc   func(ctx context.Context, in io.Reader, out io.Writer, opts app.Options) error
}

func (m *mockApp) Resolve(ctx context.Context, identities []string, opts app.Options) ([]app.Result, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, identities, opts)
	}
	return nil, nil
}

func (m *mockApp) Dirs(ctx context.Context, opts app.Options) (*domain.DirectorySet, error) {
	if m.dirsFunc != nil {
		return m.dirsFunc(ctx, opts)
	}
	return domain.EmptyDirectorySet(), nil
}

func (m *mockApp) Scan(ctx context.Context, opts app.Options) ([]resolver.InventoryEntry, error) {
	if m.scanFunc != nil {
		return m.scanFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockApp) Serve(ctx context.Context, in io.Reader, out io.Writer, opts app.Options) error {
	if m.serveFunc != nil {
		return m.serveFunc(ctx, in, out, opts)
	}
	return nil
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a)
	cli.SetArgs(args)
	out := new(bytes.Buffer)
	cli.SetOutput(out, new(bytes.Buffer))
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestCommands_Resolve(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.Options
		var identities []string

		mock := &mockApp{
			resolveFunc: func(_ context.Context, ids []string, opts app.Options) ([]app.Result, error) {
				captured = opts
				identities = ids
				return []app.Result{{Identity: ids[0], Path: "/pkgs/LibA.dll", Found: true}}, nil
			},
		}

		out, err := execute(t, mock, "resolve", "LibA, Version=1.0.0.0",
			"-w", "/ws/asmres.work.yaml", "-v", "--json-log", "--timeout", "2s")
		require.NoError(t, err)

		assert.Equal(t, []string{"LibA, Version=1.0.0.0"}, identities)
		assert.Equal(t, app.Options{
			Workspace: "/ws/asmres.work.yaml",
			Verbose:   true,
			JSONLog:   true,
			Timeout:   2 * time.Second,
		}, captured)
		assert.Equal(t, "LibA, Version=1.0.0.0\t/pkgs/LibA.dll\n", out)
	})

	t.Run("inspect flag", func(t *testing.T) {
		var captured app.Options
		mock := &mockApp{
			resolveFunc: func(_ context.Context, ids []string, opts app.Options) ([]app.Result, error) {
				captured = opts
				return []app.Result{{Identity: ids[0], Path: "/lib/LibA.dll", Found: true}}, nil
			},
		}

		_, err := execute(t, mock, "resolve", "--inspect", "LibA")
		require.NoError(t, err)
		assert.True(t, captured.Inspect)
	})

	t.Run("reports unresolved identities", func(t *testing.T) {
		mock := &mockApp{
			resolveFunc: func(_ context.Context, ids []string, _ app.Options) ([]app.Result, error) {
				return []app.Result{
					{Identity: ids[0], Path: "/lib/LibA.dll", Found: true},
					{Identity: ids[1]},
				}, nil
			},
		}

		out, err := execute(t, mock, "resolve", "LibA", "LibB")
		require.ErrorIs(t, err, domain.ErrUnresolved)
		assert.Equal(t, "LibA\t/lib/LibA.dll\nLibB\tnot found\n", out)
	})

	t.Run("returns error on app failure", func(t *testing.T) {
		mock := &mockApp{
			resolveFunc: func(context.Context, []string, app.Options) ([]app.Result, error) {
				return nil, errors.New("simulated error")
			},
		}

		_, err := execute(t, mock, "resolve", "LibA")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("shows usage when no identities provided", func(t *testing.T) {
		mock := &mockApp{
			resolveFunc: func(context.Context, []string, app.Options) ([]app.Result, error) {
				panic("should not be called")
			},
		}

		out, err := execute(t, mock, "resolve")
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
	})
}

func TestCommands_Dirs(t *testing.T) {
	mock := &mockApp{
		dirsFunc: func(context.Context, app.Options) (*domain.DirectorySet, error) {
			return domain.NewDirectorySet([]string{"/ws/lib", "/ws/packages"}, time.Time{}), nil
		},
	}

	out, err := execute(t, mock, "dirs")
	require.NoError(t, err)
	assert.Equal(t, "/ws/lib\n/ws/packages\n", out)
}

func TestCommands_Scan(t *testing.T) {
	mock := &mockApp{
		scanFunc: func(context.Context, app.Options) ([]resolver.InventoryEntry, error) {
			return []resolver.InventoryEntry{{
				Path: "/ws/lib/LibA.dll",
				Identity: domain.FoundIdentity{
					Name:    "LibA",
					Version: domain.NewVersion(1, 0, 0, 0),
					Culture: domain.NeutralCulture,
					Token:   domain.PublicKeyToken{},
				},
			}}, nil
		},
	}

	out, err := execute(t, mock, "scan")
	require.NoError(t, err)
	assert.Equal(t, "LibA, Version=1.0.0.0, Culture=neutral, PublicKeyToken=null\t/ws/lib/LibA.dll\n", out)
}

func TestCommands_Serve(t *testing.T) {
	var got string
	mock := &mockApp{
		serveFunc: func(_ context.Context, in io.Reader, out io.Writer, _ app.Options) error {
			data, err := io.ReadAll(in)
			if err != nil {
				return err
			}
			got = string(data)
			_, err = io.WriteString(out, "served\n")
			return err
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"serve"})
	cli.SetInput(bytes.NewBufferString("LibA\n"))
	out := new(bytes.Buffer)
	cli.SetOutput(out, new(bytes.Buffer))

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "LibA\n", got)
	assert.Equal(t, "served\n", out.String())
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)

	expected := "asmres version " + build.Version + " (commit: " + build.Commit + ", date: " + build.Date + ")\n"
	assert.Equal(t, expected, out)
}

func TestCommands_VersionFlagLeavesVerboseShorthand(t *testing.T) {
	out, err := execute(t, &mockApp{}, "--version")
	require.NoError(t, err)
	assert.Equal(t, "asmres version "+build.Version+" (commit: "+build.Commit+", date: "+build.Date+")\n", out)

	var captured app.Options
	mock := &mockApp{
		dirsFunc: func(_ context.Context, opts app.Options) (*domain.DirectorySet, error) {
			captured = opts
			return domain.EmptyDirectorySet(), nil
		},
	}
	_, err = execute(t, mock, "dirs", "-v")
	require.NoError(t, err)
	assert.True(t, captured.Verbose)
}

func TestCommands_RejectsExtraArgs(t *testing.T) {
	_, err := execute(t, &mockApp{}, "dirs", "extra")
	require.Error(t, err)
}
