package domain_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/asmres/internal/core/domain"
)

func TestDirectorySet_Fingerprint(t *testing.T) {
	now := time.Now()
	a := domain.NewDirectorySet([]string{"/a", "/c"}, now)
	b := domain.NewDirectorySet([]string{"/a", "/c"}, now.Add(time.Minute))
	c := domain.NewDirectorySet([]string{"/a/c"}, now)

	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
	assert.Equal(t, 2, a.Len())
}

func TestDirectorySet_CopiesInput(t *testing.T) {
	dirs := []string{"/a"}
	set := domain.NewDirectorySet(dirs, time.Time{})
	dirs[0] = "/b"

	assert.Equal(t, []string{"/a"}, set.Dirs)
}

func TestEmptyDirectorySet(t *testing.T) {
	var nilSet *domain.DirectorySet

	assert.Equal(t, 0, domain.EmptyDirectorySet().Len())
	assert.Equal(t, 0, nilSet.Len())
}

func TestWorkspace_Layout(t *testing.T) {
	root := filepath.FromSlash("/work/sln")
	ws := &domain.Workspace{
		Path: filepath.Join(root, domain.WorkFileName),
		Projects: []domain.Project{
			{
				Path: filepath.Join(root, "app", "app.csproj"),
				References: []string{
					filepath.Join(root, "lib", "A.dll"),
					filepath.Join(root, "lib", "B.dll"),
				},
			},
			{
				Path: filepath.Join(root, "tool", "tool.csproj"),
				References: []string{
					filepath.Join(root, "vendor", "C.dll"),
					filepath.Join(root, "lib", "A.dll"),
				},
			},
		},
		Resolver: domain.ResolverSettings{ProbePaths: []string{"bin", filepath.FromSlash("/opt/shared")}},
	}

	assert.Equal(t, root, ws.Root())
	assert.Equal(t, filepath.Join(root, "packages"), ws.PackagesRoot())
	assert.Equal(t, []string{filepath.Join(root, "lib"), filepath.Join(root, "vendor")}, ws.ReferenceDirectories())
	assert.Equal(t, []string{
		ws.Path,
		filepath.Join(root, "app", "app.csproj"),
		filepath.Join(root, "tool", "tool.csproj"),
	}, ws.Files())
	assert.Equal(t, []string{filepath.Join(root, "bin"), filepath.FromSlash("/opt/shared")}, ws.ProbeDirectories())

	ws.Packages = "third_party"
	assert.Equal(t, filepath.Join(root, "third_party"), ws.PackagesRoot())
}

func TestWorkspace_ProbeDirectoriesAreDistinct(t *testing.T) {
	root := filepath.FromSlash("/work/sln")
	ws := &domain.Workspace{
		Path:     filepath.Join(root, domain.WorkFileName),
		Resolver: domain.ResolverSettings{ProbePaths: []string{"bin", "lib", "bin", "./lib/"}},
	}

	assert.Equal(t, []string{filepath.Join(root, "bin"), filepath.Join(root, "lib")}, ws.ProbeDirectories())
}

func TestInvalidationReason_String(t *testing.T) {
	assert.Equal(t, "solution opened", domain.ReasonSolutionOpened.String())
	assert.Equal(t, "build done", domain.ReasonBuildDone.String())
	assert.Equal(t, "unknown", domain.InvalidationReason(99).String())
}

func TestInternedString(t *testing.T) {
	is1 := domain.NewInternedString("LibA")
	is2 := domain.NewInternedString("LibA")

	assert.Equal(t, is1.Value(), is2.Value())
	assert.Equal(t, "LibA", is1.String())
}
