// Package workspace loads workspace and project files and serves them to the resolver.
package workspace

import (
	"encoding/xml"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.WorkspaceLoader = (*Loader)(nil)

// Loader implements ports.WorkspaceLoader using YAML workspace files.
type Loader struct {
	logger ports.Logger
	fs     FileSystem
}

// NewLoader creates a Loader reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return NewLoaderWithFS(logger, NewOSFS())
}

// NewLoaderWithFS creates a Loader reading from fsys.
func NewLoaderWithFS(logger ports.Logger, fsys FileSystem) *Loader {
	return &Loader{logger: logger, fs: fsys}
}

// Discover walks up from cwd and returns the nearest workspace file.
func (l *Loader) Discover(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "cannot resolve working directory"), "cwd", cwd)
	}

	for {
		candidate := filepath.Join(currentDir, domain.WorkFileName)
		if info, err := l.fs.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrWorkspaceNotFound, "workspace discovery failed"), "cwd", cwd)
}

// Load parses the workspace file at path and every project it lists.
func (l *Loader) Load(path string) (*domain.Workspace, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "cannot resolve workspace path"), "path", path)
	}

	var workfile Workfile
	if err := l.readYAML(abs, &workfile, domain.ErrWorkspaceReadFailed, domain.ErrWorkspaceParseFailed); err != nil {
		return nil, err
	}

	if workfile.Version != "" && workfile.Version != domain.WorkspaceVersion {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrUnsupportedVersion, "cannot load workspace"), "version", workfile.Version), "path", abs)
	}

	settings, err := resolverSettings(workfile.Resolver)
	if err != nil {
		return nil, zerr.With(err, "path", abs)
	}

	ws := &domain.Workspace{
		Path:     abs,
		Packages: workfile.Packages,
		Resolver: settings,
	}

	projectPaths, err := l.resolveProjectPaths(ws.Root(), workfile.Projects)
	if err != nil {
		return nil, err
	}

	for _, projectPath := range projectPaths {
		project, ok, err := l.loadProject(projectPath)
		if err != nil {
			return nil, err
		}
		if ok {
			ws.Projects = append(ws.Projects, project)
		}
	}

	return ws, nil
}

func resolverSettings(dto *ResolverDTO) (domain.ResolverSettings, error) {
	if dto == nil {
		return domain.ResolverSettings{}, nil
	}

	for _, ext := range dto.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return domain.ResolverSettings{}, zerr.With(zerr.Wrap(domain.ErrInvalidExtension, "invalid resolver settings"), "extension", ext)
		}
	}
	if dto.RecomputeTimeout < 0 {
		return domain.ResolverSettings{}, zerr.With(zerr.Wrap(domain.ErrInvalidTimeout, "invalid resolver settings"), "recompute_timeout", dto.RecomputeTimeout.String())
	}

	return domain.ResolverSettings{
		Extensions:       slices.Clone(dto.Extensions),
		RecomputeTimeout: dto.RecomputeTimeout,
		ProbePaths:       slices.Clone(dto.ProbePaths),
	}, nil
}

// resolveProjectPaths expands the project patterns into sorted, distinct file paths.
func (l *Loader) resolveProjectPaths(root string, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})

	for _, pattern := range patterns {
		absPattern := filepath.Join(root, filepath.FromSlash(pattern))

		matches, err := l.fs.Glob(absPattern)
		if err != nil {
			return nil, errors.Join(domain.ErrInvalidProjectPattern, zerr.With(err, "pattern", pattern))
		}

		found := 0
		for _, match := range matches {
			info, err := l.fs.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			seen[match] = struct{}{}
			found++
		}
		if found == 0 {
			l.logger.Warn(fmt.Sprintf("project pattern %q matched no files", pattern))
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths, nil
}

// loadProject reads the references of one project file.
// Files of an unknown kind are skipped with a warning.
func (l *Loader) loadProject(path string) (domain.Project, bool, error) {
	var refs []string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var project ProjectFile
		if err := l.readYAML(path, &project, domain.ErrProjectReadFailed, domain.ErrProjectParseFailed); err != nil {
			return domain.Project{}, false, err
		}
		refs = project.References
	case ".csproj", ".vbproj", ".fsproj", ".proj":
		hints, err := l.readMSBuild(path)
		if err != nil {
			return domain.Project{}, false, err
		}
		refs = hints
	default:
		l.logger.Warn(fmt.Sprintf("skipping %s: unsupported project file", path))
		return domain.Project{}, false, nil
	}

	dir := filepath.Dir(path)
	project := domain.Project{Path: path, References: make([]string, 0, len(refs))}
	for _, ref := range refs {
		if ref = strings.TrimSpace(ref); ref == "" {
			continue
		}
		project.References = append(project.References, rebase(dir, ref))
	}
	return project, true, nil
}

func (l *Loader) readMSBuild(path string) ([]string, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, errors.Join(domain.ErrProjectReadFailed, zerr.With(err, "path", path))
	}

	var project msbuildProject
	if err := xml.Unmarshal(data, &project); err != nil {
		return nil, errors.Join(domain.ErrProjectParseFailed, zerr.With(err, "path", path))
	}

	var hints []string
	for _, group := range project.ItemGroups {
		for _, ref := range group.References {
			if ref.HintPath != "" {
				hints = append(hints, ref.HintPath)
			}
		}
	}
	return hints, nil
}

func (l *Loader) readYAML(path string, target any, readErr, parseErr error) error {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return errors.Join(readErr, zerr.With(err, "path", path))
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return errors.Join(parseErr, zerr.With(err, "path", path))
	}
	return nil
}

// rebase makes a reference path absolute relative to dir, accepting either separator.
func rebase(dir, ref string) string {
	ref = filepath.FromSlash(strings.ReplaceAll(ref, `\`, "/"))
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(dir, ref)
}
