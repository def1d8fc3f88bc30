package domain

import (
	"path/filepath"
	"time"
)

// Project is a project file of the workspace with the binary references it declares.
type Project struct {
	// Path is the absolute path of the project file.
	Path string
	// References are absolute paths of referenced binaries.
	References []string
}

// ResolverSettings carries the resolver section of the workspace file.
type ResolverSettings struct {
	Extensions       []string
	RecomputeTimeout time.Duration
	ProbePaths       []string
}

// Workspace is a loaded workspace file and its projects.
type Workspace struct {
	// Path is the absolute path of the workspace file.
	Path     string
	Packages string
	Projects []Project
	Resolver ResolverSettings
}

// Root returns the directory that contains the workspace file.
func (w *Workspace) Root() string {
	return filepath.Dir(w.Path)
}

// PackagesRoot returns the absolute package store directory.
func (w *Workspace) PackagesRoot() string {
	if w.Packages == "" {
		return DefaultPackagesRoot(w.Root())
	}
	if filepath.IsAbs(w.Packages) {
		return filepath.Clean(w.Packages)
	}
	return filepath.Join(w.Root(), w.Packages)
}

// ReferenceDirectories returns the distinct parent directories of every reference,
// in project then reference order.
func (w *Workspace) ReferenceDirectories() []string {
	seen := make(map[InternedString]struct{})
	var dirs []string
	for _, p := range w.Projects {
		for _, ref := range p.References {
			dir := NewInternedString(filepath.Dir(ref))
			if _, ok := seen[dir]; ok {
				continue
			}
			seen[dir] = struct{}{}
			dirs = append(dirs, dir.String())
		}
	}
	return dirs
}

// Files returns the workspace file followed by every project file.
func (w *Workspace) Files() []string {
	files := make([]string, 0, len(w.Projects)+1)
	files = append(files, w.Path)
	for _, p := range w.Projects {
		files = append(files, p.Path)
	}
	return files
}

// ProbeDirectories returns the distinct absolute application base directories for the
// native loader, in the order they are listed.
func (w *Workspace) ProbeDirectories() []string {
	seen := make(map[string]struct{}, len(w.Resolver.ProbePaths))
	dirs := make([]string, 0, len(w.Resolver.ProbePaths))
	for _, p := range w.Resolver.ProbePaths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(w.Root(), p)
		}
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		dirs = append(dirs, p)
	}
	return dirs
}
