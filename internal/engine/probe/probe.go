// Package probe searches directory trees for binaries that satisfy a requested identity.
package probe

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/core/ports"
)

// Prober looks for <name><ext> in a directory and every directory below it.
type Prober struct {
	reader     ports.IdentityReader
	trace      ports.TraceSink
	extensions []string
}

// New creates a Prober. With no extensions it probes domain.DefaultExtension.
func New(reader ports.IdentityReader, trace ports.TraceSink, extensions []string) *Prober {
	if len(extensions) == 0 {
		extensions = []string{domain.DefaultExtension}
	}
	return &Prober{
		reader:     reader,
		trace:      trace,
		extensions: slices.Clone(extensions),
	}
}

// FindBinary returns the first binary under root that is compatible with requested.
// Directories are visited in pre-order and lexical order. Files whose identity cannot
// be read are traced and skipped.
func (p *Prober) FindBinary(root string, requested domain.RequestedIdentity) (string, bool) {
	for dir := range Directories(root) {
		if path, ok := p.FindIn(dir, requested); ok {
			return path, true
		}
	}
	return "", false
}

// FindIn tests <name><ext> for each extension in dir alone, without descending.
func (p *Prober) FindIn(dir string, requested domain.RequestedIdentity) (string, bool) {
	for _, ext := range p.extensions {
		candidate := filepath.Join(dir, requested.Name+ext)
		if !isRegularFile(candidate) {
			continue
		}
		found, err := p.reader.ReadIdentity(candidate)
		if err != nil {
			p.trace.Tracef("Skipping %s: %v", candidate, err)
			continue
		}
		if domain.IsCompatible(found, requested) {
			return candidate, true
		}
	}
	return "", false
}

// Binaries yields every file under root that carries one of the probed extensions.
func (p *Prober) Binaries(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for dir := range Directories(root) {
			entries, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if !e.Type().IsRegular() || !p.hasExtension(e.Name()) {
					continue
				}
				if !yield(filepath.Join(dir, e.Name())) {
					return
				}
			}
		}
	}
}

func (p *Prober) hasExtension(name string) bool {
	ext := filepath.Ext(name)
	return slices.ContainsFunc(p.extensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

// Directories yields root and every directory below it, parents before children and
// siblings in lexical order. Symbolic links to directories are followed, but a directory
// reached twice through links is visited once. A root that is not a directory yields nothing.
func Directories(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		visited := make(map[string]struct{})

		var walk func(dir string) bool
		walk = func(dir string) bool {
			real, err := filepath.EvalSymlinks(dir)
			if err != nil {
				return true
			}
			if _, seen := visited[real]; seen {
				return true
			}
			visited[real] = struct{}{}

			if !yield(dir) {
				return false
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				return true
			}
			for _, e := range entries {
				child := filepath.Join(dir, e.Name())
				if !isDir(e, child) {
					continue
				}
				if !walk(child) {
					return false
				}
			}
			return true
		}

		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			return
		}
		walk(root)
	}
}

func isDir(e fs.DirEntry, path string) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
