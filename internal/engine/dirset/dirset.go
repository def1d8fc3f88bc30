// Package dirset computes the ordered list of directories the resolver searches.
package dirset

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Build returns the packages root and the reference directories as absolute paths,
// ordered by path length, without any directory that lies beneath one kept earlier.
// Directories of equal length keep their input order, so the packages root wins ties.
func Build(packagesRoot string, references []string) []string {
	candidates := make([]string, 0, len(references)+1)
	candidates = append(candidates, packagesRoot)
	candidates = append(candidates, references...)

	dirs := make([]string, 0, len(candidates))
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		dirs = append(dirs, abs)
	}

	slices.SortStableFunc(dirs, func(a, b string) int {
		return cmp.Compare(len(a), len(b))
	})

	kept := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		subsumed := slices.ContainsFunc(kept, func(parent string) bool {
			return Contains(parent, dir)
		})
		if !subsumed {
			kept = append(kept, dir)
		}
	}
	return kept
}

// Contains reports whether dir is parent or lies beneath it.
// The comparison ignores case and respects path boundaries, so /a does not contain /ab.
// A plain string prefix test would treat /ab as nested under /a; this one does not.
func Contains(parent, dir string) bool {
	if len(dir) < len(parent) || !strings.EqualFold(dir[:len(parent)], parent) {
		return false
	}
	if len(dir) == len(parent) {
		return true
	}
	if os.IsPathSeparator(parent[len(parent)-1]) {
		return true
	}
	return os.IsPathSeparator(dir[len(parent)])
}
