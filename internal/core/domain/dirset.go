package domain

import (
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DirectorySet is an immutable, ordered list of directories to probe.
// Callers must not modify Dirs.
type DirectorySet struct {
	Dirs []string
	// Fingerprint identifies the content of Dirs, so unchanged recomputations can be spotted.
	Fingerprint uint64
	ComputedAt  time.Time
}

// NewDirectorySet builds a set over a copy of dirs.
func NewDirectorySet(dirs []string, computedAt time.Time) *DirectorySet {
	dirs = slices.Clone(dirs)
	return &DirectorySet{
		Dirs:        dirs,
		Fingerprint: fingerprint(dirs),
		ComputedAt:  computedAt,
	}
}

// EmptyDirectorySet returns a set with no directories.
func EmptyDirectorySet() *DirectorySet {
	return NewDirectorySet(nil, time.Time{})
}

// Len returns the number of directories in the set.
func (s *DirectorySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Dirs)
}

func fingerprint(dirs []string) uint64 {
	d := xxhash.New()
	for _, dir := range dirs {
		_, _ = d.WriteString(dir)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}
