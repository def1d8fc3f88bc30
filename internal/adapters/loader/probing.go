// Package loader implements the host loader the resolver asks before searching the workspace.
package loader

import (
	"context"
	"slices"

	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/core/ports"
	"go.trai.ch/asmres/internal/engine/probe"
)

var _ ports.NativeLoader = (*Probing)(nil)

// Probing loads from a fixed list of application base directories.
// Each directory is tested for <name><ext> without descending into subdirectories.
type Probing struct {
	dirs   []string
	prober *probe.Prober
}

// NewProbing creates a Probing loader over dirs.
func NewProbing(reader ports.IdentityReader, trace ports.TraceSink, dirs, extensions []string) *Probing {
	return &Probing{
		dirs:   slices.Clone(dirs),
		prober: probe.New(reader, trace, extensions),
	}
}

// TryLoad returns the first binary in the base directories compatible with identity.
func (p *Probing) TryLoad(ctx context.Context, identity string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if len(p.dirs) == 0 {
		return "", false, nil
	}

	requested, err := domain.ParseIdentity(identity)
	if err != nil {
		return "", false, err
	}

	for _, dir := range p.dirs {
		if path, ok := p.prober.FindIn(dir, requested); ok {
			return path, true, nil
		}
	}
	return "", false, nil
}
