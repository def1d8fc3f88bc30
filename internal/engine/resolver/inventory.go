package resolver

import (
	"context"

	"go.trai.ch/asmres/internal/core/domain"
)

// InventoryEntry is a binary found below the directory set.
type InventoryEntry struct {
	Path     string
	Identity domain.FoundIdentity
}

// Inventory lists every binary below the current directory set.
// When several files carry the same full identity only the first one found is kept.
func (c *Coordinator) Inventory(ctx context.Context) []InventoryEntry {
	ctx, span := c.tracer.Start(ctx, "inventory")
	defer span.End()

	seen := make(map[domain.InternedString]struct{})
	var entries []InventoryEntry

	for _, dir := range c.currentSet(ctx).Dirs {
		for path := range c.prober.Binaries(dir) {
			found, err := c.reader.ReadIdentity(path)
			if err != nil {
				c.trace.Tracef("Skipping %s: %v", path, err)
				continue
			}
			key := domain.NewInternedString(found.String())
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			entries = append(entries, InventoryEntry{Path: path, Identity: found})
		}
	}

	span.SetAttribute("binaries", len(entries))
	return entries
}
