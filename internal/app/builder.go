package app

import "go.trai.ch/asmres/internal/core/ports"

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
	// Trace is drained by Close. It may be nil.
	Trace interface{ Close() error }
}

// Close flushes pending trace lines.
func (c *Components) Close() error {
	if c.Trace == nil {
		return nil
	}
	return c.Trace.Close()
}
