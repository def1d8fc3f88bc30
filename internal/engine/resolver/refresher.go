package resolver

import (
	"context"
	"errors"

	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/core/ports"
	"go.trai.ch/asmres/internal/engine/dirset"
	"go.trai.ch/zerr"
)

// refreshRequest asks the refresher for a directory set published after seen.
type refreshRequest struct {
	seen  uint64
	reply chan *domain.DirectorySet
}

// refresh owns every call into the workspace. It runs until ctx is cancelled.
func (c *Coordinator) refresh(ctx context.Context) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.kick:
			c.recompute(ctx)
		case req := <-c.requests:
			if set := c.snapshot.Load(); set != nil && c.published.Load() > req.seen {
				req.reply <- set
				continue
			}
			req.reply <- c.recompute(ctx)
		}
	}
}

// recompute reads the workspace and publishes a new directory set.
// A failed read keeps the previous set; an unavailable workspace publishes an empty one.
func (c *Coordinator) recompute(ctx context.Context) *domain.DirectorySet {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "recompute directories")
	defer span.End()

	dirs, err := c.collect(ctx)
	if err != nil {
		span.RecordError(err)
		if !errors.Is(err, domain.ErrWorkspaceUnavailable) {
			c.trace.Tracef("Failed to read workspace: %v", err)
			if prev := c.snapshot.Load(); prev != nil {
				return prev
			}
		}
		dirs = nil
	}

	set := domain.NewDirectorySet(dirs, c.now())
	if prev := c.snapshot.Load(); prev == nil || prev.Fingerprint != set.Fingerprint {
		c.trace.Tracef("Directory set updated: %d directories", set.Len())
	}
	c.snapshot.Store(set)
	c.published.Add(1)

	span.SetAttribute("directories", set.Len())
	return set
}

func (c *Coordinator) collect(ctx context.Context) ([]string, error) {
	if snap, ok := c.workspace.(ports.WorkspaceSnapshot); ok {
		root, refs, err := snap.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return dirset.Build(root, refs), nil
	}

	root, err := c.workspace.PackagesRoot(ctx)
	if err != nil {
		return nil, err
	}
	refs, err := c.workspace.ReferenceDirectories(ctx)
	if err != nil {
		return nil, err
	}
	return dirset.Build(root, refs), nil
}

// currentSet returns the published set, waiting a bounded time for the first one.
func (c *Coordinator) currentSet(ctx context.Context) *domain.DirectorySet {
	if set := c.snapshot.Load(); set != nil {
		return set
	}

	set, err := c.awaitSet(ctx)
	if err != nil {
		c.trace.Tracef("Directory set not ready, probing without it: %v", err)
		if set := c.snapshot.Load(); set != nil {
			return set
		}
		return domain.EmptyDirectorySet()
	}
	return set
}

func (c *Coordinator) awaitSet(ctx context.Context) (*domain.DirectorySet, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := refreshRequest{
		seen:  c.published.Load(),
		reply: make(chan *domain.DirectorySet, 1),
	}

	select {
	case c.requests <- req:
	case <-ctx.Done():
		return nil, c.timeoutError(ctx)
	case <-c.done:
		return nil, zerr.New("resolver is closed")
	}

	select {
	case set := <-req.reply:
		return set, nil
	case <-ctx.Done():
		return nil, c.timeoutError(ctx)
	}
}

func (c *Coordinator) timeoutError(ctx context.Context) error {
	return errors.Join(
		domain.ErrRecomputeTimeout,
		zerr.With(zerr.Wrap(ctx.Err(), "waiting for directory set"), "timeout", c.timeout.String()),
	)
}
