// Package resolver turns assembly identity strings into paths of binaries on disk.
package resolver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/core/ports"
	"go.trai.ch/asmres/internal/engine/probe"
)

// Options tunes a Coordinator.
type Options struct {
	// Extensions are the binary file extensions probed, in order.
	Extensions []string
	// RecomputeTimeout bounds both the wait for a first directory set and each recomputation.
	RecomputeTimeout time.Duration
}

// chainKey marks a context that is already inside Resolve of a given Coordinator.
type chainKey struct {
	c *Coordinator
}

// Coordinator resolves identity strings against the directory set of a workspace.
// It is safe for concurrent use. Close stops its background refresher.
type Coordinator struct {
	workspace ports.Workspace
	native    ports.NativeLoader
	reader    ports.IdentityReader
	prober    *probe.Prober
	trace     ports.TraceSink
	tracer    ports.Tracer
	misses    *NegativeCache
	timeout   time.Duration
	now       func() time.Time

	snapshot  atomic.Pointer[domain.DirectorySet]
	published atomic.Uint64
	kick      chan struct{}
	requests  chan refreshRequest

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewCoordinator creates a Coordinator and starts computing the first directory set.
// native may be nil when the host has no loader of its own.
func NewCoordinator(
	workspace ports.Workspace,
	native ports.NativeLoader,
	reader ports.IdentityReader,
	trace ports.TraceSink,
	tracer ports.Tracer,
	opts Options,
) *Coordinator {
	timeout := opts.RecomputeTimeout
	if timeout <= 0 {
		timeout = domain.DefaultRecomputeTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		workspace: workspace,
		native:    native,
		reader:    reader,
		prober:    probe.New(reader, trace, opts.Extensions),
		trace:     trace,
		tracer:    tracer,
		misses:    NewNegativeCache(),
		timeout:   timeout,
		now:       time.Now,
		kick:      make(chan struct{}, 1),
		requests:  make(chan refreshRequest),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	c.kick <- struct{}{}
	go c.refresh(ctx)

	return c
}

// Resolve returns the path of a binary satisfying identity.
// Only a malformed identity is reported as an error; every other failure means not found.
// A call made with a context that is already inside Resolve of this Coordinator is refused,
// so a loader that resolves dependencies of the returned binary cannot loop.
func (c *Coordinator) Resolve(ctx context.Context, identity string) (string, bool, error) {
	generation := c.misses.Generation()
	if c.misses.IsKnownMissing(identity) {
		c.trace.Tracef("[CACHE] Missing assembly %s", identity)
		return "", false, nil
	}

	c.trace.Tracef("Resolving assembly %s", identity)
	if ctx.Value(chainKey{c}) != nil {
		return "", false, nil
	}
	ctx = context.WithValue(ctx, chainKey{c}, struct{}{})

	ctx, span := c.tracer.Start(ctx, "resolve", ports.WithAttribute("identity", identity))
	defer span.End()

	requested, err := domain.ParseIdentity(identity)
	if err != nil {
		span.RecordError(err)
		return "", false, err
	}

	if path, ok := c.tryNative(ctx, identity); ok {
		span.SetAttribute("source", "native")
		span.SetAttribute("path", path)
		return path, true, nil
	}

	set := c.currentSet(ctx)
	if path, ok := c.search(identity, requested, set); ok {
		span.SetAttribute("source", "probe")
		span.SetAttribute("path", path)
		return path, true, nil
	}

	c.markMissing(identity, generation)
	span.SetAttribute("found", false)
	return "", false, nil
}

// ResolveForInspection resolves identity for metadata inspection only.
// It bypasses the native loader and the re-entrancy guard but shares the negative cache.
func (c *Coordinator) ResolveForInspection(ctx context.Context, identity string) (string, bool, error) {
	generation := c.misses.Generation()
	if c.misses.IsKnownMissing(identity) {
		c.trace.Tracef("[CACHE] Missing assembly %s", identity)
		return "", false, nil
	}

	ctx, span := c.tracer.Start(ctx, "resolve for inspection", ports.WithAttribute("identity", identity))
	defer span.End()

	requested, err := domain.ParseIdentity(identity)
	if err != nil {
		span.RecordError(err)
		return "", false, err
	}

	if path, ok := c.search(identity, requested, c.currentSet(ctx)); ok {
		span.SetAttribute("path", path)
		return path, true, nil
	}

	c.markMissing(identity, generation)
	return "", false, nil
}

// Invalidate drops every cached miss and schedules a recomputation of the directory set.
// It never blocks; invalidations that arrive while one is pending are merged.
func (c *Coordinator) Invalidate(reason domain.InvalidationReason) {
	dropped := c.misses.Clear()
	c.trace.Tracef("Invalidating caches (%s), dropped %d cached misses", reason, dropped)

	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Directories returns the directory set requests are currently served from.
func (c *Coordinator) Directories(ctx context.Context) *domain.DirectorySet {
	return c.currentSet(ctx)
}

// KnownMissing returns the number of identities currently cached as unresolvable.
func (c *Coordinator) KnownMissing() int {
	return c.misses.Len()
}

// Close stops the background refresher and waits for it to exit.
func (c *Coordinator) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		<-c.done
	})
	return nil
}

// markMissing caches a miss unless an invalidation happened while it was being searched.
func (c *Coordinator) markMissing(identity string, generation uint64) {
	if !c.misses.MarkMissingSince(identity, generation) {
		c.trace.Tracef("Not caching miss for %s: invalidated during search", identity)
	}
}

func (c *Coordinator) tryNative(ctx context.Context, identity string) (string, bool) {
	if c.native == nil {
		return "", false
	}
	path, ok, err := c.native.TryLoad(ctx, identity)
	if err != nil {
		c.trace.Tracef("Native loader failed for %s: %v", identity, err)
		return "", false
	}
	return path, ok
}

func (c *Coordinator) search(identity string, requested domain.RequestedIdentity, set *domain.DirectorySet) (string, bool) {
	for _, dir := range set.Dirs {
		c.trace.Tracef("Looking for %s in %s", identity, dir)
		if path, ok := c.prober.FindBinary(dir, requested); ok {
			return path, true
		}
	}
	return "", false
}
