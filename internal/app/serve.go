package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.trai.ch/asmres/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/core/ports"
	"go.trai.ch/zerr"
)

// Serve keeps a session open, reading one identity per line from in and writing one
// result line per request to out. Workspace changes invalidate the resolver while it runs.
// Changes still waiting in the debounce window are applied before a request is answered.
// It returns when in is exhausted or ctx is cancelled.
func (a *App) Serve(ctx context.Context, in io.Reader, out io.Writer, opts Options) error {
	s, err := a.open(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := a.watchers.New()
	if err != nil {
		return errors.Join(domain.ErrWatcherFailed, err)
	}
	defer func() { _ = w.Stop() }()

	if err := w.Start(ctx, s.root); err != nil {
		return errors.Join(domain.ErrWatcherFailed, err)
	}

	inv := &invalidator{app: a, session: s, watcher: w, classes: newClassifier(s.workspace, s.extensions)}
	inv.watchDirectories(s.workspace)

	debouncer := watcher.NewDebouncer(a.debounce, func(events []ports.WatchEvent) {
		inv.apply(ctx, events)
	})
	go func() {
		for event := range w.Events() {
			debouncer.Add(event)
		}
	}()

	a.trace.Tracef("Serving %s", s.root)

	lines := readLines(ctx, in)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			debouncer.Flush()
			path, found, err := s.coordinator.Resolve(ctx, line)
			result := Result{Identity: line, Path: path, Found: found, Err: err}
			if _, err := fmt.Fprintln(out, result.String()); err != nil {
				return zerr.Wrap(err, "cannot write result")
			}
		}
	}
}

// invalidator turns batches of file changes into Coordinator invalidations.
type invalidator struct {
	app     *App
	session *session
	watcher ports.Watcher

	mu      sync.Mutex
	classes *classifier
}

func (inv *invalidator) apply(ctx context.Context, events []ports.WatchEvent) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	reason, ok := inv.classes.batch(events)
	if !ok {
		return
	}
	inv.session.coordinator.Invalidate(reason)

	if reason == domain.ReasonBuildDone {
		return
	}

	ws, err := inv.session.live.Load(ctx)
	if err != nil {
		inv.app.trace.Tracef("Cannot reload workspace after change: %v", err)
		return
	}
	inv.classes = newClassifier(ws, inv.session.extensions)
	inv.watchDirectories(ws)
}

// watchDirectories adds the directories of ws that may lie outside the watched root.
func (inv *invalidator) watchDirectories(ws *domain.Workspace) {
	if ws == nil {
		return
	}
	dirs := append([]string{ws.PackagesRoot()}, ws.ReferenceDirectories()...)
	dirs = append(dirs, ws.ProbeDirectories()...)
	for _, dir := range dirs {
		if err := inv.watcher.Add(dir); err != nil {
			inv.app.trace.Tracef("Cannot watch %s: %v", dir, err)
		}
	}
}

// readLines delivers the non-empty trimmed lines of r until it is exhausted or ctx ends.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
