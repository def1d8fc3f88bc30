package app

import (
	"path/filepath"
	"strings"

	"go.trai.ch/asmres/internal/core/domain"
	"go.trai.ch/asmres/internal/core/ports"
)

// projectExtensions are the project file kinds a workspace can list.
var projectExtensions = map[string]bool{
	".csproj": true,
	".vbproj": true,
	".fsproj": true,
	".proj":   true,
	".yaml":   true,
	".yml":    true,
}

// classifier maps file changes to the invalidation they call for.
type classifier struct {
	workfile   string
	projects   map[string]bool
	extensions []string
}

func newClassifier(ws *domain.Workspace, extensions []string) *classifier {
	c := &classifier{
		projects:   make(map[string]bool),
		extensions: extensions,
	}
	if ws == nil {
		return c
	}
	c.workfile = ws.Path
	for _, p := range ws.Projects {
		c.projects[p.Path] = true
	}
	return c
}

// reason returns the invalidation event calls for. It reports false for changes the
// resolver does not care about.
func (c *classifier) reason(event ports.WatchEvent) (domain.InvalidationReason, bool) {
	path := filepath.Clean(event.Path)
	created := event.Operation == ports.OpCreate

	switch {
	case c.workfile != "" && path == c.workfile:
		if created {
			return domain.ReasonSolutionOpened, true
		}
		return domain.ReasonProjectAdded, true
	case c.projects[path]:
		if created {
			return domain.ReasonReferenceAdded, true
		}
		return domain.ReasonReferenceChanged, true
	case created && projectExtensions[strings.ToLower(filepath.Ext(path))]:
		return domain.ReasonReferenceAdded, true
	case c.isBinary(path) && event.Operation != ports.OpRemove:
		return domain.ReasonBuildDone, true
	}
	return 0, false
}

// batch returns the most significant reason among events.
func (c *classifier) batch(events []ports.WatchEvent) (domain.InvalidationReason, bool) {
	var (
		best  domain.InvalidationReason
		found bool
	)
	for _, event := range events {
		r, ok := c.reason(event)
		if !ok {
			continue
		}
		if !found || r < best {
			best = r
			found = true
		}
	}
	return best, found
}

func (c *classifier) isBinary(path string) bool {
	for _, ext := range c.extensions {
		if strings.EqualFold(filepath.Ext(path), ext) {
			return true
		}
	}
	return false
}
