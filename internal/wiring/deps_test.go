package wiring_test

import (
	"testing"

	"github.com/grindlemire/graft"
	_ "go.trai.ch/asmres/internal/wiring"
)

// TestGraftDependencies checks that every node declaring a dependency uses it and every
// used dependency is declared.
func TestGraftDependencies(t *testing.T) {
	// graft.AssertDepsValid derives the expected node ID from the package of the type passed
	// to graft.Dep. Ports such as ports.Logger and ports.Tracer all live in package ports,
	// so the check cannot tell their nodes apart.
	t.Skip("graft.AssertDepsValid cannot map shared ports interfaces to node IDs")
	graft.AssertDepsValid(t, "..")
}
