package domain

import (
	"path/filepath"
	"time"
)

const (
	// WorkFileName is the name of the workspace configuration file.
	WorkFileName = "asmres.work.yaml"

	// PackagesDirName is the name of the package store directory next to the workspace file.
	PackagesDirName = "packages"

	// DefaultExtension is the binary extension probed when none is configured.
	DefaultExtension = ".dll"

	// DefaultRecomputeTimeout bounds how long a request waits for a directory set.
	DefaultRecomputeTimeout = 5 * time.Second

	// WorkspaceVersion is the only supported workspace schema version.
	WorkspaceVersion = "1"
)

// DefaultPackagesRoot returns the package store directory for a workspace rooted at dir.
func DefaultPackagesRoot(dir string) string {
	return filepath.Join(dir, PackagesDirName)
}
