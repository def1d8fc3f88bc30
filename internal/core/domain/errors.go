package domain

import "go.trai.ch/zerr"

var (
	// ErrMalformedIdentity is returned when an assembly identity string cannot be parsed.
	ErrMalformedIdentity = zerr.New("malformed assembly identity")

	// ErrUnreadableBinary is returned when a candidate file carries no readable assembly identity.
	ErrUnreadableBinary = zerr.New("unreadable assembly binary")

	// ErrWorkspaceUnavailable is returned when no workspace is open or it can no longer be read.
	ErrWorkspaceUnavailable = zerr.New("workspace unavailable")

	// ErrRecomputeTimeout is returned when the directory set is not ready within the bounded wait.
	ErrRecomputeTimeout = zerr.New("directory set recompute timed out")

	// ErrWorkspaceNotFound is returned when no workspace file is found walking up from the working directory.
	ErrWorkspaceNotFound = zerr.New("could not find " + WorkFileName)

	// ErrWorkspaceReadFailed is returned when the workspace file cannot be read.
	ErrWorkspaceReadFailed = zerr.New("failed to read workspace file")

	// ErrWorkspaceParseFailed is returned when the workspace file cannot be parsed.
	ErrWorkspaceParseFailed = zerr.New("failed to parse workspace file")

	// ErrUnsupportedVersion is returned when the workspace file declares an unknown schema version.
	ErrUnsupportedVersion = zerr.New("unsupported workspace version")

	// ErrProjectReadFailed is returned when a project file cannot be read.
	ErrProjectReadFailed = zerr.New("failed to read project file")

	// ErrProjectParseFailed is returned when a project file cannot be parsed.
	ErrProjectParseFailed = zerr.New("failed to parse project file")

	// ErrInvalidProjectPattern is returned when a project glob pattern is malformed.
	ErrInvalidProjectPattern = zerr.New("invalid project pattern")

	// ErrInvalidExtension is returned when a configured binary extension does not start with a dot.
	ErrInvalidExtension = zerr.New("binary extension must start with '.'")

	// ErrInvalidTimeout is returned when a recompute timeout is not positive.
	ErrInvalidTimeout = zerr.New("recompute timeout must be positive")

	// ErrNoIdentities is returned when the resolve command is called without identities.
	ErrNoIdentities = zerr.New("no assembly identities specified")

	// ErrUnresolved is returned by the resolve command when at least one identity was not found.
	ErrUnresolved = zerr.New("one or more assemblies could not be resolved")

	// ErrWatcherFailed is returned when the file watcher cannot be started.
	ErrWatcherFailed = zerr.New("failed to start file watcher")
)
