package domain

// InvalidationReason names the workspace event that made cached state stale.
type InvalidationReason uint8

const (
	// ReasonSolutionOpened is raised when a workspace is opened or reopened.
	ReasonSolutionOpened InvalidationReason = iota
	// ReasonProjectAdded is raised when the project list of the workspace changes.
	ReasonProjectAdded
	// ReasonReferenceAdded is raised when a project file appears.
	ReasonReferenceAdded
	// ReasonReferenceChanged is raised when a project file is modified or removed.
	ReasonReferenceChanged
	// ReasonBuildDone is raised when a build produced new binaries.
	ReasonBuildDone
)

var reasonNames = [...]string{
	ReasonSolutionOpened:   "solution opened",
	ReasonProjectAdded:     "project added",
	ReasonReferenceAdded:   "reference added",
	ReasonReferenceChanged: "reference changed",
	ReasonBuildDone:        "build done",
}

// String returns a human readable name.
func (r InvalidationReason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}
