package ports

// TraceSink receives human readable diagnostic lines from the resolver.
//
//go:generate mockgen -source=trace.go -destination=mocks/mock_trace.go -package=mocks
type TraceSink interface {
	// Tracef enqueues a formatted line. It never blocks the caller and preserves
	// the order in which lines were enqueued.
	Tracef(format string, args ...any)
}
