package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/asmres/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// enabler is implemented by sinks that can be switched off.
type enabler interface {
	Enabled() bool
}

// Bridge implements sdktrace.SpanProcessor to report finished spans to a TraceSink.
type Bridge struct {
	sink ports.TraceSink
}

// NewBridge returns a new Bridge.
func NewBridge(sink ports.TraceSink) *Bridge {
	return &Bridge{
		sink: sink,
	}
}

// OnStart does nothing; spans are reported once they end.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd traces the span name, duration, attributes and failure.
// Nothing is formatted while the sink reports itself disabled.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.sink == nil || !s.SpanContext().IsValid() {
		return
	}
	if e, ok := b.sink.(enabler); ok && !e.Enabled() {
		return
	}

	var details []string
	for _, kv := range s.Attributes() {
		details = append(details, string(kv.Key)+"="+kv.Value.Emit())
	}
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "failed"
		}
		details = append(details, "error="+desc)
	}

	suffix := ""
	if len(details) > 0 {
		suffix = " [" + strings.Join(details, " ") + "]"
	}
	b.sink.Tracef("Span %s took %s%s", s.Name(), s.EndTime().Sub(s.StartTime()), suffix)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}
