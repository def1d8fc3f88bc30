package trace_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/asmres/internal/adapters/trace"
)

type collector struct {
	mu    sync.Mutex
	lines []string
}

func (c *collector) emit(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

func (c *collector) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func TestSink_DisabledDropsLines(t *testing.T) {
	t.Parallel()

	c := &collector{}
	sink := trace.NewSink(c.emit)

	sink.Tracef("Resolving assembly %s", "LibA")
	require.NoError(t, sink.Close())

	assert.Empty(t, c.Lines())
	assert.False(t, sink.Enabled())
}

func TestSink_PreservesOrder(t *testing.T) {
	t.Parallel()

	c := &collector{}
	sink := trace.NewSink(c.emit)
	sink.SetEnabled(true)

	want := make([]string, 0, 500)
	for i := range 500 {
		sink.Tracef("line %d", i)
		want = append(want, fmt.Sprintf("line %d", i))
	}
	require.NoError(t, sink.Close())

	assert.Equal(t, want, c.Lines())
}

func TestSink_DoesNotBlockOnSlowConsumer(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var emitted []string
	sink := trace.NewSink(func(line string) {
		<-release
		emitted = append(emitted, line)
	})
	sink.SetEnabled(true)

	for i := range 100 {
		sink.Tracef("line %d", i)
	}

	close(release)
	require.NoError(t, sink.Close())
	assert.Len(t, emitted, 100)
}

func TestSink_ConcurrentWriters(t *testing.T) {
	t.Parallel()

	c := &collector{}
	sink := trace.NewSink(c.emit)
	sink.SetEnabled(true)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Go(func() {
			for i := range 50 {
				sink.Tracef("writer %d line %d", w, i)
			}
		})
	}
	wg.Wait()
	require.NoError(t, sink.Close())

	assert.Len(t, c.Lines(), 8*50)
}

func TestSink_TraceAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	c := &collector{}
	sink := trace.NewSink(c.emit)
	sink.SetEnabled(true)

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())
	sink.Tracef("late")

	assert.Empty(t, c.Lines())
}
