package trace

import (
	"io"
	"sync"
)

// StreamTracer formats each event as it arrives and writes it out.
type StreamTracer struct {
	mu     sync.Mutex
	out    sink
	level  Level
	format Format
	closed bool
}

// NewStreamTracer traces into w, which the tracer never closes.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return newStream(sink{Writer: w, close: func() error { return nil }}, level, format)
}

func newStream(out sink, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{out: out, level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	if ev.Seq == 0 {
		ev.Seq = nextSeq()
	}
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	// трассировка не должна ронять линтер
	_, _ = t.out.Write(data)
}

// Close flushes and releases the output once; later events are dropped.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.out.close()
}

func (t *StreamTracer) Level() Level { return t.level }
