package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives events. Emit must be safe for concurrent use.
type Tracer interface {
	Emit(ev *Event)
	// Close flushes buffered events and releases the output.
	Close() error
	Level() Level
}

// Enabled reports whether t lets events of scope through.
func Enabled(t Tracer, scope Scope) bool {
	return t != nil && t.Level().ShouldEmit(scope)
}

type nopTracer struct{}

func (nopTracer) Emit(*Event)  {}
func (nopTracer) Close() error { return nil }
func (nopTracer) Level() Level { return LevelOff }

// Nop discards everything; it is what FromContext returns by default.
var Nop Tracer = nopTracer{}

// Config describes where and how to trace.
type Config struct {
	Level  Level
	Format Format // FormatAuto picks by OutputPath extension
	// Output wins over OutputPath. It is never closed.
	Output     io.Writer
	OutputPath string // file path; "" or "-" is stderr
}

// New builds a StreamTracer for cfg, or Nop when the level is off.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}

	format := cfg.Format
	if format == FormatAuto {
		format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".jsonl") {
			format = FormatNDJSON
		}
	}

	out, err := openSink(cfg)
	if err != nil {
		return nil, err
	}
	return newStream(out, cfg.Level, format), nil
}

// sink is the writer behind a StreamTracer plus how to release it.
type sink struct {
	io.Writer
	close func() error
}

func openSink(cfg Config) (sink, error) {
	switch {
	case cfg.Output != nil:
		return sink{Writer: cfg.Output, close: func() error { return nil }}, nil
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		// stderr без буфера: события видны сразу
		return sink{Writer: os.Stderr, close: func() error { return nil }}, nil
	}

	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return sink{}, fmt.Errorf("failed to open trace output: %w", err)
	}
	bw := bufio.NewWriterSize(f, 64<<10)
	return sink{
		Writer: bw,
		close: func() error {
			if err := bw.Flush(); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}, nil
}
