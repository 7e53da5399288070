// Package observ measures how long the stages of a lint run take.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Timer accumulates stage durations. Stages with the same name are summed
// and keep the position of their first occurrence. A nil *Timer records
// nothing, so callers can pass nil when timings are off.
type Timer struct {
	mu     sync.Mutex
	order  []string
	stages map[string]*stage
	now    func() time.Time
}

type stage struct {
	total time.Duration
	runs  int
	note  string // последняя непустая заметка
}

func NewTimer() *Timer {
	return &Timer{stages: make(map[string]*stage, 4), now: time.Now}
}

// Track starts timing name; the returned func stops it.
//
//	done := timer.Track("parse")
//	defer done("")
func (t *Timer) Track(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	started := t.now()
	return func(note string) {
		t.Add(name, t.now().Sub(started), note)
	}
}

// Add records a finished run of name.
func (t *Timer) Add(name string, d time.Duration, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.stages[name]
	if !ok {
		st = &stage{}
		t.stages[name] = st
		t.order = append(t.order, name)
	}
	st.total += d
	st.runs++
	if note != "" {
		st.note = note
	}
}

// PhaseReport is one stage in a Report.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Runs       int     `json:"runs"`
	Note       string  `json:"note,omitempty"`
}

// Report is a snapshot of a Timer. TotalMS sums the stages, which is more
// than wall time when stages ran in parallel.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var r Report
	var total time.Duration
	for _, name := range t.order {
		st := t.stages[name]
		total += st.total
		r.Phases = append(r.Phases, PhaseReport{
			Name:       name,
			DurationMS: millis(st.total),
			Runs:       st.runs,
			Note:       st.note,
		})
	}
	r.TotalMS = millis(total)
	return r
}

// Summary renders the report as an aligned table for stderr.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		name := p.Name
		if p.Runs > 1 {
			name = fmt.Sprintf("%s ×%d", p.Name, p.Runs)
		}
		fmt.Fprintf(&sb, "  %-20s %7.2f ms", name, p.DurationMS)
		if p.Note != "" {
			fmt.Fprintf(&sb, "  // %s", p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-20s %7.2f ms\n", "total", r.TotalMS)
	return sb.String()
}
