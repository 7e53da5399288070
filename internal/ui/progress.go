package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"awaitlint/internal/driver"
)

// maxRows bounds the file list; busy files are listed first.
const maxRows = 12

type fileState uint8

const (
	stateQueued fileState = iota
	stateLoading
	stateParsing
	stateLinting
	stateDone
	stateCached
	stateFailed
)

var stateNames = [...]string{
	stateQueued:  "queued",
	stateLoading: "loading",
	stateParsing: "parsing",
	stateLinting: "linting",
	stateDone:    "done",
	stateCached:  "cached",
	stateFailed:  "error",
}

func (s fileState) String() string { return stateNames[s] }

func (s fileState) finished() bool { return s >= stateDone }

func (s fileState) busy() bool { return s > stateQueued && s < stateDone }

// weight is how far along the pipeline a file in this state is.
func (s fileState) weight() float64 {
	switch s {
	case stateLoading:
		return 0.1
	case stateParsing:
		return 0.3
	case stateLinting:
		return 0.8
	case stateDone, stateCached, stateFailed:
		return 1
	default:
		return 0
	}
}

func (s fileState) style() lipgloss.Style {
	st := lipgloss.NewStyle()
	switch {
	case s == stateFailed:
		return st.Foreground(lipgloss.Color("1"))
	case s.finished():
		return st.Foreground(lipgloss.Color("2"))
	case s.busy():
		return st.Foreground(lipgloss.Color("6"))
	default:
		return st.Foreground(lipgloss.Color("8"))
	}
}

// stateOf maps a driver event onto a row state; ok is false for events
// that carry no state change.
func stateOf(stage driver.Stage, status driver.Status) (fileState, bool) {
	switch status {
	case driver.StatusQueued:
		return stateQueued, true
	case driver.StatusDone:
		return stateDone, true
	case driver.StatusCached:
		return stateCached, true
	case driver.StatusError:
		return stateFailed, true
	case driver.StatusWorking:
		switch stage {
		case driver.StageLoad:
			return stateLoading, true
		case driver.StageParse:
			return stateParsing, true
		case driver.StageLint:
			return stateLinting, true
		}
	}
	return stateQueued, false
}

type row struct {
	path    string
	state   fileState
	elapsed time.Duration
}

type progressModel struct {
	title  string
	events <-chan driver.Event
	spin   spinner.Model
	bar    progress.Model
	rows   []row
	byPath map[string]int
	phase  string // последнее событие уровня прогона
	width  int
	closed bool
}

type eventMsg driver.Event
type closedMsg struct{}

// NewProgressModel renders per-file lint progress from events and quits
// once the channel is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	spin := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	m := &progressModel{
		title:  title,
		events: events,
		spin:   spin,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		rows:   make([]row, len(files)),
		byPath: make(map[string]int, len(files)),
	}
	for i, f := range files {
		m.rows[i] = row{path: f}
		m.byPath[f] = i
	}
	m.resize(80)
	return m
}

func (m *progressModel) resize(width int) {
	m.width = width
	m.bar.Width = max(width-4, 10)
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.next())
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return closedMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.next())
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.resize(msg.Width)
		}
	case spinner.TickMsg:
		if !m.closed {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	state, ok := stateOf(ev.Stage, ev.Status)
	if ev.File == "" {
		if ok {
			m.phase = state.String()
		}
		return nil
	}
	i, known := m.byPath[ev.File]
	if !known || !ok {
		return nil
	}
	m.rows[i].state = state
	if state.finished() {
		m.rows[i].elapsed = ev.Elapsed
	}
	return m.bar.SetPercent(m.fraction())
}

func (m *progressModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range m.rows {
		sum += r.state.weight()
	}
	return sum / float64(len(m.rows))
}

func (m *progressModel) counts() (finished, failed int) {
	for _, r := range m.rows {
		if r.state.finished() {
			finished++
		}
		if r.state == stateFailed {
			failed++
		}
	}
	return finished, failed
}

// visible picks at most maxRows rows: busy ones, then the rest in input order.
func (m *progressModel) visible() (rows []row, hidden int) {
	if len(m.rows) <= maxRows {
		return m.rows, 0
	}
	rows = make([]row, 0, maxRows)
	for pass := 0; pass < 2 && len(rows) < maxRows; pass++ {
		for _, r := range m.rows {
			if r.state.busy() == (pass == 0) {
				rows = append(rows, r)
				if len(rows) == maxRows {
					break
				}
			}
		}
	}
	return rows, len(m.rows) - len(rows)
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder

	head := m.title
	if m.phase != "" {
		head += " (" + m.phase + ")"
	}
	if m.closed {
		head = "✓ " + head
	} else {
		head = m.spin.View() + " " + head
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(head))
	b.WriteString("\n\n")

	rows, hidden := m.visible()
	nameWidth := max(m.width-22, 20)
	for _, r := range rows {
		st := r.state.style().Render(fmt.Sprintf("%8s", r.state))
		fmt.Fprintf(&b, "  %s %s", st, shortenPath(r.path, nameWidth))
		if r.state.finished() && r.elapsed > 0 {
			fmt.Fprintf(&b, " %s", r.elapsed.Round(time.Millisecond))
		}
		b.WriteByte('\n')
	}
	if hidden > 0 {
		fmt.Fprintf(&b, "  … %d more\n", hidden)
	}

	finished, failed := m.counts()
	fmt.Fprintf(&b, "\n  %d/%d files", finished, len(m.rows))
	if failed > 0 {
		b.WriteString(stateFailed.style().Render(fmt.Sprintf(", %d with errors", failed)))
	}
	b.WriteString("\n")
	if m.closed {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// shortenPath keeps the tail of a path, where the file name is, so that it
// fits width display cells.
func shortenPath(p string, width int) string {
	const ellipsis = "..."
	w := runewidth.StringWidth(p)
	if width <= 0 || w <= width {
		return p
	}
	if width <= len(ellipsis) {
		return runewidth.Truncate(p, width, "")
	}
	return runewidth.TruncateLeft(p, w-width+len(ellipsis), ellipsis)
}
