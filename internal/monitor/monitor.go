// Package monitor prints a live, styled log of gestures, actions and mode
// changes to a terminal.
package monitor

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/PixPMusic/gopher-gesture/internal/engine"
	"github.com/PixPMusic/gopher-gesture/internal/event"
)

var (
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	gestureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// Monitor writes one line per observed event. It is safe for concurrent use.
type Monitor struct {
	mu  sync.Mutex
	out io.Writer

	// ShowRaw includes pad_pressed and pad_released gestures, which are
	// noisy on busy controllers
	ShowRaw bool
}

// New creates a monitor writing to out
func New(out io.Writer) *Monitor {
	return &Monitor{out: out}
}

func (m *Monitor) println(t time.Time, line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintln(m.out, timeStyle.Render(t.Format("15:04:05.000"))+" "+line)
}

// Gesture prints a recognized gesture
func (m *Monitor) Gesture(ev event.ProcessedEvent) {
	if !m.ShowRaw && (ev.Type == event.PadPressed || ev.Type == event.PadReleased) {
		return
	}
	m.println(ev.Time, gestureStyle.Render(ev.String()))
}

// Action prints the outcome of an executed mapping
func (m *Monitor) Action(r engine.ActionReport) {
	status := okStyle.Render("ok")
	if !r.Result.OK() {
		status = failStyle.Render("failed: " + r.Result.Err.Error())
	}
	line := fmt.Sprintf("%s %s %s %s",
		labelStyle.Render(r.Mapping.Label()),
		mutedStyle.Render(fmt.Sprintf("[%s mode=%d %s]", r.Scope, r.Mode, r.Latency.Round(time.Microsecond))),
		mutedStyle.Render("->"),
		status)
	m.println(r.Gesture.Time, line)
}

// ModeChange prints a mode switch in the mode's color
func (m *Monitor) ModeChange(at time.Time, name, color string) {
	style := labelStyle
	if color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	m.println(at, "mode "+style.Render(name))
}

// Summary prints the engine counters in a box
func (m *Monitor) Summary(s engine.Stats) {
	rows := []string{
		labelStyle.Render("gopher-gesture") + mutedStyle.Render(" "+s.State.String()),
		fmt.Sprintf("events   %d received, %d processed, %d dropped, %d filtered",
			s.EventsReceived, s.EventsProcessed, s.EventsDropped, s.EventsFiltered),
		fmt.Sprintf("gestures %d (%d unmatched)", s.Gestures, s.Unmatched),
		fmt.Sprintf("actions  %d ok, %d failed", s.ActionsExecuted-s.ActionsFailed, s.ActionsFailed),
		fmt.Sprintf("modes    %d changes, %d reloads", s.ModeChanges, s.Reloads),
		fmt.Sprintf("latency  %s avg, up %s", s.AvgLatency.Round(time.Microsecond), s.Uptime.Round(time.Second)),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintln(m.out, boxStyle.Render(strings.Join(rows, "\n")))
}
