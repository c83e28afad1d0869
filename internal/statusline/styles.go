// Package statusline renders the single-line heartbeat the Scheduler prints
// while a run is in flight, and the small set of styles the Reporter reuses
// for its terminal summary. It carries no orchestration logic of its own.
package statusline

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors used across the heartbeat and summary output. Adaptive so the same
// binary looks right on light and dark terminal backgrounds.
var (
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7B78FF"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// Theme holds the Lipgloss styles the heartbeat and Reporter share.
type Theme struct {
	Running   lipgloss.Style
	Passed    lipgloss.Style
	Failed    lipgloss.Style
	Skipped   lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Separator lipgloss.Style
	Bar       lipgloss.Style
	BarEmpty  lipgloss.Style
}

// DefaultTheme returns the styles used by the heartbeat renderer and the
// terminal Reporter when color output is enabled.
func DefaultTheme() Theme {
	return Theme{
		Running:   lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
		Passed:    lipgloss.NewStyle().Foreground(ColorSuccess),
		Failed:    lipgloss.NewStyle().Bold(true).Foreground(ColorError),
		Skipped:   lipgloss.NewStyle().Foreground(ColorMuted),
		Label:     lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
		Value:     lipgloss.NewStyle().Foreground(ColorMuted),
		Separator: lipgloss.NewStyle().Foreground(ColorMuted),
		Bar:       lipgloss.NewStyle().Foreground(ColorAccent),
		BarEmpty:  lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// State is a coarse project/step state used only to pick a glyph and style;
// it intentionally does not reuse pipeline's outcome types so this package
// stays free of orchestration dependencies.
type State int

const (
	StateRunning State = iota
	StatePassed
	StateFailed
	StateSkipped
)

// Glyph returns a styled single-character indicator for state.
func (t Theme) Glyph(s State) string {
	switch s {
	case StateRunning:
		return t.Running.Render("●")
	case StatePassed:
		return t.Passed.Render("✓")
	case StateFailed:
		return t.Failed.Render("✗")
	default:
		return t.Skipped.Render("○")
	}
}

// ProgressBar renders a text bar of the given width of full blocks/light
// shade cells, filled clamped to [0,1].
func (t Theme) ProgressBar(filled float64, width int) string {
	if width <= 0 {
		return ""
	}
	if filled < 0 {
		filled = 0
	}
	if filled > 1 {
		filled = 1
	}
	full := int(filled * float64(width))
	empty := width - full
	var sb strings.Builder
	if full > 0 {
		sb.WriteString(t.Bar.Render(strings.Repeat("█", full)))
	}
	if empty > 0 {
		sb.WriteString(t.BarEmpty.Render(strings.Repeat("░", empty)))
	}
	return sb.String()
}
