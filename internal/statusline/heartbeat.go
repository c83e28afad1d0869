package statusline

import (
	"fmt"
	"strings"
)

// Counts is the per-classification project tally the Scheduler reports at
// each heartbeat tick.
type Counts struct {
	Queued  int
	Running int
	Pass    int
	Fail    int
	Timeout int
}

// Completed is the number of projects that have reached a terminal
// classification (pass, fail, or timeout).
func (c Counts) Completed() int { return c.Pass + c.Fail + c.Timeout }

// Total is every project the Scheduler knows about: still queued, in
// flight, or completed.
func (c Counts) Total() int { return c.Queued + c.Running + c.Completed() }

// Heartbeat renders the single-line progress indicator the Scheduler writes
// to stderr every progress-interval while a run is in flight (§5, §6
// --progress-interval).
type Heartbeat struct {
	theme Theme
	color bool
}

// NewHeartbeat returns a Heartbeat. color controls whether styles are
// applied; callers pass false when NO_COLOR/--no-color is set, matching
// lipgloss's own ASCII-profile fallback so output stays readable either way.
func NewHeartbeat(color bool) *Heartbeat {
	return &Heartbeat{theme: DefaultTheme(), color: color}
}

// segment is one piece of the heartbeat line. Mandatory segments (the
// counts) are always shown; optional segments (the names of currently
// running Projects) are dropped, left to right, once the line would
// otherwise overflow the available width -- the same segment-budget
// technique this codebase's other single-line status display uses.
type segment struct {
	text     string
	optional bool
}

// Render formats one heartbeat line: a progress bar, the queued/running/
// completed(pass/fail/timeout) counts, and the names of Projects currently
// running, trimmed to fit width. width <= 0 falls back to DefaultWidth.
func (h *Heartbeat) Render(counts Counts, runningNames []string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}

	var frac float64
	if total := counts.Total(); total > 0 {
		frac = float64(counts.Completed()) / float64(total)
	}

	countsText := fmt.Sprintf(
		"%d queued, %d running, %d complete (%d pass, %d fail, %d timeout)",
		counts.Queued, counts.Running, counts.Completed(), counts.Pass, counts.Fail, counts.Timeout,
	)

	var segments []segment
	if h.color {
		segments = append(segments, segment{text: h.theme.ProgressBar(frac, 24) + " "})
	}
	segments = append(segments, segment{text: countsText})
	for _, name := range runningNames {
		segments = append(segments, segment{text: " | " + name, optional: true})
	}

	return renderSegments(segments, width)
}

// renderSegments joins every mandatory segment unconditionally, then
// appends optional segments left to right while their cumulative width
// stays within the budget left over after the mandatory segments.
func renderSegments(segments []segment, width int) string {
	mandatoryWidth := 0
	for _, seg := range segments {
		if !seg.optional {
			mandatoryWidth += len([]rune(seg.text))
		}
	}
	optionalBudget := width - mandatoryWidth
	if optionalBudget < 0 {
		optionalBudget = 0
	}

	var sb strings.Builder
	optionalUsed := 0
	for _, seg := range segments {
		w := len([]rune(seg.text))
		if seg.optional {
			if optionalUsed+w > optionalBudget {
				continue
			}
			optionalUsed += w
		}
		sb.WriteString(seg.text)
	}
	return sb.String()
}
