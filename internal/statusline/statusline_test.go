package statusline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar_ClampsFraction(t *testing.T) {
	t.Parallel()
	theme := DefaultTheme()
	assert.Equal(t, theme.ProgressBar(0, 10), theme.ProgressBar(-1, 10))
	assert.Equal(t, theme.ProgressBar(1, 10), theme.ProgressBar(2, 10))
}

func TestProgressBar_ZeroWidthIsEmpty(t *testing.T) {
	t.Parallel()
	theme := DefaultTheme()
	assert.Empty(t, theme.ProgressBar(0.5, 0))
}

func TestGlyph_DistinctPerState(t *testing.T) {
	t.Parallel()
	theme := DefaultTheme()
	seen := map[string]bool{}
	for _, s := range []State{StateRunning, StatePassed, StateFailed, StateSkipped} {
		g := theme.Glyph(s)
		assert.False(t, seen[g], "duplicate glyph for state %v", s)
		seen[g] = true
	}
}

func TestHeartbeat_Render_NoColorOmitsBarButKeepsCounts(t *testing.T) {
	t.Parallel()
	hb := NewHeartbeat(false)
	line := hb.Render(Counts{Queued: 5, Running: 2, Pass: 2, Fail: 1}, nil, 0)
	assert.Contains(t, line, "5 queued")
	assert.Contains(t, line, "2 running")
	assert.Contains(t, line, "3 complete")
	assert.Contains(t, line, "2 pass")
	assert.Contains(t, line, "1 fail")
	assert.False(t, strings.ContainsAny(line, "█░"))
}

func TestHeartbeat_Render_ZeroTotalDoesNotDivideByZero(t *testing.T) {
	t.Parallel()
	hb := NewHeartbeat(false)
	assert.NotPanics(t, func() {
		hb.Render(Counts{}, nil, 0)
	})
}

func TestHeartbeat_Render_ColorIncludesBarCharacters(t *testing.T) {
	t.Parallel()
	hb := NewHeartbeat(true)
	line := hb.Render(Counts{Queued: 4, Running: 1, Pass: 5}, nil, 0)
	assert.True(t, strings.ContainsAny(line, "█░"))
}

func TestHeartbeat_Render_IncludesRunningProjectNames(t *testing.T) {
	t.Parallel()
	hb := NewHeartbeat(false)
	line := hb.Render(Counts{Running: 2}, []string{"widget", "gadget"}, 200)
	assert.Contains(t, line, "widget")
	assert.Contains(t, line, "gadget")
}

func TestHeartbeat_Render_TrimsRunningNamesToWidth(t *testing.T) {
	t.Parallel()
	hb := NewHeartbeat(false)
	line := hb.Render(Counts{Running: 2}, []string{"widget", "gadget"}, 70)
	assert.Contains(t, line, "widget")
	assert.NotContains(t, line, "gadget")
}
