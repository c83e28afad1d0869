package statusline

import (
	"os"
	"strconv"
)

// DefaultWidth is used when the terminal width cannot be determined, e.g.
// output redirected to a file or pipe.
const DefaultWidth = 100

// TerminalWidth reports the width to lay the heartbeat line out against.
// It honors the COLUMNS environment variable that shells export for
// non-interactive children; callers needing the real current terminal size
// set COLUMNS themselves or accept the DefaultWidth fallback.
func TerminalWidth() int {
	if raw := os.Getenv("COLUMNS"); raw != "" {
		if width, err := strconv.Atoi(raw); err == nil && width > 0 {
			return width
		}
	}
	return DefaultWidth
}
