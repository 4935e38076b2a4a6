package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// clockGlyphs is a three-row block font for the remaining time.
var clockGlyphs = map[rune][3]string{
	'0': {"█▀█", "█ █", "▀▀▀"},
	'1': {"▀█ ", " █ ", "▀▀▀"},
	'2': {"▀▀█", "█▀▀", "▀▀▀"},
	'3': {"▀▀█", " ▀█", "▀▀▀"},
	'4': {"█ █", "▀▀█", "  ▀"},
	'5': {"█▀▀", "▀▀█", "▀▀▀"},
	'6': {"█▀▀", "█▀█", "▀▀▀"},
	'7': {"▀▀█", "  █", "  ▀"},
	'8': {"█▀█", "█▀█", "▀▀▀"},
	'9': {"█▀█", "▀▀█", "▀▀▀"},
	':': {"▄", " ", "▀"},
}

// minClockWidth is the narrowest terminal that gets the block clock.
const minClockWidth = 40

// renderClock draws a "MM:SS" string in the block font, or as a single bold
// line on narrow terminals. Characters without a glyph are skipped.
func renderClock(clock string, style lipgloss.Style, width int) string {
	if width < minClockWidth {
		return style.Render(clock)
	}

	var rows [3][]string
	for _, ch := range clock {
		glyph, ok := clockGlyphs[ch]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i] = append(rows[i], glyph[i])
		}
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = style.Render(strings.Join(row, " "))
	}
	return strings.Join(lines, "\n")
}
