package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Italic(true)
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00"))
)

// ProgressBar renders a filled share of width.
func ProgressBar(percent float64, width int, on, off lipgloss.Color) string {
	filled := int(percent * float64(width))
	filled = max(0, min(width, filled))
	return lipgloss.NewStyle().Foreground(on).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(off).Render(strings.Repeat("░", width-filled))
}

// Sparkline renders the last width values scaled to [lo, hi].
func Sparkline(values []float64, width int, lo, hi float64) string {
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(len(chars)-1, idx))])
	}
	b.WriteString(strings.Repeat(" ", width-len(values)))
	return b.String()
}
