package viz

import (
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	panel  lipgloss.Style
	title  lipgloss.Style
	canvas lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent),
		canvas: lipgloss.NewStyle().
			Foreground(t.Primary),
		label: lipgloss.NewStyle().
			Foreground(t.Muted),
		value: lipgloss.NewStyle().
			Foreground(t.Text),
	}
}

// Table renders aligned label/value rows, used for run summaries.
func Table(t Theme, title string, rows [][2]string) string {
	st := newStyles(t)
	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r[0]))
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, st.title.Render(title))
	for _, r := range rows {
		label := st.label.Width(width + 2).Render(r[0])
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, st.value.Render(r[1])))
	}
	return st.panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
