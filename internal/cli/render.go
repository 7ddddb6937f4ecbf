package cli

import (
	"sort"
	"strings"

	"github.com/bastiangx/shohayok/internal/utils"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	misspelled lipgloss.Style
	highlight  lipgloss.Style
	item       lipgloss.Style
	index      lipgloss.Style
	status     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		misspelled: lipgloss.NewStyle().Underline(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"}),
		highlight: lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"}),
		item: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"}),
		index: lipgloss.NewStyle().Faint(true),
		status: lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}),
	}
}

// renderSpans styles the rune spans of text with st. Overlapping spans
// after the first are skipped.
func renderSpans(text string, spans []utils.Span, st lipgloss.Style) string {
	if len(spans) == 0 {
		return text
	}
	sorted := append([]utils.Span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	runes := []rune(text)
	var b strings.Builder
	pos := 0
	for _, sp := range sorted {
		if sp.Start < pos || sp.End > len(runes) || sp.Len() <= 0 {
			continue
		}
		b.WriteString(string(runes[pos:sp.Start]))
		b.WriteString(st.Render(string(runes[sp.Start:sp.End])))
		pos = sp.End
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}
