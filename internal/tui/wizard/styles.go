package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/letrabox/mockup/internal/tui/theme"
)

// RenderHintBar renders a hint bar with the given key-description pairs.
// Example: RenderHintBar("↑↓", "navigate", "enter", "select", "esc", "back")
// Returns: "↑↓ navigate • enter select • esc back"
func RenderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}
	s := theme.Current().S()

	var b strings.Builder
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(" " + s.HintSeparator.Render("•") + " ")
		}
		b.WriteString(s.HintKey.Render(pairs[i]) + " " + s.HintDesc.Render(pairs[i+1]))
	}
	return b.String()
}

// RenderModal wraps body in the modal container with a centered title.
// contentWidth excludes border and padding.
func RenderModal(title, body string, contentWidth int) string {
	s := theme.Current().S()
	heading := s.ModalTitle.Width(contentWidth).Align(lipgloss.Center).Render(title)
	return s.ModalContainer.Width(contentWidth + 6).Render(heading + "\n\n" + body)
}
