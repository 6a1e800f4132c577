package tui

import (
	"github.com/letrabox/mockup/internal/tui/theme"
)

// Standard key representations for consistent hints across screens.
const (
	KeyUpDownJK  = "↑↓/jk"
	KeyLeftRight = "←/→"
	KeyEnter     = "enter"
	KeyEsc       = "esc"
	KeyTab       = "tab"
	KeyCtrlC     = "ctrl+c"
	KeyCtrlD     = "ctrl+d" // Generate from the description step
	KeyCtrlE     = "ctrl+e" // Edit description in $EDITOR
)

// RenderHint renders a single key-description pair.
// Example: RenderHint("enter", "select") -> "enter select"
func RenderHint(key, desc string) string {
	s := theme.Current().S()
	return s.HintKey.Render(key) + " " + s.HintDesc.Render(desc)
}
