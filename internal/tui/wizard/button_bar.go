package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/letrabox/mockup/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// Button represents a single button in the button bar.
type Button struct {
	Label string
	State ButtonState
}

// ButtonBar manages a set of buttons with consistent styling.
type ButtonBar struct {
	buttons []Button
	focus   int // index of the focused button, -1 when blurred
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	b := &ButtonBar{
		buttons: buttons,
		focus:   -1,
		width:   60,
	}
	for i, btn := range buttons {
		if btn.State == ButtonFocused {
			b.focus = i
		}
	}
	return b
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// FocusFirst focuses the first enabled button. It returns false when every
// button is disabled.
func (b *ButtonBar) FocusFirst() bool {
	return b.focusFrom(0, 1)
}

// FocusLast focuses the last enabled button.
func (b *ButtonBar) FocusLast() bool {
	return b.focusFrom(len(b.buttons)-1, -1)
}

// FocusNext moves focus right. It returns false, leaving focus unchanged,
// when there is no enabled button further right.
func (b *ButtonBar) FocusNext() bool {
	return b.focusFrom(b.focus+1, 1)
}

// FocusPrev moves focus left. It returns false when there is no enabled
// button further left.
func (b *ButtonBar) FocusPrev() bool {
	if b.focus < 0 {
		return b.FocusLast()
	}
	return b.focusFrom(b.focus-1, -1)
}

func (b *ButtonBar) focusFrom(start, dir int) bool {
	for i := start; i >= 0 && i < len(b.buttons); i += dir {
		if b.buttons[i].State == ButtonDisabled {
			continue
		}
		b.setFocus(i)
		return true
	}
	return false
}

func (b *ButtonBar) setFocus(idx int) {
	for i := range b.buttons {
		if b.buttons[i].State == ButtonFocused {
			b.buttons[i].State = ButtonNormal
		}
	}
	b.focus = idx
	if idx >= 0 {
		b.buttons[idx].State = ButtonFocused
	}
}

// Blur removes focus from every button.
func (b *ButtonBar) Blur() {
	b.setFocus(-1)
}

// FocusedButton returns the label of the focused button, or "" if none.
func (b *ButtonBar) FocusedButton() string {
	if b.focus < 0 || b.focus >= len(b.buttons) {
		return ""
	}
	return b.buttons[b.focus].Label
}

// Render renders the button bar with proper spacing and styling.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}
	s := theme.Current().S()

	var renderedButtons []string
	for _, btn := range b.buttons {
		var rendered string
		switch btn.State {
		case ButtonDisabled:
			rendered = s.ButtonDisabled.Render(btn.Label)
		case ButtonFocused:
			rendered = s.ButtonFocused.Render(btn.Label)
		default: // ButtonNormal
			rendered = s.ButtonNormal.Render(btn.Label)
		}
		renderedButtons = append(renderedButtons, rendered)
	}

	result := strings.Join(renderedButtons, "")

	// Center the button bar
	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, result)
}

// CreateBackNextButtons creates standard Back/Next button set.
// backEnabled: whether Back button is enabled
// nextEnabled: whether Next button is enabled (false if step invalid)
// nextLabel: custom label for next button (e.g., "Next", "Generate")
func CreateBackNextButtons(backEnabled, nextEnabled bool, nextLabel string) []Button {
	backState := ButtonNormal
	if !backEnabled {
		backState = ButtonDisabled
	}
	nextState := ButtonNormal
	if !nextEnabled {
		nextState = ButtonDisabled
	}
	return []Button{
		{Label: BackLabel, State: backState},
		{Label: nextLabel, State: nextState},
	}
}

// CreateCancelNextButtons creates Cancel/Next button set (for step 1).
func CreateCancelNextButtons(nextEnabled bool, nextLabel string) []Button {
	nextState := ButtonNormal
	if !nextEnabled {
		nextState = ButtonDisabled
	}
	return []Button{
		{Label: CancelLabel, State: ButtonNormal},
		{Label: nextLabel, State: nextState},
	}
}

// Labels shared by the standard button sets.
const (
	BackLabel   = "← Back"
	CancelLabel = "Cancel"
)
