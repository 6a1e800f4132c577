package mockwizard

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/letrabox/mockup/internal/session"
	"github.com/letrabox/mockup/internal/tui"
	"github.com/letrabox/mockup/internal/tui/theme"
	"github.com/letrabox/mockup/internal/tui/wizard"
)

const descriptionPlaceholder = "Ex: Matte black ACM facade with the logo centered in backlit acrylic. Keep the reflections on the glass."

// DescriptionStep edits the application description and the mockup category.
type DescriptionStep struct {
	textarea textarea.Model
	category int // index into session.Categories
	width    int
	height   int
}

// NewDescriptionStep creates the step pre-filled with text and category.
func NewDescriptionStep(text string, category session.Category) *DescriptionStep {
	ta := textarea.New()
	ta.Placeholder = descriptionPlaceholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(6)
	ta.SetWidth(60)
	ta.SetValue(text)
	ta.Focus()

	return &DescriptionStep{
		textarea: ta,
		category: category.Index(),
	}
}

// Init starts the cursor blink.
func (d *DescriptionStep) Init() tea.Cmd {
	return textarea.Blink
}

// SetSize updates the dimensions for the description step.
func (d *DescriptionStep) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.textarea.SetWidth(width)

	// Reserve rows for the category row, counter and hint bar
	taHeight := height - 8
	if taHeight < 3 {
		taHeight = 3
	}
	if taHeight > 10 {
		taHeight = 10
	}
	d.textarea.SetHeight(taHeight)
}

// Focus focuses the textarea.
func (d *DescriptionStep) Focus() tea.Cmd {
	return d.textarea.Focus()
}

// Blur removes focus from the textarea.
func (d *DescriptionStep) Blur() {
	d.textarea.Blur()
}

// Value returns the description exactly as typed.
func (d *DescriptionStep) Value() string {
	return d.textarea.Value()
}

// SetValue replaces the description text.
func (d *DescriptionStep) SetValue(s string) {
	d.textarea.SetValue(s)
}

// Category returns the selected category.
func (d *DescriptionStep) Category() session.Category {
	return session.Categories[d.category]
}

// Update handles messages for the description step.
func (d *DescriptionStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "tab":
			d.category = (d.category + 1) % len(session.Categories)
			return nil
		case "shift+tab":
			d.category = (d.category + len(session.Categories) - 1) % len(session.Categories)
			return nil
		case "ctrl+d":
			return func() tea.Msg { return GenerateRequestedMsg{} }
		case "ctrl+e":
			return wizard.EditText(d.textarea.Value())
		}
	case wizard.TextEditedMsg:
		d.textarea.SetValue(strings.TrimRight(msg.Content, "\n"))
		return nil
	}

	var cmd tea.Cmd
	d.textarea, cmd = d.textarea.Update(msg)
	return cmd
}

// View renders the description step. canGenerate controls the hint for
// ctrl+d.
func (d *DescriptionStep) View(canGenerate bool) string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.Muted.Render("How should the logo be applied? Detail materials, lighting and position."))
	b.WriteString("\n\n")

	b.WriteString(s.HintKey.Render("Mockup type  "))
	b.WriteString(d.renderCategories())
	b.WriteString("\n\n")

	b.WriteString(d.textarea.View())
	b.WriteString("\n")

	counter := fmt.Sprintf("%d characters", len([]rune(d.textarea.Value())))
	b.WriteString(lipgloss.PlaceHorizontal(d.textarea.Width(), lipgloss.Right, s.Muted.Render(counter)))
	b.WriteString("\n\n")

	pairs := []string{tui.KeyTab, "type"}
	if wizard.EditorAvailable() {
		pairs = append(pairs, tui.KeyCtrlE, "editor")
	}
	if canGenerate {
		pairs = append(pairs, tui.KeyCtrlD, "generate")
	}
	pairs = append(pairs, tui.KeyEsc, "back")
	b.WriteString(wizard.RenderHintBar(pairs...))

	return b.String()
}

func (d *DescriptionStep) renderCategories() string {
	s := theme.Current().S()
	label := s.ChipActive.Render(d.Category().Label())
	pos := s.Muted.Render(fmt.Sprintf("%d/%d", d.category+1, len(session.Categories)))
	return s.Muted.Render("‹ ") + label + s.Muted.Render(" › ") + pos
}
