package wizard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestButtonBar_FocusNavigation(t *testing.T) {
	bar := NewButtonBar(CreateBackNextButtons(true, true, "Next →"))
	assert.Equal(t, "", bar.FocusedButton())

	assert.True(t, bar.FocusFirst())
	assert.Equal(t, BackLabel, bar.FocusedButton())

	assert.True(t, bar.FocusNext())
	assert.Equal(t, "Next →", bar.FocusedButton())

	assert.False(t, bar.FocusNext(), "no button after the last one")
	assert.Equal(t, "Next →", bar.FocusedButton())

	assert.True(t, bar.FocusPrev())
	assert.Equal(t, BackLabel, bar.FocusedButton())
	assert.False(t, bar.FocusPrev())

	bar.Blur()
	assert.Equal(t, "", bar.FocusedButton())
}

func TestButtonBar_SkipsDisabled(t *testing.T) {
	bar := NewButtonBar(CreateBackNextButtons(false, true, "Generate"))
	assert.True(t, bar.FocusFirst())
	assert.Equal(t, "Generate", bar.FocusedButton())
	assert.False(t, bar.FocusPrev())

	allDisabled := NewButtonBar(CreateBackNextButtons(false, false, "Generate"))
	assert.False(t, allDisabled.FocusFirst())
	assert.False(t, allDisabled.FocusLast())
}

func TestButtonBar_PrevFromBlurredFocusesLast(t *testing.T) {
	bar := NewButtonBar(CreateCancelNextButtons(true, "Next →"))
	assert.True(t, bar.FocusPrev())
	assert.Equal(t, "Next →", bar.FocusedButton())
}

func TestButtonBar_PreFocused(t *testing.T) {
	bar := NewButtonBar([]Button{{Label: "A"}, {Label: "B", State: ButtonFocused}})
	assert.Equal(t, "B", bar.FocusedButton())
}

func TestButtonBar_Render(t *testing.T) {
	bar := NewButtonBar(CreateCancelNextButtons(false, "Next →"))
	bar.SetWidth(40)
	out := bar.Render()
	assert.Contains(t, out, CancelLabel)
	assert.Contains(t, out, "Next →")

	assert.Empty(t, NewButtonBar(nil).Render())
}

func TestRenderHintBar(t *testing.T) {
	out := RenderHintBar("enter", "select", "esc", "back")
	assert.Contains(t, out, "enter")
	assert.Contains(t, out, "select")
	assert.Contains(t, out, "•")
	assert.Equal(t, 1, strings.Count(out, "•"))

	assert.Empty(t, RenderHintBar())
	assert.Empty(t, RenderHintBar("odd"))
}

func TestRenderModal(t *testing.T) {
	out := RenderModal("Base image", "pick a photo", 40)
	assert.Contains(t, out, "Base image")
	assert.Contains(t, out, "pick a photo")
}
