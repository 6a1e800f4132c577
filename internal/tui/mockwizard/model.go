// Package mockwizard is the interactive terminal wizard: pick a base photo
// and a logo, describe the application, generate, then save the mockup.
package mockwizard

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/letrabox/mockup/internal/config"
	"github.com/letrabox/mockup/internal/generation"
	"github.com/letrabox/mockup/internal/hooks"
	"github.com/letrabox/mockup/internal/imagedata"
	"github.com/letrabox/mockup/internal/journal"
	"github.com/letrabox/mockup/internal/logger"
	"github.com/letrabox/mockup/internal/session"
	"github.com/letrabox/mockup/internal/tui"
	"github.com/letrabox/mockup/internal/tui/theme"
	"github.com/letrabox/mockup/internal/tui/wizard"
)

// Modal layout constants
const (
	modalWidth        = 70                                                       // Total modal width including border
	modalPadding      = 2                                                        // Horizontal padding on each side
	modalBorderWidth  = 1                                                        // Border width on each side
	modalContentWidth = modalWidth - (modalPadding * 2) - (modalBorderWidth * 2) // 64
)

// Options configures the wizard.
type Options struct {
	Generator   generation.Generator
	Journal     *journal.Store // optional
	OutputPath  string         // where "save" writes the result
	WorkDir     string         // file picker start directory and hooks location
	RunHooks    bool           // run post_save hooks after saving
	Brand       string
	Description string // pre-filled description
	Category    session.Category
}

// Model is the bubbletea model for the mockup wizard.
type Model struct {
	ctx      context.Context
	opts     Options
	sess     *session.Session
	recorder *journal.Recorder

	picker      *wizard.FilePickerStep
	description *DescriptionStep
	spinner     tui.GradientSpinner
	toast       *tui.Toast

	baseName   string // file name shown for the selected base image
	logoName   string
	savedPath  string // last path the current result was written to
	hookOutput string
	saving     bool

	width  int
	height int
	quit   bool
}

// New creates the wizard over a fresh session.
func New(ctx context.Context, opts Options) *Model {
	if opts.OutputPath == "" {
		opts.OutputPath = config.DefaultOutputFile
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.Brand == "" {
		opts.Brand = config.DefaultBrand
	}

	m := &Model{
		ctx:    ctx,
		opts:   opts,
		sess:   session.New(),
		picker: wizard.NewFilePickerStepAt(opts.WorkDir),
		toast:  tui.NewToast(),
	}
	if opts.Journal != nil {
		m.recorder = journal.Attach(opts.Journal, m.sess, "wizard")
	}
	m.sess.SetCategory(opts.Category)
	m.sess.SetDescription(opts.Description)
	m.description = NewDescriptionStep(m.sess.Description(), m.sess.Category())
	return m
}

// Run starts the wizard on the terminal and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}
	return nil
}

// Session exposes the underlying state machine.
func (m *Model) Session() *session.Session {
	return m.sess
}

// SessionID returns the journal session ID, or "" without a journal.
func (m *Model) SessionID() string {
	if m.recorder == nil {
		return ""
	}
	return m.recorder.ID()
}

// Init initializes the wizard model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.quit = true
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case wizard.FileSelectedMsg:
		m.selectFile(msg.Path)
		return m, nil

	case wizard.TextEditedMsg:
		cmd := m.description.Update(msg)
		m.syncDescription()
		return m, cmd

	case GenerateRequestedMsg:
		return m, m.startGeneration()

	case GenerationDoneMsg:
		return m, m.finishGeneration(msg)

	case SavedMsg:
		m.saving = false
		if msg.Err != nil {
			logger.Error("saving mockup: %v", msg.Err)
			return m, m.toast.ShowError("Save failed: " + msg.Err.Error())
		}
		m.savedPath = msg.Path
		m.hookOutput = msg.HookOutput
		return m, m.toast.Show("Saved " + msg.Path)

	case tui.GradientSpinnerMsg:
		if m.sess.Step() == session.Generating {
			return m, m.spinner.Update(msg)
		}
		return m, nil

	case tui.ToastDismissMsg:
		return m, m.toast.Update(msg)
	}

	if m.sess.Step() == session.AwaitingDescription {
		return m, m.description.Update(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.sess.Step() {
	case session.AwaitingBaseImage, session.AwaitingLogoImage:
		switch msg.String() {
		case "esc":
			if m.sess.Step() == session.AwaitingBaseImage {
				m.quit = true
				return m, tea.Quit
			}
			m.sess.Retreat()
			return m, nil
		case "tab":
			if m.sess.Advance() && m.sess.Step() == session.AwaitingDescription {
				return m, tea.Batch(m.description.Focus(), m.description.Init())
			}
			return m, nil
		}
		return m, m.picker.Update(msg)

	case session.AwaitingDescription:
		if msg.String() == "esc" {
			m.description.Blur()
			m.sess.Retreat()
			return m, nil
		}
		cmd := m.description.Update(msg)
		m.syncDescription()
		return m, cmd

	case session.Generating:
		return m, nil

	case session.ShowingResult:
		switch msg.String() {
		case "s", "enter":
			return m, m.save()
		case "r", "esc":
			m.redo()
			return m, tea.Batch(m.description.Focus(), m.description.Init())
		case "n":
			m.reset()
			return m, nil
		case "q":
			m.quit = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// selectFile loads path for the current image step. Files that are not
// images are ignored without comment.
func (m *Model) selectFile(path string) {
	img, err := imagedata.FromFile(path)
	if err != nil {
		if !errors.Is(err, imagedata.ErrNotImage) {
			logger.Warn("reading %s: %v", path, err)
		}
		return
	}

	name := filepath.Base(path)
	switch m.sess.Step() {
	case session.AwaitingBaseImage:
		if m.sess.SelectBaseImage(img) {
			m.baseName = name
		}
	case session.AwaitingLogoImage:
		if m.sess.SelectLogoImage(img) {
			m.logoName = name
		}
	}
}

func (m *Model) syncDescription() {
	m.sess.SetDescription(m.description.Value())
	m.sess.SetCategory(m.description.Category())
}

// startGeneration moves the session into Generating and runs the request
// in a command. It does nothing when the session is not ready.
func (m *Model) startGeneration() tea.Cmd {
	m.syncDescription()
	req, ok := m.sess.BeginGeneration()
	if !ok {
		return nil
	}
	m.description.Blur()
	m.savedPath = ""
	m.hookOutput = ""

	t := theme.Current()
	m.spinner = tui.NewGradientSpinner(t.Primary, t.Tertiary, "")

	ctx, gen := m.ctx, m.opts.Generator
	logger.Info("generating mockup (category=%s, description=%d chars)", req.Category, m.sess.DescriptionLength())
	return tea.Batch(m.spinner.Tick(), func() tea.Msg {
		img, err := gen.Generate(ctx, req)
		return GenerationDoneMsg{Image: img, Err: err}
	})
}

func (m *Model) finishGeneration(msg GenerationDoneMsg) tea.Cmd {
	if msg.Err != nil {
		logger.Warn("generation failed: %v", msg.Err)
		m.sess.FailGeneration(msg.Err)
	} else {
		m.sess.CompleteGeneration(msg.Image)
	}

	if m.sess.Step() == session.AwaitingDescription {
		return tea.Batch(m.description.Focus(), m.description.Init())
	}
	return nil
}

// redo returns from the result to the description with every input kept.
func (m *Model) redo() {
	m.sess.Retreat()
	m.savedPath = ""
	m.hookOutput = ""
}

// reset starts a new project. The picker keeps its directory.
func (m *Model) reset() {
	m.sess.Reset()
	m.baseName = ""
	m.logoName = ""
	m.savedPath = ""
	m.hookOutput = ""
	m.description = NewDescriptionStep("", m.sess.Category())
	m.updateSizes()
}

// save writes the result in a command and then runs post_save hooks.
func (m *Model) save() tea.Cmd {
	img, ok := m.sess.Result()
	if !ok || m.saving {
		return nil
	}
	m.saving = true

	ctx, opts := m.ctx, m.opts
	path := opts.OutputPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(opts.WorkDir, path)
	}
	vars := hooks.Variables{Output: path, Category: m.sess.Category().Label(), Session: m.SessionID()}

	return func() tea.Msg {
		if err := imagedata.WriteFile(path, img); err != nil {
			return SavedMsg{Path: path, Err: err}
		}
		logger.Info("saved mockup to %s", path)
		if !opts.RunHooks {
			return SavedMsg{Path: path}
		}
		out, err := hooks.RunPostSave(ctx, opts.WorkDir, vars)
		if err != nil {
			logger.Warn("post_save hooks failed: %v", err)
		}
		return SavedMsg{Path: path, HookOutput: out}
	}
}

func (m *Model) updateSizes() {
	height := m.height - 12
	if height < 6 {
		height = 6
	}
	m.picker.SetSize(modalContentWidth, height)
	m.description.SetSize(modalContentWidth, height)
}

// View renders the wizard.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if m.width == 0 || m.height == 0 {
		view.Content = lipgloss.NewLayer("")
		return view
	}

	header := theme.Current().S().HeaderTitle.Render(m.opts.Brand + " Mockup")
	content := lipgloss.JoinVertical(lipgloss.Center, header, "", m.renderModal())

	centered := lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(centered).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	if toast := strings.TrimLeft(m.toast.View(m.width, m.height), "\n"); toast != "" && m.height >= 2 {
		uv.NewStyledString(toast).Draw(canvas, uv.Rectangle{
			Min: uv.Position{X: 0, Y: m.height - 2},
			Max: uv.Position{X: m.width, Y: m.height - 1},
		})
	}

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

func (m *Model) renderModal() string {
	step := m.sess.Step()
	title := fmt.Sprintf("Step %d of %d · %s", step.Index()+1, session.StepCount, step)

	var b strings.Builder
	b.WriteString(renderStepIndicator(step))
	b.WriteString("\n\n")

	if msg := m.sess.Error(); msg != "" {
		b.WriteString(theme.Current().S().Error.Width(modalContentWidth).Render("⚠ " + msg))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderStepBody())
	return wizard.RenderModal(title, b.String(), modalContentWidth)
}

func (m *Model) renderStepBody() string {
	s := theme.Current().S()

	switch m.sess.Step() {
	case session.AwaitingBaseImage:
		return m.renderImageStep(
			"Photo of the site or object: the facade, vehicle, wall or uniform the artwork goes on.",
			m.baseName, m.sess.BaseImage,
			wizard.CreateCancelNextButtons(m.baseName != "", "Next: Logo →"))

	case session.AwaitingLogoImage:
		return m.renderImageStep(
			"Your logo, preferably a PNG with a transparent background.",
			m.logoName, m.sess.LogoImage,
			wizard.CreateBackNextButtons(true, m.logoName != "", "Next: Describe →"))

	case session.AwaitingDescription:
		var b strings.Builder
		b.WriteString(s.Muted.Render(fmt.Sprintf("Base: %s   Logo: %s", m.baseName, m.logoName)))
		b.WriteString("\n\n")
		b.WriteString(m.description.View(m.sess.CanGenerate()))
		bar := wizard.NewButtonBar(wizard.CreateBackNextButtons(true, m.sess.CanGenerate(), "Generate Mockup"))
		bar.SetWidth(modalContentWidth)
		b.WriteString("\n\n")
		b.WriteString(bar.Render())
		return b.String()

	case session.Generating:
		var b strings.Builder
		b.WriteString(s.Text.Bold(true).Render("Creating your mockup"))
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View())
		b.WriteString("\n\n")
		b.WriteString(s.Muted.Width(modalContentWidth).Render("The model is analysing structure, lighting and perspective to apply your brand..."))
		return b.String()

	case session.ShowingResult:
		return m.renderResult()
	}
	return ""
}

func (m *Model) renderImageStep(prompt, selected string, current func() (imagedata.Payload, bool), buttons []wizard.Button) string {
	s := theme.Current().S()
	var b strings.Builder

	b.WriteString(s.Muted.Width(modalContentWidth).Render(prompt))
	b.WriteString("\n\n")
	if img, ok := current(); ok {
		b.WriteString(s.Success.Render("✓ " + selected))
		b.WriteString(s.Muted.Render(fmt.Sprintf("  %s, %s", img.MediaType, imagedata.HumanSize(img.Size()))))
	} else {
		b.WriteString(s.Dim.Render("No image selected"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.picker.View())
	b.WriteString("\n\n")

	bar := wizard.NewButtonBar(buttons)
	bar.SetWidth(modalContentWidth)
	b.WriteString(bar.Render())
	b.WriteString("\n")

	pairs := []string{tui.KeyTab, "next"}
	if m.sess.Step() == session.AwaitingBaseImage {
		pairs = append(pairs, tui.KeyEsc, "quit")
	} else {
		pairs = append(pairs, tui.KeyEsc, "back")
	}
	b.WriteString(wizard.RenderHintBar(pairs...))
	return b.String()
}

func (m *Model) renderResult() string {
	s := theme.Current().S()
	img, _ := m.sess.Result()

	var b strings.Builder
	b.WriteString(s.Success.Render("Mockup ready"))
	b.WriteString(s.Muted.Render(fmt.Sprintf("  %s, %s", img.MediaType, imagedata.HumanSize(img.Size()))))
	b.WriteString("\n\n")
	b.WriteString(s.Dim.Width(modalContentWidth).Render(fmt.Sprintf("%q", m.sess.Description())))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render("Type: " + m.sess.Category().Label()))
	b.WriteString("\n\n")

	if m.savedPath != "" {
		b.WriteString(s.Text.Render("Saved to " + m.savedPath))
		b.WriteString("\n")
		if out := strings.TrimSpace(m.hookOutput); out != "" {
			b.WriteString(s.Muted.Width(modalContentWidth).Render(out))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	bar := wizard.NewButtonBar([]wizard.Button{
		{Label: "Redo Prompt", State: wizard.ButtonNormal},
		{Label: "Save", State: wizard.ButtonFocused},
		{Label: "New Project", State: wizard.ButtonNormal},
	})
	bar.SetWidth(modalContentWidth)
	b.WriteString(bar.Render())
	b.WriteString("\n")
	b.WriteString(wizard.RenderHintBar("s", "save", "r", "redo prompt", "n", "new project", "q", "quit"))
	return b.String()
}

// renderStepIndicator draws the five steps with the current one highlighted.
func renderStepIndicator(current session.Step) string {
	s := theme.Current().S()
	parts := make([]string, session.StepCount)
	for i := 0; i < session.StepCount; i++ {
		step := session.Step(i)
		switch {
		case i < current.Index():
			parts[i] = s.StepDone.Render("✓ " + step.String())
		case i == current.Index():
			parts[i] = s.StepActive.Render("● " + step.String())
		default:
			parts[i] = s.StepPending.Render("○ " + step.String())
		}
	}
	return strings.Join(parts, s.StepPending.Render(" ─ "))
}
