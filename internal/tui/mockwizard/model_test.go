package mockwizard

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/letrabox/mockup/internal/generation"
	"github.com/letrabox/mockup/internal/imagedata"
	"github.com/letrabox/mockup/internal/journal"
	"github.com/letrabox/mockup/internal/session"
	"github.com/letrabox/mockup/internal/tui/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00 facade")
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR logo")
)

type stubGenerator struct {
	mu    sync.Mutex
	img   imagedata.Payload
	err   error
	calls int
	req   generation.Request
}

func (g *stubGenerator) Generate(ctx context.Context, req generation.Request) (imagedata.Payload, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.req = req
	return g.img, g.err
}

func successGenerator() *stubGenerator {
	return &stubGenerator{img: imagedata.New(imagedata.MediaTypePNG, []byte("mockup-png"))}
}

func setupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "facade.jpg"), jpegBytes, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), pngBytes, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain notes"), 0644))
	return dir
}

func newTestModel(t *testing.T, gen generation.Generator, opts Options) (*Model, string) {
	t.Helper()
	dir := setupDir(t)
	opts.Generator = gen
	if opts.WorkDir == "" {
		opts.WorkDir = dir
	}
	m := New(context.Background(), opts)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, dir
}

func keyPress(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Text: s, Code: []rune(s)[0]}
}

func ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

var (
	tabKey = tea.KeyPressMsg{Code: tea.KeyTab}
	escKey = tea.KeyPressMsg{Code: tea.KeyEscape}
)

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyPressMsg{Text: string(r), Code: r})
	}
}

// collect runs cmd and any batched commands, returning every message.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// fillInputs walks the wizard to the description step with both images and
// the given description.
func fillInputs(t *testing.T, m *Model, dir, description string) {
	t.Helper()
	m.Update(wizard.FileSelectedMsg{Path: filepath.Join(dir, "facade.jpg")})
	m.Update(tabKey)
	m.Update(wizard.FileSelectedMsg{Path: filepath.Join(dir, "logo.png")})
	m.Update(tabKey)
	require.Equal(t, session.AwaitingDescription, m.Session().Step())
	typeText(m, description)
}

// generate requests generation and feeds the outcome back into the model.
func generate(t *testing.T, m *Model) {
	t.Helper()
	_, cmd := m.Update(ctrl('d'))
	req, ok := findMsg[GenerateRequestedMsg](collect(cmd))
	require.True(t, ok, "ctrl+d should request generation")

	_, cmd = m.Update(req)
	require.Equal(t, session.Generating, m.Session().Step())
	done, ok := findMsg[GenerationDoneMsg](collect(cmd))
	require.True(t, ok)
	m.Update(done)
}

func TestWizard_SuccessfulRun(t *testing.T) {
	gen := successGenerator()
	m, dir := newTestModel(t, gen, Options{})

	m.Update(wizard.FileSelectedMsg{Path: filepath.Join(dir, "facade.jpg")})
	assert.Equal(t, session.AwaitingBaseImage, m.Session().Step(), "selecting does not advance")
	assert.Contains(t, m.renderModal(), "✓ facade.jpg")

	m.Update(tabKey)
	assert.Equal(t, session.AwaitingLogoImage, m.Session().Step())

	m.Update(wizard.FileSelectedMsg{Path: filepath.Join(dir, "logo.png")})
	m.Update(tabKey)
	require.Equal(t, session.AwaitingDescription, m.Session().Step())

	typeText(m, "neon sign")
	m.Update(tabKey) // next category
	assert.Equal(t, "neon sign", m.Session().Description())
	assert.Equal(t, session.CategoryVehicleWrap, m.Session().Category())

	generate(t, m)

	assert.Equal(t, session.ShowingResult, m.Session().Step())
	img, ok := m.Session().Result()
	require.True(t, ok)
	assert.Equal(t, []byte("mockup-png"), img.Data)
	assert.Empty(t, m.Session().Error())

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "Vehicle Wrap", gen.req.Category)
	assert.Equal(t, "neon sign", gen.req.Description)
	assert.Equal(t, "image/jpeg", gen.req.BaseImage.MediaType)
	assert.Equal(t, "image/png", gen.req.LogoImage.MediaType)

	view := m.renderModal()
	assert.Contains(t, view, "Mockup ready")
	assert.Contains(t, view, "Step 5 of 5")
}

func TestWizard_FailureKeepsInputs(t *testing.T) {
	gen := &stubGenerator{err: &generation.Error{
		Kind:    generation.KindRateLimited,
		Status:  429,
		Message: "Too many requests (429). Wait a moment and try again.",
	}}
	m, dir := newTestModel(t, gen, Options{})
	fillInputs(t, m, dir, "vinyl wrap")

	generate(t, m)

	assert.Equal(t, session.AwaitingDescription, m.Session().Step())
	assert.Contains(t, m.Session().Error(), "Too many requests")
	assert.Equal(t, "vinyl wrap", m.Session().Description())
	_, hasBase := m.Session().BaseImage()
	_, hasLogo := m.Session().LogoImage()
	assert.True(t, hasBase)
	assert.True(t, hasLogo)
	assert.Contains(t, m.renderModal(), "Too many requests")

	// The user can retry straight away.
	gen.err = nil
	gen.img = imagedata.New(imagedata.MediaTypePNG, []byte("second"))
	generate(t, m)
	assert.Equal(t, session.ShowingResult, m.Session().Step())
	assert.Empty(t, m.Session().Error())
}

func TestWizard_TextOnlyResponse(t *testing.T) {
	gen := &stubGenerator{err: &generation.Error{
		Kind:    generation.KindTextOnly,
		Message: "The AI did not generate an image. Response: I cannot edit this photo...",
	}}
	m, dir := newTestModel(t, gen, Options{})
	fillInputs(t, m, dir, "x")
	generate(t, m)

	assert.Contains(t, m.Session().Error(), "I cannot edit this photo")
}

func TestWizard_NonImageIgnored(t *testing.T) {
	m, dir := newTestModel(t, successGenerator(), Options{})

	m.Update(wizard.FileSelectedMsg{Path: filepath.Join(dir, "notes.txt")})
	_, ok := m.Session().BaseImage()
	assert.False(t, ok)
	assert.Empty(t, m.Session().Error())

	m.Update(tabKey)
	assert.Equal(t, session.AwaitingBaseImage, m.Session().Step(), "tab without an image is a no-op")

	m.Update(wizard.FileSelectedMsg{Path: filepath.Join(dir, "missing.png")})
	_, ok = m.Session().BaseImage()
	assert.False(t, ok)
}

func TestWizard_EscNavigation(t *testing.T) {
	m, dir := newTestModel(t, successGenerator(), Options{})
	fillInputs(t, m, dir, "desc")

	m.Update(escKey)
	assert.Equal(t, session.AwaitingLogoImage, m.Session().Step())
	m.Update(escKey)
	assert.Equal(t, session.AwaitingBaseImage, m.Session().Step())

	_, cmd := m.Update(escKey)
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok, "esc on the first step quits")

	// Inputs survive going back and forth.
	assert.Equal(t, "desc", m.Session().Description())
	m.Update(tabKey)
	m.Update(tabKey)
	assert.Equal(t, session.AwaitingDescription, m.Session().Step())
}

func TestWizard_CtrlCQuits(t *testing.T) {
	m, _ := newTestModel(t, successGenerator(), Options{})
	_, cmd := m.Update(ctrl('c'))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestWizard_GenerateRequiresDescription(t *testing.T) {
	gen := successGenerator()
	m, dir := newTestModel(t, gen, Options{})
	fillInputs(t, m, dir, "   ")

	_, cmd := m.Update(GenerateRequestedMsg{})
	assert.Nil(t, cmd)
	assert.Equal(t, session.AwaitingDescription, m.Session().Step())
	assert.Zero(t, gen.calls)
	assert.NotContains(t, m.description.View(m.Session().CanGenerate()), "generate")
}

func TestWizard_KeysIgnoredWhileGenerating(t *testing.T) {
	m, dir := newTestModel(t, successGenerator(), Options{})
	fillInputs(t, m, dir, "desc")

	m.Update(GenerateRequestedMsg{})
	require.Equal(t, session.Generating, m.Session().Step())

	m.Update(escKey)
	m.Update(keyPress("n"))
	typeText(m, "more")
	assert.Equal(t, session.Generating, m.Session().Step())
	assert.Equal(t, "desc", m.Session().Description())

	_, cmd := m.Update(GenerateRequestedMsg{})
	assert.Nil(t, cmd, "a second request is refused while one is in flight")
	assert.Contains(t, m.renderModal(), "Creating your mockup")
}

func TestWizard_StaleCompletionIgnored(t *testing.T) {
	m, _ := newTestModel(t, successGenerator(), Options{})
	m.Update(GenerationDoneMsg{Image: imagedata.New(imagedata.MediaTypePNG, []byte("late"))})
	assert.Equal(t, session.AwaitingBaseImage, m.Session().Step())
	_, ok := m.Session().Result()
	assert.False(t, ok)
}

func TestWizard_RedoAndNewProject(t *testing.T) {
	m, dir := newTestModel(t, successGenerator(), Options{})
	fillInputs(t, m, dir, "letters")
	generate(t, m)
	require.Equal(t, session.ShowingResult, m.Session().Step())

	m.Update(keyPress("r"))
	assert.Equal(t, session.AwaitingDescription, m.Session().Step())
	_, ok := m.Session().Result()
	assert.False(t, ok)
	assert.Equal(t, "letters", m.Session().Description())

	generate(t, m)
	require.Equal(t, session.ShowingResult, m.Session().Step())

	m.Update(keyPress("n"))
	assert.Equal(t, session.AwaitingBaseImage, m.Session().Step())
	assert.Empty(t, m.Session().Description())
	assert.Equal(t, session.DefaultCategory, m.Session().Category())
	_, ok = m.Session().BaseImage()
	assert.False(t, ok)
	assert.Empty(t, m.description.Value())
	assert.Empty(t, m.baseName)
	assert.Contains(t, m.renderModal(), "No image selected")
}

func TestWizard_SaveWritesFileAndRunsHooks(t *testing.T) {
	dir := setupDir(t)
	hooksYAML := "hooks:\n  post_save:\n    - command: \"echo saved {{category}}\"\n      pipe_output: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mockup.hooks.yml"), []byte(hooksYAML), 0644))

	m, _ := newTestModel(t, successGenerator(), Options{
		WorkDir:    dir,
		OutputPath: "out/shop.png",
		RunHooks:   true,
	})
	fillInputs(t, m, dir, "storefront")
	generate(t, m)

	_, cmd := m.Update(keyPress("s"))
	require.NotNil(t, cmd)
	_, again := m.Update(keyPress("s"))
	assert.Nil(t, again, "save is not re-entered while running")

	saved, ok := cmd().(SavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)
	assert.Equal(t, filepath.Join(dir, "out", "shop.png"), saved.Path)
	assert.Contains(t, saved.HookOutput, "saved Storefront")

	_, toastCmd := m.Update(saved)
	assert.NotNil(t, toastCmd)
	assert.True(t, m.toast.IsVisible())

	data, err := os.ReadFile(saved.Path)
	require.NoError(t, err)
	assert.Equal(t, "mockup-png", string(data))
	assert.Equal(t, saved.Path, m.savedPath)
	assert.Contains(t, m.renderModal(), "Saved to")
}

func TestWizard_SaveFailureShowsToast(t *testing.T) {
	m, dir := newTestModel(t, successGenerator(), Options{})
	fillInputs(t, m, dir, "x")
	generate(t, m)

	m.Update(SavedMsg{Path: "/nope/out.png", Err: os.ErrPermission})
	assert.True(t, m.toast.IsVisible())
	assert.Contains(t, m.toast.GetMessage(), "Save failed")
	assert.NotContains(t, m.renderModal(), "Saved to")
}

func TestWizard_SaveIgnoredWithoutResult(t *testing.T) {
	m, _ := newTestModel(t, successGenerator(), Options{})
	assert.Nil(t, m.save())
}

func TestWizard_PrefilledOptions(t *testing.T) {
	m, _ := newTestModel(t, successGenerator(), Options{
		Description: "prefilled",
		Category:    session.CategoryPackaging,
	})
	assert.Equal(t, "prefilled", m.Session().Description())
	assert.Equal(t, session.CategoryPackaging, m.Session().Category())
	assert.Equal(t, "prefilled", m.description.Value())
	assert.Equal(t, session.CategoryPackaging, m.description.Category())
}

func TestWizard_JournalRecordsAttempts(t *testing.T) {
	j, err := journal.Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	gen := &stubGenerator{err: &generation.Error{Kind: generation.KindUpstream, Status: 503, Message: "AI server error (503)."}}
	m, dir := newTestModel(t, gen, Options{Journal: j.Store})
	require.NotEmpty(t, m.SessionID())

	fillInputs(t, m, dir, "pylon sign")
	generate(t, m)
	gen.err = nil
	gen.img = imagedata.New(imagedata.MediaTypePNG, []byte("ok"))
	generate(t, m)

	st, err := j.LoadState(context.Background(), m.SessionID())
	require.NoError(t, err)
	assert.Equal(t, "wizard", st.Source)
	require.Len(t, st.Attempts, 2)
	assert.Equal(t, journal.OutcomeFailed, st.Attempts[0].Outcome)
	assert.Equal(t, journal.OutcomeSucceeded, st.Attempts[1].Outcome)
}

func TestWizard_ViewBeforeSize(t *testing.T) {
	m := New(context.Background(), Options{Generator: successGenerator(), WorkDir: t.TempDir()})
	view := m.View()
	assert.True(t, view.AltScreen)
}

func TestRenderStepIndicator(t *testing.T) {
	out := renderStepIndicator(session.AwaitingDescription)
	assert.Equal(t, 2, strings.Count(out, "✓"))
	assert.Equal(t, 1, strings.Count(out, "●"))
	assert.Equal(t, 2, strings.Count(out, "○"))
	for i := 0; i < session.StepCount; i++ {
		assert.Contains(t, out, session.Step(i).String())
	}
}
