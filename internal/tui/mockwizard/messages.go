package mockwizard

import "github.com/letrabox/mockup/internal/imagedata"

// GenerateRequestedMsg is sent when the user asks to generate from the
// description step.
type GenerateRequestedMsg struct{}

// GenerationDoneMsg carries the outcome of a generation request.
type GenerationDoneMsg struct {
	Image imagedata.Payload
	Err   error
}

// SavedMsg is sent after the result has been written to disk and any
// post_save hooks have run.
type SavedMsg struct {
	Path       string
	HookOutput string
	Err        error
}
