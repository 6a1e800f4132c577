// Package session holds the mockup wizard state machine: the user's inputs,
// the current step and the outcome of the last generation attempt.
//
// A Session is not safe for concurrent use. Surfaces that generate
// asynchronously call BeginGeneration, run the request elsewhere, then
// report back with CompleteGeneration or FailGeneration on the owning
// goroutine.
package session

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/letrabox/mockup/internal/generation"
	"github.com/letrabox/mockup/internal/imagedata"
)

// ErrNotReady is returned by Generate when an image or the description is
// missing, or a generation is already in flight.
var ErrNotReady = errors.New("session not ready to generate: base image, logo and description are required")

// Cause names what triggered a Transition.
type Cause string

const (
	CauseAdvance  Cause = "advance"
	CauseRetreat  Cause = "retreat"
	CauseGenerate Cause = "generate"
	CauseComplete Cause = "complete"
	CauseFail     Cause = "fail"
	CauseReset    Cause = "reset"
)

// Transition describes a state change observed through OnTransition.
type Transition struct {
	From  Step
	To    Step
	Cause Cause
	Kind  generation.Kind // set when Cause is CauseFail
	Error string          // user-facing message when Cause is CauseFail
}

// Session is one run through the wizard.
type Session struct {
	step        Step
	baseImage   *imagedata.Payload
	logoImage   *imagedata.Payload
	category    Category
	description string
	result      *imagedata.Payload
	err         string

	observers []func(Transition)
}

// New returns a session at AwaitingBaseImage with no inputs.
func New() *Session {
	return &Session{
		step:     AwaitingBaseImage,
		category: DefaultCategory,
	}
}

// OnTransition registers fn to be called after every step change and after
// every generation outcome.
func (s *Session) OnTransition(fn func(Transition)) {
	s.observers = append(s.observers, fn)
}

func (s *Session) notify(t Transition) {
	for _, fn := range s.observers {
		fn(t)
	}
}

func (s *Session) moveTo(to Step, cause Cause) {
	from := s.step
	s.step = to
	s.notify(Transition{From: from, To: to, Cause: cause})
}

// Step returns the current step.
func (s *Session) Step() Step { return s.step }

// Category returns the selected category.
func (s *Session) Category() Category { return s.category }

// Description returns the description exactly as entered.
func (s *Session) Description() string { return s.description }

// Error returns the message from the last failed generation, or "".
func (s *Session) Error() string { return s.err }

// Result returns the generated image. It is only set at ShowingResult.
func (s *Session) Result() (imagedata.Payload, bool) {
	if s.result == nil {
		return imagedata.Payload{}, false
	}
	return *s.result, true
}

// BaseImage returns the selected base photograph.
func (s *Session) BaseImage() (imagedata.Payload, bool) {
	if s.baseImage == nil {
		return imagedata.Payload{}, false
	}
	return *s.baseImage, true
}

// LogoImage returns the selected logo.
func (s *Session) LogoImage() (imagedata.Payload, bool) {
	if s.logoImage == nil {
		return imagedata.Payload{}, false
	}
	return *s.logoImage, true
}

// SelectBaseImage stores p as the base image and clears any error.
// It is ignored once generation has begun or when p is empty.
func (s *Session) SelectBaseImage(p imagedata.Payload) bool {
	if !s.step.Editable() || p.IsZero() {
		return false
	}
	s.baseImage = &p
	s.err = ""
	return true
}

// SelectLogoImage stores p as the logo and clears any error.
// It is ignored once generation has begun or when p is empty.
func (s *Session) SelectLogoImage(p imagedata.Payload) bool {
	if !s.step.Editable() || p.IsZero() {
		return false
	}
	s.logoImage = &p
	s.err = ""
	return true
}

// SetCategory stores c, substituting DefaultCategory for unknown values.
func (s *Session) SetCategory(c Category) bool {
	if !s.step.Editable() {
		return false
	}
	if !c.Valid() {
		c = DefaultCategory
	}
	s.category = c
	return true
}

// SetDescription stores text verbatim. Whitespace is only considered when
// checking CanGenerate.
func (s *Session) SetDescription(text string) bool {
	if !s.step.Editable() {
		return false
	}
	s.description = text
	return true
}

// DescriptionLength returns the description length in characters.
func (s *Session) DescriptionLength() int {
	return utf8.RuneCountInString(s.description)
}

// Advance moves one step forward from either image step once that step's
// image is set. Everything else is a no-op: the description step only moves
// on through generation.
func (s *Session) Advance() bool {
	switch s.step {
	case AwaitingBaseImage:
		if s.baseImage == nil {
			return false
		}
		s.moveTo(AwaitingLogoImage, CauseAdvance)
		return true
	case AwaitingLogoImage:
		if s.logoImage == nil {
			return false
		}
		s.moveTo(AwaitingDescription, CauseAdvance)
		return true
	}
	return false
}

// Retreat moves one step back. It is a no-op at the first step and while
// generating. Leaving ShowingResult discards the result and returns to the
// description step with every input kept.
func (s *Session) Retreat() bool {
	switch s.step {
	case AwaitingLogoImage:
		s.moveTo(AwaitingBaseImage, CauseRetreat)
	case AwaitingDescription:
		s.moveTo(AwaitingLogoImage, CauseRetreat)
	case ShowingResult:
		s.result = nil
		s.moveTo(AwaitingDescription, CauseRetreat)
	default:
		return false
	}
	return true
}

// CanGenerate reports whether both images are set, the trimmed description
// is non-empty and no generation is in flight.
func (s *Session) CanGenerate() bool {
	return s.step != Generating &&
		s.baseImage != nil &&
		s.logoImage != nil &&
		strings.TrimSpace(s.description) != ""
}

// BeginGeneration enters Generating and returns the request to send.
// It returns false and changes nothing when CanGenerate is false.
func (s *Session) BeginGeneration() (generation.Request, bool) {
	if !s.CanGenerate() {
		return generation.Request{}, false
	}
	s.err = ""
	s.result = nil
	req := generation.Request{
		BaseImage:   *s.baseImage,
		LogoImage:   *s.logoImage,
		Description: s.description,
		Category:    s.category.Label(),
	}
	s.moveTo(Generating, CauseGenerate)
	return req, true
}

// CompleteGeneration records a successful result. It is ignored unless a
// generation is in flight.
func (s *Session) CompleteGeneration(img imagedata.Payload) bool {
	if s.step != Generating {
		return false
	}
	if img.IsZero() {
		return s.FailGeneration(generation.NewEmptyError())
	}
	s.result = &img
	s.err = ""
	s.moveTo(ShowingResult, CauseComplete)
	return true
}

// FailGeneration records a failure and returns to the description step with
// every input intact. It is ignored unless a generation is in flight.
func (s *Session) FailGeneration(err error) bool {
	if s.step != Generating {
		return false
	}
	s.result = nil
	s.err = generation.UserMessage(err)
	from := s.step
	s.step = AwaitingDescription
	s.notify(Transition{
		From:  from,
		To:    AwaitingDescription,
		Cause: CauseFail,
		Kind:  generation.KindOf(err),
		Error: s.err,
	})
	return true
}

// Generate runs one generation synchronously with gen. It returns
// ErrNotReady without side effects when CanGenerate is false, otherwise the
// generator's error, if any. The session reflects the outcome either way.
func (s *Session) Generate(ctx context.Context, gen generation.Generator) error {
	req, ok := s.BeginGeneration()
	if !ok {
		return ErrNotReady
	}
	img, err := gen.Generate(ctx, req)
	if err == nil && img.IsZero() {
		err = generation.NewEmptyError()
	}
	if err != nil {
		s.FailGeneration(err)
		return err
	}
	s.CompleteGeneration(img)
	return nil
}

// Reset returns to the initial state. Observers stay registered.
func (s *Session) Reset() {
	from := s.step
	s.step = AwaitingBaseImage
	s.baseImage = nil
	s.logoImage = nil
	s.category = DefaultCategory
	s.description = ""
	s.result = nil
	s.err = ""
	s.notify(Transition{From: from, To: AwaitingBaseImage, Cause: CauseReset})
}

// Snapshot is a read-only copy of a Session for rendering.
type Snapshot struct {
	Step        Step
	BaseImage   *imagedata.Payload
	LogoImage   *imagedata.Payload
	Category    Category
	Description string
	Result      *imagedata.Payload
	Error       string
	CanGenerate bool
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Step:        s.step,
		BaseImage:   clonePayload(s.baseImage),
		LogoImage:   clonePayload(s.logoImage),
		Category:    s.category,
		Description: s.description,
		Result:      clonePayload(s.result),
		Error:       s.err,
		CanGenerate: s.CanGenerate(),
	}
}

func clonePayload(p *imagedata.Payload) *imagedata.Payload {
	if p == nil {
		return nil
	}
	c := imagedata.New(p.MediaType, append([]byte(nil), p.Data...))
	return &c
}
