package session

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/letrabox/mockup/internal/generation"
	"github.com/letrabox/mockup/internal/imagedata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	basePhoto = imagedata.New("image/jpeg", []byte("storefront photo"))
	logoArt   = imagedata.New("image/png", []byte("logo art"))
	mockupPNG = imagedata.New(imagedata.MediaTypePNG, []byte("generated mockup"))
)

// stubGenerator returns a fixed outcome and records the request it saw.
type stubGenerator struct {
	img   imagedata.Payload
	err   error
	calls int
	req   generation.Request
}

func (g *stubGenerator) Generate(ctx context.Context, req generation.Request) (imagedata.Payload, error) {
	g.calls++
	g.req = req
	return g.img, g.err
}

// readySession returns a session at AwaitingDescription with every input set.
func readySession(t *testing.T) *Session {
	t.Helper()
	s := New()
	require.True(t, s.SelectBaseImage(basePhoto))
	require.True(t, s.Advance())
	require.True(t, s.SelectLogoImage(logoArt))
	require.True(t, s.Advance())
	require.True(t, s.SetDescription("  gold leaf lettering on the awning  "))
	require.Equal(t, AwaitingDescription, s.Step())
	return s
}

func TestNew(t *testing.T) {
	s := New()
	assert.Equal(t, AwaitingBaseImage, s.Step())
	assert.Equal(t, DefaultCategory, s.Category())
	assert.Empty(t, s.Description())
	assert.Empty(t, s.Error())
	assert.False(t, s.CanGenerate())

	_, ok := s.Result()
	assert.False(t, ok)
}

func TestAdvance_RequiresImages(t *testing.T) {
	s := New()

	assert.False(t, s.Advance(), "advance without base image")
	assert.Equal(t, AwaitingBaseImage, s.Step())

	s.SelectBaseImage(basePhoto)
	assert.True(t, s.Advance())
	assert.Equal(t, AwaitingLogoImage, s.Step())

	assert.False(t, s.Advance(), "advance without logo")
	assert.Equal(t, AwaitingLogoImage, s.Step())

	s.SelectLogoImage(logoArt)
	assert.True(t, s.Advance())
	assert.Equal(t, AwaitingDescription, s.Step())

	assert.False(t, s.Advance(), "description step only moves on through generation")
	assert.Equal(t, AwaitingDescription, s.Step())
}

func TestSelectIgnoresEmptyPayload(t *testing.T) {
	s := New()
	assert.False(t, s.SelectBaseImage(imagedata.Payload{}))
	assert.False(t, s.Advance())
}

func TestRetreat(t *testing.T) {
	s := New()
	assert.False(t, s.Retreat(), "no-op at first step")

	s = readySession(t)
	assert.True(t, s.Retreat())
	assert.Equal(t, AwaitingLogoImage, s.Step())
	assert.True(t, s.Retreat())
	assert.Equal(t, AwaitingBaseImage, s.Step())

	// Inputs survive navigation.
	_, ok := s.BaseImage()
	assert.True(t, ok)
	_, ok = s.LogoImage()
	assert.True(t, ok)
	assert.Equal(t, "  gold leaf lettering on the awning  ", s.Description())
}

func TestStepSequencesStayInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		s := New()
		s.SelectBaseImage(basePhoto)
		if rng.Intn(2) == 0 {
			s.SelectLogoImage(logoArt)
		}
		for i := 0; i < 50; i++ {
			before := s.Step()
			if rng.Intn(2) == 0 {
				s.Advance()
			} else {
				s.Retreat()
			}
			after := s.Step()

			require.True(t, after.Valid())
			diff := after.Index() - before.Index()
			require.True(t, diff >= -1 && diff <= 1, "step skipped from %s to %s", before, after)
			require.True(t, after <= AwaitingDescription, "navigation alone never reaches %s", after)
		}
	}
}

func TestCanGenerate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Session)
		want  bool
	}{
		{"empty session", func(s *Session) {}, false},
		{"base only", func(s *Session) {
			s.SelectBaseImage(basePhoto)
			s.SetDescription("x")
		}, false},
		{"logo only", func(s *Session) {
			s.SelectLogoImage(logoArt)
			s.SetDescription("x")
		}, false},
		{"no description", func(s *Session) {
			s.SelectBaseImage(basePhoto)
			s.SelectLogoImage(logoArt)
		}, false},
		{"whitespace description", func(s *Session) {
			s.SelectBaseImage(basePhoto)
			s.SelectLogoImage(logoArt)
			s.SetDescription(" \n\t ")
		}, false},
		{"all inputs", func(s *Session) {
			s.SelectBaseImage(basePhoto)
			s.SelectLogoImage(logoArt)
			s.SetDescription("vinyl wrap")
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			tt.setup(s)
			assert.Equal(t, tt.want, s.CanGenerate())
		})
	}
}

func TestGenerate_NotReadyIsNoop(t *testing.T) {
	s := New()
	s.SelectBaseImage(basePhoto)
	s.Advance()
	s.SelectLogoImage(logoArt)
	s.Advance()
	s.SetDescription("   ")

	gen := &stubGenerator{img: mockupPNG}
	before := s.Snapshot()

	err := s.Generate(context.Background(), gen)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Zero(t, gen.calls)
	assert.Equal(t, before, s.Snapshot())
}

func TestGenerate_Success(t *testing.T) {
	s := readySession(t)
	s.SetCategory(CategoryVehicleWrap)
	gen := &stubGenerator{img: mockupPNG}

	require.NoError(t, s.Generate(context.Background(), gen))

	assert.Equal(t, ShowingResult, s.Step())
	assert.Empty(t, s.Error())
	result, ok := s.Result()
	require.True(t, ok)
	assert.Equal(t, mockupPNG, result)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, basePhoto, gen.req.BaseImage)
	assert.Equal(t, logoArt, gen.req.LogoImage)
	assert.Equal(t, "  gold leaf lettering on the awning  ", gen.req.Description, "description is sent verbatim")
	assert.Equal(t, "Vehicle Wrap", gen.req.Category)
}

func TestGenerate_RateLimited(t *testing.T) {
	s := readySession(t)
	gen := &stubGenerator{err: &generation.Error{
		Kind:    generation.KindRateLimited,
		Status:  429,
		Message: "Too many requests (429). Wait a moment and try again.",
	}}

	err := s.Generate(context.Background(), gen)
	require.Error(t, err)
	assert.Equal(t, generation.KindRateLimited, generation.KindOf(err))

	assert.Equal(t, AwaitingDescription, s.Step())
	assert.Contains(t, s.Error(), "429")
	_, ok := s.Result()
	assert.False(t, ok)

	base, _ := s.BaseImage()
	logo, _ := s.LogoImage()
	assert.Equal(t, basePhoto, base)
	assert.Equal(t, logoArt, logo)
	assert.Equal(t, "  gold leaf lettering on the awning  ", s.Description())
}

func TestGenerate_TextOnly(t *testing.T) {
	s := readySession(t)
	gen := &stubGenerator{err: &generation.Error{
		Kind:    generation.KindTextOnly,
		Message: "The AI did not generate an image. Response: I can't help with that...",
	}}

	require.Error(t, s.Generate(context.Background(), gen))
	assert.Equal(t, AwaitingDescription, s.Step())
	assert.Contains(t, s.Error(), "I can't help with that")
}

func TestGenerate_UnclassifiedErrorUsesGenericMessage(t *testing.T) {
	s := readySession(t)
	require.Error(t, s.Generate(context.Background(), &stubGenerator{err: errors.New("socket closed")}))
	assert.Equal(t, generation.GenericMessage, s.Error())
	assert.NotContains(t, s.Error(), "socket")
}

func TestGenerate_EmptyImageIsFailure(t *testing.T) {
	s := readySession(t)
	var transitions []Transition
	s.OnTransition(func(tr Transition) { transitions = append(transitions, tr) })

	err := s.Generate(context.Background(), &stubGenerator{})
	require.Error(t, err)
	assert.Equal(t, generation.KindEmpty, generation.KindOf(err))
	assert.Equal(t, AwaitingDescription, s.Step())
	assert.Equal(t, generation.UserMessage(err), s.Error())

	last := transitions[len(transitions)-1]
	assert.Equal(t, CauseFail, last.Cause)
	assert.Equal(t, generation.KindEmpty, last.Kind)
}

func TestCompleteGeneration_EmptyImageRecordsKind(t *testing.T) {
	s := readySession(t)
	var last Transition
	s.OnTransition(func(tr Transition) { last = tr })

	_, ok := s.BeginGeneration()
	require.True(t, ok)
	s.CompleteGeneration(imagedata.Payload{})
	assert.Equal(t, AwaitingDescription, s.Step())
	assert.Equal(t, CauseFail, last.Cause)
	assert.Equal(t, generation.KindEmpty, last.Kind)
}

func TestGenerate_RetryAfterFailureClearsError(t *testing.T) {
	s := readySession(t)
	require.Error(t, s.Generate(context.Background(), &stubGenerator{err: errors.New("boom")}))
	require.NotEmpty(t, s.Error())

	req, ok := s.BeginGeneration()
	require.True(t, ok)
	assert.Empty(t, s.Error(), "error cleared when generation is re-initiated")
	assert.Equal(t, basePhoto, req.BaseImage)

	s.CompleteGeneration(mockupPNG)
	assert.Equal(t, ShowingResult, s.Step())
}

func TestSelectClearsError(t *testing.T) {
	s := readySession(t)
	require.Error(t, s.Generate(context.Background(), &stubGenerator{err: errors.New("boom")}))

	s.Retreat()
	s.Retreat()
	assert.NotEmpty(t, s.Error())
	s.SelectBaseImage(imagedata.New("image/png", []byte("another photo")))
	assert.Empty(t, s.Error())
}

func TestAsyncGeneration(t *testing.T) {
	s := readySession(t)

	_, ok := s.BeginGeneration()
	require.True(t, ok)
	assert.Equal(t, Generating, s.Step())

	t.Run("single outstanding request", func(t *testing.T) {
		_, again := s.BeginGeneration()
		assert.False(t, again)
		assert.False(t, s.CanGenerate())
	})

	t.Run("inputs frozen while generating", func(t *testing.T) {
		assert.False(t, s.SelectBaseImage(logoArt))
		assert.False(t, s.SelectLogoImage(basePhoto))
		assert.False(t, s.SetDescription("changed"))
		assert.False(t, s.SetCategory(CategoryPackaging))
		assert.False(t, s.Advance())
		assert.False(t, s.Retreat())
		assert.Equal(t, Generating, s.Step())
	})

	require.True(t, s.CompleteGeneration(mockupPNG))
	assert.Equal(t, ShowingResult, s.Step())

	t.Run("late outcomes are ignored", func(t *testing.T) {
		assert.False(t, s.FailGeneration(errors.New("late")))
		assert.False(t, s.CompleteGeneration(mockupPNG))
		assert.Equal(t, ShowingResult, s.Step())
		assert.Empty(t, s.Error())
	})

	t.Run("inputs frozen on result", func(t *testing.T) {
		assert.False(t, s.SelectBaseImage(logoArt))
		assert.False(t, s.SetDescription("changed"))
		base, _ := s.BaseImage()
		assert.Equal(t, basePhoto, base)
	})
}

func TestRetreatFromResultClearsResult(t *testing.T) {
	s := readySession(t)
	require.NoError(t, s.Generate(context.Background(), &stubGenerator{img: mockupPNG}))

	assert.True(t, s.Retreat())
	assert.Equal(t, AwaitingDescription, s.Step())
	_, ok := s.Result()
	assert.False(t, ok)
	assert.True(t, s.CanGenerate(), "redo keeps every input")
}

func TestReset(t *testing.T) {
	s := readySession(t)
	s.SetCategory(CategorySignage)
	require.NoError(t, s.Generate(context.Background(), &stubGenerator{img: mockupPNG}))

	s.Reset()
	assert.Equal(t, New().Snapshot(), s.Snapshot())
}

func TestOnTransition(t *testing.T) {
	s := New()
	var seen []Transition
	s.OnTransition(func(tr Transition) { seen = append(seen, tr) })

	s.SelectBaseImage(basePhoto)
	s.Advance()
	s.SelectLogoImage(logoArt)
	s.Advance()
	s.SetDescription("neon sign")
	_ = s.Generate(context.Background(), &stubGenerator{err: &generation.Error{Kind: generation.KindSafety, Message: "blocked"}})
	_ = s.Generate(context.Background(), &stubGenerator{img: mockupPNG})
	s.Reset()

	causes := make([]Cause, len(seen))
	for i, tr := range seen {
		causes[i] = tr.Cause
	}
	assert.Equal(t, []Cause{
		CauseAdvance, CauseAdvance,
		CauseGenerate, CauseFail,
		CauseGenerate, CauseComplete,
		CauseReset,
	}, causes)

	fail := seen[3]
	assert.Equal(t, Generating, fail.From)
	assert.Equal(t, AwaitingDescription, fail.To)
	assert.Equal(t, generation.KindSafety, fail.Kind)
	assert.Equal(t, "blocked", fail.Error)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := readySession(t)
	snap := s.Snapshot()
	snap.BaseImage.Data[0] = 'X'

	base, _ := s.BaseImage()
	assert.Equal(t, basePhoto.Data, base.Data)
	assert.True(t, snap.CanGenerate)
}

func TestSetCategory(t *testing.T) {
	s := New()
	s.SetCategory(CategoryUniform)
	assert.Equal(t, CategoryUniform, s.Category())

	s.SetCategory(Category("Billboard"))
	assert.Equal(t, DefaultCategory, s.Category())
}
