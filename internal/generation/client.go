// Package generation calls the hosted image model that composites a logo onto
// a base photograph, and classifies every failure into a Kind.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/letrabox/mockup/internal/config"
	"github.com/letrabox/mockup/internal/imagedata"
	"github.com/letrabox/mockup/internal/logger"
	"google.golang.org/genai"
)

// ContentGenerator is the subset of the genai Models service the client uses.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator produces a mockup for a request. *Client implements it; tests
// and alternative surfaces may substitute their own.
type Generator interface {
	Generate(ctx context.Context, req Request) (imagedata.Payload, error)
}

// Request is one generation input: both images, the description and the
// category label.
type Request struct {
	BaseImage   imagedata.Payload
	LogoImage   imagedata.Payload
	Description string
	Category    string
}

// Options configures a Client.
type Options struct {
	APIKey   string
	Model    string
	Brand    string
	Template string // prompt template content; empty selects the default
}

// Client sends generation requests to the model. It performs exactly one
// attempt per call.
type Client struct {
	gen      ContentGenerator
	model    string
	brand    string
	template string
}

// New validates the API key and creates a Client backed by the Gemini API.
// A missing or placeholder key fails here, before any network call.
func New(ctx context.Context, opts Options) (*Client, error) {
	if err := config.ValidateAPIKey(opts.APIKey); err != nil {
		return nil, credentialError(err)
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return NewWithGenerator(gc.Models, opts), nil
}

// NewWithGenerator creates a Client on top of an existing ContentGenerator.
func NewWithGenerator(gen ContentGenerator, opts Options) *Client {
	model := opts.Model
	if model == "" {
		model = config.DefaultModel
	}
	brand := opts.Brand
	if brand == "" {
		brand = config.DefaultBrand
	}
	return &Client{
		gen:      gen,
		model:    model,
		brand:    brand,
		template: opts.Template,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Prompt returns the instruction that Generate would send for req.
func (c *Client) Prompt(req Request) string {
	return BuildPrompt(c.template, c.brand, req)
}

// Generate sends the instruction plus both images as one multi-part request
// and returns the first inline image of the first candidate as a PNG payload.
func (c *Client) Generate(ctx context.Context, req Request) (imagedata.Payload, error) {
	if req.BaseImage.IsZero() || req.LogoImage.IsZero() {
		return imagedata.Payload{}, &Error{
			Kind:    KindBadRequest,
			Message: "Both the base image and the logo are required.",
		}
	}

	parts := []*genai.Part{
		genai.NewPartFromText(c.Prompt(req)),
		{InlineData: &genai.Blob{MIMEType: req.BaseImage.MediaType, Data: req.BaseImage.Data}},
		{InlineData: &genai.Blob{MIMEType: req.LogoImage.MediaType, Data: req.LogoImage.Data}},
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	logger.Info("Requesting mockup from %s: base=%s logo=%s category=%q", c.model, req.BaseImage, req.LogoImage, req.Category)
	start := time.Now()

	resp, err := c.gen.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		gerr := c.classifyTransport(err)
		logger.Error("Gemini API error after %s: kind=%s status=%d: %v", time.Since(start).Round(time.Millisecond), gerr.Kind, gerr.Status, err)
		return imagedata.Payload{}, gerr
	}

	img, err := extractImage(resp)
	if err != nil {
		var gerr *Error
		if errors.As(err, &gerr) && gerr.Detail != "" {
			logger.Warn("Model returned no image (kind=%s): %s", gerr.Kind, gerr.Detail)
		}
		return imagedata.Payload{}, err
	}

	logger.Info("Mockup generated in %s (%s)", time.Since(start).Round(time.Millisecond), img)
	return img, nil
}

// safetyFinishReasons are finish reasons that mean a policy rejection.
var safetyFinishReasons = map[genai.FinishReason]bool{
	"SAFETY":             true,
	"IMAGE_SAFETY":       true,
	"PROHIBITED_CONTENT": true,
	"BLOCKLIST":          true,
	"SPII":               true,
}

// extractImage applies the response contract: safety first, then the first
// inline image, then a text refusal, otherwise empty.
func extractImage(resp *genai.GenerateContentResponse) (imagedata.Payload, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return imagedata.Payload{}, safetyError(string(resp.PromptFeedback.BlockReason))
		}
		return imagedata.Payload{}, NewEmptyError()
	}

	cand := resp.Candidates[0]
	if cand == nil {
		return imagedata.Payload{}, NewEmptyError()
	}
	if safetyFinishReasons[cand.FinishReason] {
		return imagedata.Payload{}, safetyError(string(cand.FinishReason))
	}
	if cand.FinishReason == "RECITATION" {
		return imagedata.Payload{}, recitationError(string(cand.FinishReason))
	}
	if cand.Content == nil {
		return imagedata.Payload{}, NewEmptyError()
	}

	for _, part := range cand.Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return imagedata.New(imagedata.MediaTypePNG, part.InlineData.Data), nil
		}
	}

	for _, part := range cand.Content.Parts {
		if part != nil && strings.TrimSpace(part.Text) != "" {
			return imagedata.Payload{}, textOnlyError(strings.TrimSpace(part.Text))
		}
	}

	return imagedata.Payload{}, NewEmptyError()
}

// classifyTransport maps an SDK or network error onto a Kind.
func (c *Client) classifyTransport(err error) *Error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.Code, c.model, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return statusError(apiErrPtr.Code, c.model, apiErrPtr.Message, err)
	}
	return &Error{Kind: KindUnknown, Message: GenericMessage, Err: err}
}
