package generation

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a generation attempt failed.
type Kind string

const (
	KindCredential  Kind = "credential"   // missing or placeholder API key, raised before any request
	KindBadRequest  Kind = "bad_request"  // 400-class: payload too large or malformed
	KindPermission  Kind = "permission"   // 401/403/404: key or model access misconfigured
	KindRateLimited Kind = "rate_limited" // 429
	KindUpstream    Kind = "upstream"     // 5xx
	KindSafety      Kind = "safety"       // content-policy rejection
	KindTextOnly    Kind = "text_only"    // model answered with text instead of an image
	KindEmpty       Kind = "empty"        // no candidates or no usable parts
	KindUnknown     Kind = "unknown"
)

// GenericMessage is shown when a failure cannot be classified.
const GenericMessage = "Something went wrong while generating the mockup. Try simplifying the description or using smaller images."

// maxRefusalRunes bounds how much of a text refusal is surfaced to the user.
const maxRefusalRunes = 100

// Error is a classified generation failure. Message is safe to show users.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status when the failure came from the API
	Message string // user-facing sentence
	Detail  string // model text or API message, for logs
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether retrying with the same inputs after a delay may
// succeed. The client never retries on its own.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindUpstream
}

// KindOf returns the classification of err, or KindUnknown.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindUnknown
}

// UserMessage returns the message to store on the session for err.
func UserMessage(err error) string {
	var gerr *Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return gerr.Message
	}
	return GenericMessage
}

// IsRetryable reports whether err is a classified, retryable failure.
func IsRetryable(err error) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.Retryable()
}

func credentialError(err error) *Error {
	return &Error{
		Kind:    KindCredential,
		Message: "API key not configured. Set MOCKUP_API_KEY (or GEMINI_API_KEY) in the environment or a .env file.",
		Err:     err,
	}
}

func safetyError(reason string) *Error {
	return &Error{
		Kind:    KindSafety,
		Message: "The image was blocked by the AI safety filters. Try a different base image.",
		Detail:  reason,
	}
}

func recitationError(reason string) *Error {
	return &Error{
		Kind:    KindEmpty,
		Message: "The AI stopped because the result was too close to existing material. Try rewording the description.",
		Detail:  reason,
	}
}

func textOnlyError(text string) *Error {
	return &Error{
		Kind:    KindTextOnly,
		Message: fmt.Sprintf("The AI did not generate an image. Response: %s...", truncate(text, maxRefusalRunes)),
		Detail:  text,
	}
}

// NewEmptyError is the failure for a response that carries no usable image.
func NewEmptyError() *Error {
	return &Error{
		Kind:    KindEmpty,
		Message: "Could not generate the image. No valid response from the AI.",
	}
}

// statusError classifies an HTTP status returned by the model API.
func statusError(status int, model string, detail string, cause error) *Error {
	e := &Error{Status: status, Detail: detail, Err: cause}
	switch {
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
		e.Message = "Too many requests (429). Wait a moment and try again."
	case status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusNotFound:
		e.Kind = KindPermission
		e.Message = fmt.Sprintf("Permission error (%d). Check your API key and that it has access to the model %s.", status, model)
	case status >= 400 && status < 500:
		e.Kind = KindBadRequest
		e.Message = fmt.Sprintf("Request rejected (%d). Check that the images are not too large or corrupted.", status)
	case status >= 500:
		e.Kind = KindUpstream
		e.Message = fmt.Sprintf("AI server error (%d). Try again in a few moments.", status)
	default:
		e.Kind = KindUnknown
		e.Message = GenericMessage
	}
	return e
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
