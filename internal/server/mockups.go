package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/letrabox/mockup/internal/imagedata"
	"github.com/letrabox/mockup/internal/journal"
	"github.com/letrabox/mockup/internal/session"
)

// SessionHeader carries the journal session ID of a generation request.
const SessionHeader = "X-Mockup-Session"

// mockupInput is the decoded request, independent of its encoding.
type mockupInput struct {
	Base        imagedata.Payload
	Logo        imagedata.Payload
	Description string
	Category    string
}

// jsonMockupRequest is the JSON body of POST /api/mockups. Images are data
// URIs or bare base64.
type jsonMockupRequest struct {
	BaseImage   string `json:"baseImage"`
	LogoImage   string `json:"logoImage"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (h *Handler) handleCreateMockup(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.opts.MaxUploadBytes {
		RespondError(w, http.StatusRequestEntityTooLarge, "request too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)

	in, err := h.decodeMockupRequest(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(w, http.StatusRequestEntityTooLarge, "request too large")
			return
		}
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := session.New()
	if h.opts.Journal != nil {
		rec := journal.Attach(h.opts.Journal, sess, "http")
		w.Header().Set(SessionHeader, rec.ID())
	}

	sess.SelectBaseImage(in.Base)
	sess.Advance()
	sess.SelectLogoImage(in.Logo)
	sess.Advance()
	sess.SetCategory(session.ParseCategory(in.Category))
	sess.SetDescription(in.Description)

	if !sess.CanGenerate() {
		RespondError(w, http.StatusBadRequest, session.ErrNotReady.Error())
		return
	}

	if err := sess.Generate(r.Context(), h.gen); err != nil {
		RespondGenerationError(w, sess.Error(), err)
		return
	}

	img, _ := sess.Result()
	w.Header().Set("Content-Type", img.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(img.Size()))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": h.opts.OutputFile}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func (h *Handler) decodeMockupRequest(r *http.Request) (mockupInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return h.decodeMultipart(r)
	case "application/json", "":
		return decodeJSON(r)
	default:
		return mockupInput{}, fmt.Errorf("unsupported content type %q", mediaType)
	}
}

func (h *Handler) decodeMultipart(r *http.Request) (mockupInput, error) {
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		return mockupInput{}, err
	}

	base, err := formImage(r, "base")
	if err != nil {
		return mockupInput{}, err
	}
	logo, err := formImage(r, "logo")
	if err != nil {
		return mockupInput{}, err
	}

	return mockupInput{
		Base:        base,
		Logo:        logo,
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}, nil
}

func formImage(r *http.Request, field string) (imagedata.Payload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return imagedata.Payload{}, fmt.Errorf("%s: file is required", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return imagedata.Payload{}, fmt.Errorf("%s: %w", field, err)
	}
	p, err := imagedata.FromBytes(header.Filename, data)
	if err != nil {
		return imagedata.Payload{}, fmt.Errorf("%s: %w", field, err)
	}
	return p, nil
}

func decodeJSON(r *http.Request) (mockupInput, error) {
	var req jsonMockupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return mockupInput{}, err
		}
		return mockupInput{}, errors.New("invalid JSON body")
	}

	base, err := parseImageField("baseImage", req.BaseImage)
	if err != nil {
		return mockupInput{}, err
	}
	logo, err := parseImageField("logoImage", req.LogoImage)
	if err != nil {
		return mockupInput{}, err
	}

	return mockupInput{
		Base:        base,
		Logo:        logo,
		Description: req.Description,
		Category:    req.Category,
	}, nil
}

func parseImageField(field, value string) (imagedata.Payload, error) {
	if strings.TrimSpace(value) == "" {
		return imagedata.Payload{}, fmt.Errorf("%s is required", field)
	}
	p, err := imagedata.Parse(value)
	if err != nil {
		return imagedata.Payload{}, fmt.Errorf("%s: %w", field, err)
	}
	if !imagedata.IsImageType(p.MediaType) {
		return imagedata.Payload{}, fmt.Errorf("%s: %w (got %s)", field, imagedata.ErrNotImage, p.MediaType)
	}
	return p, nil
}
