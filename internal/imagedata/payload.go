// Package imagedata holds the encoded image payload exchanged between the
// wizard, the generation client and the output surfaces.
package imagedata

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Media types used by the generation contract.
const (
	MediaTypePNG = "image/png"
	// FallbackMediaType is assumed for bare base64 input with no declared type.
	FallbackMediaType = "image/jpeg"
)

var (
	// ErrNotImage is returned when a file's detected type is not image/*.
	ErrNotImage = errors.New("not an image")
	// ErrEmpty is returned for zero-length image data.
	ErrEmpty = errors.New("empty image data")
)

// Payload is an image's raw bytes plus its declared media type.
type Payload struct {
	MediaType string
	Data      []byte
}

// New builds a payload, defaulting an empty media type to FallbackMediaType.
func New(mediaType string, data []byte) Payload {
	if mediaType == "" {
		mediaType = FallbackMediaType
	}
	return Payload{MediaType: mediaType, Data: data}
}

// IsZero reports whether the payload carries no image data.
func (p Payload) IsZero() bool {
	return len(p.Data) == 0
}

// Size returns the payload size in bytes.
func (p Payload) Size() int {
	return len(p.Data)
}

// Base64 returns the standard base64 encoding of the data.
func (p Payload) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// DataURI returns the payload as a self-describing data URI.
func (p Payload) DataURI() string {
	return "data:" + p.MediaType + ";base64," + p.Base64()
}

// String summarizes the payload without dumping its bytes.
func (p Payload) String() string {
	return fmt.Sprintf("%s (%s)", p.MediaType, HumanSize(len(p.Data)))
}

var dataURIPattern = regexp.MustCompile(`^data:([A-Za-z0-9.+-]+/[A-Za-z0-9.+-]+)?(;[^,]*)?,(.*)$`)

// Parse accepts either a data URI ("data:image/png;base64,....") or a bare
// base64 string and returns the decoded payload. Bare base64 is tagged with
// FallbackMediaType.
func Parse(s string) (Payload, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Payload{}, ErrEmpty
	}

	mediaType := FallbackMediaType
	encoded := s
	if strings.HasPrefix(s, "data:") {
		m := dataURIPattern.FindStringSubmatch(s)
		if m == nil {
			return Payload{}, fmt.Errorf("malformed data URI")
		}
		if !strings.Contains(m[2], ";base64") {
			return Payload{}, fmt.Errorf("data URI is not base64 encoded")
		}
		if m[1] != "" {
			mediaType = strings.ToLower(m[1])
		}
		encoded = m[3]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// Some encoders drop the padding.
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if err != nil {
			return Payload{}, fmt.Errorf("decoding base64 image: %w", err)
		}
	}
	if len(data) == 0 {
		return Payload{}, ErrEmpty
	}
	return Payload{MediaType: mediaType, Data: data}, nil
}

// Detect returns the media type of data, sniffing the content first and
// falling back to the file extension of name.
func Detect(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		if i := strings.Index(byExt, ";"); i >= 0 {
			byExt = byExt[:i]
		}
		return byExt
	}
	return sniffed
}

// IsImageType reports whether mediaType is an image/* type.
func IsImageType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(mediaType), "image/")
}

// FromBytes builds a payload from raw file content, returning ErrNotImage
// when the detected type is not an image.
func FromBytes(name string, data []byte) (Payload, error) {
	if len(data) == 0 {
		return Payload{}, ErrEmpty
	}
	mediaType := Detect(name, data)
	if !IsImageType(mediaType) {
		return Payload{}, fmt.Errorf("%s: %w (detected %s)", filepath.Base(name), ErrNotImage, mediaType)
	}
	return Payload{MediaType: mediaType, Data: data}, nil
}

// FromFile reads a local file into a payload.
func FromFile(path string) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("reading image: %w", err)
	}
	return FromBytes(path, data)
}

// WriteFile saves the payload's raw bytes to path, creating parent directories.
func WriteFile(path string, p Payload) error {
	if p.IsZero() {
		return ErrEmpty
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, p.Data, 0644); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	return nil
}

// imageExtensions are the extensions offered by file pickers.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".heic": true,
	".heif": true,
	".bmp":  true,
}

// HasImageExtension reports whether name carries a known image extension.
func HasImageExtension(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// HumanSize formats a byte count for display.
func HumanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
