// Package template renders the natural-language instruction sent to the
// image model alongside the base photo and the logo.
package template

import (
	"fmt"
	"os"
	"strings"

	"github.com/letrabox/mockup/internal/logger"
)

// Variables holds the data to be injected into template placeholders.
type Variables struct {
	Brand       string // Studio name used in the persona preamble
	Category    string // Application type label
	Description string // User instructions, verbatim
	BaseMIME    string // Media type of the base photograph
	LogoMIME    string // Media type of the logo artwork
}

// Render replaces {{variable}} placeholders in template with actual values.
// Supports the following variables:
// - {{brand}} - Studio name
// - {{category}} - Application type label
// - {{description}} - User description
// - {{base_mime}} - Base image media type
// - {{logo_mime}} - Logo media type
//
// Replacement is single-pass, so placeholder text typed by the user inside
// the description is left as-is.
func Render(template string, vars Variables) string {
	r := strings.NewReplacer(
		"{{brand}}", vars.Brand,
		"{{category}}", vars.Category,
		"{{description}}", vars.Description,
		"{{base_mime}}", vars.BaseMIME,
		"{{logo_mime}}", vars.LogoMIME,
	)
	return r.Replace(template)
}

// LoadFromFile loads a template from a file.
// If the file doesn't exist or can't be read, returns an error.
func LoadFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("template file %s is empty", path)
	}
	return string(data), nil
}

// GetTemplate returns the template content.
// If customPath is non-empty, loads from that file.
// Otherwise returns the default embedded template.
func GetTemplate(customPath string) (string, error) {
	if customPath == "" {
		return DefaultTemplate, nil
	}
	logger.Debug("Using custom prompt template: %s", customPath)
	return LoadFromFile(customPath)
}

// MissingPlaceholders lists the required placeholders a custom template lacks.
// A template without {{description}} would silently drop the user's input.
func MissingPlaceholders(template string) []string {
	var missing []string
	for _, p := range []string{"{{description}}", "{{category}}"} {
		if !strings.Contains(template, p) {
			missing = append(missing, p)
		}
	}
	return missing
}
