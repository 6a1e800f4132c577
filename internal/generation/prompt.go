package generation

import (
	"github.com/letrabox/mockup/internal/template"
)

// BuildPrompt renders the instruction block for req using tmpl.
// An empty tmpl selects the default template.
func BuildPrompt(tmpl, brand string, req Request) string {
	if tmpl == "" {
		tmpl = template.DefaultTemplate
	}
	return template.Render(tmpl, template.Variables{
		Brand:       brand,
		Category:    req.Category,
		Description: req.Description,
		BaseMIME:    req.BaseImage.MediaType,
		LogoMIME:    req.LogoImage.MediaType,
	})
}
