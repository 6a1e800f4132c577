package main

import (
	"fmt"
	"strings"

	"charm.land/glamour/v2"
	"github.com/letrabox/mockup/internal/generation"
	"github.com/letrabox/mockup/internal/imagedata"
	"github.com/letrabox/mockup/internal/session"
	"github.com/spf13/cobra"
)

var promptFlags struct {
	description string
	category    string
	baseMIME    string
	logoMIME    string
	raw         bool
	width       int
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Show the instruction sent to the image model",
	Long: `Show the instruction sent to the image model for a description.

Useful when writing a custom prompt_template: the output is exactly what the
model receives next to the two images. No API key is needed.`,
	RunE: runPrompt,
}

func init() {
	promptCmd.Flags().StringVarP(&promptFlags.description, "description", "d", "Logo applied where it naturally belongs", "Description to render")
	promptCmd.Flags().StringVarP(&promptFlags.category, "category", "c", "", "Mockup type")
	promptCmd.Flags().StringVar(&promptFlags.baseMIME, "base-mime", "image/jpeg", "Media type of the base image")
	promptCmd.Flags().StringVar(&promptFlags.logoMIME, "logo-mime", imagedata.MediaTypePNG, "Media type of the logo")
	promptCmd.Flags().BoolVar(&promptFlags.raw, "raw", false, "Print plain text instead of rendered markdown")
	promptCmd.Flags().IntVar(&promptFlags.width, "width", 100, "Word wrap width for rendered output")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	tmpl, err := promptTemplate()
	if err != nil {
		return err
	}

	category := defaultCategory()
	if promptFlags.category != "" {
		category = session.ParseCategory(promptFlags.category)
	}

	text := generation.BuildPrompt(tmpl, cfg.Brand, generation.Request{
		BaseImage:   imagedata.Payload{MediaType: promptFlags.baseMIME},
		LogoImage:   imagedata.Payload{MediaType: promptFlags.logoMIME},
		Description: promptFlags.description,
		Category:    category.Label(),
	})

	if promptFlags.raw {
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}
	fmt.Fprintln(colorWriter(cmd.OutOrStdout()), renderMarkdown(text, promptFlags.width))
	return nil
}

// renderMarkdown renders content with glamour, falling back to the plain
// text if rendering fails.
func renderMarkdown(content string, width int) string {
	if width > 120 {
		width = 120
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}
