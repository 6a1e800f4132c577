package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/letrabox/mockup/internal/generation"
	"github.com/letrabox/mockup/internal/hooks"
	"github.com/letrabox/mockup/internal/imagedata"
	"github.com/letrabox/mockup/internal/logger"
	"github.com/letrabox/mockup/internal/session"
	"github.com/spf13/cobra"
)

var generateFlags struct {
	base        string
	logo        string
	description string
	descFile    string
	category    string
	output      string
	project     string
	model       string
	hooks       bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a mockup without the interactive wizard",
	Long: `Generate a mockup from a base photo, a logo and a description.

The result is written to --output, to <project>-mockup.png with --project, or
to output_file from config. Failures are reported with the same messages the
wizard shows; rate limits and server errors are marked as retryable.`,
	Example: `  mockup generate --base facade.jpg --logo logo.png \
    --description "Backlit acrylic letters centered above the door" \
    --category signage --project "Acme Bakery"`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateFlags.base, "base", "b", "", "Base photo of the site or object (required)")
	generateCmd.Flags().StringVarP(&generateFlags.logo, "logo", "l", "", "Logo image (required)")
	generateCmd.Flags().StringVarP(&generateFlags.description, "description", "d", "", "How the logo should be applied")
	generateCmd.Flags().StringVar(&generateFlags.descFile, "description-file", "", "Read the description from a file ('-' for stdin)")
	generateCmd.Flags().StringVarP(&generateFlags.category, "category", "c", "", "Mockup type: "+categoryList())
	generateCmd.Flags().StringVarP(&generateFlags.output, "output", "o", "", "Output file")
	generateCmd.Flags().StringVarP(&generateFlags.project, "project", "p", "", "Project name; writes <project>-mockup.png")
	generateCmd.Flags().StringVarP(&generateFlags.model, "model", "m", "", "Gemini model (default: model from config)")
	generateCmd.Flags().BoolVar(&generateFlags.hooks, "hooks", false, "Run post_save hooks from .mockup.hooks.yml")
	_ = generateCmd.MarkFlagRequired("base")
	_ = generateCmd.MarkFlagRequired("logo")
}

func categoryList() string {
	labels := make([]string, len(session.Categories))
	for i, c := range session.Categories {
		labels[i] = c.Slug()
	}
	return strings.Join(labels, ", ")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	description, err := readDescription(generateFlags.description, generateFlags.descFile)
	if err != nil {
		return err
	}

	category := defaultCategory()
	if generateFlags.category != "" {
		c, ok := session.LookupCategory(generateFlags.category)
		if !ok {
			return fmt.Errorf("unknown category %q (choose from: %s)", generateFlags.category, categoryList())
		}
		category = c
	}

	// Credentials are checked before any file is read
	client, err := newClient(ctx, generateFlags.model)
	if err != nil {
		return err
	}

	base, err := imagedata.FromFile(generateFlags.base)
	if err != nil {
		return fmt.Errorf("base image: %w", err)
	}
	logo, err := imagedata.FromFile(generateFlags.logo)
	if err != nil {
		return fmt.Errorf("logo image: %w", err)
	}

	sess := session.New()
	sess.SelectBaseImage(base)
	sess.Advance()
	sess.SelectLogoImage(logo)
	sess.Advance()
	sess.SetCategory(category)
	sess.SetDescription(description)

	if !sess.CanGenerate() {
		return fmt.Errorf("%w\n\nUse --description or --description-file", session.ErrNotReady)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Generating %s mockup with %s...\n", category.Label(), client.Model())
	if err := sess.Generate(ctx, client); err != nil {
		if errors.Is(err, session.ErrNotReady) {
			return err
		}
		return fmt.Errorf("%s (kind: %s, retryable: %t)", sess.Error(), generation.KindOf(err), generation.IsRetryable(err))
	}

	img, _ := sess.Result()
	path := outputPath(generateFlags.output, generateFlags.project)
	if err := imagedata.WriteFile(path, img); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Mockup saved to %s (%s)\n", path, imagedata.HumanSize(img.Size()))

	if generateFlags.hooks {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		out, err := hooks.RunPostSave(ctx, wd, hooks.Variables{Output: path, Category: category.Label()})
		if err != nil {
			logger.Warn("post_save hooks failed: %v", err)
			return fmt.Errorf("post_save hooks: %w", err)
		}
		if out != "" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
	}
	return nil
}

// readDescription returns the inline description or the contents of file,
// with "-" meaning stdin.
func readDescription(inline, file string) (string, error) {
	if file == "" {
		return inline, nil
	}
	if inline != "" {
		return "", fmt.Errorf("use either --description or --description-file, not both")
	}

	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("reading description: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
