package main

import (
	"fmt"
	"os"

	"github.com/letrabox/mockup/internal/logger"
	"github.com/letrabox/mockup/internal/session"
	"github.com/letrabox/mockup/internal/tui/mockwizard"
	"github.com/spf13/cobra"
)

var wizardFlags struct {
	output   string
	project  string
	category string
	hooks    bool
	journal  bool
	model    string
}

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Create a mockup step by step in the terminal",
	Long: `Create a mockup step by step in the terminal.

The wizard walks through five steps: pick the base photo, pick the logo,
describe the application (and choose the mockup type), generate, and review
the result. From the result you can save it, go back and refine the
description, or start a new project.`,
	RunE: runWizard,
}

func init() {
	wizardCmd.Flags().StringVarP(&wizardFlags.output, "output", "o", "", "Output file for saved mockups (default: output_file from config)")
	wizardCmd.Flags().StringVarP(&wizardFlags.project, "project", "p", "", "Project name; saves as <project>-mockup.png")
	wizardCmd.Flags().StringVarP(&wizardFlags.category, "category", "c", "", "Initial mockup type")
	wizardCmd.Flags().BoolVar(&wizardFlags.hooks, "hooks", true, "Run post_save hooks from .mockup.hooks.yml after saving")
	wizardCmd.Flags().BoolVar(&wizardFlags.journal, "journal", true, "Record the session in the in-process event journal")
	wizardCmd.Flags().StringVarP(&wizardFlags.model, "model", "m", "", "Gemini model (default: model from config)")
}

func runWizard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := newClient(ctx, wizardFlags.model)
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	category := defaultCategory()
	if wizardFlags.category != "" {
		category = session.ParseCategory(wizardFlags.category)
	}

	opts := mockwizard.Options{
		Generator:  client,
		OutputPath: outputPath(wizardFlags.output, wizardFlags.project),
		WorkDir:    wd,
		RunHooks:   wizardFlags.hooks,
		Brand:      cfg.Brand,
		Category:   category,
	}

	if wizardFlags.journal {
		j, cleanup, err := openJournal(ctx)
		if err != nil {
			// The wizard works without a journal
			logger.Warn("journal disabled: %v", err)
		} else {
			defer cleanup()
			opts.Journal = j.Store
		}
	}

	return mockwizard.Run(ctx, opts)
}
