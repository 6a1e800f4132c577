package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/letrabox/mockup/internal/config"
	"github.com/letrabox/mockup/internal/generation"
	"github.com/letrabox/mockup/internal/journal"
	"github.com/letrabox/mockup/internal/logger"
	"github.com/letrabox/mockup/internal/session"
	"github.com/letrabox/mockup/internal/template"
)

// cfg is loaded once per invocation by the root command's pre-run hook.
var cfg *config.Config

func loadConfig() error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	logger.Debug("config loaded (model=%s, output=%s)", cfg.Model, cfg.OutputFile)
	return nil
}

// promptTemplate returns the configured instruction template.
func promptTemplate() (string, error) {
	tmpl, err := template.GetTemplate(cfg.PromptTemplate)
	if err != nil {
		return "", err
	}
	if missing := template.MissingPlaceholders(tmpl); len(missing) > 0 {
		logger.Warn("prompt template is missing placeholders: %s", strings.Join(missing, ", "))
	}
	return tmpl, nil
}

// newClient builds the Gemini client. A missing or placeholder API key fails
// here, before any input is collected.
func newClient(ctx context.Context, model string) (*generation.Client, error) {
	tmpl, err := promptTemplate()
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = cfg.Model
	}
	return generation.New(ctx, generation.Options{
		APIKey:   cfg.APIKey,
		Model:    model,
		Brand:    cfg.Brand,
		Template: tmpl,
	})
}

// defaultCategory resolves the configured default category.
func defaultCategory() session.Category {
	return session.ParseCategory(cfg.DefaultCategory)
}

// outputPath picks the file to write: an explicit path wins, then a
// project-derived name, then the configured default.
func outputPath(explicit, project string) string {
	if explicit != "" {
		return explicit
	}
	if s := slug.Make(project); s != "" {
		return s + "-mockup.png"
	}
	return cfg.OutputFile
}

// openJournal starts the in-process event journal in a scratch directory.
// The returned cleanup stops the bus and removes the directory.
func openJournal(ctx context.Context) (*journal.Journal, func(), error) {
	dir, err := os.MkdirTemp("", "mockup-journal-*")
	if err != nil {
		return nil, nil, fmt.Errorf("creating journal directory: %w", err)
	}
	j, err := journal.Open(ctx, filepath.Join(dir, "nats"))
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, nil, err
	}
	cleanup := func() {
		if err := j.Close(); err != nil {
			logger.Warn("closing journal: %v", err)
		}
		_ = os.RemoveAll(dir)
	}
	return j, cleanup, nil
}
