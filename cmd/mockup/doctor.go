package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/letrabox/mockup/internal/config"
	"github.com/letrabox/mockup/internal/hooks"
	"github.com/letrabox/mockup/internal/session"
	"github.com/letrabox/mockup/internal/template"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and credentials",
	Long: `Check that mockup is ready to generate.

Reports the config files in use, whether a usable API key is present (never
printing it in full), the prompt template, the default category and the
post_save hooks file. Exits non-zero when a check fails.`,
	RunE: runDoctor,
}

// check is one line of the doctor report.
type check struct {
	name   string
	ok     bool
	detail string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	checks := doctorChecks(cfg)
	failed := printChecks(cmd.OutOrStdout(), checks)
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func doctorChecks(c *config.Config) []check {
	var checks []check

	files := []string{}
	for _, p := range []string{config.GlobalPath(), config.ProjectPath(), config.DotEnvPath} {
		if fileExists(p) {
			files = append(files, p)
		}
	}
	if len(files) == 0 {
		checks = append(checks, check{"config", true, "no config files, using environment and defaults"})
	} else {
		checks = append(checks, check{"config", true, strings.Join(files, ", ")})
	}

	if err := config.ValidateAPIKey(c.APIKey); err != nil {
		checks = append(checks, check{"api key", false, err.Error()})
	} else {
		checks = append(checks, check{"api key", true, config.Redact(c.APIKey)})
	}

	checks = append(checks, check{"model", c.Model != "", c.Model})

	tmpl, err := template.GetTemplate(c.PromptTemplate)
	switch {
	case err != nil:
		checks = append(checks, check{"prompt template", false, err.Error()})
	case len(template.MissingPlaceholders(tmpl)) > 0:
		checks = append(checks, check{"prompt template", false, "missing " + strings.Join(template.MissingPlaceholders(tmpl), ", ")})
	case c.PromptTemplate == "":
		checks = append(checks, check{"prompt template", true, "built-in"})
	default:
		checks = append(checks, check{"prompt template", true, c.PromptTemplate})
	}

	if c.DefaultCategory == "" {
		checks = append(checks, check{"default category", true, session.DefaultCategory.Label()})
	} else if cat, ok := session.LookupCategory(c.DefaultCategory); ok {
		checks = append(checks, check{"default category", true, cat.Label()})
	} else {
		checks = append(checks, check{"default category", false, fmt.Sprintf("unknown %q, falls back to %s", c.DefaultCategory, session.DefaultCategory.Label())})
	}

	checks = append(checks, check{"output file", c.OutputFile != "", c.OutputFile})

	hc, err := hooks.LoadConfig(".")
	switch {
	case err != nil:
		checks = append(checks, check{"hooks", false, err.Error()})
	case hc == nil:
		checks = append(checks, check{"hooks", true, "none"})
	default:
		checks = append(checks, check{"hooks", true, fmt.Sprintf("%d post_save hook(s)", len(hc.Hooks.PostSave))})
	}

	return checks
}

// printChecks writes the report and returns the number of failures.
func printChecks(w io.Writer, checks []check) int {
	failed := 0
	for _, c := range checks {
		mark := "✓"
		if !c.ok {
			mark = "✗"
			failed++
		}
		fmt.Fprintf(w, "%s %-17s %s\n", mark, c.name, c.detail)
	}
	return failed
}
