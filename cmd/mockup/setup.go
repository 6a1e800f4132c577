package main

import (
	"fmt"
	"os"

	"github.com/letrabox/mockup/internal/config"
	"github.com/letrabox/mockup/internal/session"
	"github.com/spf13/cobra"
)

var setupFlags struct {
	project  bool
	force    bool
	apiKey   string
	model    string
	brand    string
	category string
	print    bool
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create mockup configuration file",
	Long: `Create a mockup configuration file with sensible defaults.

By default, creates a global config at ~/.config/mockup/mockup.yml.
Use --project to create a project-local config in the current directory.

The API key may also be supplied through MOCKUP_API_KEY (or GEMINI_API_KEY)
in the environment or a .env file instead of being stored in the config.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
	setupCmd.Flags().StringVar(&setupFlags.apiKey, "api-key", "", "Gemini API key to store")
	setupCmd.Flags().StringVarP(&setupFlags.model, "model", "m", config.DefaultModel, "Gemini image model")
	setupCmd.Flags().StringVar(&setupFlags.brand, "brand", config.DefaultBrand, "Studio name used in the prompt")
	setupCmd.Flags().StringVarP(&setupFlags.category, "category", "c", "", "Default mockup type")
	setupCmd.Flags().BoolVar(&setupFlags.print, "print", false, "Print the config instead of writing it")
}

func runSetup(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	if setupFlags.apiKey != "" {
		if err := config.ValidateAPIKey(setupFlags.apiKey); err != nil {
			return err
		}
	}

	category := ""
	if setupFlags.category != "" {
		c, ok := session.LookupCategory(setupFlags.category)
		if !ok {
			return fmt.Errorf("unknown category %q (choose from: %s)", setupFlags.category, categoryList())
		}
		category = c.Label()
	}

	newCfg := &config.Config{
		APIKey:          setupFlags.apiKey,
		Model:           setupFlags.model,
		OutputFile:      config.DefaultOutputFile,
		DefaultCategory: category,
		Brand:           setupFlags.brand,
		ListenAddr:      config.DefaultListenAddr,
		LogLevel:        "info",
	}

	data, err := config.Marshal(newCfg)
	if err != nil {
		return err
	}

	out := colorWriter(cmd.OutOrStdout())
	if setupFlags.print {
		fmt.Fprintln(out, syntaxHighlight(string(data), "mockup.yml"))
		return nil
	}

	if fileExists(targetPath) {
		if !setupFlags.force {
			return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
		}
		if current, err := os.ReadFile(targetPath); err == nil {
			if diff := configDiff(targetPath, string(current), string(data)); diff != "" {
				fmt.Fprintln(out, syntaxHighlight(diff, "mockup.diff"))
				fmt.Fprintln(out)
			}
		}
	}

	if setupFlags.project {
		err = config.WriteProject(newCfg)
	} else {
		err = config.WriteGlobal(newCfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(out, "Config written to: %s\n\n", targetPath)
	if setupFlags.apiKey == "" {
		fmt.Fprintln(out, "No API key stored. Set MOCKUP_API_KEY or rerun with --api-key.")
	}
	fmt.Fprintln(out, "Run 'mockup wizard' to get started.")
	return nil
}

// fileExists checks if a file exists (helper for setup command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
