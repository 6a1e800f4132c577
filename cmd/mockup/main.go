package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/letrabox/mockup/internal/logger"
	"github.com/letrabox/mockup/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "█▀▄▀█ █▀█ █▀▀ █▄▀ █ █ █▀█"
	logoText2 = "█ ▀ █ █▄█ █▄▄ █ █ █▄█ █▀▀"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mockup",
	Short: "AI mockups of your logo applied to storefronts, vehicles, signage and more",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

mockup applies a logo to a photo of a real site or object (a facade, a
vehicle, a wall, a uniform) using Gemini image generation, following your
description of materials, lighting and placement.

Run 'mockup wizard' for the interactive terminal flow, 'mockup generate' for
scripts, or 'mockup serve' to expose the HTTP API and MCP tool.

Configuration precedence:
  CLI flags > Environment variables (.env included) > Project config > Global config > Defaults

Project config: ./mockup.yml
Global config: ~/.config/mockup/mockup.yml`

	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(doctorCmd)
}
