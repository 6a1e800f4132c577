package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/letrabox/mockup/internal/logger"
	"github.com/letrabox/mockup/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpFlags struct {
	http    bool
	hooks   bool
	journal bool
	model   string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP tool server",
	Long: `Run the MCP tool server so agent clients can generate mockups.

Tools:
  generate-mockup   base_path, logo_path, description, category?, output_path?
  list-categories   the available mockup types

By default the server speaks MCP over stdio. With --http it listens on a
random local port and prints the endpoint URL.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpFlags.http, "http", false, "Serve streamable HTTP on a random local port instead of stdio")
	mcpCmd.Flags().BoolVar(&mcpFlags.hooks, "hooks", false, "Run post_save hooks after each mockup is written")
	mcpCmd.Flags().BoolVar(&mcpFlags.journal, "journal", false, "Record sessions in the in-process event journal")
	mcpCmd.Flags().StringVarP(&mcpFlags.model, "model", "m", "", "Gemini model (default: model from config)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newClient(ctx, mcpFlags.model)
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	opts := mcpserver.Options{
		Version:    version,
		OutputFile: cfg.OutputFile,
		WorkDir:    wd,
		RunHooks:   mcpFlags.hooks,
	}
	if mcpFlags.journal {
		j, cleanup, err := openJournal(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		opts.Journal = j.Store
	}

	srv := mcpserver.New(client, opts)
	if !mcpFlags.http {
		// stdout belongs to the protocol
		return srv.ServeStdio()
	}

	if _, err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			logger.Warn("stopping MCP server: %v", err)
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening at %s (ctrl+c to stop)\n", srv.URL())
	<-ctx.Done()
	return nil
}
