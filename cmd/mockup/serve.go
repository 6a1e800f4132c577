package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/letrabox/mockup/internal/logger"
	"github.com/letrabox/mockup/internal/mcpserver"
	"github.com/letrabox/mockup/internal/server"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	addr      string
	maxUpload int64
	noMCP     bool
	model     string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mockup HTTP API",
	Long: `Serve the mockup HTTP API.

Endpoints:
  GET  /healthz                 liveness
  GET  /api/categories          mockup types and the default
  POST /api/mockups             multipart (base, logo, description, category) or JSON
  GET  /api/sessions/{id}       attempt history for the X-Mockup-Session header value
  /mcp                          MCP streamable HTTP (generate-mockup, list-categories)`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.addr, "addr", "a", "", "Listen address (default: listen_addr from config)")
	serveCmd.Flags().Int64Var(&serveFlags.maxUpload, "max-upload", server.DefaultMaxUploadBytes, "Maximum request body size in bytes")
	serveCmd.Flags().BoolVar(&serveFlags.noMCP, "no-mcp", false, "Do not mount the MCP endpoint")
	serveCmd.Flags().StringVarP(&serveFlags.model, "model", "m", "", "Gemini model (default: model from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newClient(ctx, serveFlags.model)
	if err != nil {
		return err
	}

	j, cleanup, err := openJournal(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := server.Options{
		Journal:        j.Store,
		OutputFile:     cfg.OutputFile,
		MaxUploadBytes: serveFlags.maxUpload,
		Version:        version,
	}
	if !serveFlags.noMCP {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		opts.MCP = mcpserver.New(client, mcpserver.Options{
			Version:    version,
			Journal:    j.Store,
			OutputFile: cfg.OutputFile,
			WorkDir:    wd,
		}).Handler()
	}

	addr := serveFlags.addr
	if addr == "" {
		addr = cfg.ListenAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(client, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (ctrl+c to stop)\n", addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
