package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/letrabox/mockup/internal/config"
	"github.com/letrabox/mockup/internal/generation"
	"github.com/letrabox/mockup/internal/journal"
	"github.com/letrabox/mockup/internal/logger"
	"github.com/mark3labs/mcp-go/server"
)

// Options configures a Server.
type Options struct {
	Version    string
	Journal    *journal.Store // optional
	OutputFile string         // default output path when the caller gives none
	WorkDir    string         // base for relative paths and hooks config
	RunHooks   bool           // run post_save hooks after writing a mockup
}

// Server exposes the mockup generator as MCP tools, over stdio or HTTP.
type Server struct {
	gen  generation.Generator
	opts Options

	mcpServer  *server.MCPServer
	stdServer  *http.Server
	port       int
	mu         sync.Mutex
	registered bool
}

// New creates a Server that generates with gen. Nothing listens until
// Start, ServeStdio or Handler is used.
func New(gen generation.Generator, opts Options) *Server {
	if opts.OutputFile == "" {
		opts.OutputFile = config.DefaultOutputFile
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Server{gen: gen, opts: opts}
}

// MCP returns the underlying MCP server with every tool registered.
func (s *Server) MCP() *server.MCPServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mcpLocked()
}

func (s *Server) mcpLocked() *server.MCPServer {
	if !s.registered {
		s.mcpServer = server.NewMCPServer(
			"mockup",
			s.opts.Version,
			server.WithToolCapabilities(true),
		)
		s.registerTools()
		s.registered = true
	}
	return s.mcpServer
}

// Handler returns a stateless streamable HTTP handler for mounting under an
// existing router.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.MCP(), server.WithStateLess(true))
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.MCP())
}

// Start serves MCP over HTTP on a random loopback port.
// Returns the port number or an error if startup fails.
func (s *Server) Start(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to find available port: %w", err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(s.mcpLocked(), server.WithStateLess(true)))
	s.stdServer = &http.Server{Handler: mux}

	logger.Debug("Starting MCP server on port %d", s.port)

	// Serve on the pre-opened listener so the port cannot be taken in between.
	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	return s.port, nil
}

// Stop shuts down the HTTP server started by Start.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}

	if err := s.stdServer.Shutdown(context.Background()); err != nil {
		logger.Warn("Error stopping MCP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}
	s.stdServer = nil
	logger.Debug("MCP server stopped")
	return nil
}

// URL returns the HTTP URL for the MCP endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}
