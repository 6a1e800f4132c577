package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/letrabox/mockup/internal/generation"
	"github.com/letrabox/mockup/internal/hooks"
	"github.com/letrabox/mockup/internal/imagedata"
	"github.com/letrabox/mockup/internal/journal"
	"github.com/letrabox/mockup/internal/logger"
	"github.com/letrabox/mockup/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrOutsideWorkDir rejects tool paths that escape the working directory.
var ErrOutsideWorkDir = errors.New("path is outside the working directory")

// registerTools registers the generate-mockup and list-categories tools.
func (s *Server) registerTools() {
	labels := make([]string, len(session.Categories))
	for i, c := range session.Categories {
		labels[i] = c.Label()
	}

	s.mcpServer.AddTool(
		mcp.NewTool("generate-mockup",
			mcp.WithDescription("Composite a logo onto a photograph as a photorealistic branded mockup and save it as PNG"),
			mcp.WithString("base_path", mcp.Required(),
				mcp.Description("Path to the base photograph (facade, vehicle, wall, ...), inside the working directory"),
			),
			mcp.WithString("logo_path", mcp.Required(),
				mcp.Description("Path to the logo image, inside the working directory"),
			),
			mcp.WithString("description", mcp.Required(),
				mcp.Description("How the logo should be applied: materials, placement, lighting"),
			),
			mcp.WithString("category",
				mcp.Description("Application type; defaults to "+session.DefaultCategory.Label()),
				mcp.Enum(labels...),
			),
			mcp.WithString("output_path",
				mcp.Description("Where to write the PNG, inside the working directory; defaults to "+s.opts.OutputFile),
			),
		),
		s.handleGenerateMockup,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list-categories",
			mcp.WithDescription("List the supported mockup application types"),
		),
		s.handleListCategories,
	)
}

// handleGenerateMockup drives a fresh session through the wizard steps and
// writes the result.
func (s *Server) handleGenerateMockup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}

	basePath, _ := args["base_path"].(string)
	logoPath, _ := args["logo_path"].(string)
	description, _ := args["description"].(string)
	category, _ := args["category"].(string)
	outputPath, _ := args["output_path"].(string)

	if basePath == "" || logoPath == "" {
		return mcp.NewToolResultError("base_path and logo_path are required"), nil
	}
	if strings.TrimSpace(description) == "" {
		return mcp.NewToolResultError("description is required"), nil
	}

	if outputPath == "" {
		outputPath = s.opts.OutputFile
	}
	basePath, err := s.resolve(basePath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("base_path: %v", err)), nil
	}
	logoPath, err = s.resolve(logoPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("logo_path: %v", err)), nil
	}
	outputPath, err = s.resolve(outputPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("output_path: %v", err)), nil
	}

	base, err := imagedata.FromFile(basePath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("base_path: %v", err)), nil
	}
	logo, err := imagedata.FromFile(logoPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("logo_path: %v", err)), nil
	}

	sess := session.New()
	var rec *journal.Recorder
	if s.opts.Journal != nil {
		rec = journal.Attach(s.opts.Journal, sess, "mcp")
	}

	sess.SelectBaseImage(base)
	sess.Advance()
	sess.SelectLogoImage(logo)
	sess.Advance()
	sess.SetCategory(session.ParseCategory(category))
	sess.SetDescription(description)

	if err := sess.Generate(ctx, s.gen); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s (kind: %s, retryable: %t)",
			sess.Error(), generation.KindOf(err), generation.IsRetryable(err))), nil
	}

	img, _ := sess.Result()
	if err := imagedata.WriteFile(outputPath, img); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save mockup: %v", err)), nil
	}
	logger.Info("MCP mockup saved to %s", outputPath)

	text := fmt.Sprintf("Mockup saved to %s (%s, %s)", outputPath, img.MediaType, imagedata.HumanSize(img.Size()))
	if rec != nil {
		text += "\nSession: " + rec.ID()
	}

	if s.opts.RunHooks {
		vars := hooks.Variables{Output: outputPath, Category: sess.Category().Label()}
		if rec != nil {
			vars.Session = rec.ID()
		}
		hookOutput, err := hooks.RunPostSave(ctx, s.workDir(), vars)
		if err != nil {
			logger.Warn("post_save hooks failed: %v", err)
		} else if hookOutput != "" {
			text += "\n\n" + hookOutput
		}
	}

	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleListCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for i, c := range session.Categories {
		fmt.Fprintf(&b, "- %s", c.Label())
		if i == 0 {
			b.WriteString(" (default)")
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) workDir() string {
	if s.opts.WorkDir == "" {
		return "."
	}
	return s.opts.WorkDir
}

// resolve maps path onto the working directory. Relative paths are joined
// to it; absolute paths are accepted only when they lie inside it.
func (s *Server) resolve(path string) (string, error) {
	root, err := filepath.Abs(s.workDir())
	if err != nil {
		return "", err
	}
	p := path
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	p = filepath.Clean(p)

	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideWorkDir, path)
	}
	return p, nil
}
