package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/letrabox/mockup/internal/logger"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the hooks configuration file.
const ConfigFileName = ".mockup.hooks.yml"

// LoadConfig loads the hooks configuration from workDir.
// Returns nil if the file doesn't exist; hooks are optional.
func LoadConfig(workDir string) (*Config, error) {
	configPath := filepath.Join(workDir, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No hooks config found at %s", configPath)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	logger.Debug("Loaded hooks config from %s (version: %d, post_save: %d)", configPath, cfg.Version, len(cfg.Hooks.PostSave))
	return &cfg, nil
}

// Variables holds values expanded in hook commands.
type Variables struct {
	Output   string // path of the saved mockup
	Category string
	Session  string // journal session ID, when available
}

// Execute runs a hook command and returns its output.
// {{output}}, {{category}} and {{session}} are expanded before execution.
// Failures and timeouts are reported in the output with a nil error; only
// cancellation of ctx is returned as an error.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables) (string, error) {
	if hook == nil || hook.Command == "" {
		return "", nil
	}

	command := expandVariables(hook.Command, vars)
	logger.Debug("Executing hook command: %s", command)

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if execCtx.Err() == context.DeadlineExceeded {
		logger.Warn("Hook command timed out after %ds: %s", timeout, command)
		return fmt.Sprintf("[Hook timed out after %ds]\nPartial output:\n%s", timeout, stdout.String()), nil
	}

	if err != nil {
		logger.Warn("Hook command failed: %v", err)
		output := stdout.String()
		if stderr.Len() > 0 {
			output += "\n[stderr]\n" + stderr.String()
		}
		return fmt.Sprintf("[Hook command failed: %v]\n%s", err, output), nil
	}

	output := stdout.String()
	if stderr.Len() > 0 {
		logger.Debug("Hook stderr: %s", stderr.String())
		output += "\n[stderr]\n" + stderr.String()
	}
	return output, nil
}

// ExecuteAllPiped runs hooks in order and joins the output of those with
// PipeOutput set, separated by blank lines. Non-empty results end in a
// single newline.
func ExecuteAllPiped(ctx context.Context, hooks []*HookConfig, workDir string, vars Variables) (string, error) {
	var parts []string
	for _, hook := range hooks {
		output, err := Execute(ctx, hook, workDir, vars)
		if err != nil {
			return "", err
		}
		output = strings.TrimRight(output, "\n")
		if hook.PipeOutput && output != "" {
			parts = append(parts, output)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

// RunPostSave loads the hooks config from workDir and runs its post_save
// hooks. It returns "" when no config exists.
func RunPostSave(ctx context.Context, workDir string, vars Variables) (string, error) {
	cfg, err := LoadConfig(workDir)
	if err != nil || cfg == nil {
		return "", err
	}
	return ExecuteAllPiped(ctx, cfg.Hooks.PostSave, workDir, vars)
}

// expandVariables replaces {{variable}} placeholders in the command string.
// Values are shell-quoted so paths with spaces survive sh -c.
func expandVariables(command string, vars Variables) string {
	return strings.NewReplacer(
		"{{output}}", shellQuote(vars.Output),
		"{{category}}", shellQuote(vars.Category),
		"{{session}}", shellQuote(vars.Session),
	).Replace(command)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
