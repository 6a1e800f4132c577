package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config discovery at an empty temp dir and clears env vars
// that would leak the developer's own settings into the test.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	for _, key := range []string{"MOCKUP_API_KEY", "GEMINI_API_KEY", "API_KEY", "MOCKUP_MODEL", "MOCKUP_OUTPUT_FILE", "MOCKUP_LOG_LEVEL", "MOCKUP_BRAND"} {
		t.Setenv(key, "")
	}
	return tmpDir
}

func TestGlobalPath(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		assert.Equal(t, "/custom/config/mockup/mockup.yml", GlobalPath())
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		got := GlobalPath()
		assert.True(t, filepath.IsAbs(got), "GlobalPath() should return absolute path, got %v", got)
		assert.Equal(t, "mockup.yml", filepath.Base(got))
	})
}

func TestProjectPath(t *testing.T) {
	assert.Equal(t, "mockup.yml", ProjectPath())
}

func TestExists(t *testing.T) {
	isolate(t)

	assert.False(t, Exists(), "no config files yet")

	require.NoError(t, os.WriteFile(ProjectPath(), []byte("model: test\n"), 0644))
	assert.True(t, Exists())
	require.NoError(t, os.Remove(ProjectPath()))

	require.NoError(t, WriteGlobal(&Config{Model: "test"}))
	assert.True(t, Exists())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.APIKey)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultOutputFile, cfg.OutputFile)
	assert.Equal(t, DefaultBrand, cfg.Brand)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	isolate(t)

	require.NoError(t, WriteGlobal(&Config{
		Model:    "global/model",
		Brand:    "Global Signs",
		LogLevel: "warn",
	}))
	require.NoError(t, os.WriteFile(ProjectPath(), []byte("model: project/model\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "project/model", cfg.Model)
	assert.Equal(t, "Global Signs", cfg.Brand, "unset project keys fall through to global")
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	isolate(t)

	require.NoError(t, os.WriteFile(ProjectPath(), []byte("model: file/model\noutput_file: file.png\n"), 0644))
	t.Setenv("MOCKUP_MODEL", "env/model")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env/model", cfg.Model)
	assert.Equal(t, "file.png", cfg.OutputFile)
}

func TestLoad_APIKeyFallbackEnv(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "  gemini-key-1234  ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini-key-1234", cfg.APIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	// godotenv never overrides a variable that exists, even when empty.
	// isolate's t.Setenv restores the original value on cleanup.
	require.NoError(t, os.Unsetenv("MOCKUP_API_KEY"))
	require.NoError(t, os.WriteFile(DotEnvPath, []byte("MOCKUP_API_KEY=from-dotenv-key\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv-key", cfg.APIKey)
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(ProjectPath(), []byte("model: [unterminated\n"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestWriteProject(t *testing.T) {
	isolate(t)

	require.NoError(t, WriteProject(&Config{
		APIKey:     "secret-key",
		Model:      "project/model",
		OutputFile: "out.png",
		LogLevel:   "debug",
	}))

	info, err := os.Stat(ProjectPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(ProjectPath())
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "api_key: secret-key")
	assert.Contains(t, content, "model: project/model")
	assert.Contains(t, content, "output_file: out.png")
	assert.Contains(t, content, "log_level: debug")
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"undefined", "undefined", true},
		{"undefined embedded", "key-undefined", true},
		{"null", "NULL", true},
		{"template", "<your key here>", true},
		{"your-api-key", "your-api-key", true},
		{"masked", "xxxxxxxx", true},
		{"real looking", "AIzaSyA-1234567890abcdef", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMissingAPIKey))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "***", Redact("abc"))
	assert.Equal(t, "********cdef", Redact("0123456789cdef"[2:]))
}
