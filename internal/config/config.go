// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults shared by the CLI, the HTTP server and the wizard.
const (
	DefaultModel      = "gemini-2.5-flash-image"
	DefaultOutputFile = "letrabox-mockup.png"
	DefaultBrand      = "Letrabox"
	DefaultListenAddr = "127.0.0.1:8080"
)

// ErrMissingAPIKey is returned when no usable API key is configured.
var ErrMissingAPIKey = errors.New("API key not configured")

// Config holds all configuration values for mockup.
type Config struct {
	APIKey          string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Model           string `mapstructure:"model" yaml:"model"`
	OutputFile      string `mapstructure:"output_file" yaml:"output_file"`
	DefaultCategory string `mapstructure:"default_category" yaml:"default_category,omitempty"`
	Brand           string `mapstructure:"brand" yaml:"brand"`
	PromptTemplate  string `mapstructure:"prompt_template" yaml:"prompt_template,omitempty"`
	ListenAddr      string `mapstructure:"listen_addr" yaml:"listen_addr"`
	LogLevel        string `mapstructure:"log_level" yaml:"log_level"`
	LogFile         string `mapstructure:"log_file" yaml:"log_file"`
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars (.env included) > project config > XDG global config > defaults
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("mockup")

	v.SetDefault("api_key", "")
	v.SetDefault("model", DefaultModel)
	v.SetDefault("output_file", DefaultOutputFile)
	v.SetDefault("default_category", "")
	v.SetDefault("brand", DefaultBrand)
	v.SetDefault("prompt_template", "")
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	v.SetEnvPrefix("MOCKUP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The key is also accepted under the names other Gemini tooling uses.
	if err := v.BindEnv("api_key", "MOCKUP_API_KEY", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, fmt.Errorf("binding api_key env: %w", err)
	}
	for _, key := range []string{"model", "output_file", "default_category", "brand", "prompt_template", "listen_addr", "log_level", "log_file"} {
		if err := v.BindEnv(key, "MOCKUP_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	return &cfg, nil
}

// loadDotEnv reads ./.env into the process environment without overriding
// variables that are already set.
func loadDotEnv() error {
	if !fileExists(DotEnvPath) {
		return nil
	}
	if err := godotenv.Load(DotEnvPath); err != nil {
		return fmt.Errorf("loading %s: %w", DotEnvPath, err)
	}
	return nil
}

// DotEnvPath is the optional dotenv file read by Load.
const DotEnvPath = ".env"

// ValidateAPIKey fails when key is empty or an obvious placeholder.
func ValidateAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: set MOCKUP_API_KEY (or GEMINI_API_KEY) in the environment, .env, or run 'mockup setup --api-key'", ErrMissingAPIKey)
	}
	if isPlaceholder(key) {
		return fmt.Errorf("%w: %q looks like a placeholder, replace it with a real Gemini API key", ErrMissingAPIKey, Redact(key))
	}
	return nil
}

func isPlaceholder(key string) bool {
	lower := strings.ToLower(key)
	if strings.Contains(lower, "undefined") {
		return true
	}
	switch lower {
	case "null", "nil", "none", "changeme", "change-me", "your-api-key", "your_api_key", "api_key", "todo":
		return true
	}
	if strings.HasPrefix(lower, "<") && strings.HasSuffix(lower, ">") {
		return true
	}
	if strings.Trim(lower, "x*.") == "" {
		return true
	}
	return false
}

// Redact returns key with everything but the last four characters masked.
func Redact(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/mockup/mockup.yml or $XDG_CONFIG_HOME/mockup/mockup.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mockup", "mockup.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mockup", "mockup.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "mockup.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

// Marshal renders cfg as the YAML written by WriteGlobal and WriteProject.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

func write(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	// The file may carry the API key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
