package hooks

// Config is the top-level configuration for hooks loaded from .mockup.hooks.yml.
type Config struct {
	Version int         `yaml:"version"`
	Hooks   HooksConfig `yaml:"hooks"`
}

// HooksConfig contains all hook configurations.
type HooksConfig struct {
	// PostSave runs after a mockup has been written to disk.
	PostSave []*HookConfig `yaml:"post_save"`
}

// HookConfig defines a single hook's configuration.
type HookConfig struct {
	Command    string `yaml:"command"`
	Timeout    int    `yaml:"timeout"`     // seconds, default 30
	PipeOutput bool   `yaml:"pipe_output"` // include stdout in the combined result
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30
