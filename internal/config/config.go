package config

import (
	"time"

	"testforge/internal/validator"
)

// Config is the complete testforge configuration. It can be loaded from
// .testforge/config.yml with TESTFORGE_* environment variable overrides.
type Config struct {
	Generation GenerationConfig `yaml:"generation" mapstructure:"generation"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Git        GitConfig        `yaml:"git" mapstructure:"git"`
	Browser    BrowserConfig    `yaml:"browser" mapstructure:"browser"`
	Watch      WatchConfig      `yaml:"watch" mapstructure:"watch"`
}

// GenerationConfig configures the text-generation provider.
type GenerationConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`       // "gemini"
	Model       string  `yaml:"model" mapstructure:"model"`             // e.g. "gemini-2.0-flash"
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"` // sampling temperature
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`   // output token cap
	Retries     int     `yaml:"retries" mapstructure:"retries"`         // attempts per prompt
	APIKeyEnv   string  `yaml:"api_key_env" mapstructure:"api_key_env"` // env var holding the key
}

// ValidationConfig carries the validator's name/pattern tables and the
// module-resolution policy. Empty lists fall back to the pytest defaults.
type ValidationConfig struct {
	Resolver          string   `yaml:"resolver" mapstructure:"resolver"` // "static" or "interpreter"
	Python            string   `yaml:"python" mapstructure:"python"`     // interpreter binary for the probe resolver
	ExtraModules      []string `yaml:"extra_modules" mapstructure:"extra_modules"`
	Frameworks        []string `yaml:"frameworks" mapstructure:"frameworks"`
	TestPrefix        string   `yaml:"test_prefix" mapstructure:"test_prefix"`
	DangerousCalls    []string `yaml:"dangerous_calls" mapstructure:"dangerous_calls"`
	RiskyImports      []string `yaml:"risky_imports" mapstructure:"risky_imports"`
	AssertionPatterns []string `yaml:"assertion_patterns" mapstructure:"assertion_patterns"`
	MockPatterns      []string `yaml:"mock_patterns" mapstructure:"mock_patterns"`
	CallableTypes     []string `yaml:"callable_types" mapstructure:"callable_types"`
}

// OutputConfig defines where generated tests are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"` // root; the test type is appended as a subdirectory
}

// GitConfig controls committing generated tests back to version control.
type GitConfig struct {
	AutoCommit    bool   `yaml:"auto_commit" mapstructure:"auto_commit"`
	Push          bool   `yaml:"push" mapstructure:"push"`
	CommitMessage string `yaml:"commit_message" mapstructure:"commit_message"`
}

// BrowserConfig configures the headless browser used for UI-mode probing.
type BrowserConfig struct {
	Headless            bool   `yaml:"headless" mapstructure:"headless"`
	BaseURL             string `yaml:"base_url" mapstructure:"base_url"`
	NavigationTimeoutMs int    `yaml:"navigation_timeout_ms" mapstructure:"navigation_timeout_ms"`
}

// WatchConfig configures the regenerate-on-change loop.
type WatchConfig struct {
	DebounceMs int      `yaml:"debounce_ms" mapstructure:"debounce_ms"`
	Extensions []string `yaml:"extensions" mapstructure:"extensions"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			Temperature: 0.7,
			MaxTokens:   1000,
			Retries:     3,
			APIKeyEnv:   "GEMINI_API_KEY",
		},
		Validation: ValidationConfig{
			Resolver: "static",
			Python:   "python3",
		},
		Output: OutputConfig{
			Dir: "tests",
		},
		Git: GitConfig{
			AutoCommit:    false,
			Push:          false,
			CommitMessage: "Auto-generated test cases",
		},
		Browser: BrowserConfig{
			Headless:            true,
			NavigationTimeoutMs: 30000,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
			Extensions: []string{".py"},
		},
	}
}

// Rules assembles the validator rule tables: pytest defaults overridden by
// whatever the config supplies.
func (c *ValidationConfig) Rules() validator.RuleSet {
	rules := validator.DefaultRules()
	if len(c.Frameworks) > 0 {
		rules.Frameworks = c.Frameworks
	}
	if c.TestPrefix != "" {
		rules.TestPrefix = c.TestPrefix
	}
	if len(c.DangerousCalls) > 0 {
		rules.DangerousCalls = c.DangerousCalls
	}
	if len(c.RiskyImports) > 0 {
		rules.RiskyImports = c.RiskyImports
	}
	if len(c.AssertionPatterns) > 0 {
		rules.AssertionPatterns = c.AssertionPatterns
	}
	if len(c.MockPatterns) > 0 {
		rules.MockPatterns = c.MockPatterns
	}
	if len(c.CallableTypes) > 0 {
		rules.CallableTypeNames = c.CallableTypes
	}
	return rules
}

// BuildResolver selects the module-resolution oracle named by the config.
// "static" resolves against the known-modules table plus ExtraModules;
// "interpreter" probes an actual Python environment.
func (c *ValidationConfig) BuildResolver() validator.ModuleResolver {
	if c.Resolver == "interpreter" {
		return &validator.InterpreterResolver{Python: c.Python}
	}
	return validator.NewStaticResolver(append(validator.DefaultKnownModules(), c.ExtraModules...))
}

// Debounce returns the watch debounce as a duration.
func (c *WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
