package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a configuration loader rooted at the given directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (TESTFORGE_*)
// 2. Config file (.testforge/config.yml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".testforge")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("TESTFORGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	defaults := Default()
	v.SetDefault("generation.provider", defaults.Generation.Provider)
	v.SetDefault("generation.model", defaults.Generation.Model)
	v.SetDefault("generation.temperature", defaults.Generation.Temperature)
	v.SetDefault("generation.max_tokens", defaults.Generation.MaxTokens)
	v.SetDefault("generation.retries", defaults.Generation.Retries)
	v.SetDefault("generation.api_key_env", defaults.Generation.APIKeyEnv)
	v.SetDefault("validation.resolver", defaults.Validation.Resolver)
	v.SetDefault("validation.python", defaults.Validation.Python)
	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("git.auto_commit", defaults.Git.AutoCommit)
	v.SetDefault("git.push", defaults.Git.Push)
	v.SetDefault("git.commit_message", defaults.Git.CommitMessage)
	v.SetDefault("browser.headless", defaults.Browser.Headless)
	v.SetDefault("browser.base_url", defaults.Browser.BaseURL)
	v.SetDefault("browser.navigation_timeout_ms", defaults.Browser.NavigationTimeoutMs)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
	v.SetDefault("watch.extensions", defaults.Watch.Extensions)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; a malformed one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate rejects configurations that would fail mid-run.
func validate(cfg *Config) error {
	switch cfg.Validation.Resolver {
	case "static", "interpreter":
	default:
		return fmt.Errorf("validation.resolver must be \"static\" or \"interpreter\", got %q", cfg.Validation.Resolver)
	}
	if cfg.Generation.Retries < 1 {
		return fmt.Errorf("generation.retries must be at least 1, got %d", cfg.Generation.Retries)
	}
	if cfg.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	return nil
}
