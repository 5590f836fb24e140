// Package cli implements the testforge command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"testforge/internal/browser"
	"testforge/internal/config"
	"testforge/internal/generator"
	"testforge/internal/history"
	"testforge/internal/runner"
	"testforge/internal/validator"
)

var (
	rootDir string
	verbose bool
	quiet   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "testforge",
	Short: "testforge - generate and validate Python tests from source signatures",
	Long: `testforge extracts function and class signatures from Python sources,
asks a language model for matching pytest test cases, and only writes the
candidates that survive a static validation battery.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "project root (config is read from <root>/.testforge)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
}

func loadConfig() (*config.Config, error) {
	return config.NewLoader(rootDir).Load()
}

func historyPath() string {
	return filepath.Join(rootDir, ".testforge", "history.db")
}

// buildRunner wires a Runner from the configuration. The returned cleanup
// closes the history store and, in UI mode, the browser.
func buildRunner(ctx context.Context, cfg *config.Config, testType string, reporter runner.ProgressReporter) (*runner.Runner, func(), error) {
	apiKey := os.Getenv(cfg.Generation.APIKeyEnv)
	client, err := generator.NewGeminiClient(ctx, apiKey, cfg.Generation.Model, generator.GeminiOptions{
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Retries:     cfg.Generation.Retries,
	})
	if err != nil {
		return nil, nil, err
	}

	v, err := validator.New(cfg.Validation.Rules(), cfg.Validation.BuildResolver())
	if err != nil {
		return nil, nil, err
	}

	store, err := history.Open(historyPath())
	if err != nil {
		return nil, nil, fmt.Errorf("open history store: %w", err)
	}

	var prober *browser.Prober
	var elementProber runner.ElementProber
	if testType == runner.TestTypeUI && cfg.Browser.BaseURL != "" {
		prober = browser.NewProber(browser.Config{
			Headless:            cfg.Browser.Headless,
			BaseURL:             cfg.Browser.BaseURL,
			NavigationTimeoutMs: cfg.Browser.NavigationTimeoutMs,
		})
		elementProber = prober
	}

	r, err := runner.New(runner.Options{
		Client:    client,
		Validator: v,
		OutputDir: filepath.Join(cfg.Output.Dir, testType),
		Store:     store,
		Prober:    elementProber,
		Reporter:  reporter,
		Logger:    logger,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if prober != nil {
			_ = prober.Close()
		}
		_ = store.Close()
	}
	return r, cleanup, nil
}
