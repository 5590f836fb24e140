package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"testforge/internal/runner"
	"testforge/internal/watcher"
)

var watchTestType string

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Watch directories and regenerate tests when sources change",
	Long: `Watch monitors the given directories (default: the project root) for
Python source changes and regenerates tests for each changed file after a
quiet period. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchTestType, "test-type", "t", runner.TestTypeUnit,
		"test type to generate: unit, integration, or ui")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dirs := args
	if len(dirs) == 0 {
		dirs = []string{rootDir}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, cleanup, err := buildRunner(ctx, cfg, watchTestType, runner.NoopReporter{})
	if err != nil {
		return err
	}
	defer cleanup()

	w, err := watcher.New(dirs, cfg.Watch.Extensions, cfg.Watch.Debounce(), logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	err = w.Start(ctx, func(files []string) {
		for _, path := range files {
			results, err := r.ProcessFile(ctx, path, watchTestType)
			if err != nil {
				logger.Warn("regeneration failed", zap.String("file", path), zap.Error(err))
				continue
			}
			logger.Info("regenerated",
				zap.String("file", path),
				zap.Int("written", len(results.Generated)),
				zap.Int("failed", len(results.Failed)))
		}
	})
	if err != nil {
		return err
	}

	logger.Info("watching for changes", zap.Strings("dirs", dirs))
	<-ctx.Done()
	return nil
}
