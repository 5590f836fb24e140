package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"testforge/internal/analyzer"
	"testforge/internal/git"
	"testforge/internal/runner"
)

var generateTestType string

var generateCmd = &cobra.Command{
	Use:   "generate [files...]",
	Short: "Generate tests for the given Python source files",
	Long: `Generate extracts every function, class method, and method-less class
from the given files and writes one validated test file per target to the
output directory. Targets whose candidates fail validation are reported and
skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateTestType, "test-type", "t", runner.TestTypeUnit,
		"test type to generate: unit, integration, or ui")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	r, cleanup, err := buildRunner(cmd.Context(), cfg, generateTestType, runner.NewCLIProgressReporter(quiet))
	if err != nil {
		return err
	}
	defer cleanup()

	var failedFiles int
	for _, path := range args {
		results, err := r.ProcessFile(cmd.Context(), path, generateTestType)
		if err != nil {
			failedFiles++
			var notFound *analyzer.NotFoundError
			var parseErr *analyzer.ParseError
			switch {
			case errors.As(err, &notFound):
				logger.Error("file not found", zap.String("file", path))
			case errors.As(err, &parseErr):
				logger.Error("source does not parse",
					zap.String("file", path),
					zap.Int("line", parseErr.Line),
					zap.String("detail", parseErr.Message))
			default:
				return err
			}
			continue
		}
		for _, failure := range results.Failed {
			for _, f := range failure.Verdict.Findings {
				logger.Warn("finding",
					zap.String("target", failure.Target),
					zap.String("severity", string(f.Severity)),
					zap.String("message", f.Message))
			}
		}
	}

	if cfg.Git.AutoCommit {
		err := git.TrackGeneratedTests(git.NewOperations(), rootDir, cfg.Output.Dir, cfg.Git.CommitMessage, cfg.Git.Push)
		if err != nil {
			return fmt.Errorf("commit generated tests: %w", err)
		}
	}

	if failedFiles > 0 {
		return fmt.Errorf("%d of %d files could not be processed", failedFiles, len(args))
	}
	return nil
}
