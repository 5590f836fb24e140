package runner

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressReporter receives notifications as targets are processed.
type ProgressReporter interface {
	OnExtractionComplete(sourceFile string, totalTargets int)
	OnTargetProcessed(target string, valid bool)
	OnFileComplete(generated, failed int)
}

// NoopReporter discards all progress events. Used by the watch loop and tests.
type NoopReporter struct{}

func (NoopReporter) OnExtractionComplete(string, int) {}
func (NoopReporter) OnTargetProcessed(string, bool)   {}
func (NoopReporter) OnFileComplete(int, int)          {}

// CLIProgressReporter renders a progress bar for interactive runs.
type CLIProgressReporter struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a CLI progress reporter. When quiet is true
// all output is suppressed.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

func (c *CLIProgressReporter) OnExtractionComplete(sourceFile string, totalTargets int) {
	if c.quiet {
		return
	}
	fmt.Printf("Generating tests for %d targets in %s\n", totalTargets, sourceFile)

	c.bar = progressbar.NewOptions(totalTargets,
		progressbar.OptionSetDescription("Generating tests"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("targets/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnTargetProcessed(target string, valid bool) {
	if c.quiet || c.bar == nil {
		return
	}
	c.bar.Add(1)
}

func (c *CLIProgressReporter) OnFileComplete(generated, failed int) {
	if c.quiet {
		return
	}
	if failed > 0 {
		fmt.Printf("Done: %d test files written, %d targets failed validation\n", generated, failed)
		return
	}
	fmt.Printf("Done: %d test files written\n", generated)
}
