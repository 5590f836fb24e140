// Package runner orchestrates the generate-validate-persist pipeline for a
// single Python source file: extract signatures, prompt the model per target,
// run the validation battery, and write passing tests to disk.
package runner

import (
	"context"
	"fmt"
	"os"

	"github.com/maypok86/otter"
	"go.uber.org/zap"

	"testforge/internal/analyzer"
	"testforge/internal/generator"
	"testforge/internal/history"
	"testforge/internal/validator"
)

// Supported test types.
const (
	TestTypeUnit        = "unit"
	TestTypeIntegration = "integration"
	TestTypeUI          = "ui"
)

const promptCacheSize = 512

// ElementProber verifies a UI element is reachable before a test is
// generated for it. The browser package provides the real implementation.
type ElementProber interface {
	Probe(ctx context.Context, el generator.UIElement) error
}

// GeneratedTest describes one test file written to disk.
type GeneratedTest struct {
	Target  string
	Path    string
	Verdict validator.Verdict
}

// TargetFailure describes a target that produced no test file. Either the
// generation call failed (Err set) or validation rejected the candidate
// (Verdict set).
type TargetFailure struct {
	Target  string
	Err     error
	Verdict validator.Verdict
}

// Results summarizes one ProcessFile invocation.
type Results struct {
	SourceFile string
	RunID      string
	Generated  []GeneratedTest
	Failed     []TargetFailure
}

// Options configures a Runner. Store, Prober, Reporter and Logger are
// optional.
type Options struct {
	Client    generator.TextClient
	Validator *validator.Validator
	OutputDir string
	Store     *history.Store
	Prober    ElementProber
	Reporter  ProgressReporter
	Logger    *zap.Logger
}

// Runner drives test generation for source files.
type Runner struct {
	extractor *analyzer.Extractor
	prompts   *generator.PromptBuilder
	gen       *generator.Generator
	validator *validator.Validator
	store     *history.Store
	prober    ElementProber
	reporter  ProgressReporter
	cache     otter.Cache[string, string]
	outputDir string
	logger    *zap.Logger
}

// New creates a Runner from the given options.
func New(opts Options) (*Runner, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("runner: text client is required")
	}
	if opts.Validator == nil {
		return nil, fmt.Errorf("runner: validator is required")
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("runner: output directory is required")
	}
	prompts, err := generator.NewPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	cache, err := otter.MustBuilder[string, string](promptCacheSize).Build()
	if err != nil {
		return nil, fmt.Errorf("runner: build prompt cache: %w", err)
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = NoopReporter{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		extractor: analyzer.NewExtractor(),
		prompts:   prompts,
		gen:       generator.New(opts.Client),
		validator: opts.Validator,
		store:     opts.Store,
		prober:    opts.Prober,
		reporter:  reporter,
		cache:     cache,
		outputDir: opts.OutputDir,
		logger:    logger,
	}, nil
}

// target is one unit of generation work. For class methods the name is
// "Class_Method"; for method-less classes sig is a synthetic signature
// carrying the class name and docstring.
type target struct {
	name string
	sig  *analyzer.CallableSignature
}

// ProcessFile generates tests of the given type for every function, class
// method, and method-less class in the file. Per-target failures are
// collected in Results; only file-level problems (missing file, unparseable
// source) abort the run.
func (r *Runner) ProcessFile(ctx context.Context, path, testType string) (*Results, error) {
	switch testType {
	case TestTypeUnit, TestTypeIntegration, TestTypeUI:
	default:
		return nil, fmt.Errorf("runner: unknown test type %q", testType)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &analyzer.NotFoundError{Identifier: path}
		}
		return nil, fmt.Errorf("runner: read %s: %w", path, err)
	}

	analysis, err := r.extractor.Extract(source, path)
	if err != nil {
		return nil, err
	}

	targets := collectTargets(analysis)
	r.reporter.OnExtractionComplete(path, len(targets))
	r.logger.Info("extracted targets",
		zap.String("file", path),
		zap.String("test_type", testType),
		zap.Int("targets", len(targets)))

	results := &Results{SourceFile: path}
	if r.store != nil {
		runID, err := r.store.BeginRun(path, testType)
		if err != nil {
			return nil, fmt.Errorf("runner: begin run: %w", err)
		}
		results.RunID = runID
	}

	for _, tgt := range targets {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r.processTarget(ctx, tgt, testType, results)
	}

	if r.store != nil {
		if err := r.store.FinishRun(results.RunID); err != nil {
			r.logger.Warn("finish run", zap.Error(err))
		}
	}
	r.reporter.OnFileComplete(len(results.Generated), len(results.Failed))
	return results, nil
}

func (r *Runner) processTarget(ctx context.Context, tgt target, testType string, results *Results) {
	fail := func(err error, verdict validator.Verdict) {
		r.logger.Warn("target failed",
			zap.String("target", tgt.name),
			zap.Error(err),
			zap.Int("findings", len(verdict.Findings)))
		results.Failed = append(results.Failed, TargetFailure{Target: tgt.name, Err: err, Verdict: verdict})
		r.recordAttempt(results.RunID, tgt.name, verdict, "")
		r.reporter.OnTargetProcessed(tgt.name, false)
	}

	prompt, err := r.buildPrompt(ctx, tgt, testType)
	if err != nil {
		fail(err, validator.Verdict{})
		return
	}

	code, cached := r.cache.Get(prompt)
	if !cached {
		code, err = r.gen.Generate(ctx, prompt)
		if err != nil {
			fail(fmt.Errorf("generate: %w", err), validator.Verdict{})
			return
		}
		r.cache.Set(prompt, code)
	}

	verdict := r.validator.Validate(code, tgt.sig)
	if !verdict.IsValid {
		fail(fmt.Errorf("validation rejected candidate"), verdict)
		return
	}

	outPath, err := generator.WriteTest(r.outputDir, tgt.name, code)
	if err != nil {
		fail(fmt.Errorf("write test: %w", err), verdict)
		return
	}

	results.Generated = append(results.Generated, GeneratedTest{Target: tgt.name, Path: outPath, Verdict: verdict})
	r.recordAttempt(results.RunID, tgt.name, verdict, outPath)
	r.reporter.OnTargetProcessed(tgt.name, true)
	r.logger.Info("test written",
		zap.String("target", tgt.name),
		zap.String("path", outPath))
}

func (r *Runner) buildPrompt(ctx context.Context, tgt target, testType string) (string, error) {
	switch testType {
	case TestTypeIntegration:
		return r.prompts.Integration(tgt.sig, nil)
	case TestTypeUI:
		el := generator.UIElement{ID: tgt.name, Name: tgt.name}
		if r.prober != nil {
			if err := r.prober.Probe(ctx, el); err != nil {
				return "", fmt.Errorf("probe element %s: %w", tgt.name, err)
			}
		}
		return r.prompts.UI(el)
	default:
		return r.prompts.Unit(tgt.sig)
	}
}

func (r *Runner) recordAttempt(runID, targetName string, verdict validator.Verdict, outPath string) {
	if r.store == nil || runID == "" {
		return
	}
	if err := r.store.RecordAttempt(runID, targetName, verdict, outPath); err != nil {
		r.logger.Warn("record attempt", zap.String("target", targetName), zap.Error(err))
	}
}

// collectTargets flattens an analysis result into generation targets:
// top-level functions, class methods as Class_Method, and classes without
// methods as a single class-level target.
func collectTargets(analysis *analyzer.AnalysisResult) []target {
	var targets []target
	for i := range analysis.Functions {
		fn := &analysis.Functions[i]
		targets = append(targets, target{name: fn.Name, sig: fn})
	}
	for i := range analysis.Classes {
		cls := &analysis.Classes[i]
		if len(cls.Methods) == 0 {
			targets = append(targets, target{
				name: cls.Name,
				sig: &analyzer.CallableSignature{
					Name:      cls.Name,
					Docstring: cls.Docstring,
					StartLine: cls.StartLine,
					EndLine:   cls.EndLine,
				},
			})
			continue
		}
		for j := range cls.Methods {
			m := &cls.Methods[j]
			targets = append(targets, target{name: cls.Name + "_" + m.Name, sig: m})
		}
	}
	return targets
}
