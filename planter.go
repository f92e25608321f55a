// Package planter turns a declarative test plan into generated test stubs
// for multiple frameworks, validates the generated files against the plan,
// and runs the framework runners with per-test result classification.
package planter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/planter-dev/planter/logging"
	"github.com/planter-dev/planter/merge"
	"github.com/planter-dev/planter/registry"
	"github.com/planter-dev/planter/render"
	"github.com/planter-dev/planter/reporting"
	"github.com/planter-dev/planter/runner"
	"github.com/planter-dev/planter/target"
	"github.com/planter-dev/planter/types"
	"github.com/planter-dev/planter/validate"
)

// invocation bundles the state every subcommand needs: the resolved plan,
// the selected targets and the renderer built over them.
type invocation struct {
	cfg      *Config
	registry *registry.Registry
	targets  []*target.Target
	renderer *render.Renderer
	log      log.Logger
}

func newInvocation(cfg *Config) (*invocation, error) {
	logger := cfg.Log
	if logger == nil {
		logger = log.Root()
	}

	reg, err := registry.NewRegistry(registry.Config{
		Log:      logger,
		PlanFile: cfg.PlanFile,
	})
	if err != nil {
		return nil, NewRuntimeError(err)
	}

	targets, err := filterTargets(reg.Targets(), cfg.TargetFilter)
	if err != nil {
		return nil, NewRuntimeError(err)
	}

	documents, err := render.DocumentTemplates(reg.Documents(), reg.RootDir())
	if err != nil {
		return nil, NewRuntimeError(err)
	}

	renderer, err := render.NewRenderer(reg.Targets(), documents)
	if err != nil {
		return nil, NewRuntimeError(err)
	}

	return &invocation{
		cfg:      cfg,
		registry: reg,
		targets:  targets,
		renderer: renderer,
		log:      logger,
	}, nil
}

// filterTargets selects the targets named in filter, or all targets when the
// filter is empty. Naming an unknown target id is an error.
func filterTargets(all []*target.Target, filter []string) ([]*target.Target, error) {
	if len(filter) == 0 {
		return all, nil
	}
	var selected []*target.Target
	for _, id := range filter {
		idx := slices.IndexFunc(all, func(t *target.Target) bool { return t.ID == id })
		if idx < 0 {
			return nil, fmt.Errorf("unknown target %q", id)
		}
		selected = append(selected, all[idx])
	}
	return selected, nil
}

// Generate merges generated stubs into every selected target's suite files
// and renders the selected documents. One target's failure does not stop the
// others; all failures are reported together.
func Generate(cfg *Config) error {
	inv, err := newInvocation(cfg)
	if err != nil {
		return err
	}

	engine := merge.NewEngine(inv.renderer, inv.registry.PackageName(), inv.log)

	var errs []error
	for _, t := range inv.targets {
		for _, suite := range inv.registry.Suites() {
			if err := engine.MergeSuite(t, suite); err != nil {
				errs = append(errs, fmt.Errorf("target %q: %w", t.ID, err))
				break
			}
		}
	}

	docErrs := inv.generateDocuments()
	errs = append(errs, docErrs...)

	if len(errs) > 0 {
		return NewRuntimeError(errors.Join(errs...))
	}
	inv.log.Info("Generation complete", "targets", len(inv.targets))
	return nil
}

func (inv *invocation) generateDocuments() []error {
	docCtx := render.DocumentContext{
		Name:   inv.registry.Name(),
		Suites: inv.registry.Suites(),
		Groups: inv.registry.Groups(),
		Tests:  inv.registry.Tests(),
	}

	var errs []error
	for _, doc := range inv.registry.Documents() {
		if len(inv.cfg.DocumentFilter) > 0 && !slices.Contains(inv.cfg.DocumentFilter, doc.ID) {
			continue
		}
		content, err := inv.renderer.Document(doc.ID, docCtx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		outFile := doc.OutFile
		if !filepath.IsAbs(outFile) {
			outFile = filepath.Join(inv.registry.RootDir(), outFile)
		}
		if err := os.MkdirAll(filepath.Dir(outFile), 0o755); err != nil {
			errs = append(errs, fmt.Errorf("document %q: %w", doc.ID, err))
			continue
		}
		if err := os.WriteFile(outFile, []byte(content), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("document %q: %w", doc.ID, err))
			continue
		}
		inv.log.Info("Rendered document", "document", doc.ID, "file", outFile)
	}
	return errs
}

// Validate checks every selected target's generated files against the plan.
// Targets are validated independently; all failures are reported together.
func Validate(cfg *Config) error {
	inv, err := newInvocation(cfg)
	if err != nil {
		return err
	}

	var errs []error
	for _, t := range inv.targets {
		if err := validate.Target(inv.renderer, t, inv.registry.Suites(), inv.log); err != nil {
			errs = append(errs, fmt.Errorf("target %q: %w", t.ID, err))
			continue
		}
		inv.log.Info("Target is valid", "target", t.ID)
	}

	if len(errs) > 0 {
		return NewFailureError(errors.Join(errs...).Error())
	}
	return nil
}

// Run executes every selected target's runners and prints the report.
func Run(ctx context.Context, cfg *Config) error {
	inv, err := newInvocation(cfg)
	if err != nil {
		return err
	}

	orchestrator, err := runner.NewOrchestrator(runner.Config{
		Renderer:    inv.renderer,
		Suites:      inv.registry.Suites(),
		PackageName: inv.registry.PackageName(),
		Parallel:    cfg.Parallel,
		MaxProcs:    cfg.MaxProcs,
		Parse:       cfg.Parse,
		Log:         inv.log,
	})
	if err != nil {
		return NewRuntimeError(err)
	}

	runID := uuid.New().String()
	start := time.Now()
	results, err := orchestrator.Run(ctx, inv.targets)
	if err != nil {
		return NewRuntimeError(err)
	}

	if cfg.LogDir != "" {
		if err := saveOutputs(cfg.LogDir, runID, results, inv.log); err != nil {
			inv.log.Error("Failed to save runner output", "error", err)
		}
	}

	report := reporting.NewReport(runID, results, time.Since(start))
	report.Write(os.Stdout)

	if report.Failed() {
		return NewFailureError("one or more runners failed")
	}
	return nil
}

func saveOutputs(logDir, runID string, results []*runner.PairResult, logger log.Logger) error {
	fileLogger, err := logging.NewFileLogger(logDir, runID)
	if err != nil {
		return err
	}
	for _, res := range results {
		path, err := fileLogger.SaveRunnerOutput(res.TargetID, res.RunnerID, res.Output)
		if err != nil {
			return err
		}
		logger.Debug("Saved runner output", "target", res.TargetID, "runner", res.RunnerID, "file", path)
	}
	return nil
}

// DumpTargets writes the built-in default target descriptors to w as a
// custom-target configuration users can copy and adapt.
func DumpTargets(w io.Writer) error {
	var configs []types.CustomTargetConfig
	for _, id := range target.DefaultIDs() {
		t, err := target.FromConfig(types.TargetConfig{ID: id, OutDir: "tests/generated"}, ".")
		if err != nil {
			return NewRuntimeError(err)
		}
		configs = append(configs, target.ToCustomConfig(t))
	}

	out, err := yaml.Marshal(map[string][]types.CustomTargetConfig{"custom_targets": configs})
	if err != nil {
		return NewRuntimeError(fmt.Errorf("failed to serialize default targets: %w", err))
	}
	_, err = w.Write(out)
	return err
}
