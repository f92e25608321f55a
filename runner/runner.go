// Package runner executes each target's configured runner commands as child
// processes, captures their combined output, and classifies every planned
// test against that output using the runner's pass/fail regex templates.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/shlex"
	"golang.org/x/sync/errgroup"

	"github.com/planter-dev/planter/render"
	"github.com/planter-dev/planter/target"
	"github.com/planter-dev/planter/types"
)

// Failure is one FAILED or UNKNOWN classification for a (target, runner)
// pair.
type Failure struct {
	Status    types.TestStatus
	SuiteName string
	GroupName string
	TestName  string
	// Detail carries the rendered fail and pass patterns for UNKNOWN
	// results, so the operator can debug the regex templates.
	Detail string
}

// PairResult is the outcome of one (target, runner) pair.
type PairResult struct {
	TargetID string
	RunnerID string
	Command  string

	ExitCode int
	// Ran reports that the process was spawned and exited; ExitCode is only
	// meaningful when it is set. Err can be set with Ran true when the
	// output stream was unusable or classification failed.
	Ran      bool
	// Err records a spawn failure or an unusable output stream. The exit
	// code is still meaningful when Err comes from classification.
	Err      error
	Output   string
	Failures []Failure
	Duration time.Duration
}

// Success reports whether the pair ran cleanly: the process exited zero and
// no test classified as FAILED or UNKNOWN.
func (r *PairResult) Success() bool {
	return r.Err == nil && r.ExitCode == 0 && len(r.Failures) == 0
}

// Config configures an Orchestrator.
type Config struct {
	Renderer    *render.Renderer
	Suites      []*types.Suite
	PackageName string
	// Parallel runs all pairs concurrently; otherwise they run one at a
	// time in schedule order.
	Parallel bool
	// MaxProcs bounds concurrency in parallel mode; zero means unbounded.
	MaxProcs int
	// Parse enables per-test classification of captured output.
	Parse bool
	Log   log.Logger
}

// Orchestrator schedules one child process per (target, runner) pair.
type Orchestrator struct {
	cfg Config
	log log.Logger
}

// NewOrchestrator creates an orchestrator for one run invocation.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if cfg.Renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	return &Orchestrator{cfg: cfg, log: cfg.Log}, nil
}

type pair struct {
	target *target.Target
	runner *target.Runner
}

// Run executes every runner of every target and returns one result per
// (target, runner) pair, in schedule order. A pair's spawn or classification
// failure is recorded in its result and does not stop the other pairs; the
// returned error is reserved for scheduling-level problems.
func (o *Orchestrator) Run(ctx context.Context, targets []*target.Target) ([]*PairResult, error) {
	var pairs []pair
	for _, t := range targets {
		for _, r := range t.Runners {
			pairs = append(pairs, pair{target: t, runner: r})
		}
	}

	results := make([]*PairResult, len(pairs))
	if o.cfg.Parallel {
		var g errgroup.Group
		if o.cfg.MaxProcs > 0 {
			g.SetLimit(o.cfg.MaxProcs)
		}
		for i, p := range pairs {
			g.Go(func() error {
				results[i] = o.runPair(ctx, p)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, p := range pairs {
			results[i] = o.runPair(ctx, p)
		}
	}

	return results, nil
}

// runPair spawns the pair's command, waits for it, and classifies its output.
func (o *Orchestrator) runPair(ctx context.Context, p pair) *PairResult {
	result := &PairResult{
		TargetID: p.target.ID,
		RunnerID: p.runner.ID,
	}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	cmdText, err := o.cfg.Renderer.Command(p.target, p.runner, o.cfg.PackageName)
	if err != nil {
		result.Err = err
		return result
	}
	result.Command = cmdText

	argv, err := shlex.Split(cmdText)
	if err != nil {
		result.Err = fmt.Errorf("failed to split command %q: %w", cmdText, err)
		return result
	}
	if len(argv) == 0 {
		result.Err = fmt.Errorf("runner %q of target %q has an empty command", p.runner.ID, p.target.ID)
		return result
	}

	o.log.Info("Running", "target", p.target.ID, "runner", p.runner.ID, "command", cmdText)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = p.runner.WorkDir
	cmd.Env = os.Environ()
	for key, value := range p.runner.Env {
		cmd.Env = append(cmd.Env, key+"="+value)
	}

	// Combined stdout+stderr; a non-zero exit is a result, not an error.
	out, runErr := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		result.ExitCode = 0
	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.Err = fmt.Errorf("failed to run %q: %w", cmdText, runErr)
		return result
	}
	result.Ran = true

	if !utf8.Valid(out) {
		result.Err = fmt.Errorf("runner %q of target %q produced non-UTF-8 output", p.runner.ID, p.target.ID)
		return result
	}
	result.Output = string(out)

	if o.cfg.Parse {
		failures, err := o.classify(p.target, p.runner, result.Output)
		if err != nil {
			result.Err = err
			return result
		}
		result.Failures = failures
	}

	return result
}
