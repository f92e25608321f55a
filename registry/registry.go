// Package registry loads a plan file and owns the resolved plan model for
// one command invocation: suites, targets and documents, validated and
// resolved against each other.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/planter-dev/planter/target"
	"github.com/planter-dev/planter/types"
)

// Registry holds the resolved plan model. Read-only once built.
type Registry struct {
	config  Config
	plan    types.PlanConfig
	rootDir string
	suites  []*types.Suite
	targets []*target.Target
}

// Config contains registry configuration.
type Config struct {
	Log log.Logger
	// PlanFile is the path to the plan config file (.yaml, .yml, .json or
	// .toml).
	PlanFile string
}

// NewRegistry loads and resolves the plan file.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.PlanFile == "" {
		return nil, fmt.Errorf("plan file is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}

	r := &Registry{
		config:  cfg,
		rootDir: filepath.Dir(cfg.PlanFile),
	}
	if err := r.load(cfg.PlanFile); err != nil {
		return nil, err
	}

	cfg.Log.Debug("Plan loaded",
		"plan", r.plan.Name,
		"suites", len(r.suites),
		"targets", len(r.targets))
	return r, nil
}

func (r *Registry) load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read plan file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(raw, &r.plan); err != nil {
			return fmt.Errorf("failed to parse plan file %s: %w", path, err)
		}
	default:
		// YAML is a JSON superset, so .json plans parse here too.
		if err := yaml.Unmarshal(raw, &r.plan); err != nil {
			return fmt.Errorf("failed to parse plan file %s: %w", path, err)
		}
	}

	if err := r.validatePlan(); err != nil {
		return err
	}
	if err := r.resolveSuites(); err != nil {
		return err
	}
	return r.resolveTargets()
}

// validatePlan checks the id namespaces before any resolution work.
func (r *Registry) validatePlan() error {
	if len(r.plan.Suites) == 0 {
		return fmt.Errorf("plan defines no suites")
	}

	if err := checkUnique("suite", ids(r.plan.Suites, func(s types.SuiteConfig) string { return s.ID })); err != nil {
		return err
	}
	if err := checkUnique("group", ids(r.plan.Groups, func(g types.GroupConfig) string { return g.ID })); err != nil {
		return err
	}
	for _, g := range r.plan.Groups {
		if err := checkUnique("test", ids(g.Tests, func(t types.TestConfig) string { return t.ID })); err != nil {
			return fmt.Errorf("group %q: %w", g.ID, err)
		}
	}

	targetIDs := ids(r.plan.Targets, func(t types.TargetConfig) string { return t.ID })
	if err := checkUnique("target", targetIDs); err != nil {
		return err
	}
	customIDs := ids(r.plan.CustomTargets, func(t types.CustomTargetConfig) string { return t.ID })
	if err := checkUnique("custom target", customIDs); err != nil {
		return err
	}
	for _, id := range targetIDs {
		for _, custom := range customIDs {
			if id == custom {
				return fmt.Errorf("%q is defined as both a target and a custom target; rename the custom target", id)
			}
		}
	}
	return nil
}

func (r *Registry) resolveSuites() error {
	for _, sc := range r.plan.Suites {
		suite, err := types.NewSuite(&r.plan, sc)
		if err != nil {
			return err
		}
		r.suites = append(r.suites, suite)
	}
	return nil
}

func (r *Registry) resolveTargets() error {
	for _, tc := range r.plan.Targets {
		t, err := target.FromConfig(tc, r.rootDir)
		if err != nil {
			return err
		}
		r.targets = append(r.targets, t)
	}
	for _, tc := range r.plan.CustomTargets {
		t, err := target.FromCustomConfig(tc, r.rootDir)
		if err != nil {
			return err
		}
		r.targets = append(r.targets, t)
	}
	return nil
}

// Name returns the plan's name.
func (r *Registry) Name() string { return r.plan.Name }

// PackageName returns the plan's package name, used in command and suite
// template contexts.
func (r *Registry) PackageName() string { return r.plan.PackageName }

// RootDir returns the directory of the plan file; relative paths in the plan
// resolve against it.
func (r *Registry) RootDir() string { return r.rootDir }

// Suites returns the resolved suites in declaration order.
func (r *Registry) Suites() []*types.Suite { return r.suites }

// Targets returns the resolved targets: default targets first, then custom
// targets, each in declaration order.
func (r *Registry) Targets() []*target.Target { return r.targets }

// Documents returns the configured document entries.
func (r *Registry) Documents() []types.DocumentConfig { return r.plan.Documents }

// Groups returns one resolved Group per group config, in declaration order.
func (r *Registry) Groups() []types.Group {
	groups := make([]types.Group, 0, len(r.plan.Groups))
	for _, gc := range r.plan.Groups {
		groups = append(groups, types.NewGroup(gc))
	}
	return groups
}

// Tests returns every declared test across all groups, in declaration order.
func (r *Registry) Tests() []types.Test {
	var tests []types.Test
	for _, gc := range r.plan.Groups {
		for _, tc := range gc.Tests {
			tests = append(tests, types.NewTest(tc))
		}
	}
	return tests
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func checkUnique(kind string, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%s with empty id", kind)
		}
		if seen[id] {
			return fmt.Errorf("duplicate %s id %q", kind, id)
		}
		seen[id] = true
	}
	return nil
}
