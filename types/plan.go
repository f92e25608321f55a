package types

import (
	"fmt"
	"slices"
)

// Test is a resolved test case. Immutable once built from config.
type Test struct {
	Name           string
	Desc           string
	ExcludeTargets []string
}

// ExcludedFrom reports whether this test is excluded from the given target.
func (t *Test) ExcludedFrom(targetID string) bool {
	return slices.Contains(t.ExcludeTargets, targetID)
}

// Group is a resolved group of tests. Each suite that references a group id
// gets its own Group value.
type Group struct {
	Name  string
	Desc  string
	Tests []Test
}

// Suite is a resolved suite: an ordered list of groups.
type Suite struct {
	Name   string
	Desc   string
	Groups []Group
}

// NewTest builds a Test from its config entry.
func NewTest(cfg TestConfig) Test {
	return Test{
		Name:           cfg.ID,
		Desc:           cfg.Desc,
		ExcludeTargets: slices.Clone(cfg.ExcludeTargets),
	}
}

// NewGroup builds a Group from its config entry.
func NewGroup(cfg GroupConfig) Group {
	g := Group{
		Name:  cfg.ID,
		Desc:  cfg.Desc,
		Tests: make([]Test, 0, len(cfg.Tests)),
	}
	for _, tc := range cfg.Tests {
		g.Tests = append(g.Tests, NewTest(tc))
	}
	return g
}

// NewSuite resolves a suite's group ids against the plan's group list, in the
// order the suite declares them. Referencing an unknown group id is a
// configuration error.
func NewSuite(plan *PlanConfig, cfg SuiteConfig) (*Suite, error) {
	s := &Suite{
		Name:   cfg.ID,
		Desc:   cfg.Desc,
		Groups: make([]Group, 0, len(cfg.Groups)),
	}
	for _, groupID := range cfg.Groups {
		idx := slices.IndexFunc(plan.Groups, func(g GroupConfig) bool { return g.ID == groupID })
		if idx < 0 {
			return nil, fmt.Errorf("suite %q references unknown group %q", cfg.ID, groupID)
		}
		s.Groups = append(s.Groups, NewGroup(plan.Groups[idx]))
	}
	return s, nil
}
