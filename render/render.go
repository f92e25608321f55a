// Package render owns every template used during one invocation. Templates
// are parsed once, up front, into an explicit (owner, role) map so that a bad
// template is reported before any file is touched and no process-wide
// template state exists.
package render

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/planter-dev/planter/target"
	"github.com/planter-dev/planter/types"
)

// Template roles. Target-owned roles use the target id as owner; runner-owned
// roles use targetID+"/"+runnerID.
const (
	roleSuite     = "suite"
	roleGroup     = "group"
	roleTest      = "test"
	roleFileName  = "file_name"
	roleTestRegex = "test_regex"
	roleFailRegex = "fail_regex"
	rolePassRegex = "pass_regex"
	roleDocument  = "document"
	roleCommand   = "command"
)

type templateKey struct {
	owner string
	role  string
}

// SuiteContext is the render context for suite templates.
type SuiteContext struct {
	PackageName string
	Suite       *types.Suite
}

// GroupContext is the render context for group templates.
type GroupContext struct {
	Group *types.Group
}

// TestContext is the render context for test templates.
type TestContext struct {
	Test      *types.Test
	GroupName string
	SuiteName string
}

// FileNameContext is the render context for suite file-name templates.
type FileNameContext struct {
	Suite *types.Suite
}

// TestRegexContext is the render context for test-existence regex templates.
type TestRegexContext struct {
	Name string
}

// CommandContext is the render context for runner command templates.
type CommandContext struct {
	PackageName string
}

// ResultRegexContext is the render context for runner pass/fail regex
// templates.
type ResultRegexContext struct {
	FileName  string
	SuiteName string
	GroupName string
	TestName  string
}

// DocumentContext is the render context for document templates.
type DocumentContext struct {
	Name   string
	Suites []*types.Suite
	Groups []types.Group
	Tests  []types.Test
}

// Renderer renders the templates declared by a set of targets and documents.
type Renderer struct {
	templates map[templateKey]*template.Template
}

// NewRenderer parses every template owned by the given targets and documents.
func NewRenderer(targets []*target.Target, documents map[string]string) (*Renderer, error) {
	r := &Renderer{templates: make(map[templateKey]*template.Template)}

	for _, t := range targets {
		targetTemplates := map[string]string{
			roleSuite:     t.SuiteTemplate,
			roleGroup:     t.GroupTemplate,
			roleTest:      t.TestTemplate,
			roleFileName:  t.SuiteFileNameTemplate,
			roleTestRegex: t.TestRegexTemplate,
		}
		for role, text := range targetTemplates {
			if err := r.add(t.ID, role, text); err != nil {
				return nil, fmt.Errorf("target %q: bad %s template: %w", t.ID, role, err)
			}
		}

		for _, runner := range t.Runners {
			owner := runnerOwner(t.ID, runner.ID)
			runnerTemplates := map[string]string{
				roleCommand:   runner.Command,
				roleFailRegex: runner.FailRegexTemplate,
				rolePassRegex: runner.PassRegexTemplate,
			}
			for role, text := range runnerTemplates {
				if err := r.add(owner, role, text); err != nil {
					return nil, fmt.Errorf("runner %q of target %q: bad %s template: %w", runner.ID, t.ID, role, err)
				}
			}
		}
	}

	for id, text := range documents {
		if err := r.add(id, roleDocument, text); err != nil {
			return nil, fmt.Errorf("document %q: bad template: %w", id, err)
		}
	}

	return r, nil
}

func (r *Renderer) add(owner, role, text string) error {
	tmpl, err := template.New(owner + "_" + role).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return err
	}
	r.templates[templateKey{owner: owner, role: role}] = tmpl
	return nil
}

func (r *Renderer) render(owner, role string, ctx any) (string, error) {
	tmpl, ok := r.templates[templateKey{owner: owner, role: role}]
	if !ok {
		return "", fmt.Errorf("no %s template registered for %q", role, owner)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("failed to render %s template for %q: %w", role, owner, err)
	}
	return buf.String(), nil
}

func runnerOwner(targetID, runnerID string) string {
	return targetID + "/" + runnerID
}

// SuiteFileName renders the suite's output file name for a target. Path
// separators in the suite name are replaced with underscores so the rendered
// name stays a single file inside the target's out dir.
func (r *Renderer) SuiteFileName(t *target.Target, suite *types.Suite) (string, error) {
	named := *suite
	named.Name = strings.ReplaceAll(suite.Name, string(filepath.Separator), "_")
	return r.render(t.ID, roleFileName, FileNameContext{Suite: &named})
}

// Suite renders a target's suite template.
func (r *Renderer) Suite(t *target.Target, packageName string, suite *types.Suite) (string, error) {
	return r.render(t.ID, roleSuite, SuiteContext{PackageName: packageName, Suite: suite})
}

// Group renders a target's group template.
func (r *Renderer) Group(t *target.Target, group *types.Group) (string, error) {
	return r.render(t.ID, roleGroup, GroupContext{Group: group})
}

// Test renders a target's test template.
func (r *Renderer) Test(t *target.Target, test *types.Test, groupName, suiteName string) (string, error) {
	return r.render(t.ID, roleTest, TestContext{Test: test, GroupName: groupName, SuiteName: suiteName})
}

// TestRegex renders the "does this test exist" regex for a test name. The
// wildcard ".*" is a valid name and yields the match-any-test pattern.
func (r *Renderer) TestRegex(t *target.Target, name string) (string, error) {
	return r.render(t.ID, roleTestRegex, TestRegexContext{Name: name})
}

// Command renders a runner's command template.
func (r *Renderer) Command(t *target.Target, runner *target.Runner, packageName string) (string, error) {
	return r.render(runnerOwner(t.ID, runner.ID), roleCommand, CommandContext{PackageName: packageName})
}

// FailRegex renders a runner's fail regex for one test.
func (r *Renderer) FailRegex(t *target.Target, runner *target.Runner, ctx ResultRegexContext) (string, error) {
	return r.render(runnerOwner(t.ID, runner.ID), roleFailRegex, ctx)
}

// PassRegex renders a runner's pass regex for one test.
func (r *Renderer) PassRegex(t *target.Target, runner *target.Runner, ctx ResultRegexContext) (string, error) {
	return r.render(runnerOwner(t.ID, runner.ID), rolePassRegex, ctx)
}

// Document renders a document template over the whole plan.
func (r *Renderer) Document(id string, ctx DocumentContext) (string, error) {
	return r.render(id, roleDocument, ctx)
}
