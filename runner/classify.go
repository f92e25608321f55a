package runner

import (
	"fmt"
	"regexp"

	"github.com/acarl005/stripansi"

	"github.com/planter-dev/planter/render"
	"github.com/planter-dev/planter/target"
	"github.com/planter-dev/planter/types"
)

// classify matches every planned, non-excluded test against the captured
// output. The fail pattern is checked first and wins even when the pass
// pattern also matches; a test matching neither is UNKNOWN. Passing tests
// produce no entry.
func (o *Orchestrator) classify(t *target.Target, r *target.Runner, output string) ([]Failure, error) {
	// Runners routinely color their output; patterns are written against
	// the plain text.
	output = stripansi.Strip(output)

	var failures []Failure
	for _, suite := range o.cfg.Suites {
		fileName, err := o.cfg.Renderer.SuiteFileName(t, suite)
		if err != nil {
			return nil, fmt.Errorf("suite %q: %w", suite.Name, err)
		}

		for i := range suite.Groups {
			group := &suite.Groups[i]
			for j := range group.Tests {
				test := &group.Tests[j]
				if test.ExcludedFrom(t.ID) {
					continue
				}

				ctx := render.ResultRegexContext{
					FileName:  fileName,
					SuiteName: suite.Name,
					GroupName: group.Name,
					TestName:  test.Name,
				}
				failure, err := o.classifyTest(t, r, ctx, output)
				if err != nil {
					return nil, err
				}
				if failure != nil {
					failures = append(failures, *failure)
				}
			}
		}
	}
	return failures, nil
}

// classifyTest returns nil for a pass and a Failure for FAILED or UNKNOWN.
func (o *Orchestrator) classifyTest(t *target.Target, r *target.Runner, ctx render.ResultRegexContext, output string) (*Failure, error) {
	failRe, failPattern, err := o.resultRegex(t, r, ctx, o.cfg.Renderer.FailRegex)
	if err != nil {
		return nil, fmt.Errorf("fail regex for test %q: %w", ctx.TestName, err)
	}
	if failRe.MatchString(output) {
		return &Failure{
			Status:    types.TestStatusFail,
			SuiteName: ctx.SuiteName,
			GroupName: ctx.GroupName,
			TestName:  ctx.TestName,
		}, nil
	}

	passRe, passPattern, err := o.resultRegex(t, r, ctx, o.cfg.Renderer.PassRegex)
	if err != nil {
		return nil, fmt.Errorf("pass regex for test %q: %w", ctx.TestName, err)
	}
	if passRe.MatchString(output) {
		return nil, nil
	}

	return &Failure{
		Status:    types.TestStatusUnknown,
		SuiteName: ctx.SuiteName,
		GroupName: ctx.GroupName,
		TestName:  ctx.TestName,
		Detail:    fmt.Sprintf("could not find either regex:\n    FAIL REGEX: %s\n    PASS REGEX: %s", failPattern, passPattern),
	}, nil
}

type regexRenderFunc func(*target.Target, *target.Runner, render.ResultRegexContext) (string, error)

func (o *Orchestrator) resultRegex(t *target.Target, r *target.Runner, ctx render.ResultRegexContext, renderFn regexRenderFunc) (*regexp.Regexp, string, error) {
	pattern, err := renderFn(t, r, ctx)
	if err != nil {
		return nil, "", err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, "", fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	return re, pattern, nil
}
