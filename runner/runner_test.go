package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planter-dev/planter/render"
	"github.com/planter-dev/planter/target"
	"github.com/planter-dev/planter/types"
)

func echoTarget(t *testing.T, command string) *target.Target {
	t.Helper()
	return &target.Target{
		ID:                    "echo",
		OutDir:                t.TempDir(),
		SuiteFileNameTemplate: "{{ .Suite.Name }}.txt",
		Runners: []*target.Runner{{
			ID:                "echo",
			Command:           command,
			WorkDir:           t.TempDir(),
			FailRegexTemplate: `FAIL {{ .TestName }}`,
			PassRegexTemplate: `PASS {{ .TestName }}`,
		}},
	}
}

func planSuites() []*types.Suite {
	return []*types.Suite{{
		Name: "smoke",
		Groups: []types.Group{{
			Name:  "auth",
			Tests: []types.Test{{Name: "login"}, {Name: "logout"}},
		}},
	}}
}

func newOrchestrator(t *testing.T, targets []*target.Target, parallel bool) *Orchestrator {
	t.Helper()
	renderer, err := render.NewRenderer(targets, nil)
	require.NoError(t, err)
	o, err := NewOrchestrator(Config{
		Renderer:    renderer,
		Suites:      planSuites(),
		PackageName: "demo",
		Parallel:    parallel,
		Parse:       true,
	})
	require.NoError(t, err)
	return o
}

func runOne(t *testing.T, tgt *target.Target) *PairResult {
	t.Helper()
	o := newOrchestrator(t, []*target.Target{tgt}, false)
	results, err := o.Run(context.Background(), []*target.Target{tgt})
	require.NoError(t, err)
	require.Len(t, results, 1)
	return results[0]
}

func TestRunAllTestsPass(t *testing.T) {
	tgt := echoTarget(t, `sh -c "echo PASS login; echo PASS logout"`)
	res := runOne(t, tgt)

	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Empty(t, res.Failures)
	assert.True(t, res.Success())
}

func TestRunFailedTestIsReported(t *testing.T) {
	tgt := echoTarget(t, `sh -c "echo FAIL login; echo PASS logout"`)
	res := runOne(t, tgt)

	require.NoError(t, res.Err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, types.TestStatusFail, res.Failures[0].Status)
	assert.Equal(t, "login", res.Failures[0].TestName)
	assert.Equal(t, "auth", res.Failures[0].GroupName)
	assert.Equal(t, "smoke", res.Failures[0].SuiteName)
	assert.False(t, res.Success())
}

func TestRunFailRegexWinsOverPass(t *testing.T) {
	tgt := echoTarget(t, `sh -c "echo FAIL login; echo PASS login; echo PASS logout"`)
	res := runOne(t, tgt)

	require.NoError(t, res.Err)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, types.TestStatusFail, res.Failures[0].Status)
	assert.Equal(t, "login", res.Failures[0].TestName)
}

func TestRunUnmatchedTestIsUnknown(t *testing.T) {
	tgt := echoTarget(t, `sh -c "echo PASS login"`)
	res := runOne(t, tgt)

	require.NoError(t, res.Err)
	require.Len(t, res.Failures, 1)
	f := res.Failures[0]
	assert.Equal(t, types.TestStatusUnknown, f.Status)
	assert.Equal(t, "logout", f.TestName)
	assert.Contains(t, f.Detail, "FAIL REGEX: FAIL logout")
	assert.Contains(t, f.Detail, "PASS REGEX: PASS logout")
}

func TestRunStripsANSIBeforeMatching(t *testing.T) {
	tgt := echoTarget(t, `sh -c 'printf "\033[32mPASS login\033[0m\nPASS logout\n"'`)
	res := runOne(t, tgt)

	require.NoError(t, res.Err)
	assert.Empty(t, res.Failures)
}

func TestRunExcludedTestIsNotClassified(t *testing.T) {
	tgt := echoTarget(t, `sh -c "echo PASS login"`)
	o := newOrchestrator(t, []*target.Target{tgt}, false)
	o.cfg.Suites[0].Groups[0].Tests[1].ExcludeTargets = []string{"echo"}

	results, err := o.Run(context.Background(), []*target.Target{tgt})
	require.NoError(t, err)
	assert.Empty(t, results[0].Failures)
}

func TestRunNonZeroExitCode(t *testing.T) {
	tgt := echoTarget(t, `sh -c "echo PASS login; echo PASS logout; exit 3"`)
	res := runOne(t, tgt)

	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Empty(t, res.Failures)
	assert.False(t, res.Success())
}

func TestRunSpawnFailureDoesNotStopOtherPairs(t *testing.T) {
	broken := echoTarget(t, "definitely-not-a-real-binary-xyz")
	broken.ID = "broken"
	healthy := echoTarget(t, `sh -c "echo PASS login; echo PASS logout"`)
	targets := []*target.Target{broken, healthy}

	o := newOrchestrator(t, targets, false)
	results, err := o.Run(context.Background(), targets)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Error(t, results[0].Err)
	assert.False(t, results[0].Ran)
	assert.False(t, results[0].Success())
	assert.True(t, results[1].Ran)
	assert.True(t, results[1].Success())
}

func TestRunNonUTF8Output(t *testing.T) {
	tgt := echoTarget(t, `sh -c 'printf "\377\376"'`)
	res := runOne(t, tgt)

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "non-UTF-8")
	// The process itself ran to completion; its exit status stays recorded.
	assert.True(t, res.Ran)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunEnvOverride(t *testing.T) {
	tgt := echoTarget(t, `sh -c "echo $GREETING login; echo PASS logout"`)
	tgt.Runners[0].Env = map[string]string{"GREETING": "PASS"}
	res := runOne(t, tgt)

	require.NoError(t, res.Err)
	assert.Empty(t, res.Failures)
	assert.Contains(t, res.Output, "PASS login")
}

func TestRunWorkDir(t *testing.T) {
	tgt := echoTarget(t, "pwd")
	o := newOrchestrator(t, []*target.Target{tgt}, false)
	o.cfg.Parse = false

	results, err := o.Run(context.Background(), []*target.Target{tgt})
	require.NoError(t, err)
	assert.Contains(t, results[0].Output, tgt.Runners[0].WorkDir)
}

func TestRunCommandRendersPackageName(t *testing.T) {
	tgt := echoTarget(t, `sh -c "echo PASS login; echo PASS logout; echo pkg={{ .PackageName }}"`)
	res := runOne(t, tgt)

	require.NoError(t, res.Err)
	assert.Contains(t, res.Output, "pkg=demo")
	assert.Contains(t, res.Command, "pkg=demo")
}

func TestRunParallelMatchesSequential(t *testing.T) {
	newTargets := func(t *testing.T) []*target.Target {
		pass := echoTarget(t, `sh -c "echo PASS login; echo PASS logout"`)
		pass.ID = "pass"
		fail := echoTarget(t, `sh -c "echo FAIL login; echo PASS logout"`)
		fail.ID = "fail"
		return []*target.Target{pass, fail}
	}

	collect := func(t *testing.T, parallel bool) []*PairResult {
		targets := newTargets(t)
		o := newOrchestrator(t, targets, parallel)
		if parallel {
			o.cfg.MaxProcs = 2
		}
		results, err := o.Run(context.Background(), targets)
		require.NoError(t, err)
		return results
	}

	sequential := collect(t, false)
	parallel := collect(t, true)

	require.Len(t, parallel, len(sequential))
	for i := range sequential {
		assert.Equal(t, sequential[i].TargetID, parallel[i].TargetID)
		assert.Equal(t, sequential[i].ExitCode, parallel[i].ExitCode)
		assert.Equal(t, sequential[i].Failures, parallel[i].Failures)
	}
}

func TestNewOrchestratorRequiresRenderer(t *testing.T) {
	_, err := NewOrchestrator(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renderer is required")
}
