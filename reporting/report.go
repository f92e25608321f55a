// Package reporting renders the outcome of a run invocation for human
// consumption: a summary table of every (target, runner) pair followed by the
// individual FAILED/UNKNOWN test lines.
package reporting

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/planter-dev/planter/runner"
	"github.com/planter-dev/planter/types"
)

// Report aggregates the results of one run invocation.
type Report struct {
	RunID    string
	Results  []*runner.PairResult
	Duration time.Duration
}

// NewReport builds a report over the pair results of one run.
func NewReport(runID string, results []*runner.PairResult, duration time.Duration) *Report {
	return &Report{RunID: runID, Results: results, Duration: duration}
}

// Failed reports whether any pair failed to run cleanly.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if !res.Success() {
			return true
		}
	}
	return false
}

// Write renders the summary table and failure lines to w.
func (r *Report) Write(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Test Run Results (%s, %s)", r.RunID, formatDuration(r.Duration)))
	t.AppendHeader(table.Row{"Target", "Runner", "Exit", "Failed", "Unknown", "Status"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Exit", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Unknown", Align: text.AlignRight},
	})

	for _, res := range r.Results {
		failed, unknown := countFailures(res)
		t.AppendRow(table.Row{
			res.TargetID, res.RunnerID, exitCell(res), failed, unknown, statusCell(res),
		})
	}

	if r.Failed() {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	t.Render()

	for _, res := range r.Results {
		if res.Success() {
			fmt.Fprintf(w, "%s (%s): ran successfully\n", res.TargetID, res.RunnerID)
			continue
		}
		fmt.Fprintf(w, "%s (%s): failed to run successfully (exit %d)\n", res.TargetID, res.RunnerID, res.ExitCode)
		if res.Err != nil {
			fmt.Fprintf(w, "  error: %v\n", res.Err)
		}
		for _, f := range res.Failures {
			fmt.Fprintln(w, failureLine(res, f))
		}
	}
}

func failureLine(res *runner.PairResult, f runner.Failure) string {
	line := fmt.Sprintf("  %s (%s) > %s > %s > %s: %s",
		res.TargetID, res.RunnerID, f.SuiteName, f.GroupName, f.TestName, statusLabel(f.Status))
	if f.Detail != "" {
		line += ": " + f.Detail
	}
	return line
}

func countFailures(res *runner.PairResult) (failed, unknown int) {
	for _, f := range res.Failures {
		switch f.Status {
		case types.TestStatusFail:
			failed++
		case types.TestStatusUnknown:
			unknown++
		}
	}
	return failed, unknown
}

func exitCell(res *runner.PairResult) string {
	if !res.Ran {
		return "-"
	}
	return fmt.Sprintf("%d", res.ExitCode)
}

func statusCell(res *runner.PairResult) string {
	if res.Success() {
		return "✓ pass"
	}
	return "✗ fail"
}

func statusLabel(status types.TestStatus) string {
	switch status {
	case types.TestStatusFail:
		return "FAILED"
	case types.TestStatusUnknown:
		return "UNKNOWN"
	default:
		return string(status)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Truncate(time.Millisecond).String()
}
