package merge

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/ethereum/go-ethereum/log"

	"github.com/planter-dev/planter/render"
	"github.com/planter-dev/planter/target"
	"github.com/planter-dev/planter/types"
)

// Engine incrementally merges generated suite, group and test stubs into a
// target's output files. Re-running it over a complete file is a no-op;
// running it over a partial file only inserts what is missing and never
// touches existing bytes outside the spliced region.
type Engine struct {
	renderer    *render.Renderer
	packageName string
	log         log.Logger
}

// NewEngine creates a merge engine for one invocation.
func NewEngine(renderer *render.Renderer, packageName string, logger log.Logger) *Engine {
	if logger == nil {
		logger = log.Root()
	}
	return &Engine{
		renderer:    renderer,
		packageName: packageName,
		log:         logger,
	}
}

// MergeSuite merges one suite's stubs into the target's output file for that
// suite, creating the file if needed.
func (e *Engine) MergeSuite(t *target.Target, suite *types.Suite) error {
	fileName, err := e.renderer.SuiteFileName(t, suite)
	if err != nil {
		return fmt.Errorf("suite %q: %w", suite.Name, err)
	}
	path := filepath.Join(t.OutDir, fileName)

	var content string
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		e.log.Debug("Suite file exists, merging into it", "target", t.ID, "file", path)
		content = string(raw)
	case os.IsNotExist(err):
		// Start from empty content.
	default:
		return fmt.Errorf("suite %q: failed to read %s: %w", suite.Name, path, err)
	}

	if !ContainsSuite(content, suite.Name) {
		rendered, err := e.renderer.Suite(t, e.packageName, suite)
		if err != nil {
			return fmt.Errorf("suite %q: %w", suite.Name, err)
		}
		content += rendered
	}

	chunk, err := SuiteChunk(content, suite.Name)
	if err != nil {
		return fmt.Errorf("suite %q: %w", suite.Name, err)
	}

	if err := e.mergeGroups(t, suite, chunk); err != nil {
		return err
	}
	if err := e.mergeTests(t, suite, chunk); err != nil {
		return err
	}

	content = chunk.SpliceInto(content)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("suite %q: failed to create output directory: %w", suite.Name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("suite %q: failed to write %s: %w", suite.Name, path, err)
	}
	return nil
}

// mergeGroups prepends a rendered group block for every planned group whose
// marker is missing from the chunk. Each insertion goes to the chunk front,
// so of several missing groups the last one inserted ends up first.
func (e *Engine) mergeGroups(t *target.Target, suite *types.Suite, chunk *Chunk) error {
	existing := ExistingGroups(chunk.Content)
	for i := range suite.Groups {
		group := &suite.Groups[i]
		if slices.Contains(existing, group.Name) {
			continue
		}
		rendered, err := e.renderer.Group(t, group)
		if err != nil {
			return fmt.Errorf("suite %q group %q: %w", suite.Name, group.Name, err)
		}
		chunk.Content = rendered + chunk.Content
	}
	return nil
}

// mergeTests inserts a rendered test stub after the owning group's marker for
// every planned, non-excluded test not already present in the chunk. A test
// name is unique across the suite's groups, so existence is checked against
// the whole chunk rather than a per-group sub-chunk.
func (e *Engine) mergeTests(t *target.Target, suite *types.Suite, chunk *Chunk) error {
	for i := range suite.Groups {
		group := &suite.Groups[i]
		for j := range group.Tests {
			test := &group.Tests[j]
			if test.ExcludedFrom(t.ID) {
				e.log.Debug("Test excluded from target", "test", test.Name, "suite", suite.Name, "target", t.ID)
				continue
			}

			found, err := e.findTest(t, chunk.Content, test.Name)
			if err != nil {
				return fmt.Errorf("suite %q test %q: %w", suite.Name, test.Name, err)
			}
			if found {
				e.log.Debug("Test already exists, skipping", "test", test.Name, "suite", suite.Name, "target", t.ID)
				continue
			}

			rendered, err := e.renderer.Test(t, test, group.Name, suite.Name)
			if err != nil {
				return fmt.Errorf("suite %q group %q test %q: %w", suite.Name, group.Name, test.Name, err)
			}

			// mergeGroups ran first, so the group marker must exist;
			// InsertAfterKeyword panics if it does not.
			chunk.Content = InsertAfterKeyword(chunk.Content, rendered, GroupMarkerFor(group.Name))
		}
	}
	return nil
}

// findTest reports whether the target's test-existence regex for the given
// name matches anywhere in content.
func (e *Engine) findTest(t *target.Target, content, name string) (bool, error) {
	pattern, err := e.renderer.TestRegex(t, name)
	if err != nil {
		return false, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("bad test regex %q for target %q: %w", pattern, t.ID, err)
	}
	return re.MatchString(content), nil
}
