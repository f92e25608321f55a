// Package validate checks a target's generated files against the test plan:
// every planned, non-excluded test must be physically present, and no
// test-shaped declaration may exist that the plan does not know about. It
// relies on the merge package's marker conventions but never writes.
package validate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/planter-dev/planter/merge"
	"github.com/planter-dev/planter/render"
	"github.com/planter-dev/planter/target"
	"github.com/planter-dev/planter/types"
)

// wildcardName renders the test-existence regex into a match-any-test
// pattern, used to collect the universe of test-shaped declarations.
const wildcardName = ".*"

// Target validates every suite file of one target. A missing suite file or a
// missing test stops validation of this target immediately; orphan
// declarations are collected per suite and surfaced together after all suites
// have been checked.
func Target(renderer *render.Renderer, t *target.Target, suites []*types.Suite, logger log.Logger) error {
	if logger == nil {
		logger = log.Root()
	}

	var orphanErrs []error
	for _, suite := range suites {
		if err := validateSuite(renderer, t, suite, &orphanErrs, logger); err != nil {
			return err
		}
	}
	return errors.Join(orphanErrs...)
}

func validateSuite(renderer *render.Renderer, t *target.Target, suite *types.Suite, orphanErrs *[]error, logger log.Logger) error {
	fileName, err := renderer.SuiteFileName(t, suite)
	if err != nil {
		return fmt.Errorf("suite %q: %w", suite.Name, err)
	}
	path := filepath.Join(t.OutDir, fileName)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("suite file %s does not exist", path)
		}
		return fmt.Errorf("suite %q: failed to read %s: %w", suite.Name, path, err)
	}
	content := string(raw)

	chunk, err := merge.SuiteChunk(content, suite.Name)
	if err != nil {
		return fmt.Errorf("suite %q in %s: %w", suite.Name, path, err)
	}

	// Every substring matching the wildcard test regex is a test-shaped
	// declaration; planned tests are removed from this universe as they are
	// checked off, and whatever remains is an orphan.
	allRe, err := compileTestRegex(renderer, t, wildcardName)
	if err != nil {
		return fmt.Errorf("suite %q: %w", suite.Name, err)
	}
	remaining := allRe.FindAllString(chunk.Content, -1)

	for i := range suite.Groups {
		group := &suite.Groups[i]
		for j := range group.Tests {
			test := &group.Tests[j]
			if test.ExcludedFrom(t.ID) {
				logger.Debug("Test excluded from target", "test", test.Name, "suite", suite.Name, "target", t.ID)
				continue
			}

			testRe, err := compileTestRegex(renderer, t, test.Name)
			if err != nil {
				return fmt.Errorf("suite %q test %q: %w", suite.Name, test.Name, err)
			}
			if !testRe.MatchString(chunk.Content) {
				return fmt.Errorf("test %q does not exist in %s", test.Name, path)
			}

			remaining = slices.DeleteFunc(remaining, func(found string) bool {
				return testRe.MatchString(found)
			})
			logger.Debug("Test exists", "test", test.Name, "file", path)
		}
	}

	if len(remaining) > 0 {
		*orphanErrs = append(*orphanErrs, fmt.Errorf(
			"found test implementation(s) in suite %q in %s that are not in the test plan:\n%s",
			suite.Name, path, strings.Join(remaining, "\n")))
	}
	return nil
}

func compileTestRegex(renderer *render.Renderer, t *target.Target, name string) (*regexp.Regexp, error) {
	pattern, err := renderer.TestRegex(t, name)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad test regex %q for target %q: %w", pattern, t.ID, err)
	}
	return re, nil
}
