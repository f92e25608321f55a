package planter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoPlan = `
name: Demo
package_name: demo

suites:
  - id: smoke
    groups: [auth]

groups:
  - id: auth
    tests:
      - id: login
        desc: a user can log in
      - id: logout
        desc: a user can log out

targets:
  - id: pytest
    out_dir: tests/generated

documents:
  - id: markdown
    out_file: PLAN.md
`

func writeDemoPlan(t *testing.T, plan string) (rootDir, planFile string) {
	t.Helper()
	rootDir = t.TempDir()
	planFile = filepath.Join(rootDir, "planter.yaml")
	require.NoError(t, os.WriteFile(planFile, []byte(plan), 0o644))
	return rootDir, planFile
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

func TestGenerateThenValidate(t *testing.T) {
	rootDir, planFile := writeDemoPlan(t, demoPlan)
	cfg := &Config{PlanFile: planFile}

	require.NoError(t, Generate(cfg))

	suiteFile := filepath.Join(rootDir, "tests/generated/test_smoke.py")
	content := readFile(t, suiteFile)
	assert.Contains(t, content, "# Planter Suite: smoke")
	assert.Contains(t, content, "# Planter Group: auth")
	assert.Contains(t, content, "def test_login(")
	assert.Contains(t, content, "def test_logout(")

	planDoc := readFile(t, filepath.Join(rootDir, "PLAN.md"))
	assert.Contains(t, planDoc, "# Demo Test Plan")
	assert.Contains(t, planDoc, "a user can log in")

	assert.NoError(t, Validate(cfg))
}

func TestGenerateIsIdempotent(t *testing.T) {
	rootDir, planFile := writeDemoPlan(t, demoPlan)
	cfg := &Config{PlanFile: planFile}
	suiteFile := filepath.Join(rootDir, "tests/generated/test_smoke.py")

	require.NoError(t, Generate(cfg))
	first := readFile(t, suiteFile)
	require.NoError(t, Generate(cfg))
	assert.Equal(t, first, readFile(t, suiteFile))
}

func TestGenerateHonorsExcludeTargets(t *testing.T) {
	plan := strings.Replace(demoPlan,
		"      - id: logout\n",
		"      - id: logout\n        exclude_targets: [pytest]\n", 1)
	rootDir, planFile := writeDemoPlan(t, plan)
	cfg := &Config{PlanFile: planFile}

	require.NoError(t, Generate(cfg))

	content := readFile(t, filepath.Join(rootDir, "tests/generated/test_smoke.py"))
	assert.Contains(t, content, "def test_login(")
	assert.NotContains(t, content, "def test_logout(")

	assert.NoError(t, Validate(cfg))
}

func TestValidateDetectsDrift(t *testing.T) {
	rootDir, planFile := writeDemoPlan(t, demoPlan)
	cfg := &Config{PlanFile: planFile}
	require.NoError(t, Generate(cfg))

	suiteFile := filepath.Join(rootDir, "tests/generated/test_smoke.py")
	drifted := strings.Replace(readFile(t, suiteFile), "def test_logout(", "def test_signout(", 1)
	require.NoError(t, os.WriteFile(suiteFile, []byte(drifted), 0o644))

	err := Validate(cfg)
	require.Error(t, err)
	assert.True(t, IsFailureError(err))
	assert.Contains(t, err.Error(), `test "logout" does not exist`)
}

func TestValidateWithoutGeneratedFiles(t *testing.T) {
	_, planFile := writeDemoPlan(t, demoPlan)

	err := Validate(&Config{PlanFile: planFile})
	require.Error(t, err)
	assert.True(t, IsFailureError(err))
	assert.Contains(t, err.Error(), "does not exist")
}

func TestUnknownTargetFilter(t *testing.T) {
	_, planFile := writeDemoPlan(t, demoPlan)

	err := Generate(&Config{PlanFile: planFile, TargetFilter: []string{"jest"}})
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
	assert.Contains(t, err.Error(), `unknown target "jest"`)
}

func TestRunWithCustomTarget(t *testing.T) {
	rootDir, planFile := writeDemoPlan(t, `
name: Demo
package_name: demo

suites:
  - id: smoke
    groups: [auth]

groups:
  - id: auth
    tests:
      - id: login
      - id: logout

custom_targets:
  - id: shell
    out_dir: tests/shell
    template_dir: templates
    suite_file_name_template: "{{ .Suite.Name }}.txt"
    test_regex_template: 'case {{ .Name }}'
    runners:
      - id: shell
        command: sh -c "echo PASS login; echo PASS logout"
        fail_regex_template: "FAIL {{ .TestName }}"
        pass_regex_template: "PASS {{ .TestName }}"
`)

	templateDir := filepath.Join(rootDir, "templates")
	require.NoError(t, os.MkdirAll(templateDir, 0o755))
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(templateDir, name), []byte(content), 0o644))
	}
	write("suite.txt", "# Planter Suite: {{ .Suite.Name }}\n")
	write("group.txt", "\n# Planter Group: {{ .Group.Name }}\n")
	write("test.txt", "\ncase {{ .Test.Name }}\n")

	cfg := &Config{PlanFile: planFile, Parse: true}
	require.NoError(t, Generate(cfg))
	require.NoError(t, Validate(cfg))

	content := readFile(t, filepath.Join(rootDir, "tests/shell/smoke.txt"))
	assert.Contains(t, content, "case login")

	assert.NoError(t, Run(context.Background(), cfg))
}

func TestRunReportsFailures(t *testing.T) {
	rootDir, planFile := writeDemoPlan(t, `
name: Demo
package_name: demo

suites:
  - id: smoke
    groups: [auth]

groups:
  - id: auth
    tests:
      - id: login

custom_targets:
  - id: shell
    out_dir: tests/shell
    template_dir: templates
    suite_file_name_template: "{{ .Suite.Name }}.txt"
    test_regex_template: 'case {{ .Name }}'
    runners:
      - id: shell
        command: sh -c "echo FAIL login"
        fail_regex_template: "FAIL {{ .TestName }}"
        pass_regex_template: "PASS {{ .TestName }}"
`)

	templateDir := filepath.Join(rootDir, "templates")
	require.NoError(t, os.MkdirAll(templateDir, 0o755))
	for name, content := range map[string]string{
		"suite.txt": "# Planter Suite: {{ .Suite.Name }}\n",
		"group.txt": "\n# Planter Group: {{ .Group.Name }}\n",
		"test.txt":  "\ncase {{ .Test.Name }}\n",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(templateDir, name), []byte(content), 0o644))
	}

	logDir := filepath.Join(rootDir, "logs")
	cfg := &Config{PlanFile: planFile, Parse: true, LogDir: logDir}
	require.NoError(t, Generate(cfg))

	err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, IsFailureError(err))

	// Captured output is saved under the run id directory.
	runs, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	saved := readFile(t, filepath.Join(logDir, runs[0].Name(), "shell-shell.log"))
	assert.Contains(t, saved, "FAIL login")
}

func TestDumpTargets(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, DumpTargets(&buf))
	out := buf.String()

	assert.Contains(t, out, "custom_targets:")
	for _, id := range []string{"bun", "gotest", "pytest", "vitest"} {
		assert.Contains(t, out, "id: "+id)
	}
	assert.Contains(t, out, "suite_file_name_template:")
}
