package types

// PlanConfig is the top-level shape of a planter plan file. Every collection
// is an ordered list with an explicit id so that declaration order survives
// YAML and TOML round trips.
type PlanConfig struct {
	Name        string `yaml:"name" toml:"name"`
	PackageName string `yaml:"package_name" toml:"package_name"`

	Suites        []SuiteConfig        `yaml:"suites" toml:"suites"`
	Groups        []GroupConfig        `yaml:"groups" toml:"groups"`
	Targets       []TargetConfig       `yaml:"targets,omitempty" toml:"targets"`
	CustomTargets []CustomTargetConfig `yaml:"custom_targets,omitempty" toml:"custom_targets"`
	Documents     []DocumentConfig     `yaml:"documents,omitempty" toml:"documents"`
}

// SuiteConfig declares a suite as an ordered list of group ids.
type SuiteConfig struct {
	ID     string   `yaml:"id" toml:"id"`
	Desc   string   `yaml:"desc,omitempty" toml:"desc"`
	Groups []string `yaml:"groups" toml:"groups"`
}

// GroupConfig declares a group and its tests.
type GroupConfig struct {
	ID    string       `yaml:"id" toml:"id"`
	Desc  string       `yaml:"desc,omitempty" toml:"desc"`
	Tests []TestConfig `yaml:"tests" toml:"tests"`
}

// TestConfig declares a single test case.
type TestConfig struct {
	ID             string   `yaml:"id" toml:"id"`
	Desc           string   `yaml:"desc,omitempty" toml:"desc"`
	ExcludeTargets []string `yaml:"exclude_targets,omitempty" toml:"exclude_targets"`
}

// TargetConfig configures one of the built-in default targets. Only the
// output directory and runner overrides are configurable; the templates come
// from the default target catalogue.
type TargetConfig struct {
	ID      string         `yaml:"id" toml:"id"`
	OutDir  string         `yaml:"out_dir" toml:"out_dir"`
	Runners []RunnerConfig `yaml:"runners,omitempty" toml:"runners"`
}

// CustomTargetConfig configures a fully user-defined target. The suite, group
// and test templates are read from TemplateDir.
type CustomTargetConfig struct {
	ID                    string         `yaml:"id" toml:"id"`
	OutDir                string         `yaml:"out_dir" toml:"out_dir"`
	TemplateDir           string         `yaml:"template_dir" toml:"template_dir"`
	SuiteFileNameTemplate string         `yaml:"suite_file_name_template" toml:"suite_file_name_template"`
	TestRegexTemplate     string         `yaml:"test_regex_template" toml:"test_regex_template"`
	Runners               []RunnerConfig `yaml:"runners" toml:"runners"`
}

// RunnerConfig configures one way of executing a target's generated tests.
// Unset fields default from the layer beneath (the built-in runner config for
// default targets).
type RunnerConfig struct {
	ID                string            `yaml:"id" toml:"id"`
	Command           string            `yaml:"command,omitempty" toml:"command"`
	Env               map[string]string `yaml:"env,omitempty" toml:"env"`
	WorkDir           string            `yaml:"work_dir,omitempty" toml:"work_dir"`
	FailRegexTemplate string            `yaml:"fail_regex_template,omitempty" toml:"fail_regex_template"`
	PassRegexTemplate string            `yaml:"pass_regex_template,omitempty" toml:"pass_regex_template"`
}

// DocumentConfig configures a single rendered document (eg. a markdown test
// plan). The "markdown" id has a built-in template; custom ids must set
// Template to a template file path.
type DocumentConfig struct {
	ID       string `yaml:"id" toml:"id"`
	OutFile  string `yaml:"out_file" toml:"out_file"`
	Template string `yaml:"template,omitempty" toml:"template"`
}
