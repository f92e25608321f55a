package flags

import (
	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "PLANTER"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	PlanFile = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "planter.yaml",
		EnvVars: prefixEnvVars("CONFIG"),
		Usage:   "Path to the plan file (.yaml, .yml, .json or .toml)",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level (trace, debug, info, warn, error, crit)",
	}
	LogColor = &cli.BoolFlag{
		Name:    "log-color",
		Value:   true,
		EnvVars: prefixEnvVars("LOG_COLOR"),
		Usage:   "Colorize log output",
	}
	Target = &cli.StringSliceFlag{
		Name:    "target",
		Aliases: []string{"t"},
		EnvVars: prefixEnvVars("TARGET"),
		Usage:   "Target id to operate on (repeatable; default all targets)",
	}
	Document = &cli.StringSliceFlag{
		Name:    "document",
		Aliases: []string{"d"},
		EnvVars: prefixEnvVars("DOCUMENT"),
		Usage:   "Document id to generate (repeatable; default all documents)",
	}
	NoParse = &cli.BoolFlag{
		Name:    "no-parse",
		EnvVars: prefixEnvVars("NO_PARSE"),
		Usage:   "Do not classify runner output per test; rely on exit status only",
	}
	NoParallel = &cli.BoolFlag{
		Name:    "no-parallel",
		EnvVars: prefixEnvVars("NO_PARALLEL"),
		Usage:   "Run the test runners one at a time instead of concurrently",
	}
	MaxProcs = &cli.IntFlag{
		Name:    "max-procs",
		Value:   0,
		EnvVars: prefixEnvVars("MAX_PROCS"),
		Usage:   "Maximum concurrent runner processes in parallel mode (0 = unbounded)",
	}
	LogDir = &cli.StringFlag{
		Name:    "log-dir",
		EnvVars: prefixEnvVars("LOG_DIR"),
		Usage:   "Directory to save captured runner output under (per run id)",
	}
)

// GlobalFlags apply to every subcommand.
var GlobalFlags = []cli.Flag{
	PlanFile,
	LogLevel,
	LogColor,
}

// GenerateFlags apply to `planter generate`.
var GenerateFlags = []cli.Flag{
	Target,
	Document,
}

// ValidateFlags apply to `planter validate`.
var ValidateFlags = []cli.Flag{
	Target,
}

// RunFlags apply to `planter run`.
var RunFlags = []cli.Flag{
	Target,
	NoParse,
	NoParallel,
	MaxProcs,
	LogDir,
}
