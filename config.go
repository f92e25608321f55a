package planter

import (
	"errors"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/planter-dev/planter/flags"
)

// Config holds one command invocation's settings.
type Config struct {
	// PlanFile is the plan config file path.
	PlanFile string
	// TargetFilter restricts operations to these target ids; empty means
	// all targets.
	TargetFilter []string
	// DocumentFilter restricts generation to these document ids; empty
	// means all configured documents.
	DocumentFilter []string

	// Run options.
	Parallel bool
	MaxProcs int
	Parse    bool
	LogDir   string

	Log log.Logger
}

// NewConfig builds a Config from CLI context.
func NewConfig(ctx *cli.Context, logger log.Logger) (*Config, error) {
	planFile := ctx.String(flags.PlanFile.Name)
	if planFile == "" {
		return nil, errors.New("plan file is required")
	}
	// The default plan file name has a TOML sibling; fall back to it when the
	// flag was not set explicitly and only planter.toml exists.
	if !ctx.IsSet(flags.PlanFile.Name) && planFile == flags.PlanFile.Value {
		if _, err := os.Stat(planFile); os.IsNotExist(err) {
			if _, err := os.Stat("planter.toml"); err == nil {
				planFile = "planter.toml"
			}
		}
	}

	return &Config{
		PlanFile:       planFile,
		TargetFilter:   ctx.StringSlice(flags.Target.Name),
		DocumentFilter: ctx.StringSlice(flags.Document.Name),
		Parallel:       !ctx.Bool(flags.NoParallel.Name),
		MaxProcs:       ctx.Int(flags.MaxProcs.Name),
		Parse:          !ctx.Bool(flags.NoParse.Name),
		LogDir:         ctx.String(flags.LogDir.Name),
		Log:            logger,
	}, nil
}
