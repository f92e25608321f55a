package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	planter "github.com/planter-dev/planter"
	"github.com/planter-dev/planter/exitcodes"
	"github.com/planter-dev/planter/flags"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "planter"
	app.Usage = "Test plan generator and runner"
	app.Description = "planter compiles a declarative test plan into stub files for multiple test frameworks, validates the generated files against the plan, and runs the framework runners"
	app.Flags = flags.GlobalFlags
	app.Commands = []*cli.Command{
		{
			Name:  "generate",
			Usage: "Generate test stub files and documents",
			Flags: flags.GenerateFlags,
			Action: withConfig(func(ctx *cli.Context, cfg *planter.Config) error {
				return planter.Generate(cfg)
			}),
		},
		{
			Name:  "validate",
			Usage: "Validate generated test files against the plan",
			Flags: flags.ValidateFlags,
			Action: withConfig(func(ctx *cli.Context, cfg *planter.Config) error {
				return planter.Validate(cfg)
			}),
		},
		{
			Name:  "run",
			Usage: "Run the test runners and classify their output",
			Flags: flags.RunFlags,
			Action: withConfig(func(ctx *cli.Context, cfg *planter.Config) error {
				return planter.Run(ctx.Context, cfg)
			}),
		},
		{
			Name:  "targets",
			Usage: "Dump the built-in default target configurations",
			Action: func(ctx *cli.Context) error {
				return planter.DumpTargets(os.Stdout)
			},
		},
	}
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if planter.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.Failure))
			}
		}
	}

	if err := app.Run(os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

// withConfig builds the logger and Config before handing control to a
// subcommand implementation.
func withConfig(action func(ctx *cli.Context, cfg *planter.Config) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		logger, err := setupLogger(ctx)
		if err != nil {
			return err
		}

		cfg, err := planter.NewConfig(ctx, logger)
		if err != nil {
			return planter.NewRuntimeError(err)
		}
		return action(ctx, cfg)
	}
}

func setupLogger(ctx *cli.Context) (log.Logger, error) {
	level, err := log.LvlFromString(ctx.String(flags.LogLevel.Name))
	if err != nil {
		return nil, planter.NewRuntimeError(fmt.Errorf("invalid log level: %w", err))
	}
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, level, ctx.Bool(flags.LogColor.Name))
	logger := log.NewLogger(handler)
	log.SetDefault(logger)
	return logger, nil
}
