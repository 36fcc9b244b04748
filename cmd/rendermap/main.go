// Command rendermap reports the props, state and rendered components of
// every React component file under a directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/gnana997/rendermap/pkg/depgraph"
	"github.com/gnana997/rendermap/pkg/walker"
)

const version = "0.1.0-dev"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
	exitCycle = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := newApp(stdout, stderr).Run(ctx, args)
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "rendermap: %v\n", err)
	code := exitCode(err)
	if code == exitCycle {
		fmt.Fprintln(stderr, "rendermap: use --cycle-policy alpha or --cycle-policy break to order cyclic components")
	}
	return code
}

func exitCode(err error) int {
	var usage *usageError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, depgraph.ErrCyclicDependency):
		return exitCycle
	case errors.As(err, &usage), errors.Is(err, walker.ErrInvalidRoot):
		return exitUsage
	default:
		return exitError
	}
}

// usageError marks errors caused by the command line or the config file.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErr(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return usageErr(err)
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:                      "rendermap",
		Usage:                     "map props, state and rendered components of React component files",
		ArgsUsage:                 "[dir]",
		Writer:                    stdout,
		ErrWriter:                 stderr,
		DisableSliceFlagSeparator: true,
		OnUsageError:              onUsageError,
		Flags:                     analysisFlags(),
		Action:                    analyzeAction(stdout, stderr),
		Commands: []*cli.Command{
			{
				Name:         "watch",
				Usage:        "print the report, then print it again whenever a component file changes",
				ArgsUsage:    "[dir]",
				OnUsageError: onUsageError,
				Action:       watchAction(stdout, stderr),
			},
			{
				Name:         "serve",
				Usage:        "serve the analysis as MCP tools over stdio",
				OnUsageError: onUsageError,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "call-log",
						Usage: "append one JSON line per tool call to this file",
					},
				},
				Action: serveAction(stderr),
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(stdout, "rendermap %s\n", version)
					return nil
				},
			},
		},
	}
}

// analysisFlags are defined on the root command and inherited by its
// subcommands.
func analysisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "topo",
			Aliases: []string{"t"},
			Usage:   "order components by render dependency instead of alphabetically",
		},
		&cli.StringFlag{
			Name:  "cycle-policy",
			Value: string(depgraph.CycleFail),
			Usage: "on a render cycle: fail, alpha (fall back to alphabetical order) or break (ignore the closing edge)",
		},
		&cli.StringFlag{
			Name:  "format",
			Value: formatText,
			Usage: "output format: text, json or tree",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "glob of files to analyse, relative to dir (repeatable, default **/*.js and **/*.jsx)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "glob of files to skip, relative to dir (repeatable)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "files analysed concurrently (default: twice the CPU count)",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "config file (default <dir>/" + configFileName + " if present)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: "warn",
			Usage: "debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Value: "text",
			Usage: "text or json",
		},
	}
}
