package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/gnana997/rendermap/pkg/depgraph"
	mcpserver "github.com/gnana997/rendermap/pkg/mcp"
	"github.com/gnana997/rendermap/pkg/mcplog"
	"github.com/gnana997/rendermap/pkg/pipeline"
	"github.com/gnana997/rendermap/pkg/report"
	"github.com/gnana997/rendermap/pkg/watch"
)

func analyzeAction(stdout, stderr io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		s, err := resolveSettings(cmd, stderr, true)
		if err != nil {
			return err
		}
		p, err := pipeline.New(s.walk, s.logger)
		if err != nil {
			return usageErr(err)
		}
		return analyze(ctx, p, s, stdout)
	}
}

func watchAction(stdout, stderr io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		s, err := resolveSettings(cmd, stderr, true)
		if err != nil {
			return err
		}
		p, err := pipeline.New(s.walk, s.logger)
		if err != nil {
			return usageErr(err)
		}

		// A cycle keeps the watch alive: the next edit may remove it.
		if err := analyze(ctx, p, s, stdout); err != nil {
			if !errors.Is(err, depgraph.ErrCyclicDependency) {
				return err
			}
			s.logger.Error("analysis failed", "error", err)
		}

		w, err := watch.New(watch.DefaultOptions(), s.logger)
		if err != nil {
			return err
		}
		return w.Run(ctx, s.root, func(ctx context.Context, changed []string) {
			for _, path := range changed {
				p.Walker().Invalidate(path)
			}
			s.logger.Info("components changed", "files", len(changed))
			if err := analyze(ctx, p, s, stdout); err != nil {
				s.logger.Error("analysis failed", "error", err)
			}
		})
	}
}

func serveAction(stderr io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		s, err := resolveSettings(cmd, stderr, false)
		if err != nil {
			return err
		}
		p, err := pipeline.New(s.walk, s.logger)
		if err != nil {
			return usageErr(err)
		}

		callLog, err := mcplog.Open(cmd.String("call-log"))
		if err != nil {
			return err
		}
		defer callLog.Close()

		if stdinIsTerminal() {
			s.logger.Warn("stdin is a terminal; serve expects an MCP client on stdio")
		}
		s.logger.Info("serving MCP over stdio", "call_log", cmd.String("call-log"))
		return mcpserver.NewServer(p, callLog).ServeStdio()
	}
}

// analyze runs the pipeline once and prints the report.
func analyze(ctx context.Context, p *pipeline.Pipeline, s *settings, w io.Writer) error {
	res, err := p.Run(ctx, s.root, s.order)
	if err != nil {
		return err
	}
	return writeReport(w, res, s.format)
}

func writeReport(w io.Writer, res *pipeline.Result, format string) error {
	switch format {
	case formatJSON:
		return report.WriteJSON(w, res)
	case formatTree:
		return report.WriteTree(w, res.Collection.Root, res.Graph, res.Resolution.Order)
	case formatText:
		return report.WriteText(w, res.Collection.Records, res.Resolution.Order)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// stdinIsTerminal reports whether serve was started by hand rather than by
// an MCP client.
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
