// Package pipeline runs a full analysis: walk the tree, build the render
// graph and resolve the report order.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/gnana997/rendermap/pkg/depgraph"
	"github.com/gnana997/rendermap/pkg/walker"
)

// Options selects the report order.
type Options struct {
	Mode        depgraph.Mode
	CyclePolicy depgraph.CyclePolicy
}

// DefaultOptions orders alphabetically and fails on cycles when asked for
// topological order.
func DefaultOptions() Options {
	return Options{
		Mode:        depgraph.ModeAlphabetical,
		CyclePolicy: depgraph.CycleFail,
	}
}

// Result is everything a reporter needs.
type Result struct {
	Collection *walker.Collection
	Graph      *depgraph.Graph
	Resolution *depgraph.Resolution
	DurationMs int64
}

// Pipeline owns a walker so that consecutive runs share its analysis
// cache.
type Pipeline struct {
	walker *walker.Walker
	log    *slog.Logger
}

// New creates a pipeline that discovers files with the given options.
func New(opts walker.Options, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := walker.NewWalker(opts, logger)
	if err != nil {
		return nil, err
	}
	return &Pipeline{walker: w, log: logger}, nil
}

// Walker exposes the underlying walker, e.g. for cache invalidation.
func (p *Pipeline) Walker() *walker.Walker {
	return p.walker
}

// Run analyses root. Under depgraph.CycleFail a cycle is returned as a
// *depgraph.CycleError and no result is produced.
func (p *Pipeline) Run(ctx context.Context, root string, opts Options) (*Result, error) {
	start := time.Now()

	coll, err := p.walker.Walk(ctx, root)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	graph := depgraph.Build(coll.Records)

	resolver := depgraph.Resolver{
		Mode:        opts.Mode,
		CyclePolicy: opts.CyclePolicy,
		Logger:      p.log,
	}
	res, err := resolver.Resolve(graph)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Collection: coll,
		Graph:      graph,
		Resolution: res,
		DurationMs: time.Since(start).Milliseconds(),
	}

	p.log.Debug("pipeline complete",
		"root", coll.Root,
		"components", graph.Len(),
		"mode", res.Mode,
		"effective", res.Effective,
		"ms", result.DurationMs)

	return result, nil
}
