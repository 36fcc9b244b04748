package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/rendermap/pkg/analyzer"
	"github.com/gnana997/rendermap/pkg/depgraph"
	"github.com/gnana997/rendermap/pkg/pipeline"
	"github.com/gnana997/rendermap/pkg/report"
)

type orderResponse struct {
	Order       []string             `json:"order"`
	Effective   depgraph.Mode        `json:"effective"`
	Cycle       *depgraph.CycleError `json:"cycle,omitempty"`
	BrokenEdges []depgraph.Edge      `json:"broken_edges,omitempty"`
}

type detailsResponse struct {
	*analyzer.ComponentRecord
	RenderedBy []string `json:"rendered_by"`
}

func (s *Server) handleAnalyzeComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, errResult := s.run(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(report.NewJSONReport(res))
}

func (s *Server) handleComponentOrder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, errResult := s.run(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	order := res.Resolution.Order
	if order == nil {
		order = []string{}
	}
	return jsonResult(orderResponse{
		Order:       order,
		Effective:   res.Resolution.Effective,
		Cycle:       res.Resolution.Cycle,
		BrokenEdges: res.Resolution.BrokenEdges,
	})
}

func (s *Server) handleComponentDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, errResult := s.run(ctx, req)
	if errResult != nil {
		return errResult, nil
	}

	rec, ok := res.Collection.Records[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("component %q not found", name)), nil
	}
	renderedBy := res.Graph.Dependents()[name]
	if renderedBy == nil {
		renderedBy = []string{}
	}
	return jsonResult(detailsResponse{ComponentRecord: rec, RenderedBy: renderedBy})
}

// run parses the shared arguments and runs the pipeline. Invalid input and
// analysis failures come back as tool error results.
func (s *Server) run(ctx context.Context, req mcp.CallToolRequest) (*pipeline.Result, *mcp.CallToolResult) {
	root, err := req.RequireString("root")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}

	opts := pipeline.DefaultOptions()
	if req.GetBool("topological", false) {
		opts.Mode = depgraph.ModeTopological
	}
	if p := req.GetString("cycle_policy", ""); p != "" {
		policy, err := depgraph.ParseCyclePolicy(p)
		if err != nil {
			return nil, mcp.NewToolResultError(err.Error())
		}
		opts.CyclePolicy = policy
	}

	s.runMu.Lock()
	res, err := s.pipeline.Run(ctx, root, opts)
	s.runMu.Unlock()
	if err != nil {
		var cycle *depgraph.CycleError
		if errors.As(err, &cycle) {
			return nil, mcp.NewToolResultError(cycle.Error() + "; retry with cycle_policy alpha or break")
		}
		return nil, mcp.NewToolResultError(err.Error())
	}
	return res, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
