package mcp

import "github.com/mark3labs/mcp-go/mcp"

func rootParam() mcp.ToolOption {
	return mcp.WithString("root",
		mcp.Required(),
		mcp.Description("Absolute path of the directory to scan"),
	)
}

func orderParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithBoolean("topological",
			mcp.Description("Order components by render dependency instead of alphabetically"),
		),
		mcp.WithString("cycle_policy",
			mcp.Description("What to do when render dependencies form a cycle: fail, alpha (fall back to alphabetical) or break (ignore the closing edge)"),
			mcp.Enum("fail", "alpha", "break"),
		),
	}
}

func analyzeComponentsTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Scan a React source tree and report the props, state fields and rendered components of every component file, with line numbers"),
		rootParam(),
	}
	return mcp.NewTool("analyze_components", append(opts, orderParams()...)...)
}

func componentOrderTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Return only the component order of a source tree, plus any dependency cycle found"),
		rootParam(),
	}
	return mcp.NewTool("component_order", append(opts, orderParams()...)...)
}

func componentDetailsTool() mcp.Tool {
	return mcp.NewTool("component_details",
		mcp.WithDescription("Return the props, state and rendered components of one component, plus the known components that render it"),
		rootParam(),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Component identifier: the file name without extension"),
		),
	)
}
