package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binaryPath is set by TestMain after building the binary.
var binaryPath string

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	tmp, err := os.MkdirTemp("", "rendermap-integration-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "rendermap")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

// --- helpers ---

func skipIfNotIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run integration tests")
	}
}

// startServer launches rendermap serve as a subprocess and returns an
// initialized MCP client.
func startServer(t *testing.T, args ...string) *client.Client {
	t.Helper()

	c, err := client.NewStdioMCPClient(binaryPath, nil, append([]string{"serve"}, args...)...)
	require.NoError(t, err, "failed to start MCP server")

	t.Cleanup(func() {
		c.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "rendermap-integration-test",
		Version: "1.0.0",
	}

	result, err := c.Initialize(ctx, initReq)
	require.NoError(t, err, "failed to initialize MCP session")
	assert.Equal(t, "rendermap", result.ServerInfo.Name)

	return c
}

func callToolHelper(t *testing.T, c *client.Client, toolName string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req := mcp.CallToolRequest{}
	req.Params.Name = toolName
	if args != nil {
		req.Params.Arguments = args
	}

	result, err := c.CallTool(ctx, req)
	require.NoError(t, err, "CallTool(%s) failed", toolName)
	return result
}

func extractJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected content in result")
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- integration tests ---

func TestIntegration_ListTools(t *testing.T) {
	skipIfNotIntegration(t)
	c := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)

	toolNames := make([]string, len(tools.Tools))
	for i, tool := range tools.Tools {
		toolNames[i] = tool.Name
	}
	assert.ElementsMatch(t, []string{"analyze_components", "component_order", "component_details"}, toolNames)
}

func TestIntegration_ComponentOrder(t *testing.T) {
	skipIfNotIntegration(t)
	c := startServer(t)
	root := cyclicTree(t)

	t.Run("cycle fails by default", func(t *testing.T) {
		result := callToolHelper(t, c, "component_order", map[string]any{"root": root, "topological": true})
		assert.True(t, result.IsError)
	})

	t.Run("cycle broken", func(t *testing.T) {
		result := callToolHelper(t, c, "component_order", map[string]any{
			"root":         root,
			"topological":  true,
			"cycle_policy": "break",
		})
		require.False(t, result.IsError)

		var resp map[string]any
		require.NoError(t, json.Unmarshal([]byte(extractJSON(t, result)), &resp))
		assert.Equal(t, []any{"B", "A"}, resp["order"])
		assert.Len(t, resp["broken_edges"], 1)
	})
}

func TestIntegration_AnalyzeAfterEdit(t *testing.T) {
	skipIfNotIntegration(t)
	c := startServer(t)
	root := t.TempDir()
	writeFile(t, root, "Card.jsx", "render() { return <div>{this.props.title}</div>; }\n")

	result := callToolHelper(t, c, "component_details", map[string]any{"root": root, "name": "Card"})
	require.False(t, result.IsError)
	assert.Contains(t, extractJSON(t, result), `"title":[1]`)

	// The server caches analyses; an edit must still be picked up.
	time.Sleep(10 * time.Millisecond)
	writeFile(t, root, "Card.jsx", "render() {\n  return <div>{this.props.subtitle}</div>;\n}\n")

	result = callToolHelper(t, c, "component_details", map[string]any{"root": root, "name": "Card"})
	require.False(t, result.IsError)
	text := extractJSON(t, result)
	assert.Contains(t, text, `"subtitle":[2]`)
	assert.NotContains(t, text, `"title"`)
}

func TestIntegration_CallLog(t *testing.T) {
	skipIfNotIntegration(t)
	logPath := filepath.Join(t.TempDir(), "calls.jsonl")
	c := startServer(t, "--call-log", logPath)
	root := cyclicTree(t)

	callToolHelper(t, c, "analyze_components", map[string]any{"root": root})
	callToolHelper(t, c, "component_details", map[string]any{"root": root, "name": "Nope"})
	require.NoError(t, c.Close())

	f, err := os.Open(logPath)
	require.NoError(t, err)
	defer f.Close()

	var tools []string
	var outcomes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		tools = append(tools, entry["tool"].(string))
		outcomes = append(outcomes, entry["outcome"].(string))
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"analyze_components", "component_details"}, tools)
	assert.Equal(t, []string{"ok", "tool_error"}, outcomes)
}
