// Package mcplog keeps an append-only JSONL history of the analysis tool
// calls served over MCP.
package mcplog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Outcome classifies how a call ended.
type Outcome string

const (
	OutcomeOK Outcome = "ok"
	// OutcomeToolError means the tool answered with an error result, e.g.
	// a missing root or a cycle under the fail policy.
	OutcomeToolError Outcome = "tool_error"
	// OutcomeFailed means the handler itself returned an error.
	OutcomeFailed Outcome = "failed"
)

// maxParamLen bounds logged string arguments. Longer values are logged as
// their length only.
const maxParamLen = 256

// Call is one line of the history.
type Call struct {
	Ts   string `json:"ts"`
	Tool string `json:"tool"`
	// Root is the scanned directory, when the call named one.
	Root          string         `json:"root,omitempty"`
	Params        map[string]any `json:"params"`
	DurationMs    int64          `json:"duration_ms"`
	ResponseBytes int            `json:"response_bytes"`
	Outcome       Outcome        `json:"outcome"`
	Error         string         `json:"error,omitempty"`
}

// Logger appends calls to a file. Methods may be called on a nil *Logger,
// which records nothing.
type Logger struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// Open appends to path, creating it and its directory as needed. An empty
// path yields a nil Logger.
func Open(path string) (*Logger, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("mcplog: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("mcplog: open %s: %w", path, err)
	}
	return &Logger{f: f, enc: json.NewEncoder(f)}, nil
}

// Record logs a finished call that started at start.
func (l *Logger) Record(start time.Time, req mcp.CallToolRequest, result *mcp.CallToolResult, err error) error {
	if l == nil {
		return nil
	}
	return l.Write(NewCall(start, req, result, err))
}

// Write appends c as one line.
func (l *Logger) Write(c Call) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(c)
}

func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// NewCall describes a finished call.
func NewCall(start time.Time, req mcp.CallToolRequest, result *mcp.CallToolResult, err error) Call {
	args := req.GetArguments()
	c := Call{
		Ts:            start.UTC().Format(time.RFC3339),
		Tool:          req.Params.Name,
		Params:        compactParams(args),
		DurationMs:    clock().Sub(start).Milliseconds(),
		ResponseBytes: contentSize(result),
		Outcome:       OutcomeOK,
	}
	if root, ok := args["root"].(string); ok {
		c.Root = root
	}

	switch {
	case err != nil:
		c.Outcome = OutcomeFailed
		c.Error = err.Error()
	case result != nil && result.IsError:
		c.Outcome = OutcomeToolError
		if len(result.Content) > 0 {
			if text, ok := result.Content[0].(mcp.TextContent); ok {
				c.Error = text.Text
			}
		}
	}
	return c
}

// compactParams copies args, replacing long strings with a "<key>_len"
// entry.
func compactParams(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > maxParamLen {
			out[k+"_len"] = len(s)
			continue
		}
		out[k] = v
	}
	return out
}

// contentSize is the JSON size of the result content, 0 if unknown.
func contentSize(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}

// clock is swapped in tests.
var clock = time.Now

// Now returns the time used to measure call durations.
func Now() time.Time { return clock() }
