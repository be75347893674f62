// Package mcptools exposes the clarity engine and proof log as MCP tools.
//
// Each tool follows the same shape:
// - A struct holding the shared service, injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() validates arguments, calls the service, and renders text
//
// Validation and storage failures are returned as tool errors, never as Go
// errors, so the client sees a readable message.
package mcptools

import (
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// timeArg parses an optional RFC 3339 argument. Missing means the zero time.
func timeArg(req mcp.CallToolRequest, key string) (time.Time, error) {
	s := req.GetString(key, "")
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
