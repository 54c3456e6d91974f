package tools

import (
	"context"
	"fmt"
	"time"
)

// TimestampTool reports the current local time.
type TimestampTool struct {
	// now is overridable for tests; defaults to time.Now.
	now func() time.Time
}

func (t *TimestampTool) Name() string        { return "get_timestamp" }
func (t *TimestampTool) Description() string { return "Get current timestamp" }

func (t *TimestampTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
		"required":   []string{},
	}
}

func (t *TimestampTool) Execute(_ context.Context, _ map[string]any) (*ToolResult, error) {
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	return NewToolResult(fmt.Sprintf("Current timestamp: %s", now().Format(time.RFC3339Nano))), nil
}

// DefaultRegistry builds a registry with the built-in file and clock tools
// in their canonical order.
func DefaultRegistry() *ToolRegistry {
	reg := NewToolRegistry()
	reg.Register(&ReadFileTool{})
	reg.Register(&WriteFileTool{})
	reg.Register(&ListDirectoryTool{})
	reg.Register(&TimestampTool{})
	return reg
}
