package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTool struct {
	name   string
	result *ToolResult
	err    error
}

func (s *staticTool) Name() string               { return s.name }
func (s *staticTool) Description() string        { return "static test tool" }
func (s *staticTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (s *staticTool) Execute(context.Context, map[string]any) (*ToolResult, error) {
	return s.result, s.err
}

type panicTool struct{}

func (p *panicTool) Name() string               { return "panic_tool" }
func (p *panicTool) Description() string        { return "always panics" }
func (p *panicTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (p *panicTool) Execute(context.Context, map[string]any) (*ToolResult, error) {
	panic("boom")
}

func TestRegistryListOrder(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(&staticTool{name: "zeta"})
	reg.Register(&staticTool{name: "alpha"})
	reg.Register(&staticTool{name: "mid"})

	names := []string{}
	for _, tool := range reg.List() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names, "List must preserve registration order")
}

func TestRegistryReregisterKeepsPosition(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(&staticTool{name: "a"})
	reg.Register(&staticTool{name: "b"})
	reg.Register(&staticTool{name: "a", result: NewToolResult("replaced")})

	require.Len(t, reg.List(), 2)
	assert.Equal(t, "a", reg.List()[0].Name())

	res := reg.Execute(context.Background(), "a", nil)
	assert.Equal(t, "replaced", res.Text())
}

func TestExecuteUnknownTool(t *testing.T) {
	reg := NewToolRegistry()

	res := reg.Execute(context.Background(), "nonexistent", nil)
	require.NotNil(t, res)
	assert.True(t, res.IsError)
	assert.Equal(t, "Unknown tool: nonexistent", res.Text())
}

func TestExecuteHandlerError(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(&staticTool{name: "broken", err: assert.AnError})

	res := reg.Execute(context.Background(), "broken", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text(), "Error executing tool broken:")
}

func TestExecutePanicIsCaught(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(&panicTool{})

	res := reg.Execute(context.Background(), "panic_tool", nil)
	require.NotNil(t, res)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text(), "Error executing tool panic_tool: boom")
}

func TestExecuteNilResult(t *testing.T) {
	reg := NewToolRegistry()
	reg.Register(&staticTool{name: "empty"})

	res := reg.Execute(context.Background(), "empty", nil)
	assert.True(t, res.IsError)
}

func TestDefaultRegistryOrder(t *testing.T) {
	reg := DefaultRegistry()

	names := []string{}
	for _, tool := range reg.List() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"read_file", "write_file", "list_directory", "get_timestamp"}, names)
}
