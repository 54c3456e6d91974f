// Package tools defines FileClaw's tool system: the Tool interface, the
// ToolResult content model, and the ToolRegistry that the MCP server
// dispatches tools/call requests through.
//
// Tool failure is application data, not a transport fault: every failure a
// tool can produce is flattened into a ToolResult with IsError=true at the
// registry boundary. Nothing a tool does can propagate past Execute.
package tools

import (
	"context"
	"fmt"
)

// ContentBlock is the atomic unit of a tool's returned payload.
// Only the "text" variant is used.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the outcome of a tool invocation.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// NewToolResult creates a successful single-text-block result.
func NewToolResult(text string) *ToolResult {
	return &ToolResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

// ErrorResult creates a failed single-text-block result.
func ErrorResult(text string) *ToolResult {
	return &ToolResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}

// Text returns the concatenated text of all content blocks.
func (r *ToolResult) Text() string {
	if len(r.Content) == 1 {
		return r.Content[0].Text
	}
	var out string
	for _, block := range r.Content {
		out += block.Text
	}
	return out
}

// Tool is a named, schema-described operation the host may invoke.
//
// Execute may return a ToolResult with IsError=true for domain failures the
// tool wants to describe itself (missing file, bad path), or a plain error
// for everything else; the registry converts plain errors into error results.
// Execute may perform blocking I/O — the serve loop processes one call at a
// time by design.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, args map[string]any) (*ToolResult, error)
}

// ToolRegistry maps tool names to implementations. It is built once at
// startup and never mutated afterwards, so no locking is needed.
type ToolRegistry struct {
	tools map[string]Tool
	order []string
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds a tool. Registering the same name twice replaces the
// implementation but keeps the original position in List.
func (r *ToolRegistry) Register(t Tool) {
	name := t.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Get returns the tool registered under name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns all tools in registration order.
func (r *ToolRegistry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Execute invokes the named tool and flattens every possible failure into a
// ToolResult. An unknown name is a normal error result, not a dispatch
// failure. Panics inside a tool are caught here.
func (r *ToolRegistry) Execute(ctx context.Context, name string, args map[string]any) (result *ToolResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = ErrorResult(fmt.Sprintf("Error executing tool %s: %v", name, rec))
		}
	}()

	tool, ok := r.tools[name]
	if !ok {
		return ErrorResult(fmt.Sprintf("Unknown tool: %s", name))
	}

	res, err := tool.Execute(ctx, args)
	if err != nil {
		return ErrorResult(fmt.Sprintf("Error executing tool %s: %v", name, err))
	}
	if res == nil {
		return ErrorResult(fmt.Sprintf("Error executing tool %s: tool returned no result", name))
	}
	return res
}

// stringArg extracts a string argument, falling back to defaultVal when the
// key is absent or not a string.
func stringArg(args map[string]any, key, defaultVal string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return defaultVal
}
