package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ReadFileTool reads the contents of a file.
type ReadFileTool struct{}

func (t *ReadFileTool) Name() string        { return "read_file" }
func (t *ReadFileTool) Description() string { return "Read the contents of a file" }

func (t *ReadFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Path to the file to read",
			},
		},
		"required": []string{"path"},
	}
}

func (t *ReadFileTool) Execute(_ context.Context, args map[string]any) (*ToolResult, error) {
	path := stringArg(args, "path", "")
	if path == "" {
		return nil, errors.New("path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrorResult(fmt.Sprintf("File not found: %s", path)), nil
		}
		return nil, err
	}

	return NewToolResult(fmt.Sprintf("File content from %s:\n%s", path, data)), nil
}

// WriteFileTool writes text content to a file, creating intermediate
// directories as needed.
type WriteFileTool struct{}

func (t *WriteFileTool) Name() string        { return "write_file" }
func (t *WriteFileTool) Description() string { return "Write content to a file" }

func (t *WriteFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Path to the file to write",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "Content to write to the file",
			},
		},
		"required": []string{"path", "content"},
	}
}

func (t *WriteFileTool) Execute(_ context.Context, args map[string]any) (*ToolResult, error) {
	path := stringArg(args, "path", "")
	if path == "" {
		return nil, errors.New("path is required")
	}
	content, ok := args["content"].(string)
	if !ok {
		return nil, errors.New("content is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ErrorResult(fmt.Sprintf("Failed to write file: %v", err)), nil
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return ErrorResult(fmt.Sprintf("Failed to write file: %v", err)), nil
	}

	return NewToolResult(fmt.Sprintf("Successfully wrote %d characters to %s",
		utf8.RuneCountInString(content), path)), nil
}

// ListDirectoryTool lists directory contents with type and size annotations.
type ListDirectoryTool struct{}

func (t *ListDirectoryTool) Name() string        { return "list_directory" }
func (t *ListDirectoryTool) Description() string { return "List contents of a directory" }

func (t *ListDirectoryTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Path to the directory to list",
			},
		},
		"required": []string{"path"},
	}
}

func (t *ListDirectoryTool) Execute(_ context.Context, args map[string]any) (*ToolResult, error) {
	path := stringArg(args, "path", ".")

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrorResult(fmt.Sprintf("Directory not found: %s", path)), nil
		}
		return ErrorResult(fmt.Sprintf("Failed to list directory: %v", err)), nil
	}
	if !info.IsDir() {
		return ErrorResult(fmt.Sprintf("Path is not a directory: %s", path)), nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return ErrorResult(fmt.Sprintf("Failed to list directory: %v", err)), nil
	}

	// os.ReadDir returns entries sorted by name.
	items := make([]string, 0, len(entries))
	for _, entry := range entries {
		kind := "file"
		var size int64
		// Stat the joined path so symlinks resolve to their targets. A
		// broken link stays a zero-byte file.
		if fi, err := os.Stat(filepath.Join(path, entry.Name())); err == nil {
			if fi.IsDir() {
				kind = "directory"
			} else {
				size = fi.Size()
			}
		}
		items = append(items, fmt.Sprintf("%s (%s, %d bytes)", entry.Name(), kind, size))
	}

	return NewToolResult(fmt.Sprintf("Contents of %s:\n%s", path, strings.Join(items, "\n"))), nil
}
