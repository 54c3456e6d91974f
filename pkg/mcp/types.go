// FileClaw - Minimal MCP file-tools server
// License: MIT
//
// Copyright (c) 2026 FileClaw contributors

// Package mcp implements a Model Context Protocol (MCP) stdio server.
// It exposes FileClaw's tool registry to external AI clients over
// newline-delimited JSON-RPC 2.0 on stdin/stdout.
//
// Spec: https://modelcontextprotocol.io/specification
package mcp

// ── JSON-RPC 2.0 envelope ──────────────────────────────────────────

// Request is a JSON-RPC 2.0 request. The ID is echoed back verbatim in the
// response; when absent it round-trips as null (this server answers every
// message, including would-be notifications — see the package tests).
// Method is untyped: a request carrying a non-string method still reaches
// dispatch with its id intact and gets the method-not-found error.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Method  any    `json:"method,omitempty"`
	Params  any    `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response. Exactly one of Result and Error is
// set; ID is always serialized, as null when the request had none or could
// not be parsed.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ── MCP initialize ─────────────────────────────────────────────────

// InitializeResult is returned by the server in response to "initialize".
type InitializeResult struct {
	ProtocolVersion string           `json:"protocolVersion"`
	Capabilities    ServerCapability `json:"capabilities"`
	ServerInfo      EntityInfo       `json:"serverInfo"`
}

// EntityInfo identifies a client or server.
type EntityInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ServerCapability advertises supported features. Only tool support is
// advertised.
type ServerCapability struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability describes the tools feature.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ── tools/list ─────────────────────────────────────────────────────

// ToolsListResult is the response to "tools/list".
type ToolsListResult struct {
	Tools []ToolInfo `json:"tools"`
}

// ToolInfo describes a single MCP tool.
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ── JSON-RPC error codes ───────────────────────────────────────────

const (
	ErrParse    = -32700
	ErrNotFound = -32601
	ErrInternal = -32603
)
