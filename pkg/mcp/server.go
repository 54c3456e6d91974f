// FileClaw - Minimal MCP file-tools server
// License: MIT
//
// Copyright (c) 2026 FileClaw contributors

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/freitascorp/fileclaw/pkg/audit"
	"github.com/freitascorp/fileclaw/pkg/config"
	"github.com/freitascorp/fileclaw/pkg/observability"
	"github.com/freitascorp/fileclaw/pkg/tools"
)

// Server implements a stdio-based MCP server over a ToolRegistry.
//
// It processes one line to completion before reading the next: there is no
// request queue, no overlap between tool invocations, and the only lock is
// the write mutex that keeps each response line atomic. Diagnostics go to
// the slog logger (stderr), never to the protocol channel.
type Server struct {
	cfg      *config.Config
	registry *tools.ToolRegistry
	logger   *slog.Logger
	metrics  *observability.ServerMetrics
	audit    *audit.Logger // nil when auditing is disabled

	in  io.Reader
	out io.Writer
	mu  sync.Mutex // serializes writes to out

	writeErr error // first fatal stream-level write failure
}

// NewServer creates an MCP server reading JSON-RPC from stdin and writing
// responses to stdout.
func NewServer(cfg *config.Config, registry *tools.ToolRegistry, logger *slog.Logger) *Server {
	return NewServerWithIO(cfg, registry, logger, os.Stdin, os.Stdout)
}

// NewServerWithIO creates an MCP server with custom I/O (for testing).
func NewServerWithIO(cfg *config.Config, registry *tools.ToolRegistry, logger *slog.Logger, in io.Reader, out io.Writer) *Server {
	return &Server{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		metrics:  observability.NewServerMetrics(),
		in:       in,
		out:      out,
	}
}

// SetAuditLogger enables audit recording of tool invocations.
func (s *Server) SetAuditLogger(l *audit.Logger) { s.audit = l }

// SetMetrics replaces the server's metrics suite (to share a registry with
// the metrics listener).
func (s *Server) SetMetrics(m *observability.ServerMetrics) { s.metrics = m }

// Metrics returns the server's metrics suite.
func (s *Server) Metrics() *observability.ServerMetrics { return s.metrics }

// Serve runs the transport loop until EOF, ctx cancellation, or a fatal
// stream-level write failure. A malformed or failing message never
// terminates the loop; normal EOF returns nil.
func (s *Server) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	// Tool results can be large; increase the line buffer.
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		s.metrics.LinesRead.Inc()
		s.processLine(ctx, line)

		if s.writeErr != nil {
			return fmt.Errorf("stdout write error: %w", s.writeErr)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stdin read error: %w", err)
	}
	return nil
}

// processLine decodes and dispatches a single line. Any panic while
// handling it is converted to a -32603 response so the loop survives.
//
// Only JSON syntax failures are -32700. A line that is valid JSON but not
// an object, or an object with odd field types, got past the parse stage
// and fails later like any other per-line fault: a non-object body is an
// internal error, a non-string method falls through dispatch to -32601
// with the id still echoed.
func (s *Server) processLine(ctx context.Context, line string) {
	defer func() {
		if rec := recover(); rec != nil {
			s.metrics.InternalErrors.Inc()
			s.logger.Error("panic while processing line", "panic", rec)
			s.sendError(nil, ErrInternal, fmt.Sprintf("Internal error: %v", rec))
		}
	}()

	var raw any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		s.metrics.ParseErrors.Inc()
		s.sendError(nil, ErrParse, "Parse error: "+err.Error())
		return
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		s.metrics.InternalErrors.Inc()
		s.sendError(nil, ErrInternal, "Internal error: request is not an object")
		return
	}

	jsonrpc, _ := obj["jsonrpc"].(string)
	s.handleRequest(ctx, &Request{
		JSONRPC: jsonrpc,
		ID:      obj["id"],
		Method:  obj["method"],
		Params:  obj["params"],
	})
}

// handleRequest routes a decoded request. The method table is closed;
// anything unknown gets -32601. Every message receives a response, with the
// original id echoed back (null when absent) — the host this server was
// built for treats notifications like requests.
func (s *Server) handleRequest(ctx context.Context, req *Request) {
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolsCall(ctx, req)
	default:
		s.metrics.MethodNotFound.Inc()
		s.sendError(req.ID, ErrNotFound, fmt.Sprintf("Method not found: %v", req.Method))
	}
}

// ── Method handlers ────────────────────────────────────────────────

func (s *Server) handleInitialize(req *Request) {
	s.sendResult(req.ID, InitializeResult{
		ProtocolVersion: s.cfg.ProtocolVersion,
		Capabilities: ServerCapability{
			Tools: &ToolsCapability{},
		},
		ServerInfo: EntityInfo{
			Name:    s.cfg.ServerName,
			Version: s.cfg.ServerVersion,
		},
	})
}

func (s *Server) handleToolsList(req *Request) {
	registered := s.registry.List()

	infos := make([]ToolInfo, 0, len(registered))
	for _, t := range registered {
		schema := t.Parameters()
		if schema == nil {
			schema = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		infos = append(infos, ToolInfo{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: schema,
		})
	}

	s.sendResult(req.ID, ToolsListResult{Tools: infos})
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) {
	name, args := toolCallParams(req.Params)

	s.logger.Info("tool call", "tool", name)
	s.metrics.ToolCalls.Inc()

	start := time.Now()
	// The registry boundary flattens every tool failure — including an
	// unknown or missing name — into an isError result. Tool failure is
	// data, not a transport fault.
	result := s.registry.Execute(ctx, name, args)
	elapsed := time.Since(start)

	s.metrics.ToolLatency.Observe(elapsed.Seconds())
	if result.IsError {
		s.metrics.ToolErrors.Inc()
	}

	if s.audit != nil {
		if err := s.audit.LogToolCall(ctx, name, result.IsError, elapsed); err != nil {
			s.logger.Warn("audit append failed", "error", err)
		}
	}

	s.sendResult(req.ID, result)
}

// toolCallParams extracts name and arguments from a tools/call params
// value. Anything missing or mistyped degrades to zero values; the registry
// turns an empty name into the "Unknown tool" result.
func toolCallParams(params any) (string, map[string]any) {
	obj, _ := params.(map[string]any)
	name, _ := obj["name"].(string)
	args, _ := obj["arguments"].(map[string]any)
	return name, args
}

// ── Wire helpers ───────────────────────────────────────────────────

func (s *Server) sendResult(id any, result any) {
	s.writeJSON(Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) sendError(id any, code int, message string) {
	s.writeJSON(Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	})
}

// writeJSON emits one response as a single line. os.Stdout is unbuffered,
// so the caller observes the response as soon as this returns. A write
// failure is fatal for the stream and recorded for Serve to act on.
func (s *Server) writeJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		// Last-resort: log and drop.
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return
	}
	if _, err := s.out.Write(append(data, '\n')); err != nil {
		s.writeErr = err
		s.logger.Error("failed to write response", "error", err)
	}
}
