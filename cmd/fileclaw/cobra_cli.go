// FileClaw - Minimal MCP file-tools server
// License: MIT
//
// Copyright (c) 2026 FileClaw contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/freitascorp/fileclaw/pkg/audit"
	"github.com/freitascorp/fileclaw/pkg/config"
	"github.com/freitascorp/fileclaw/pkg/mcp"
	"github.com/freitascorp/fileclaw/pkg/observability"
	"github.com/freitascorp/fileclaw/pkg/tools"
)

// ------------------------------------------------------------------
// Global flags
// ------------------------------------------------------------------

var (
	flagDebug  bool
	flagJSON   bool
	flagConfig string
)

// newLogger builds the stderr diagnostic logger. Diagnostics must never
// touch stdout — that channel belongs to the protocol.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if flagDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// ------------------------------------------------------------------
// Root command
// ------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fileclaw",
		Short: "FileClaw — Minimal MCP file-tools server",
		Long: `FileClaw is a Model Context Protocol (MCP) server exposing basic
filesystem tools over stdio.

It speaks newline-delimited JSON-RPC 2.0 on stdin/stdout and provides
read_file, write_file, list_directory, and get_timestamp tools to any
MCP-capable client.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output in JSON format")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default ~/.fileclaw/config.yaml)")

	root.AddCommand(
		newServeCmd(),
		newToolsCmd(),
		newAuditCmd(),
		newVersionCmd(),
	)

	return root
}

// ------------------------------------------------------------------
// `fileclaw serve` — MCP stdio server
// ------------------------------------------------------------------

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP stdio server",
		Long: `Start the Model Context Protocol server over stdio.

The server reads one JSON-RPC 2.0 request per line from stdin and writes
one response per line to stdout. All diagnostics go to stderr.

Client configuration (e.g. Claude Desktop):
  {
    "mcpServers": {
      "fileclaw": {
        "command": "fileclaw",
        "args": ["serve"]
      }
    }
  }`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigAt(flagConfig)
			if err != nil {
				return err
			}

			logger := newLogger(cfg)
			registry := tools.DefaultRegistry()
			srv := mcp.NewServer(cfg, registry, logger)

			store, err := audit.NewStore(audit.StoreConfig{
				Backend:     cfg.Audit.Backend,
				DataDir:     cfg.Audit.DataDir,
				SQLitePath:  cfg.Audit.SQLitePath,
				PostgresDSN: cfg.Audit.PostgresDSN,
			}, logger)
			if err != nil {
				return fmt.Errorf("audit store: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var auditLogger *audit.Logger
			if store != nil {
				defer store.Close()
				auditLogger = audit.NewLogger(store)
				srv.SetAuditLogger(auditLogger)
				if err := auditLogger.LogServerStart(ctx, cfg.ServerName, cfg.ServerVersion); err != nil {
					logger.Warn("audit server.start failed", "error", err)
				}
			}

			if cfg.MetricsAddr != "" {
				observability.ServeMetrics(ctx, cfg.MetricsAddr, srv.Metrics().Registry, logger)
			}

			logger.Info("server starting",
				"name", cfg.ServerName,
				"version", cfg.ServerVersion,
				"protocol", cfg.ProtocolVersion,
				"tools", len(registry.List()),
				"audit", cfg.Audit.Backend,
			)

			serveErr := srv.Serve(ctx)

			if auditLogger != nil {
				if err := auditLogger.LogServerStop(context.Background()); err != nil {
					logger.Warn("audit server.stop failed", "error", err)
				}
			}

			if serveErr == context.Canceled {
				logger.Info("server stopped")
				return nil
			}
			return serveErr
		},
	}
}

// ------------------------------------------------------------------
// `fileclaw tools` — List available tools
// ------------------------------------------------------------------

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "tools",
		Short:   "List the tools the server exposes",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := tools.DefaultRegistry()
			registered := registry.List()

			if flagJSON {
				type toolDump struct {
					Name        string         `json:"name"`
					Description string         `json:"description"`
					InputSchema map[string]any `json:"inputSchema"`
				}
				dump := make([]toolDump, 0, len(registered))
				for _, t := range registered {
					dump = append(dump, toolDump{t.Name(), t.Description(), t.Parameters()})
				}
				data, _ := json.MarshalIndent(dump, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("%-18s %s\n", "TOOL", "DESCRIPTION")
			fmt.Println(strings.Repeat("─", 70))
			for _, t := range registered {
				fmt.Printf("%-18s %s\n", t.Name(), t.Description())
			}
			return nil
		},
	}
}

// ------------------------------------------------------------------
// `fileclaw audit` — Audit log queries
// ------------------------------------------------------------------

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query the tool invocation audit log",
	}

	cmd.AddCommand(newAuditListCmd())
	return cmd
}

func newAuditListCmd() *cobra.Command {
	var (
		flagTool   string
		flagErrors bool
		flagSince  string
		flagLimit  int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List recorded audit events",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigAt(flagConfig)
			if err != nil {
				return err
			}
			if cfg.Audit.Backend == "off" || cfg.Audit.Backend == "" {
				return fmt.Errorf("auditing is disabled; set audit.backend in the config or FILECLAW_AUDIT_BACKEND")
			}
			if cfg.Audit.Backend == "memory" {
				return fmt.Errorf("the memory audit backend does not persist across processes")
			}

			logger := newLogger(cfg)
			store, err := audit.NewStore(audit.StoreConfig{
				Backend:     cfg.Audit.Backend,
				DataDir:     cfg.Audit.DataDir,
				SQLitePath:  cfg.Audit.SQLitePath,
				PostgresDSN: cfg.Audit.PostgresDSN,
			}, logger)
			if err != nil {
				return fmt.Errorf("audit store: %w", err)
			}
			defer store.Close()

			opts := audit.QueryOptions{
				Tool:       flagTool,
				ErrorsOnly: flagErrors,
				Limit:      flagLimit,
			}
			if flagSince != "" {
				dur, err := time.ParseDuration(flagSince)
				if err != nil {
					return fmt.Errorf("invalid --since duration: %w", err)
				}
				opts.Since = time.Now().Add(-dur)
			}

			events, err := store.Query(context.Background(), opts)
			if err != nil {
				return err
			}

			if flagJSON {
				data, _ := json.MarshalIndent(events, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			if len(events) == 0 {
				fmt.Println("No audit events found.")
				return nil
			}

			fmt.Printf("%-24s %-14s %-16s %-8s %s\n", "TIMESTAMP", "TYPE", "TOOL", "ERROR", "DURATION")
			fmt.Println(strings.Repeat("─", 80))
			for _, e := range events {
				errMark := ""
				if e.IsError {
					errMark = "✗"
				}
				fmt.Printf("%-24s %-14s %-16s %-8s %s\n",
					e.Timestamp.Format("2006-01-02 15:04:05"),
					e.Type,
					e.Tool,
					errMark,
					e.Duration.Round(time.Millisecond),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagTool, "tool", "", "Filter by tool name")
	cmd.Flags().BoolVar(&flagErrors, "errors", false, "Only show failed invocations")
	cmd.Flags().StringVar(&flagSince, "since", "", "Filter since duration (e.g., 2h, 24h)")
	cmd.Flags().IntVar(&flagLimit, "limit", 50, "Max events to show")

	return cmd
}

// ------------------------------------------------------------------
// `fileclaw version` — Version information
// ------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}
}
