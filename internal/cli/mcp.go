package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	twmcp "github.com/ppiankov/trustwatch/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for operator tooling",
	Long:  "Runs trustwatch as an MCP (Model Context Protocol) server over stdio.\nExposes read-only tools: trustwatch_score, trustwatch_warnings.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	scorer, err := cfg.Scorer()
	if err != nil {
		return err
	}
	store, err := openWarnings(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	srv, err := twmcp.New(twmcp.Config{Scorer: scorer, Store: store, Version: version})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintln(os.Stderr, "trustwatch MCP server running on stdio")
	return srv.Run(ctx)
}
