package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fusionlink/fusionlink"
	mcpAdapter "github.com/fusionlink/fusionlink/pkg/adapters/mcp"
	"github.com/fusionlink/fusionlink/pkg/client"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the remote side of the bridge as an MCP Server.
This allows AI agents (like Claude Desktop) to drive the CAD host as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := setup(cmd)
		if err != nil {
			log.Fatalf("Error loading configuration: %v", err)
		}

		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		c := client.New(
			client.WithAddr(cfg.Host, cfg.Port),
			client.WithTimeout(cfg.Timeout.Std()),
			client.WithLogger(logger),
		)
		srv := mcpAdapter.NewServer(c, fusionlink.Version, logger)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("starting fusionlink MCP server (stdio)")
			if err := srv.ServeStdio(); err != nil {
				logger.Error("MCP server execution failed", "err", err)
				os.Exit(1)
			}
		case "sse":
			logger.Info("starting fusionlink MCP server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				if err != http.ErrServerClosed {
					logger.Error("MCP server execution failed", "err", err)
					os.Exit(1)
				}
			}
			logger.Info("MCP server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
