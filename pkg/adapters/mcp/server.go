// Package mcp exposes the bridge actions as Model Context Protocol
// tools, so AI agents can drive the CAD host through the bridge
// client. Transports: stdio (local process integration) and SSE.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fusionlink/fusionlink/internal/logging"
	"github.com/fusionlink/fusionlink/pkg/client"
	"github.com/fusionlink/fusionlink/pkg/domain"
)

// Caller is the slice of the bridge client the MCP tools need.
type Caller interface {
	CallAction(ctx context.Context, name string, params map[string]any) domain.Envelope
}

var _ Caller = (*client.Client)(nil)

// Server wraps a bridge client and exposes it as an MCP Server.
type Server struct {
	caller    Caller
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(caller Caller, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		caller:    caller,
		logger:    logger,
		mcpServer: server.NewMCPServer("fusionlink-mcp", version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: execute_code
	executeTool := mcp.NewTool("execute_code",
		mcp.WithDescription(`Execute a Lua script inside the CAD host.
The script runs in the active design with pre-initialized objects:
app (application), design (active document), root (root component),
params (parameter accessors). Use print() to capture output.
Operations are applied as one undoable transaction.`),
		mcp.WithString("code", mcp.Required(), mcp.Description("Lua script to execute. Must be syntactically valid.")),
		mcp.WithString("transaction_name", mcp.Description("Optional name shown in the host's undo history")),
	)
	s.mcpServer.AddTool(executeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := map[string]any{"code": request.GetString("code", "")}
		if name := request.GetString("transaction_name", ""); name != "" {
			params["transaction_name"] = name
		}
		return s.call(ctx, "execute_code", params)
	})

	// TOOL: get_viewport_screenshot
	screenshotTool := mcp.NewTool("get_viewport_screenshot",
		mcp.WithDescription("Save a screenshot of the active viewport to the given file path."),
		mcp.WithString("filepath", mcp.Required(), mcp.Description("Destination file path for the PNG image")),
	)
	s.mcpServer.AddTool(screenshotTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.call(ctx, "get_viewport_screenshot", map[string]any{
			"filepath": request.GetString("filepath", ""),
		})
	})

	// TOOL: get_user_parameters
	s.mcpServer.AddTool(mcp.NewTool("get_user_parameters",
		mcp.WithDescription("List the user parameters of the active design."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.call(ctx, "get_user_parameters", nil)
	})

	// TOOL: set_parameter
	setParamTool := mcp.NewTool("set_parameter",
		mcp.WithDescription("Set a design parameter from an expression such as '12.5 mm'."),
		mcp.WithString("param_name", mcp.Required(), mcp.Description("Name of the parameter to change")),
		mcp.WithString("expression", mcp.Required(), mcp.Description("New value expression, e.g. '10 cm'")),
	)
	s.mcpServer.AddTool(setParamTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.call(ctx, "set_parameter", map[string]any{
			"param_name": request.GetString("param_name", ""),
			"expression": request.GetString("expression", ""),
		})
	})

	// TOOL: list_transactions
	listTool := mcp.NewTool("list_transactions",
		mcp.WithDescription("List recently executed transactions from the journal, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of records to return (0 = all)")),
	)
	s.mcpServer.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := map[string]any{}
		if limit := request.GetFloat("limit", 0); limit > 0 {
			params["limit"] = limit
		}
		return s.call(ctx, "list_transactions", params)
	})
}

// call invokes a bridge action and folds the envelope into an MCP tool
// result. Envelope errors become tool errors carrying the taxonomy
// tag, so the agent can branch on the type without parsing prose.
func (s *Server) call(ctx context.Context, action string, params map[string]any) (*mcp.CallToolResult, error) {
	env := s.caller.CallAction(ctx, action, params)
	if !env.Success {
		errType := domain.TypeUnknownError
		message := "An unknown error occurred"
		if env.Error != nil {
			errType = env.Error.Type
			message = env.Error.Message
		}
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", errType, message)), nil
	}

	// Plain string results (execute_code output) read better raw.
	var text string
	if err := env.DecodeResult(&text); err == nil && env.Result != nil {
		return mcp.NewToolResultText(text), nil
	}
	return mcp.NewToolResultText(string(json.RawMessage(env.Result))), nil
}
