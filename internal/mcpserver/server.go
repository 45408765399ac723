package mcpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/augustdev/render-mcp/internal/render"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "render-mcp"
	ServerVersion = "1.0.0"
)

type Server struct {
	mcpServer *mcp.Server
	client    *render.Client
	logger    *slog.Logger
}

func NewServer(client *render.Client, logger *slog.Logger) *Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Title:   "Render MCP - manage Render services, deploys, environment variables and custom domains",
			Version: ServerVersion,
		},
		&mcp.ServerOptions{
			Instructions: "This server manages services hosted on Render. Every tool takes its arguments wrapped in a \"params\" object. Use list_services to find service IDs before calling the other tools.",
		},
	)

	s := &Server{
		mcpServer: mcpServer,
		client:    client,
		logger:    logger,
	}

	s.registerTools()
	mcpServer.AddReceivingMiddleware(s.unknownToolMiddleware)

	logger.Info("MCP server initialized", "tools", ToolNames())
	return s
}

func (s *Server) registerTools() {
	for _, t := range catalog {
		name := t.name
		s.mcpServer.AddTool(t.mcpTool(), func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return s.Call(ctx, name, req.Params.Arguments), nil
		})
	}
}

// unknownToolMiddleware answers tools/call for names outside the catalog with
// an error-flagged result instead of a JSON-RPC error, so callers always see
// one response shape.
func (s *Server) unknownToolMiddleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		if method != "tools/call" {
			return next(ctx, method, req)
		}
		call, ok := req.(*mcp.CallToolRequest)
		if !ok || call.Params == nil {
			return next(ctx, method, req)
		}
		if _, known := lookupTool(call.Params.Name); known {
			return next(ctx, method, req)
		}
		return s.Call(ctx, call.Params.Name, call.Params.Arguments), nil
	}
}

// Run serves a single session on t until the peer disconnects or ctx is
// cancelled.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	return s.mcpServer.Run(ctx, t)
}

func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.mcpServer
	}, &mcp.StreamableHTTPOptions{
		Stateless: true,
	})
}
