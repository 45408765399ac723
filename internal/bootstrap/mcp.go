package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/augustdev/render-mcp/internal/mcpserver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/fx"
)

func NewMCPRouter(logger *slog.Logger, mcpServer *mcpserver.Server, config MCPConfig) *chi.Mux {
	router := chi.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept", "Mcp-Session-Id", "Mcp-Protocol-Version"},
	}).Handler
	router.Use(corsMiddleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Mount("/", mcpserver.AuthMiddleware(config.Token, logger, mcpServer.Handler()))

	return router
}

// NewStdioTransport is the session transport for stdio mode.
func NewStdioTransport() mcp.Transport {
	return &mcp.StdioTransport{}
}

type StartParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Server     *mcpserver.Server
	Router     *chi.Mux
	Transport  mcp.Transport
	Config     MCPConfig
	Logger     *slog.Logger
}

func StartMCPServer(p StartParams) {
	if p.Config.Transport == TransportHTTP {
		startHTTP(p.Lifecycle, p.Router, p.Config, p.Logger)
		return
	}
	startStdio(p.Lifecycle, p.Shutdowner, p.Server, p.Transport, p.Logger)
}

// startStdio serves one session on transport and stops the app when the
// client disconnects.
func startStdio(lc fx.Lifecycle, shutdowner fx.Shutdowner, server *mcpserver.Server, transport mcp.Transport, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("Starting MCP server", "transport", TransportStdio)
			go func() {
				defer close(done)
				err := server.Run(ctx, transport)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("MCP session ended with error", "error", err)
				}
				if ctx.Err() != nil {
					return
				}
				logger.Info("MCP client disconnected")
				if err := shutdowner.Shutdown(); err != nil {
					logger.Error("Error requesting shutdown", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				logger.Info("MCP server stopped")
			case <-stopCtx.Done():
				logger.Warn("MCP session did not stop in time")
			}
			return nil
		},
	})
}

func startHTTP(lc fx.Lifecycle, router *chi.Mux, config MCPConfig, logger *slog.Logger) {
	server := &http.Server{
		Addr:    ":" + config.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Bind before returning so a busy port fails startup.
			ln, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
			}
			logger.Info("Starting MCP server", "transport", TransportHTTP, "addr", ln.Addr().String())
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("MCP server stopped unexpectedly", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down MCP server, draining connections...")
			server.SetKeepAlivesEnabled(false)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			err := server.Shutdown(shutdownCtx)
			if shutdownCtx.Err() != nil {
				logger.Warn("MCP graceful shutdown timed out after 2s, forcing close")
				if closeErr := server.Close(); closeErr != nil {
					logger.Error("Error force-closing MCP server", "error", closeErr)
					return closeErr
				}
				return nil
			}
			if err != nil {
				logger.Error("Error shutting down MCP server", "error", err)
				return err
			}
			logger.Info("MCP server shut down gracefully")
			return nil
		},
	})
}

// Module wires the MCP server process.
var Module = fx.Options(
	fx.WithLogger(NewFxLogger),
	fx.Provide(
		NewConfig,
		NewLogger,
		NewCredentialStore,
		NewRenderClient,
		mcpserver.NewServer,
		NewMCPRouter,
		NewStdioTransport,
	),
	fx.Invoke(StartMCPServer),
)
