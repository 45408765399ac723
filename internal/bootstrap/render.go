package bootstrap

import (
	"log/slog"
	"os"

	"github.com/augustdev/render-mcp/internal/config"
	"github.com/augustdev/render-mcp/internal/mcpserver"
	"github.com/augustdev/render-mcp/internal/render"
)

func NewRenderClient(cfg RenderConfig, store config.Store, logger *slog.Logger) (*render.Client, error) {
	apiKey, err := config.ResolveAPIKey(os.Getenv, store)
	if err != nil {
		return nil, err
	}

	client, err := render.NewClient(render.Config{
		BaseURL:   cfg.BaseURL,
		APIKey:    apiKey,
		Timeout:   cfg.Timeout,
		UserAgent: mcpserver.ServerName + "/" + mcpserver.ServerVersion,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Render client configured", "base_url", client.Config().BaseURL, "timeout", client.Config().Timeout)
	return client, nil
}
