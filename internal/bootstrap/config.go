package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/augustdev/render-mcp/internal/config"
	"github.com/augustdev/render-mcp/internal/render"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type RenderConfig struct {
	BaseURL string
	Timeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type MCPConfig struct {
	Transport string
	Port      string
	Token     string
}

type Config struct {
	fx.Out

	Render RenderConfig
	Log    LogConfig
	MCP    MCPConfig
}

func NewConfig() (Config, error) {
	v := viper.New()
	if err := InitConfig(v); err != nil {
		return Config{}, err
	}

	var cfg struct {
		Render RenderConfig
		Log    LogConfig
		MCP    MCPConfig
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}

	switch cfg.MCP.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return Config{}, fmt.Errorf("invalid mcp.transport %q: must be %s or %s", cfg.MCP.Transport, TransportStdio, TransportHTTP)
	}

	return Config{
		Render: cfg.Render,
		Log:    cfg.Log,
		MCP:    cfg.MCP,
	}, nil
}

// InitConfig layers .env, an optional application.yaml (or APPLICATION_CONFIG)
// and environment variables onto v. Only an explicitly named file must exist.
func InitConfig(v *viper.Viper) error {
	_ = godotenv.Load()

	v.SetDefault("render.baseurl", render.DefaultBaseURL)
	v.SetDefault("render.timeout", render.DefaultTimeout)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("mcp.transport", TransportStdio)
	v.SetDefault("mcp.port", "8080")
	v.SetDefault("mcp.token", "")

	explicit := false
	if configFile := os.Getenv("APPLICATION_CONFIG"); configFile != "" {
		v.SetConfigFile(configFile)
		explicit = true
	} else {
		v.SetConfigName("application")
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func NewCredentialStore() (config.Store, error) {
	return config.NewDefaultFileStore()
}
