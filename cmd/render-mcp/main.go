package main

import (
	"fmt"
	"os"
	"time"

	"github.com/augustdev/render-mcp/internal/bootstrap"
	"github.com/augustdev/render-mcp/internal/config"
	"github.com/augustdev/render-mcp/internal/mcpserver"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "render-mcp",
		Short:         "Render.com MCP server for AI assistants",
		Version:       mcpserver.ServerVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(
		startCmd(),
		configureCmd(),
		configCmd(),
		doctorCmd(),
	)

	return rootCmd
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	fx.New(
		fx.StopTimeout(15*time.Second),
		bootstrap.Module,
	).Run()
	return nil
}

func configureCmd() *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure your Render API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newCLI(cmd)
			if err != nil {
				return err
			}
			if apiKey == "" {
				apiKey, err = promptAPIKey(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}
			return c.configure(cmd.Context(), apiKey)
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Your Render API key")
	return cmd
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newCLI(cmd)
			if err != nil {
				return err
			}
			return c.showConfig()
		},
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics on your setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newCLI(cmd)
			if err != nil {
				return err
			}
			return c.doctor(cmd.Context())
		},
	}
}

func newCLI(cmd *cobra.Command) (*cli, error) {
	cfg, err := bootstrap.NewConfig()
	if err != nil {
		return nil, err
	}
	store, err := config.NewDefaultFileStore()
	if err != nil {
		return nil, err
	}
	return &cli{
		out:    cmd.OutOrStdout(),
		store:  store,
		render: cfg.Render,
	}, nil
}
