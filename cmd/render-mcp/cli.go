package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/augustdev/render-mcp/internal/bootstrap"
	"github.com/augustdev/render-mcp/internal/config"
	"github.com/augustdev/render-mcp/internal/render"
	"golang.org/x/term"
)

type cli struct {
	out    io.Writer
	store  config.Store
	render bootstrap.RenderConfig
}

func (c *cli) newClient(apiKey string) (*render.Client, error) {
	return render.NewClient(render.Config{
		BaseURL: c.render.BaseURL,
		APIKey:  apiKey,
		Timeout: c.render.Timeout,
	})
}

func (c *cli) configure(ctx context.Context, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("API key is required")
	}

	client, err := c.newClient(apiKey)
	if err != nil {
		return fmt.Errorf("failed to configure API key: %w", err)
	}
	if !client.TestConnection(ctx) {
		return errors.New("failed to configure API key: invalid API key")
	}

	if err := c.store.Save(&config.Credentials{APIKey: apiKey}); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Configuration saved to %s\n", c.store.Path())
	fmt.Fprintln(c.out, "API key configured successfully")
	return nil
}

func (c *cli) showConfig() error {
	creds, err := c.store.Load()
	if errors.Is(err, config.ErrNotConfigured) {
		fmt.Fprintln(c.out, `No configuration found. Run "render-mcp configure" to set up.`)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Current configuration:")
	fmt.Fprintf(c.out, "API Key: %s\n", config.MaskKey(creds.APIKey))
	return nil
}

func (c *cli) doctor(ctx context.Context) error {
	fmt.Fprintln(c.out, "Running diagnostics...")

	if !c.store.Exists() {
		fmt.Fprintln(c.out, "Config file: Not found")
		fmt.Fprintln(c.out, `Run "render-mcp configure" to set up your API key`)
		return nil
	}
	fmt.Fprintln(c.out, "Config file: Found")

	creds, err := c.store.Load()
	if err != nil || creds.APIKey == "" {
		fmt.Fprintln(c.out, "API key: Not configured")
		fmt.Fprintln(c.out, `Run "render-mcp configure" to set up your API key`)
		return nil
	}
	fmt.Fprintln(c.out, "API key: Configured")

	client, err := c.newClient(creds.APIKey)
	if err != nil {
		fmt.Fprintln(c.out, "API connection: Failed")
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return nil
	}

	if !client.TestConnection(ctx) {
		fmt.Fprintln(c.out, "API connection: Failed")
		return nil
	}
	fmt.Fprintln(c.out, "API connection: Success")

	if _, err := client.Services.List(ctx, &render.PageParams{Limit: 1}); err != nil {
		fmt.Fprintln(c.out, "API permissions: Unknown")
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return nil
	}
	fmt.Fprintln(c.out, "API permissions: Valid")
	return nil
}

// promptAPIKey hides input when stdin is a terminal and reads a plain line
// otherwise.
func promptAPIKey(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Enter your Render API key: ")

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		key, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return string(key), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
