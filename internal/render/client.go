package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.render.com/v1"
	DefaultTimeout = 30 * time.Second
)

type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
}

type Client struct {
	config     Config
	httpClient *http.Client
	baseURL    *url.URL

	Services      *ServicesService
	Deploys       *DeploysService
	EnvVars       *EnvVarsService
	CustomDomains *CustomDomainsService
}

func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("render: APIKey is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	baseURL, err := url.Parse(strings.TrimSuffix(config.BaseURL, "/"))
	if err != nil {
		return nil, setupError(fmt.Errorf("invalid BaseURL: %w", err))
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, setupError(fmt.Errorf("invalid BaseURL %q", config.BaseURL))
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}

	c.Services = &ServicesService{client: c}
	c.Deploys = &DeploysService{client: c}
	c.EnvVars = &EnvVarsService{client: c}
	c.CustomDomains = &CustomDomainsService{client: c}

	return c, nil
}

func (c *Client) Config() Config {
	return c.config
}

// TestConnection reports whether the API is reachable with the configured
// key. Failures are swallowed.
func (c *Client) TestConnection(ctx context.Context) bool {
	_, err := c.Services.List(ctx, &PageParams{Limit: 1})
	return err == nil
}

func (c *Client) request(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	// path arrives already escaped; keep RawPath so ids containing reserved
	// characters are not re-encoded.
	u := *c.baseURL
	escaped := strings.TrimSuffix(c.baseURL.EscapedPath(), "/") + path
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return nil, setupError(fmt.Errorf("invalid request path %q: %w", path, err))
	}
	u.Path = unescaped
	u.RawPath = escaped
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, setupError(fmt.Errorf("failed to marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, setupError(err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrorKindNoResponse, Message: "No response received from Render API", cause: err}
	}

	return resp, nil
}

// do sends a request and decodes a 2xx body into result when result is
// non-nil. Any non-2xx status becomes an ErrorKindHTTP error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	resp, err := c.request(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: ErrorKindNoResponse, Message: "No response received from Render API", cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpError(resp.StatusCode, respBody)
	}

	if result == nil {
		return nil
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return unexpectedShape("empty response body")
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return unexpectedShape(err.Error())
	}
	return nil
}

// getRecord unwraps the {"data": {...}} envelope every single-object
// endpoint returns. The record itself is not interpreted.
func getRecord(ctx context.Context, c *Client, method, path string, body any) (Record, error) {
	var env struct {
		Data Record `json:"data"`
	}
	if err := c.do(ctx, method, path, nil, body, &env); err != nil {
		return nil, err
	}
	if !env.Data.isObject() {
		return nil, unexpectedShape(`missing "data" object`)
	}
	return env.Data, nil
}

func getRecords(ctx context.Context, c *Client, path string) ([]Record, error) {
	var env struct {
		Data []Record `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, unexpectedShape(`missing "data" field`)
	}
	return env.Data, nil
}

func getPage(ctx context.Context, c *Client, path string, params *PageParams) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, path, params.query(), nil, &page); err != nil {
		return nil, err
	}
	if page.Data == nil {
		return nil, unexpectedShape(`missing "data" field`)
	}
	return &page, nil
}

func servicePath(serviceID string, segments ...string) string {
	path := "/services/" + url.PathEscape(serviceID)
	for _, s := range segments {
		path += "/" + url.PathEscape(s)
	}
	return path
}
