package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/augustdev/render-mcp/internal/render"
	"github.com/google/go-cmp/cmp"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type upstreamCall struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeUpstream struct {
	mu     sync.Mutex
	calls  []upstreamCall
	status int
	body   string
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, upstreamCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	status, respBody := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(respBody))
}

func (f *fakeUpstream) recorded() []upstreamCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]upstreamCall(nil), f.calls...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, status int, body string) (*Server, *fakeUpstream) {
	t.Helper()

	upstream := &fakeUpstream{status: status, body: body}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client, err := render.NewClient(render.Config{BaseURL: srv.URL, APIKey: "test-api-key"})
	if err != nil {
		t.Fatalf("render.NewClient failed: %v", err)
	}
	return NewServer(client, discardLogger()), upstream
}

func args(t *testing.T, params map[string]any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(map[string]any{"params": params})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) != 1 {
		t.Fatalf("expected exactly one content block, got %+v", res)
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected *mcp.TextContent, got %T", res.Content[0])
	}
	return text.Text
}

func TestGetServiceReturnsUnwrappedData(t *testing.T) {
	s, upstream := newTestServer(t, http.StatusOK, `{"data":{"id":"srv-123","name":"Test Service","type":"web_service"}}`)

	res := s.Call(context.Background(), ToolGetService, args(t, map[string]any{"serviceId": "srv-123"}))
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	want := map[string]any{"id": "srv-123", "name": "Test Service", "type": "web_service"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("get_service mismatch (-want +got):\n%s", diff)
	}

	if calls := upstream.recorded(); len(calls) != 1 || calls[0].Path != "/services/srv-123" {
		t.Fatalf("unexpected upstream calls %+v", calls)
	}
}

func TestGetServicePassesRecordThrough(t *testing.T) {
	record := `{"id":"srv-1","name":"api","type":"web_service","branch":"","rootDir":"backend","notifyOnFail":"default","autoDeploy":"yes","suspended":"not_suspended","serviceDetails":{"disk":{"id":"dsk","sizeGB":0}},"url":"https://a.example?x=1&y=<2>"}`
	s, _ := newTestServer(t, http.StatusOK, `{"data":`+record+`}`)

	res := s.Call(context.Background(), ToolGetService, args(t, map[string]any{"serviceId": "srv-1"}))
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	var want bytes.Buffer
	if err := json.Indent(&want, []byte(record), "", "  "); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want.String(), resultText(t, res)); diff != "" {
		t.Fatalf("record changed (-want +got):\n%s", diff)
	}
}

func TestGetDeploysKeepsNullsAndUnknownFields(t *testing.T) {
	s, _ := newTestServer(t, http.StatusOK, `{"data":[{"id":"dep-1","status":"live","trigger":"api","finishedAt":null}],"cursor":"c9"}`)

	res := s.Call(context.Background(), ToolGetDeploys, args(t, map[string]any{"serviceId": "srv-1"}))
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	want := map[string]any{
		"data":   []any{map[string]any{"id": "dep-1", "status": "live", "trigger": "api", "finishedAt": nil}},
		"cursor": "c9",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("get_deploys mismatch (-want +got):\n%s", diff)
	}
}

func TestDeployServiceClearCache(t *testing.T) {
	s, upstream := newTestServer(t, http.StatusCreated, `{"data":{"id":"dep-456","status":"build_in_progress"}}`)

	res := s.Call(context.Background(), ToolDeployService, args(t, map[string]any{"serviceId": "srv-123", "clearCache": true}))
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	calls := upstream.recorded()
	if len(calls) != 1 {
		t.Fatalf("got %d upstream calls, want 1", len(calls))
	}
	if calls[0].Method != http.MethodPost || calls[0].Path != "/services/srv-123/deploys" {
		t.Fatalf("unexpected call %+v", calls[0])
	}
	if calls[0].Body != `{"clearCache":true}` {
		t.Fatalf("body = %s", calls[0].Body)
	}

	want := "Successfully deployed service srv-123. Deployment ID: dep-456, Status: build_in_progress"
	if got := resultText(t, res); got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestDeployServiceUpstreamFailureIsReported(t *testing.T) {
	s, _ := newTestServer(t, http.StatusInternalServerError, `{"message":"build queue full"}`)

	res := s.Call(context.Background(), ToolDeployService, args(t, map[string]any{"serviceId": "srv-123"}))
	if !res.IsError {
		t.Fatalf("expected error result, got %s", resultText(t, res))
	}
	if text := resultText(t, res); text != "Error: Render API error (500): build queue full" {
		t.Fatalf("text = %q", text)
	}
}

func TestManageDomainsValidatesLocally(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]any
		wantMsg string
	}{
		{
			name:    "add without domain",
			params:  map[string]any{"serviceId": "srv-123", "action": "add"},
			wantMsg: "Domain name is required for add action",
		},
		{
			name:    "remove without domain",
			params:  map[string]any{"serviceId": "srv-123", "action": "remove"},
			wantMsg: "Domain ID is required for remove action",
		},
		{
			name:    "unknown action",
			params:  map[string]any{"serviceId": "srv-123", "action": "rename"},
			wantMsg: "Unknown action: rename",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, upstream := newTestServer(t, http.StatusOK, `{"data":{}}`)

			res := s.Call(context.Background(), ToolManageDomains, args(t, tt.params))
			if !res.IsError {
				t.Fatalf("expected error result, got %s", resultText(t, res))
			}
			if text := resultText(t, res); text != "Error: "+tt.wantMsg {
				t.Fatalf("text = %q, want %q", text, "Error: "+tt.wantMsg)
			}
			if n := len(upstream.recorded()); n != 0 {
				t.Fatalf("made %d upstream calls, want 0", n)
			}
		})
	}
}

func TestManageDomainsActions(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		s, upstream := newTestServer(t, http.StatusOK, `{"data":[{"id":"cdm-1","name":"example.com"}]}`)

		res := s.Call(context.Background(), ToolManageDomains, args(t, map[string]any{"serviceId": "srv-123", "action": "list"}))
		if res.IsError {
			t.Fatalf("unexpected error result: %s", resultText(t, res))
		}
		var got []map[string]any
		if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
			t.Fatalf("result is not a JSON array: %v", err)
		}
		if len(got) != 1 || got[0]["id"] != "cdm-1" {
			t.Fatalf("unexpected domains %v", got)
		}
		if c := upstream.recorded()[0]; c.Method != http.MethodGet || c.Path != "/services/srv-123/custom-domains" {
			t.Fatalf("unexpected call %+v", c)
		}
	})

	t.Run("add", func(t *testing.T) {
		s, upstream := newTestServer(t, http.StatusCreated, `{"data":{"id":"cdm-2","name":"api.example.com"}}`)

		res := s.Call(context.Background(), ToolManageDomains, args(t, map[string]any{"serviceId": "srv-123", "action": "add", "domain": "api.example.com"}))
		if res.IsError {
			t.Fatalf("unexpected error result: %s", resultText(t, res))
		}
		if c := upstream.recorded()[0]; c.Method != http.MethodPost || c.Body != `{"name":"api.example.com"}` {
			t.Fatalf("unexpected call %+v", c)
		}
	})

	t.Run("remove", func(t *testing.T) {
		s, upstream := newTestServer(t, http.StatusNoContent, ``)

		res := s.Call(context.Background(), ToolManageDomains, args(t, map[string]any{"serviceId": "srv-123", "action": "remove", "domain": "cdm-2"}))
		if res.IsError {
			t.Fatalf("unexpected error result: %s", resultText(t, res))
		}
		if got := resultText(t, res); got != "Domain cdm-2 removed successfully from service srv-123" {
			t.Fatalf("text = %q", got)
		}
		if c := upstream.recorded()[0]; c.Method != http.MethodDelete || c.Path != "/services/srv-123/custom-domains/cdm-2" {
			t.Fatalf("unexpected call %+v", c)
		}
	})
}

func TestUnknownToolMakesNoUpstreamCall(t *testing.T) {
	s, upstream := newTestServer(t, http.StatusOK, `{"data":[]}`)

	res := s.Call(context.Background(), "restart_universe", args(t, map[string]any{}))
	if !res.IsError {
		t.Fatal("expected error result")
	}
	if got := resultText(t, res); got != "Error: Unknown tool: restart_universe" {
		t.Fatalf("text = %q", got)
	}
	if n := len(upstream.recorded()); n != 0 {
		t.Fatalf("made %d upstream calls, want 0", n)
	}
}

func TestInvalidParams(t *testing.T) {
	tests := []struct {
		name      string
		tool      string
		arguments string
		wantMsg   string
	}{
		{name: "no arguments", tool: ToolListServices, arguments: ``, wantMsg: "Tool arguments are required"},
		{name: "null arguments", tool: ToolGetService, arguments: `null`, wantMsg: "Tool arguments are required"},
		{name: "no params", tool: ToolGetService, arguments: `{}`, wantMsg: "Tool arguments are required"},
		{name: "missing service id", tool: ToolGetService, arguments: `{"params":{}}`, wantMsg: "serviceId is required"},
		{name: "unknown field", tool: ToolGetService, arguments: `{"params":{"serviceId":"srv-1","verbose":true}}`, wantMsg: "invalid params for get_service"},
		{name: "wrong type", tool: ToolDeployService, arguments: `{"params":{"serviceId":"srv-1","clearCache":"yes"}}`, wantMsg: "invalid params for deploy_service"},
		{name: "unknown top level field", tool: ToolListServices, arguments: `{"params":{},"extra":1}`, wantMsg: "invalid arguments for list_services"},
		{name: "env vars missing", tool: ToolManageEnvVars, arguments: `{"params":{"serviceId":"srv-1"}}`, wantMsg: "envVars is required"},
		{name: "env var without key", tool: ToolManageEnvVars, arguments: `{"params":{"serviceId":"srv-1","envVars":[{"key":"","value":"x"}]}}`, wantMsg: "envVars[0].key is required"},
		{name: "create missing repo", tool: ToolCreateService, arguments: `{"params":{"type":"web_service","name":"api","ownerId":"own-1"}}`, wantMsg: "repo is required"},
		{name: "create bad type", tool: ToolCreateService, arguments: `{"params":{"type":"vm","name":"api","ownerId":"own-1","repo":"r"}}`, wantMsg: "invalid type: vm"},
		{name: "negative limit", tool: ToolGetDeploys, arguments: `{"params":{"serviceId":"srv-1","limit":-1}}`, wantMsg: "limit must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, upstream := newTestServer(t, http.StatusOK, `{"data":{}}`)

			res := s.Call(context.Background(), tt.tool, json.RawMessage(tt.arguments))
			if !res.IsError {
				t.Fatalf("expected error result, got %s", resultText(t, res))
			}
			if text := resultText(t, res); !strings.Contains(text, tt.wantMsg) {
				t.Fatalf("text = %q, want it to contain %q", text, tt.wantMsg)
			}
			if n := len(upstream.recorded()); n != 0 {
				t.Fatalf("made %d upstream calls, want 0", n)
			}
		})
	}
}

func TestEveryToolReportsSuccessAndFailure(t *testing.T) {
	tests := []struct {
		tool   string
		params map[string]any
		body   string
	}{
		{tool: ToolListServices, params: map[string]any{"limit": 5}, body: `{"data":[],"cursor":"c"}`},
		{tool: ToolGetService, params: map[string]any{"serviceId": "srv-1"}, body: `{"data":{"id":"srv-1"}}`},
		{tool: ToolDeployService, params: map[string]any{"serviceId": "srv-1"}, body: `{"data":{"id":"dep-1","status":"created"}}`},
		{tool: ToolCreateService, params: map[string]any{"type": "static_site", "name": "docs", "ownerId": "own-1", "repo": "https://github.com/acme/docs"}, body: `{"data":{"id":"srv-2"}}`},
		{tool: ToolDeleteService, params: map[string]any{"serviceId": "srv-1"}, body: ``},
		{tool: ToolGetDeploys, params: map[string]any{"serviceId": "srv-1"}, body: `{"data":[]}`},
		{tool: ToolManageEnvVars, params: map[string]any{"serviceId": "srv-1", "envVars": []map[string]any{{"key": "A", "value": "1"}}}, body: `{"data":{"id":"srv-1"}}`},
		{tool: ToolManageDomains, params: map[string]any{"serviceId": "srv-1", "action": "list"}, body: `{"data":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.tool+"/success", func(t *testing.T) {
			s, upstream := newTestServer(t, http.StatusOK, tt.body)

			res := s.Call(context.Background(), tt.tool, args(t, tt.params))
			if res.IsError {
				t.Fatalf("unexpected error result: %s", resultText(t, res))
			}
			if n := len(upstream.recorded()); n != 1 {
				t.Fatalf("made %d upstream calls, want 1", n)
			}
		})

		t.Run(tt.tool+"/failure", func(t *testing.T) {
			s, _ := newTestServer(t, http.StatusBadGateway, `{"message":"upstream down"}`)

			res := s.Call(context.Background(), tt.tool, args(t, tt.params))
			if !res.IsError {
				t.Fatalf("expected error result, got %s", resultText(t, res))
			}
			if text := resultText(t, res); text != "Error: Render API error (502): upstream down" {
				t.Fatalf("text = %q", text)
			}
		})
	}
}

func TestListServicesIsNotCached(t *testing.T) {
	s, upstream := newTestServer(t, http.StatusOK, `{"data":[{"id":"srv-1"}]}`)

	params := map[string]any{"limit": 1, "cursor": "abc"}
	first := s.Call(context.Background(), ToolListServices, args(t, params))

	upstream.mu.Lock()
	upstream.body = `{"data":[{"id":"srv-2"}]}`
	upstream.mu.Unlock()

	second := s.Call(context.Background(), ToolListServices, args(t, params))

	calls := upstream.recorded()
	if len(calls) != 2 {
		t.Fatalf("made %d upstream calls, want 2", len(calls))
	}
	for _, c := range calls {
		if c.Query != "cursor=abc&limit=1" {
			t.Fatalf("query = %q", c.Query)
		}
	}
	if resultText(t, first) == resultText(t, second) {
		t.Fatal("second call returned the first response")
	}
}

func TestCreateServiceForwardsOptionalFields(t *testing.T) {
	s, upstream := newTestServer(t, http.StatusCreated, `{"data":{"id":"srv-9","name":"api"}}`)

	res := s.Call(context.Background(), ToolCreateService, args(t, map[string]any{
		"type":         "web_service",
		"name":         "api",
		"ownerId":      "own-1",
		"repo":         "https://github.com/acme/api",
		"numInstances": 2,
		"autoDeploy":   false,
		"envVars":      []map[string]any{{"key": "PORT", "value": "8080"}},
	}))
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(upstream.recorded()[0].Body), &body); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"type":         "web_service",
		"name":         "api",
		"ownerId":      "own-1",
		"repo":         "https://github.com/acme/api",
		"numInstances": float64(2),
		"autoDeploy":   false,
		"envVars":      []any{map[string]any{"key": "PORT", "value": "8080"}},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Fatalf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: unknownTool("x"), want: "unknown_tool"},
		{err: invalidParams("x"), want: "invalid_params"},
		{err: localValidation("x"), want: "local_validation"},
		{err: &render.Error{Kind: render.ErrorKindNoResponse}, want: "upstream_no_response"},
		{err: io.EOF, want: "unknown"},
	}
	for _, tt := range tests {
		if got := ErrorCodeOf(tt.err); got != tt.want {
			t.Errorf("ErrorCodeOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
