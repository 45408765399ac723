package mcpserver

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type toolSpec struct {
	name        string
	description string
	readOnly    bool
	newRequest  func() Request
}

var catalog = []toolSpec{
	{
		name:        ToolListServices,
		description: "List all services in your Render account",
		readOnly:    true,
		newRequest:  func() Request { return &ListServicesRequest{} },
	},
	{
		name:        ToolGetService,
		description: "Get details of a specific service",
		readOnly:    true,
		newRequest:  func() Request { return &GetServiceRequest{} },
	},
	{
		name:        ToolDeployService,
		description: "Deploy a service",
		newRequest:  func() Request { return &DeployServiceRequest{} },
	},
	{
		name:        ToolCreateService,
		description: "Create a new service",
		newRequest:  func() Request { return &CreateServiceRequest{} },
	},
	{
		name:        ToolDeleteService,
		description: "Delete a service. This permanently removes the service from Render.",
		newRequest:  func() Request { return &DeleteServiceRequest{} },
	},
	{
		name:        ToolGetDeploys,
		description: "Get deployment history for a service",
		readOnly:    true,
		newRequest:  func() Request { return &GetDeploysRequest{} },
	},
	{
		name:        ToolManageEnvVars,
		description: "Manage environment variables for a service. The given list replaces the full set.",
		newRequest:  func() Request { return &ManageEnvVarsRequest{} },
	},
	{
		name:        ToolManageDomains,
		description: "Manage custom domains for a service (list, add or remove)",
		newRequest:  func() Request { return &ManageDomainsRequest{} },
	},
}

func lookupTool(name string) (toolSpec, bool) {
	for _, t := range catalog {
		if t.name == name {
			return t, true
		}
	}
	return toolSpec{}, false
}

// ToolNames returns the catalog in registration order.
func ToolNames() []string {
	names := make([]string, len(catalog))
	for i, t := range catalog {
		names[i] = t.name
	}
	return names
}

var reflector = &jsonschema.Reflector{
	Anonymous:      true,
	DoNotReference: true,
	ExpandedStruct: true,
}

// inputSchema wraps the request schema as {"params": {...}}, the argument
// shape clients of this server already send.
func (t toolSpec) inputSchema() *jsonschema.Schema {
	params := reflector.Reflect(t.newRequest())
	params.Version = ""

	props := jsonschema.NewProperties()
	props.Set("params", params)

	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             []string{"params"},
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

func (t toolSpec) mcpTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        t.name,
		Description: t.description,
		InputSchema: t.inputSchema(),
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint: t.readOnly,
		},
	}
}

// decode turns raw call arguments into the tool's typed request. Missing
// arguments, unknown fields and type mismatches are all invalid params.
func (t toolSpec) decode(raw json.RawMessage) (Request, error) {
	if isAbsent(raw) {
		return nil, invalidParams("Tool arguments are required")
	}

	var args struct {
		Params json.RawMessage `json:"params"`
	}
	if err := strictUnmarshal(raw, &args); err != nil {
		return nil, invalidParams(fmt.Sprintf("invalid arguments for %s: %v", t.name, err))
	}
	if isAbsent(args.Params) {
		return nil, invalidParams("Tool arguments are required")
	}

	req := t.newRequest()
	if err := strictUnmarshal(args.Params, req); err != nil {
		return nil, invalidParams(fmt.Sprintf("invalid params for %s: %v", t.name, err))
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
