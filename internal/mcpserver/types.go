package mcpserver

import (
	"fmt"

	"github.com/augustdev/render-mcp/internal/render"
)

const (
	ToolListServices  = "list_services"
	ToolGetService    = "get_service"
	ToolDeployService = "deploy_service"
	ToolCreateService = "create_service"
	ToolDeleteService = "delete_service"
	ToolGetDeploys    = "get_deploys"
	ToolManageEnvVars = "manage_env_vars"
	ToolManageDomains = "manage_domains"
)

const (
	DomainActionList   = "list"
	DomainActionAdd    = "add"
	DomainActionRemove = "remove"
)

// Request is the decoded, validated "params" object of one tool call. Each
// tool has exactly one concrete Request type.
type Request interface {
	ToolName() string
	Validate() error
}

type EnvVar struct {
	Key   string `json:"key" jsonschema:"description=Environment variable name"`
	Value string `json:"value" jsonschema:"description=Environment variable value"`
}

func toRenderEnvVars(vars []EnvVar) []render.EnvVar {
	if vars == nil {
		return nil
	}
	out := make([]render.EnvVar, len(vars))
	for i, ev := range vars {
		out[i] = render.EnvVar{Key: ev.Key, Value: ev.Value}
	}
	return out
}

func validateEnvVars(vars []EnvVar) error {
	for i, ev := range vars {
		if ev.Key == "" {
			return localValidation(fmt.Sprintf("envVars[%d].key is required", i))
		}
	}
	return nil
}

type ListServicesRequest struct {
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Number of services to return (default 20 and max 100),minimum=1,maximum=100"`
	Cursor string `json:"cursor,omitempty" jsonschema:"description=Pagination cursor for fetching next page"`
}

func (r *ListServicesRequest) ToolName() string { return ToolListServices }

func (r *ListServicesRequest) Validate() error {
	if r.Limit < 0 {
		return invalidParams("limit must not be negative")
	}
	return nil
}

type GetServiceRequest struct {
	ServiceID string `json:"serviceId" jsonschema:"description=The ID of the service to retrieve"`
}

func (r *GetServiceRequest) ToolName() string { return ToolGetService }

func (r *GetServiceRequest) Validate() error {
	return requireField("serviceId", r.ServiceID)
}

type DeployServiceRequest struct {
	ServiceID  string `json:"serviceId" jsonschema:"description=The ID of the service to deploy"`
	ClearCache bool   `json:"clearCache,omitempty" jsonschema:"description=Whether to clear cache before deploy (default false)"`
}

func (r *DeployServiceRequest) ToolName() string { return ToolDeployService }

func (r *DeployServiceRequest) Validate() error {
	return requireField("serviceId", r.ServiceID)
}

type CreateServiceRequest struct {
	Type         string   `json:"type" jsonschema:"description=Type of service,enum=web_service,enum=static_site,enum=private_service,enum=background_worker,enum=cron_job"`
	Name         string   `json:"name" jsonschema:"description=Name of the service"`
	OwnerID      string   `json:"ownerId" jsonschema:"description=Owner ID (user or team ID)"`
	Repo         string   `json:"repo" jsonschema:"description=Repository URL"`
	Branch       string   `json:"branch,omitempty" jsonschema:"description=Repository branch (default main)"`
	EnvVars      []EnvVar `json:"envVars,omitempty" jsonschema:"description=Environment variables"`
	BuildCommand string   `json:"buildCommand,omitempty" jsonschema:"description=Build command"`
	StartCommand string   `json:"startCommand,omitempty" jsonschema:"description=Start command"`
	PublishPath  string   `json:"publishPath,omitempty" jsonschema:"description=Publish path for static sites"`
	Plan         string   `json:"plan,omitempty" jsonschema:"description=Service plan"`
	Region       string   `json:"region,omitempty" jsonschema:"description=Region to deploy in"`
	NumInstances *int     `json:"numInstances,omitempty" jsonschema:"description=Number of instances,minimum=1"`
	AutoDeploy   *bool    `json:"autoDeploy,omitempty" jsonschema:"description=Whether to auto-deploy on push"`
}

func (r *CreateServiceRequest) ToolName() string { return ToolCreateService }

func (r *CreateServiceRequest) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"type", r.Type},
		{"name", r.Name},
		{"ownerId", r.OwnerID},
		{"repo", r.Repo},
	} {
		if err := requireField(f.name, f.value); err != nil {
			return err
		}
	}
	if !render.ServiceType(r.Type).IsValid() {
		return localValidation(fmt.Sprintf("invalid type: %s. Valid options: %v", r.Type, render.ServiceTypes))
	}
	if r.NumInstances != nil && *r.NumInstances < 1 {
		return localValidation("numInstances must be at least 1")
	}
	return validateEnvVars(r.EnvVars)
}

func (r *CreateServiceRequest) toRender() *render.CreateServiceRequest {
	return &render.CreateServiceRequest{
		Type:         render.ServiceType(r.Type),
		Name:         r.Name,
		OwnerID:      r.OwnerID,
		Repo:         r.Repo,
		Branch:       r.Branch,
		EnvVars:      toRenderEnvVars(r.EnvVars),
		BuildCommand: r.BuildCommand,
		StartCommand: r.StartCommand,
		PublishPath:  r.PublishPath,
		Plan:         r.Plan,
		Region:       r.Region,
		NumInstances: r.NumInstances,
		AutoDeploy:   r.AutoDeploy,
	}
}

type DeleteServiceRequest struct {
	ServiceID string `json:"serviceId" jsonschema:"description=The ID of the service to delete"`
}

func (r *DeleteServiceRequest) ToolName() string { return ToolDeleteService }

func (r *DeleteServiceRequest) Validate() error {
	return requireField("serviceId", r.ServiceID)
}

type GetDeploysRequest struct {
	ServiceID string `json:"serviceId" jsonschema:"description=The ID of the service"`
	Limit     int    `json:"limit,omitempty" jsonschema:"description=Number of deploys to return (default 20 and max 100),minimum=1,maximum=100"`
	Cursor    string `json:"cursor,omitempty" jsonschema:"description=Pagination cursor for fetching next page"`
}

func (r *GetDeploysRequest) ToolName() string { return ToolGetDeploys }

func (r *GetDeploysRequest) Validate() error {
	if r.Limit < 0 {
		return invalidParams("limit must not be negative")
	}
	return requireField("serviceId", r.ServiceID)
}

type ManageEnvVarsRequest struct {
	ServiceID string   `json:"serviceId" jsonschema:"description=The ID of the service"`
	EnvVars   []EnvVar `json:"envVars" jsonschema:"description=The complete set of environment variables. Variables not listed are removed."`
}

func (r *ManageEnvVarsRequest) ToolName() string { return ToolManageEnvVars }

func (r *ManageEnvVarsRequest) Validate() error {
	if err := requireField("serviceId", r.ServiceID); err != nil {
		return err
	}
	if r.EnvVars == nil {
		return invalidParams("envVars is required")
	}
	return validateEnvVars(r.EnvVars)
}

type ManageDomainsRequest struct {
	ServiceID string `json:"serviceId" jsonschema:"description=The ID of the service"`
	Action    string `json:"action" jsonschema:"description=Action to perform,enum=list,enum=add,enum=remove"`
	Domain    string `json:"domain,omitempty" jsonschema:"description=Domain name to add or domain ID to remove (required for add and remove)"`
}

func (r *ManageDomainsRequest) ToolName() string { return ToolManageDomains }

func (r *ManageDomainsRequest) Validate() error {
	if err := requireField("serviceId", r.ServiceID); err != nil {
		return err
	}
	switch r.Action {
	case DomainActionList:
	case DomainActionAdd:
		if r.Domain == "" {
			return localValidation("Domain name is required for add action")
		}
	case DomainActionRemove:
		if r.Domain == "" {
			return localValidation("Domain ID is required for remove action")
		}
	case "":
		return invalidParams("action is required")
	default:
		return localValidation(fmt.Sprintf("Unknown action: %s", r.Action))
	}
	return nil
}

func requireField(name, value string) error {
	if value == "" {
		return invalidParams(name + " is required")
	}
	return nil
}
