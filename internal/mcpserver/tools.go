package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/augustdev/render-mcp/internal/render"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Call dispatches one tool call by name. It always returns a result; every
// failure is reported as an error-flagged envelope.
func (s *Server) Call(ctx context.Context, name string, arguments json.RawMessage) *mcp.CallToolResult {
	t, ok := lookupTool(name)
	if !ok {
		err := unknownTool(name)
		s.logger.Warn("rejected tool call", "tool", name, "code", ErrorCodeOf(err))
		return errorResult(err)
	}

	req, err := t.decode(arguments)
	if err != nil {
		s.logger.Warn("rejected tool call", "tool", name, "code", ErrorCodeOf(err), "error", err)
		return errorResult(err)
	}

	result, err := s.execute(ctx, req)
	if err != nil {
		s.logger.Error("tool call failed", "tool", name, "code", ErrorCodeOf(err), "error", err)
		return errorResult(err)
	}
	return result
}

func (s *Server) execute(ctx context.Context, req Request) (*mcp.CallToolResult, error) {
	switch r := req.(type) {
	case *ListServicesRequest:
		return s.handleListServices(ctx, r)
	case *GetServiceRequest:
		return s.handleGetService(ctx, r)
	case *DeployServiceRequest:
		return s.handleDeployService(ctx, r)
	case *CreateServiceRequest:
		return s.handleCreateService(ctx, r)
	case *DeleteServiceRequest:
		return s.handleDeleteService(ctx, r)
	case *GetDeploysRequest:
		return s.handleGetDeploys(ctx, r)
	case *ManageEnvVarsRequest:
		return s.handleManageEnvVars(ctx, r)
	case *ManageDomainsRequest:
		return s.handleManageDomains(ctx, r)
	default:
		return nil, unknownTool(req.ToolName())
	}
}

func (s *Server) handleListServices(ctx context.Context, r *ListServicesRequest) (*mcp.CallToolResult, error) {
	page, err := s.client.Services.List(ctx, &render.PageParams{Limit: r.Limit, Cursor: r.Cursor})
	if err != nil {
		return nil, err
	}
	return jsonResult(page)
}

func (s *Server) handleGetService(ctx context.Context, r *GetServiceRequest) (*mcp.CallToolResult, error) {
	svc, err := s.client.Services.Get(ctx, r.ServiceID)
	if err != nil {
		return nil, err
	}
	return jsonResult(svc)
}

func (s *Server) handleDeployService(ctx context.Context, r *DeployServiceRequest) (*mcp.CallToolResult, error) {
	s.logger.Info("starting deploy", "service_id", r.ServiceID, "clear_cache", r.ClearCache)

	record, err := s.client.Deploys.Create(ctx, r.ServiceID, &render.DeployRequest{ClearCache: r.ClearCache})
	if err != nil {
		return nil, err
	}
	var deploy render.Deploy
	if err := record.Decode(&deploy); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Successfully deployed service %s.", r.ServiceID)
	if deploy.ID != "" {
		msg += " Deployment ID: " + deploy.ID
	}
	if deploy.Status != "" {
		msg += ", Status: " + string(deploy.Status)
	}
	return textResult(msg), nil
}

func (s *Server) handleCreateService(ctx context.Context, r *CreateServiceRequest) (*mcp.CallToolResult, error) {
	s.logger.Info("creating service",
		"name", r.Name,
		"type", r.Type,
		"owner_id", r.OwnerID,
		"repo", r.Repo,
		"branch", r.Branch,
	)

	svc, err := s.client.Services.Create(ctx, r.toRender())
	if err != nil {
		return nil, err
	}
	return jsonResult(svc)
}

func (s *Server) handleDeleteService(ctx context.Context, r *DeleteServiceRequest) (*mcp.CallToolResult, error) {
	s.logger.Info("deleting service", "service_id", r.ServiceID)

	if err := s.client.Services.Delete(ctx, r.ServiceID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Service %s deleted successfully", r.ServiceID)), nil
}

func (s *Server) handleGetDeploys(ctx context.Context, r *GetDeploysRequest) (*mcp.CallToolResult, error) {
	page, err := s.client.Deploys.List(ctx, r.ServiceID, &render.PageParams{Limit: r.Limit, Cursor: r.Cursor})
	if err != nil {
		return nil, err
	}
	return jsonResult(page)
}

func (s *Server) handleManageEnvVars(ctx context.Context, r *ManageEnvVarsRequest) (*mcp.CallToolResult, error) {
	s.logger.Info("replacing environment variables", "service_id", r.ServiceID, "count", len(r.EnvVars))

	svc, err := s.client.EnvVars.Replace(ctx, r.ServiceID, toRenderEnvVars(r.EnvVars))
	if err != nil {
		return nil, err
	}
	return jsonResult(svc)
}

func (s *Server) handleManageDomains(ctx context.Context, r *ManageDomainsRequest) (*mcp.CallToolResult, error) {
	switch r.Action {
	case DomainActionList:
		domains, err := s.client.CustomDomains.List(ctx, r.ServiceID)
		if err != nil {
			return nil, err
		}
		return jsonResult(domains)

	case DomainActionAdd:
		s.logger.Info("adding custom domain", "service_id", r.ServiceID, "domain", r.Domain)
		domain, err := s.client.CustomDomains.Add(ctx, r.ServiceID, r.Domain)
		if err != nil {
			return nil, err
		}
		return jsonResult(domain)

	case DomainActionRemove:
		s.logger.Info("removing custom domain", "service_id", r.ServiceID, "domain", r.Domain)
		if err := s.client.CustomDomains.Remove(ctx, r.ServiceID, r.Domain); err != nil {
			return nil, err
		}
		return textResult(fmt.Sprintf("Domain %s removed successfully from service %s", r.Domain, r.ServiceID)), nil
	}

	return nil, localValidation(fmt.Sprintf("Unknown action: %s", r.Action))
}

// ErrorCodeOf classifies a tool error for logging. Upstream errors report
// "upstream_<kind>".
func ErrorCodeOf(err error) string {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return string(toolErr.Code)
	}
	var apiErr *render.Error
	if errors.As(err, &apiErr) {
		return "upstream_" + string(apiErr.Kind)
	}
	return "unknown"
}
