package render

import (
	"context"
	"fmt"
	"net/http"
)

type DeploysService struct {
	client *Client
}

// Create triggers a new deploy. A nil request sends an empty options object.
func (s *DeploysService) Create(ctx context.Context, serviceID string, req *DeployRequest) (Record, error) {
	if serviceID == "" {
		return nil, fmt.Errorf("render: serviceId is required")
	}
	if req == nil {
		req = &DeployRequest{}
	}

	deploy, err := getRecord(ctx, s.client, http.MethodPost, servicePath(serviceID, "deploys"), req)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy service: %w", err)
	}
	return deploy, nil
}

func (s *DeploysService) List(ctx context.Context, serviceID string, params *PageParams) (*Page, error) {
	if serviceID == "" {
		return nil, fmt.Errorf("render: serviceId is required")
	}

	page, err := getPage(ctx, s.client, servicePath(serviceID, "deploys"), params)
	if err != nil {
		return nil, fmt.Errorf("failed to list deploys: %w", err)
	}
	return page, nil
}
