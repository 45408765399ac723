package render

import (
	"context"
	"fmt"
	"net/http"
)

type ServicesService struct {
	client *Client
}

func (s *ServicesService) List(ctx context.Context, params *PageParams) (*Page, error) {
	page, err := getPage(ctx, s.client, "/services", params)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return page, nil
}

func (s *ServicesService) Get(ctx context.Context, serviceID string) (Record, error) {
	if serviceID == "" {
		return nil, fmt.Errorf("render: serviceId is required")
	}

	svc, err := getRecord(ctx, s.client, http.MethodGet, servicePath(serviceID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return svc, nil
}

// Create only checks presence of the fields the API cannot do without;
// everything else is validated upstream.
func (s *ServicesService) Create(ctx context.Context, req *CreateServiceRequest) (Record, error) {
	if req == nil {
		return nil, fmt.Errorf("render: request is required")
	}
	if req.Type == "" {
		return nil, fmt.Errorf("render: type is required")
	}
	if req.Name == "" {
		return nil, fmt.Errorf("render: name is required")
	}
	if req.OwnerID == "" {
		return nil, fmt.Errorf("render: ownerId is required")
	}
	if req.Repo == "" {
		return nil, fmt.Errorf("render: repo is required")
	}

	svc, err := getRecord(ctx, s.client, http.MethodPost, "/services", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return svc, nil
}

func (s *ServicesService) Delete(ctx context.Context, serviceID string) error {
	if serviceID == "" {
		return fmt.Errorf("render: serviceId is required")
	}

	if err := s.client.do(ctx, http.MethodDelete, servicePath(serviceID), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return nil
}
