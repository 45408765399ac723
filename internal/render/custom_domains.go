package render

import (
	"context"
	"fmt"
	"net/http"
)

type CustomDomainsService struct {
	client *Client
}

type addCustomDomainRequest struct {
	Name string `json:"name"`
}

func (s *CustomDomainsService) List(ctx context.Context, serviceID string) ([]Record, error) {
	if serviceID == "" {
		return nil, fmt.Errorf("render: serviceId is required")
	}

	domains, err := getRecords(ctx, s.client, servicePath(serviceID, "custom-domains"))
	if err != nil {
		return nil, fmt.Errorf("failed to list custom domains: %w", err)
	}
	return domains, nil
}

func (s *CustomDomainsService) Add(ctx context.Context, serviceID, name string) (Record, error) {
	if serviceID == "" {
		return nil, fmt.Errorf("render: serviceId is required")
	}
	if name == "" {
		return nil, fmt.Errorf("render: domain name is required")
	}

	domain, err := getRecord(ctx, s.client, http.MethodPost, servicePath(serviceID, "custom-domains"), addCustomDomainRequest{Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to add custom domain: %w", err)
	}
	return domain, nil
}

func (s *CustomDomainsService) Remove(ctx context.Context, serviceID, domainID string) error {
	if serviceID == "" {
		return fmt.Errorf("render: serviceId is required")
	}
	if domainID == "" {
		return fmt.Errorf("render: domain id is required")
	}

	if err := s.client.do(ctx, http.MethodDelete, servicePath(serviceID, "custom-domains", domainID), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to remove custom domain: %w", err)
	}
	return nil
}
