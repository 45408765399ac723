package render

import (
	"context"
	"fmt"
	"net/http"
)

type EnvVarsService struct {
	client *Client
}

type replaceEnvVarsRequest struct {
	EnvVars []EnvVar `json:"envVars"`
}

// Replace sends the complete desired set of variables. Keys missing from
// envVars are removed upstream.
func (s *EnvVarsService) Replace(ctx context.Context, serviceID string, envVars []EnvVar) (Record, error) {
	if serviceID == "" {
		return nil, fmt.Errorf("render: serviceId is required")
	}
	if envVars == nil {
		envVars = []EnvVar{}
	}

	svc, err := getRecord(ctx, s.client, http.MethodPut, servicePath(serviceID, "env-vars"), replaceEnvVarsRequest{EnvVars: envVars})
	if err != nil {
		return nil, fmt.Errorf("failed to update environment variables: %w", err)
	}
	return svc, nil
}
