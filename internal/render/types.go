package render

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
)

type ServiceType string

const (
	ServiceTypeWebService       ServiceType = "web_service"
	ServiceTypeStaticSite       ServiceType = "static_site"
	ServiceTypePrivateService   ServiceType = "private_service"
	ServiceTypeBackgroundWorker ServiceType = "background_worker"
	ServiceTypeCronJob          ServiceType = "cron_job"
)

var ServiceTypes = []ServiceType{
	ServiceTypeWebService,
	ServiceTypeStaticSite,
	ServiceTypePrivateService,
	ServiceTypeBackgroundWorker,
	ServiceTypeCronJob,
}

func (t ServiceType) IsValid() bool {
	for _, v := range ServiceTypes {
		if t == v {
			return true
		}
	}
	return false
}

type DeployStatus string

const (
	DeployStatusCreated          DeployStatus = "created"
	DeployStatusBuildInProgress  DeployStatus = "build_in_progress"
	DeployStatusUpdateInProgress DeployStatus = "update_in_progress"
	DeployStatusLive             DeployStatus = "live"
	DeployStatusDeactivated      DeployStatus = "deactivated"
	DeployStatusBuildFailed      DeployStatus = "build_failed"
	DeployStatusUpdateFailed     DeployStatus = "update_failed"
	DeployStatusCanceled         DeployStatus = "canceled"
)

// Record is a provider-defined object kept exactly as the API sent it.
// Unknown fields, nulls and zero values survive re-encoding.
type Record []byte

func (r Record) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	*r = append((*r)[0:0], data...)
	return nil
}

// Decode parses a typed view of the record. Only the fields v declares are
// read.
func (r Record) Decode(v any) error {
	if err := json.Unmarshal(r, v); err != nil {
		return unexpectedShape(err.Error())
	}
	return nil
}

func (r Record) isObject() bool {
	trimmed := bytes.TrimSpace(r)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// Deploy is the part of a deploy record callers act on.
type Deploy struct {
	ID     string       `json:"id"`
	Status DeployStatus `json:"status"`
}

type EnvVar struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type CreateServiceRequest struct {
	Type                       ServiceType `json:"type"`
	Name                       string      `json:"name"`
	OwnerID                    string      `json:"ownerId"`
	Repo                       string      `json:"repo"`
	Branch                     string      `json:"branch,omitempty"`
	EnvVars                    []EnvVar    `json:"envVars,omitempty"`
	BuildCommand               string      `json:"buildCommand,omitempty"`
	StartCommand               string      `json:"startCommand,omitempty"`
	PublishPath                string      `json:"publishPath,omitempty"`
	Plan                       string      `json:"plan,omitempty"`
	Region                     string      `json:"region,omitempty"`
	NumInstances               *int        `json:"numInstances,omitempty"`
	AutoDeploy                 *bool       `json:"autoDeploy,omitempty"`
	PullRequestPreviewsEnabled *bool       `json:"pullRequestPreviewsEnabled,omitempty"`
}

type DeployRequest struct {
	ClearCache bool `json:"clearCache,omitempty"`
}

// PageParams are passed through to the API untouched. Zero values are not
// sent.
type PageParams struct {
	Limit  int
	Cursor string
}

func (p *PageParams) query() url.Values {
	if p == nil || (p.Limit == 0 && p.Cursor == "") {
		return nil
	}
	query := url.Values{}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Cursor != "" {
		query.Set("cursor", p.Cursor)
	}
	return query
}

// Page is a list response. Items are passed through untouched.
type Page struct {
	Data   []Record `json:"data"`
	Cursor string `json:"cursor,omitempty"`
}
