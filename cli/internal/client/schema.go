// Package client talks to a running schema service over its JSON:API.
package client

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

	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/conformance"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/projection"
)

// classPageSize matches the service's page cap.
const classPageSize = 500

type SchemaClient struct {
	baseURL string
	client  *http.Client
}

// Version is one entry of GET /api/v1/versions.
type Version struct {
	Version  string `json:"version" yaml:"version"`
	URLSafe  string `json:"url_safe" yaml:"url_safe"`
	Default  bool   `json:"default" yaml:"default"`
	Latest   bool   `json:"latest" yaml:"latest"`
	Resident bool   `json:"resident" yaml:"resident"`
}

// EventClass is one catalog entry.
type EventClass struct {
	Name     string `json:"event_name" yaml:"event_name"`
	ID       int    `json:"event_id" yaml:"event_id"`
	Details  string `json:"event_details" yaml:"event_details"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

type ProjectionRequest struct {
	Class string   `json:"class"`
	Paths []string `json:"paths"`
	Mode  string   `json:"mode,omitempty"`
}

type ValidationRequest struct {
	Class     string          `json:"class"`
	Input     string          `json:"input,omitempty"`
	Candidate json.RawMessage `json:"candidate"`
}

type SampleRequest struct {
	Class              string `json:"class"`
	IncludeRecommended bool   `json:"include_recommended,omitempty"`
	Seed               int64  `json:"seed,omitempty"`
}

// Sample is a generated event.
type Sample struct {
	Version string         `json:"version" yaml:"version"`
	Class   string         `json:"class" yaml:"class"`
	Event   map[string]any `json:"event" yaml:"event"`
}

func NewSchemaClient(baseURL string) *SchemaClient {
	return &SchemaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *SchemaClient) do(ctx context.Context, method, path string, body, dst any) (*jsonAPIResponse, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/vnd.api+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach schema service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var doc jsonAPIResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&doc)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil && len(doc.Errors) > 0 {
			apiErr.Code = doc.Errors[0].Code
			apiErr.Title = doc.Errors[0].Title
			apiErr.Detail = doc.Errors[0].Detail
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if dst != nil {
		if err := decodeResource(&doc, dst); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

func schemaPath(version, suffix string) string {
	if version == "" {
		version = "default"
	}
	return "/api/v1/schemas/" + url.PathEscape(version) + suffix
}

// Versions lists the versions the service supports.
func (c *SchemaClient) Versions(ctx context.Context) ([]Version, error) {
	doc, err := c.do(ctx, http.MethodGet, "/api/v1/versions", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeCollection[Version](doc)
}

// Classes returns every event class of version, following pagination.
func (c *SchemaClient) Classes(ctx context.Context, version string) ([]EventClass, error) {
	var all []EventClass
	for page := 1; ; page++ {
		path := fmt.Sprintf("%s?page=%d&limit=%d", schemaPath(version, "/classes"), page, classPageSize)
		doc, err := c.do(ctx, http.MethodGet, path, nil, nil)
		if err != nil {
			return nil, err
		}
		classes, err := decodeCollection[EventClass](doc)
		if err != nil {
			return nil, err
		}
		all = append(all, classes...)

		total, _ := doc.Meta["total_pages"].(float64)
		if len(classes) == 0 || page >= int(total) {
			return all, nil
		}
	}
}

// Class returns the catalog entry for one event class.
func (c *SchemaClient) Class(ctx context.Context, version, class string) (*EventClass, error) {
	var out EventClass
	if _, err := c.do(ctx, http.MethodGet, schemaPath(version, "/classes/"+url.PathEscape(class)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SchemaClient) Project(ctx context.Context, version string, req ProjectionRequest) (*projection.Document, error) {
	var out projection.Document
	if _, err := c.do(ctx, http.MethodPost, schemaPath(version, "/projections"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SchemaClient) Validate(ctx context.Context, version string, req ValidationRequest) (*conformance.Report, error) {
	var out conformance.Report
	if _, err := c.do(ctx, http.MethodPost, schemaPath(version, "/validations"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SchemaClient) Sample(ctx context.Context, version string, req SampleRequest) (*Sample, error) {
	var out Sample
	if _, err := c.do(ctx, http.MethodPost, schemaPath(version, "/samples"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
