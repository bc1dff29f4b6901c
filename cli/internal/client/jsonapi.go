package client

import (
	"encoding/json"
	"fmt"
)

// jsonAPIResource represents a single JSON:API resource.
type jsonAPIResource struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	Attributes json.RawMessage `json:"attributes"`
}

// jsonAPIResponse holds either a single resource or a collection in Data.
type jsonAPIResponse struct {
	Data   json.RawMessage `json:"data"`
	Meta   map[string]any  `json:"meta,omitempty"`
	Errors []jsonAPIError  `json:"errors,omitempty"`
}

// jsonAPIError represents a JSON:API error object.
type jsonAPIError struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// APIError is returned for non-2xx responses from the schema service.
type APIError struct {
	StatusCode int
	Code       string
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("%s (%d %s)", e.Detail, e.StatusCode, e.Code)
	case e.Title != "":
		return fmt.Sprintf("%s (%d)", e.Title, e.StatusCode)
	default:
		return fmt.Sprintf("schema service returned status %d", e.StatusCode)
	}
}

// decodeResource unmarshals the attributes of a single-resource document.
func decodeResource(doc *jsonAPIResponse, dst any) error {
	var res jsonAPIResource
	if err := json.Unmarshal(doc.Data, &res); err != nil {
		return fmt.Errorf("failed to decode resource: %w", err)
	}
	if err := json.Unmarshal(res.Attributes, dst); err != nil {
		return fmt.Errorf("failed to decode %s attributes: %w", res.Type, err)
	}
	return nil
}

// decodeCollection unmarshals the attributes of every resource in a collection.
func decodeCollection[T any](doc *jsonAPIResponse) ([]T, error) {
	var resources []jsonAPIResource
	if err := json.Unmarshal(doc.Data, &resources); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	out := make([]T, 0, len(resources))
	for _, res := range resources {
		var item T
		if err := json.Unmarshal(res.Attributes, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s %s: %w", res.Type, res.ID, err)
		}
		out = append(out, item)
	}
	return out, nil
}
