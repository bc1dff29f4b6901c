package httputil

import (
	"net/http"
)

// Resource is a single JSON:API resource object.
type Resource struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes any               `json:"attributes"`
	Links      map[string]string `json:"links,omitempty"`
}

// Document is a top-level JSON:API document.
type Document struct {
	Data   any            `json:"data,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
	Errors []ErrorObject  `json:"errors,omitempty"`
}

// ErrorObject is a single JSON:API error.
type ErrorObject struct {
	Status int               `json:"status,omitempty"`
	Code   string            `json:"code,omitempty"`
	Title  string            `json:"title,omitempty"`
	Detail string            `json:"detail,omitempty"`
	Source map[string]string `json:"source,omitempty"` // e.g. {"pointer": "/data/attributes/class"}
}

// NewError creates a single JSON:API error object.
func NewError(status int, code, title, detail string) ErrorObject {
	return ErrorObject{Status: status, Code: code, Title: title, Detail: detail}
}

// WriteJSONAPIResource writes a single resource.
//
// Example:
//
//	httputil.WriteJSONAPIResource(w, http.StatusOK, "projection", id, doc)
func WriteJSONAPIResource(w http.ResponseWriter, status int, resourceType, id string, attributes any) {
	WriteJSONAPI(w, status, Document{
		Data: Resource{Type: resourceType, ID: id, Attributes: attributes},
	})
}

// WriteJSONAPICollection writes a collection of resources of one type. ids
// and attributes are parallel slices. A non-nil page adds pagination meta.
func WriteJSONAPICollection[T any](w http.ResponseWriter, status int, resourceType string, ids []string, attributes []T, page *Pagination) {
	data := make([]Resource, len(attributes))
	for i, attrs := range attributes {
		data[i] = Resource{Type: resourceType, ID: ids[i], Attributes: attrs}
	}

	doc := Document{Data: data}
	if page != nil {
		doc.Meta = map[string]any{"pagination": page.Meta()}
	}
	WriteJSONAPI(w, status, doc)
}

// WriteJSONAPIErrorResponse writes one or more errors.
func WriteJSONAPIErrorResponse(w http.ResponseWriter, status int, errors []ErrorObject) {
	WriteJSONAPI(w, status, Document{Errors: errors})
}

// WriteJSONAPIValidationError writes a 400 for a malformed request.
func WriteJSONAPIValidationError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusBadRequest, "validation_failed", "Validation Failed", detail)
}

// WriteJSONAPINotFoundError writes a 404 naming the missing resource.
func WriteJSONAPINotFoundError(w http.ResponseWriter, resourceType, id string) {
	WriteJSONAPIError(w, http.StatusNotFound, "not_found", "Resource Not Found",
		"The requested "+resourceType+" '"+id+"' was not found")
}

// WriteJSONAPIInternalError writes a 500. Log the cause before calling it.
func WriteJSONAPIInternalError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusInternalServerError, "internal_error", "Internal Server Error", detail)
}
