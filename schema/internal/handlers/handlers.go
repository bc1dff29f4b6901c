package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/telhawk-systems/ocsf-mapper/common/httputil"
	"github.com/telhawk-systems/ocsf-mapper/common/logging"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/models"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/service"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/loader"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/sample"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

type Handler struct {
	service *service.SchemaService
	logger  *logging.Logger
}

func NewHandler(svc *service.SchemaService, logger *logging.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// HealthCheck handles GET /healthz
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Health(r.Context()))
}

type versionAttributes struct {
	Version  string `json:"version"`
	URLSafe  string `json:"url_safe"`
	Default  bool   `json:"default"`
	Latest   bool   `json:"latest"`
	Resident bool   `json:"resident"`
}

// ListVersions handles GET /api/v1/versions
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	resident := make(map[ocsf.Version]bool)
	for _, v := range h.service.Resident() {
		resident[v] = true
	}
	def, _ := h.service.ResolveVersion("")

	versions := h.service.Versions()
	ids := make([]string, len(versions))
	attrs := make([]versionAttributes, len(versions))
	for i, v := range versions {
		ids[i] = v.String()
		attrs[i] = versionAttributes{
			Version:  v.String(),
			URLSafe:  v.URLSafeName(),
			Default:  v == def,
			Latest:   v == ocsf.LatestVersion(),
			Resident: resident[v],
		}
	}
	httputil.WriteJSONAPICollection(w, http.StatusOK, "ocsf_version", ids, attrs, nil)
}

// ListClasses handles GET /api/v1/schemas/{version}/classes
func (h *Handler) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.service.ListClasses(r.Context(), r.PathValue("version"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page := httputil.ParsePagination(r, defaultPageSize, maxPageSize)
	page.Total = len(classes)
	start, end := page.Window(len(classes))
	classes = classes[start:end]

	ids := make([]string, len(classes))
	for i, c := range classes {
		ids[i] = strconv.Itoa(c.ID)
	}
	httputil.WriteJSONAPICollection(w, http.StatusOK, "event_class", ids, classes, &page)
}

// GetClass handles GET /api/v1/schemas/{version}/classes/{class}
func (h *Handler) GetClass(w http.ResponseWriter, r *http.Request) {
	class, err := h.service.ClassKnowledge(r.Context(), r.PathValue("version"), r.PathValue("class"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSONAPIResource(w, http.StatusOK, "event_class", strconv.Itoa(class.ID), class)
}

// GetCatalog handles GET /api/v1/schemas/{version}/catalog
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	text, err := h.service.Catalog(r.Context(), r.PathValue("version"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// CreateProjection handles POST /api/v1/schemas/{version}/projections
func (h *Handler) CreateProjection(w http.ResponseWriter, r *http.Request) {
	var req models.ProjectionRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteJSONAPIValidationError(w, err.Error())
		return
	}
	req.Version = r.PathValue("version")

	doc, err := h.service.Project(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSONAPIResource(w, http.StatusOK, "projection", uuid.NewString(), doc)
}

// CreateValidation handles POST /api/v1/schemas/{version}/validations
//
// A candidate that does not conform is still a 200; the verdict is in the
// report's passed field.
func (h *Handler) CreateValidation(w http.ResponseWriter, r *http.Request) {
	var req models.ValidationRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteJSONAPIValidationError(w, err.Error())
		return
	}
	req.Version = r.PathValue("version")

	report, err := h.service.Validate(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSONAPIResource(w, http.StatusOK, "validation_report", uuid.NewString(), report)
}

// CreateSample handles POST /api/v1/schemas/{version}/samples
func (h *Handler) CreateSample(w http.ResponseWriter, r *http.Request) {
	var req models.SampleRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteJSONAPIValidationError(w, err.Error())
		return
	}
	req.Version = r.PathValue("version")

	s, err := h.service.Sample(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSONAPIResource(w, http.StatusCreated, "sample", uuid.NewString(), s)
}

// ClearSchema handles DELETE /api/v1/schemas/{version}
func (h *Handler) ClearSchema(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), r.PathValue("version")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps service errors onto JSON:API error responses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		httputil.WriteJSONAPIValidationError(w, err.Error())
	case errors.Is(err, loader.ErrUnknownVersion):
		httputil.WriteJSONAPIError(w, http.StatusNotFound, "unknown_version", "Unknown OCSF Version", err.Error())
	case errors.Is(err, ocsf.ErrUnknownEventClass):
		httputil.WriteJSONAPIError(w, http.StatusNotFound, "unknown_event_class", "Unknown Event Class", err.Error())
	case errors.Is(err, ocsf.ErrUnresolvedObjectType):
		h.logger.ErrorContext(r.Context(), "schema references undefined object", logging.Error(err))
		httputil.WriteJSONAPIError(w, http.StatusUnprocessableEntity, "unresolved_object_type", "Unresolved Object Type", err.Error())
	case errors.Is(err, sample.ErrRequiredCycle):
		httputil.WriteJSONAPIError(w, http.StatusUnprocessableEntity, "required_cycle", "Required Attribute Cycle", err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "schema unavailable", logging.Path(r.URL.Path), logging.Error(err))
		httputil.WriteJSONAPIError(w, http.StatusBadGateway, "schema_unavailable", "Schema Unavailable",
			"The schema could not be loaded from its source")
	}
}
