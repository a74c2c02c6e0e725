// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	stderrors "gift-finder-backend/internal/common/errors"
	"gift-finder-backend/internal/common/logger"
	"gift-finder-backend/internal/common/validation"
	"gift-finder-backend/internal/models"
	"gift-finder-backend/internal/search"
)

// maxSearchBody bounds the request body size for /api/search.
const maxSearchBody = 64 << 10

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// Handler serves the public API.
type Handler struct {
	service *search.Service
	checks  map[string]HealthCheck
	logger  logger.Logger
	name    string
	version string
}

// NewHandler builds the API handler. checks maps component names to
// their probes and may be empty.
func NewHandler(service *search.Service, checks map[string]HealthCheck, log logger.Logger, name, version string) *Handler {
	if checks == nil {
		checks = map[string]HealthCheck{}
	}
	return &Handler{
		service: service,
		checks:  checks,
		logger:  log.WithFields(map[string]interface{}{"component": "http"}),
		name:    name,
		version: version,
	}
}

// Home announces the API surface.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%s API is running", h.name),
		"version": h.version,
		"endpoints": map[string]string{
			"search":     "/api/search (POST)",
			"categories": "/api/categories (GET)",
			"filters":    "/api/filters (GET)",
			"health":     "/api/health (GET)",
		},
	})
}

// Health reports per-dependency status. The service stays "degraded"
// rather than unhealthy when optional dependencies fail, because search
// still works without them.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	components := map[string]string{}
	status := "healthy"
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			components[name] = "unavailable: " + err.Error()
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"service":    h.name,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

type searchRequest struct {
	Query   string `json:"query"`
	Filters struct {
		Category string   `json:"category"`
		PriceMin *float64 `json:"price_min"`
		PriceMax *float64 `json:"price_max"`
		Age      *int     `json:"age"`
	} `json:"filters"`
	Limit int `json:"limit"`
}

// Search handles POST /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSearchBody))
	if err != nil {
		writeError(w, stderrors.NewInvalidPayloadError("request body unreadable"))
		return
	}

	if !json.Valid(body) {
		writeError(w, stderrors.NewInvalidPayloadError("request body is not valid JSON"))
		return
	}

	result, err := validation.ValidateSearchRequest(body)
	if err != nil {
		writeError(w, stderrors.NewInternalError(err.Error()))
		return
	}
	if !result.Valid {
		writeError(w, stderrors.NewValidationError(formatValidationErrors(result.Errors)))
		return
	}

	var req searchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, stderrors.NewInvalidPayloadError(err.Error()))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, stderrors.NewQueryRequiredError())
		return
	}

	filters := models.SearchFilters{
		Category: req.Filters.Category,
		PriceMin: req.Filters.PriceMin,
		PriceMax: req.Filters.PriceMax,
		Age:      req.Filters.Age,
	}

	res, err := h.service.Search(r.Context(), req.Query, filters, req.Limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"query":           res.Query,
		"intent":          res.Intent,
		"recommendations": res.Recommendations,
		"totalCandidates": res.TotalCandidates,
		"fallback":        res.Fallback,
	})
}

// Categories handles GET /api/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": categories,
	})
}

// Filters handles GET /api/filters.
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"filters": h.service.Filters(),
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if stdErr, ok := err.(*stderrors.StandardError); ok {
		h.logger.Warn("request failed", map[string]interface{}{
			"code":  string(stdErr.Code),
			"error": stdErr.Message,
		})
		writeError(w, stdErr)
		return
	}
	h.logger.WithError(err).Error("request failed", nil)
	writeError(w, stderrors.NewInternalError(err.Error()))
}

func formatValidationErrors(errs []validation.ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err *stderrors.StandardError) {
	writeJSON(w, err.HTTPStatus(), map[string]interface{}{
		"success": false,
		"error":   err,
	})
}
