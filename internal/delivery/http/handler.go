package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nutrigrade/backend/internal/domain"
	"github.com/nutrigrade/backend/internal/usecase"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analysisService *usecase.AnalysisService
}

// NewHandler creates a new HTTP handler
func NewHandler(analysisService *usecase.AnalysisService) *Handler {
	return &Handler{
		analysisService: analysisService,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	loaded := 0
	if h.analysisService != nil {
		loaded = h.analysisService.Table().Len()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"service":          "nutrigrade-backend",
		"version":          Version,
		"additives_loaded": loaded,
	})
}

// Analyze handles POST /api/v1/analyze
func (h *Handler) Analyze(c *gin.Context) {
	if h.analysisService == nil {
		respondError(c, http.StatusServiceUnavailable, "analysis service not configured")
		return
	}

	var request domain.AnalyzeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.analysisService.Analyze(c.Request.Context(), &request)
	if err != nil {
		respondError(c, statusForError(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListAdditives handles GET /api/v1/additives, with optional exact ?name= lookup
func (h *Handler) ListAdditives(c *gin.Context) {
	if h.analysisService == nil {
		respondError(c, http.StatusServiceUnavailable, "analysis service not configured")
		return
	}
	table := h.analysisService.Table()

	if name := c.Query("name"); name != "" {
		record, ok := table.LookupByName(name)
		if !ok {
			respondError(c, http.StatusNotFound, domain.ErrAdditiveNotFound.Error())
			return
		}
		c.JSON(http.StatusOK, record)
		return
	}

	additives := table.All()
	c.JSON(http.StatusOK, gin.H{
		"count":     len(additives),
		"additives": additives,
	})
}

// GetAdditive handles GET /api/v1/additives/:code
func (h *Handler) GetAdditive(c *gin.Context) {
	if h.analysisService == nil {
		respondError(c, http.StatusServiceUnavailable, "analysis service not configured")
		return
	}

	code, ok := domain.NormalizeCode(c.Param("code"))
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid additive code: "+c.Param("code"))
		return
	}

	record, found := h.analysisService.Table().Lookup(code)
	if !found {
		respondError(c, http.StatusNotFound, domain.ErrAdditiveNotFound.Error())
		return
	}

	c.JSON(http.StatusOK, record)
}

// statusForError maps domain errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoIngredientsText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrProductAPIFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error":      message,
		"request_id": c.GetString(requestIDKey),
	})
}
