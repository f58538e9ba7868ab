package reports

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialpulse/report-portal-backend/internal/reports/builder"
	"socialpulse/report-portal-backend/internal/upstream"
)

// Handler handles HTTP requests for reporting operations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new reports handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers reporting routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		// Generate dialog endpoints
		reports.GET("/templates", h.getTemplates)
		reports.GET("/sources", h.getDataSources)
		reports.GET("/source-folders", h.getSourceFolders)
		reports.POST("/generate/validate", h.validateSelection)
		reports.POST("/generate", h.generateReport)

		// Generated report endpoints
		reports.GET("/generated", h.listGenerated)
		reports.GET("/generated/:id", h.getReport)
		reports.GET("/generated/:id/view", h.viewReport)
		reports.GET("/generated/:id/download/:format", h.downloadReport)
		reports.GET("/generated/:id/export/:format", h.exportReport)

		// Submission log
		reports.GET("/submissions", h.listSubmissions)
	}
}

// =====================================================
// Generate Dialog Endpoints
// =====================================================

// getTemplates handles GET /api/v1/reports/templates
func (h *Handler) getTemplates(c *gin.Context) {
	templates, err := h.service.Templates(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to list templates", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// getDataSources handles GET /api/v1/reports/sources
func (h *Handler) getDataSources(c *gin.Context) {
	projectID, ok := h.projectParam(c)
	if !ok {
		return
	}

	aggregation, err := h.service.DataSources(c.Request.Context(), projectID)
	if err != nil {
		h.respondError(c, "Failed to aggregate data sources", err)
		return
	}

	c.JSON(http.StatusOK, aggregation)
}

// getSourceFolders handles GET /api/v1/reports/source-folders
func (h *Handler) getSourceFolders(c *gin.Context) {
	projectID, ok := h.projectParam(c)
	if !ok {
		return
	}

	folders, err := h.service.SourceFolders(c.Request.Context(), projectID)
	if err != nil {
		h.respondError(c, "Failed to list source folders", err)
		return
	}

	c.JSON(http.StatusOK, folders)
}

// validateSelection handles POST /api/v1/reports/generate/validate
func (h *Handler) validateSelection(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Validate(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to validate selection", err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// generateReport handles POST /api/v1/reports/generate
func (h *Handler) generateReport(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Trigger = SubmissionTriggerManual

	result, err := h.service.Generate(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to generate report", err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// =====================================================
// Generated Report Endpoints
// =====================================================

// listGenerated handles GET /api/v1/reports/generated
func (h *Handler) listGenerated(c *gin.Context) {
	projectID, ok := h.projectParam(c)
	if !ok {
		return
	}

	reports, err := h.service.Generated(c.Request.Context(), projectID)
	if err != nil {
		h.respondError(c, "Failed to list generated reports", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// getReport handles GET /api/v1/reports/generated/:id
func (h *Handler) getReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	report, err := h.service.Report(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get report", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// viewReport handles GET /api/v1/reports/generated/:id/view
func (h *Handler) viewReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	view, err := h.service.View(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to render report", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// downloadReport handles GET /api/v1/reports/generated/:id/download/:format
func (h *Handler) downloadReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	dl, err := h.service.Download(c.Request.Context(), id, c.Param("format"))
	if err != nil {
		h.respondError(c, "Failed to download report", err)
		return
	}

	if dl.ArchivedAt != "" {
		c.Header("X-Archived-At", dl.ArchivedAt)
	}
	h.sendFile(c, dl)
}

// exportReport handles GET /api/v1/reports/generated/:id/export/:format
func (h *Handler) exportReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	dl, err := h.service.Export(c.Request.Context(), id, c.Param("format"))
	if err != nil {
		h.respondError(c, "Failed to export report", err)
		return
	}

	h.sendFile(c, dl)
}

// =====================================================
// Submission Log Endpoints
// =====================================================

// listSubmissions handles GET /api/v1/reports/submissions
func (h *Handler) listSubmissions(c *gin.Context) {
	var filters SubmissionFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.service.Submissions(c.Request.Context(), &filters)
	if err != nil {
		h.logger.Error("Failed to list submissions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// =====================================================
// Helper Methods
// =====================================================

// respondError maps service errors onto HTTP statuses. Upstream failures
// surface once as 502 unless the upstream status is meaningful to the caller.
func (h *Handler) respondError(c *gin.Context, msg string, err error) {
	var invalid *builder.InvalidSelectionError
	var apiErr *upstream.APIError

	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "validation": invalid.Result})
		return
	case errors.Is(err, ErrTemplateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrDataSourcesUnavailable):
		h.logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	case errors.Is(err, context.Canceled):
		h.logger.Debug(msg, zap.Error(err))
		c.Abort()
		return
	case errors.As(err, &apiErr):
		h.logger.Warn(msg, zap.Error(err), zap.Int("upstream_status", apiErr.StatusCode))
		c.JSON(upstreamStatus(apiErr.StatusCode), gin.H{"error": apiErr.Message})
		return
	}

	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

func upstreamStatus(code int) int {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return code
	default:
		return http.StatusBadGateway
	}
}

// sendFile writes a binary attachment
func (h *Handler) sendFile(c *gin.Context, dl *Download) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	c.Data(http.StatusOK, dl.ContentType, dl.Data)
}

// reportID parses the :id path parameter
func (h *Handler) reportID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report ID"})
		return 0, false
	}
	return id, true
}

// projectParam parses the optional ?project= query parameter
func (h *Handler) projectParam(c *gin.Context) (*int, bool) {
	raw := c.Query("project")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return nil, false
	}
	return &id, true
}
