package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/xiajason/jobfirst-future/internal/domain"
	"github.com/xiajason/jobfirst-future/internal/domain/dto"
	"github.com/xiajason/jobfirst-future/internal/middleware"
	"github.com/xiajason/jobfirst-future/internal/service"
)

type MatchHandler struct {
	matchingService service.MatchingService
}

func NewMatchHandler(matchingService service.MatchingService) *MatchHandler {
	return &MatchHandler{
		matchingService: matchingService,
	}
}

// FindMatches handles POST /api/v1/matching/jobs.
func (h *MatchHandler) FindMatches(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req dto.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	result, err := h.matchingService.FindMatches(c.Request.Context(), principal, &req)
	if err != nil {
		h.writeMatchError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *MatchHandler) writeMatchError(c *gin.Context, err error) {
	var validationErrs domain.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": validationErrs,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resume not found"})
	case errors.Is(err, domain.ErrInvalidResumeData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Resume is not ready for matching"})
	case errors.Is(err, domain.ErrDataIntegrity):
		log.Error().Err(err).Msg("matching aborted on integrity failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Matching failed"})
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
	default:
		log.Error().Err(err).Msg("matching request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Matching failed"})
	}
}

// ResumeHandler serves the reconciled, anonymized resume views.
type ResumeHandler struct {
	recordService service.RecordService
}

func NewResumeHandler(recordService service.RecordService) *ResumeHandler {
	return &ResumeHandler{recordService: recordService}
}

// GetResume handles GET /api/v1/resumes/:id.
func (h *ResumeHandler) GetResume(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	resumeID, err := parseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resume id"})
		return
	}

	record, err := h.recordService.GetResumeRecord(c.Request.Context(), principal, resumeID)
	if err != nil {
		h.writeResumeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resume": record})
}

// DownloadResume handles GET /api/v1/resumes/:id/download. Same access rules
// as the view path plus the owner's download permission.
func (h *ResumeHandler) DownloadResume(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	resumeID, err := parseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resume id"})
		return
	}

	record, err := h.recordService.GetResumeDownload(c.Request.Context(), principal, resumeID)
	if err != nil {
		h.writeResumeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="resume-`+resumeID.String()+`.json"`)
	c.JSON(http.StatusOK, gin.H{"resume": record})
}

func (h *ResumeHandler) writeResumeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resume not found"})
	case errors.Is(err, domain.ErrDataIntegrity):
		log.Error().Err(err).Msg("resume read aborted on integrity failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve resume"})
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
	default:
		log.Error().Err(err).Msg("resume read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve resume"})
	}
}
