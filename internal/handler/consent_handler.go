package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xiajason/jobfirst-future/internal/domain"
	"github.com/xiajason/jobfirst-future/internal/middleware"
	"github.com/xiajason/jobfirst-future/internal/service"
)

type ConsentHandler struct {
	consentService service.ConsentService
}

func NewConsentHandler(consentService service.ConsentService) *ConsentHandler {
	return &ConsentHandler{
		consentService: consentService,
	}
}

// GetConsentStatus handles GET /api/v1/consent/status.
func (h *ConsentHandler) GetConsentStatus(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	status, err := h.consentService.GetConsentStatus(c.Request.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
			return
		}
		log.Error().Err(err).Msg("consent status lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve consent status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetUsageHistory handles GET /api/v1/consent/usage-history.
func (h *ConsentHandler) GetUsageHistory(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	history, err := h.consentService.GetUsageHistory(c.Request.Context(), principal.UserID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
			return
		}
		log.Error().Err(err).Msg("usage history lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve usage history"})
		return
	}

	c.JSON(http.StatusOK, history)
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}
