package dto

import (
	"github.com/google/uuid"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

// MatchRequest is the payload for POST /matching/jobs.
type MatchRequest struct {
	ResumeID uuid.UUID            `json:"resume_id" binding:"required"`
	Limit    int                  `json:"limit" binding:"omitempty,min=1,max=100"`
	Filters  *domain.MatchFilters `json:"filters"`
}

// ApplyDefaults fills unset optional fields.
func (r *MatchRequest) ApplyDefaults(defaultLimit int) {
	if r.Limit <= 0 {
		r.Limit = defaultLimit
	}
	if r.Filters == nil {
		r.Filters = &domain.MatchFilters{}
	}
}
