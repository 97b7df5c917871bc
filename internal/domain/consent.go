package domain

import (
	"time"

	"github.com/google/uuid"
)

// Service types a grant can cover.
const (
	ServiceTypeJobMatching    = "job_matching"
	ServiceTypeResumeAnalysis = "resume_analysis"
	ServiceTypeFullAIAnalysis = "full_ai_analysis"
)

// Data type categories a grant may name. DataTypeAll is the wildcard covering
// every category of the owner's personal data.
const (
	DataTypeAll          = "all_personal_data"
	DataTypePersonalInfo = "personal_info"
	DataTypeSkills       = "skills"
	DataTypeExperience   = "experience"
	DataTypeEducation    = "education"
	DataTypeResume       = "resume"
)

const (
	ConsentStatusActive  = "active"
	ConsentStatusRevoked = "revoked"
	ConsentStatusExpired = "expired"
)

// Machine-readable denial reasons.
const (
	ReasonNoConsent     = "no_consent"
	ReasonScopeExceeded = "scope_exceeded"
)

// ConsentGrant is a persisted, scoped, time-limited authorization letting a
// service type access specific categories of the owner's data.
type ConsentGrant struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OwnerID     uuid.UUID `json:"user_id" db:"user_id"`
	ServiceType string    `json:"service_type" db:"service_type"`
	DataTypes   []string  `json:"data_types" db:"data_types"`
	Level       string    `json:"consent_level" db:"consent_level"`
	GrantedAt   time.Time `json:"granted_at" db:"granted_at"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
	UsageCount  int       `json:"usage_count" db:"usage_count"`
	Status      string    `json:"status" db:"status"`
}

// Active reports whether the grant authorizes access at the given instant.
func (g *ConsentGrant) Active(now time.Time) bool {
	return g != nil && g.Status == ConsentStatusActive && now.Before(g.ExpiresAt)
}

// Covers reports whether the grant's allowed set includes the data type,
// either explicitly or via the wildcard.
func (g *ConsentGrant) Covers(dataType string) bool {
	for _, t := range g.DataTypes {
		if t == dataType || t == DataTypeAll {
			return true
		}
	}
	return false
}

// ConsentDecision is the outcome of a consent check. On denial Reason is set
// and, for scope violations, OffendingType names the first data type outside
// the grant.
type ConsentDecision struct {
	Granted       bool      `json:"granted"`
	Level         string    `json:"consent_level,omitempty"`
	AllowedTypes  []string  `json:"allowed_data_types,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	OffendingType string    `json:"offending_data_type,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
	UsageCount    int       `json:"usage_count,omitempty"`
}
