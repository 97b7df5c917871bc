package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Parsing lifecycle of an uploaded resume.
const (
	ParsingPending   = "pending"
	ParsingCompleted = "completed"
	ParsingFailed    = "failed"
)

// ResumeMetadata is the relational-store view of a resume: ownership, lifecycle
// and the pointer into the owner's document store. It never carries parsed
// content or vectors.
type ResumeMetadata struct {
	ID            uuid.UUID `json:"id" db:"id"`
	OwnerID       uuid.UUID `json:"user_id" db:"user_id"`
	Title         string    `json:"title" db:"title"`
	ParsingStatus string    `json:"parsing_status" db:"parsing_status"`
	ContentKey    string    `json:"content_key" db:"content_key"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// PersonalInfo holds the identifying section of a parsed resume. Every field
// here is subject to anonymization before crossing an ownership boundary.
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Summary  string `json:"summary"`
}

type WorkExperience struct {
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	Years       float64 `json:"years" validate:"omitempty,min=0"`
}

type Education struct {
	School   string `json:"school"`
	Degree   string `json:"degree"`
	Major    string `json:"major"`
	Location string `json:"location"`
}

// ParsedResume is the document-store payload for one resume: the sections the
// parser extracted, cross-referenced back to the relational metadata row.
type ParsedResume struct {
	ResumeID          uuid.UUID        `json:"resume_id"`
	OwnerID           uuid.UUID        `json:"owner_id"`
	PersonalInfo      PersonalInfo     `json:"personal_info"`
	Experience        []WorkExperience `json:"work_experience"`
	Education         []Education      `json:"education"`
	Skills            []string         `json:"skills"`
	PersonalityTraits []string         `json:"personality_traits"`
}

// ResumeVectors are the three semantic embeddings kept in the vector store.
type ResumeVectors struct {
	Content    []float32 `json:"content_vector"`
	Skills     []float32 `json:"skills_vector"`
	Experience []float32 `json:"experience_vector"`
}

// Complete reports whether all three vectors are present with the expected
// dimensionality.
func (v *ResumeVectors) Complete(dim int) bool {
	if v == nil {
		return false
	}
	return len(v.Content) == dim && len(v.Skills) == dim && len(v.Experience) == dim
}

// ResumeRecord is the reconciled view over all three stores, assembled per
// request and never persisted as a whole.
type ResumeRecord struct {
	ID                uuid.UUID        `json:"id"`
	OwnerID           uuid.UUID        `json:"owner_id"`
	ParsingStatus     string           `json:"parsing_status"`
	PersonalInfo      PersonalInfo     `json:"personal_info"`
	Experience        []WorkExperience `json:"work_experience"`
	Education         []Education      `json:"education"`
	Skills            []string         `json:"skills"`
	PersonalityTraits []string         `json:"personality_traits"`
	Vectors           *ResumeVectors   `json:"vectors,omitempty"`
}

// MatchingEligible reports whether the record may enter the matching pipeline.
func (r *ResumeRecord) MatchingEligible(dim int) bool {
	return r.ParsingStatus == ParsingCompleted && r.Vectors.Complete(dim)
}

// TotalExperienceYears sums the durations across all listed positions.
func (r *ResumeRecord) TotalExperienceYears() float64 {
	var total float64
	for _, exp := range r.Experience {
		total += exp.Years
	}
	return total
}

// ContentText builds the whole-resume text view used for the content embedding.
func (r *ResumeRecord) ContentText() string {
	var parts []string
	if r.PersonalInfo.Name != "" {
		parts = append(parts, r.PersonalInfo.Name)
	}
	if r.PersonalInfo.Summary != "" {
		parts = append(parts, r.PersonalInfo.Summary)
	}
	for _, exp := range r.Experience {
		parts = append(parts, strings.TrimSpace(exp.Title+" "+exp.Company+" "+exp.Description))
	}
	for _, edu := range r.Education {
		parts = append(parts, strings.TrimSpace(edu.Degree+" "+edu.School))
	}
	if len(r.Skills) > 0 {
		parts = append(parts, strings.Join(r.Skills, ", "))
	}
	return strings.Join(parts, " ")
}

// SkillsText builds the skills-focused text view: skill tokens plus the
// experience descriptions they usually hide in.
func (r *ResumeRecord) SkillsText() string {
	parts := append([]string{}, r.Skills...)
	for _, exp := range r.Experience {
		if exp.Description != "" {
			parts = append(parts, exp.Description)
		}
	}
	return strings.Join(parts, " ")
}

// ExperienceText builds the work-history text view.
func (r *ResumeRecord) ExperienceText() string {
	var parts []string
	for _, exp := range r.Experience {
		item := strings.TrimSpace(strings.Join([]string{exp.Title, exp.Company, exp.Description}, " "))
		if item != "" {
			parts = append(parts, item)
		}
	}
	return strings.Join(parts, " ")
}

// PrivacySettings are the owner-controlled access rules stored next to the
// parsed content. ViewPermissions/DownloadPermissions are keyed by accessor
// class (for example "ai_service"), with an optional "default" entry.
type PrivacySettings struct {
	IsPublic            bool              `json:"is_public"`
	ShareWithCompanies  bool              `json:"share_with_companies"`
	AllowSearch         bool              `json:"allow_search"`
	AllowDownload       bool              `json:"allow_download"`
	ViewPermissions     map[string]string `json:"view_permissions,omitempty"`
	DownloadPermissions map[string]string `json:"download_permissions,omitempty"`
}

const (
	PermissionAllowed = "allowed"
	PermissionDenied  = "denied"
	PermissionPublic  = "public"

	AccessorClassAIService = "ai_service"
	AccessorClassDefault   = "default"
)

// AllowsView decides whether the given accessor class may read the parsed
// content. Explicit per-class entries win over the default entry, which wins
// over the coarse visibility flags.
func (p *PrivacySettings) AllowsView(accessorClass string) bool {
	if p == nil {
		return false
	}
	if p.ViewPermissions != nil {
		if v, ok := p.ViewPermissions[accessorClass]; ok {
			return v == PermissionAllowed
		}
		if v, ok := p.ViewPermissions[AccessorClassDefault]; ok {
			return v == PermissionPublic
		}
	}
	return p.IsPublic || p.ShareWithCompanies || p.AllowSearch
}

// AllowsDownload decides download rights for the accessor class.
func (p *PrivacySettings) AllowsDownload(accessorClass string) bool {
	if p == nil {
		return false
	}
	if p.DownloadPermissions != nil {
		if v, ok := p.DownloadPermissions[accessorClass]; ok {
			return v == PermissionAllowed
		}
		if v, ok := p.DownloadPermissions[AccessorClassDefault]; ok {
			return v == PermissionAllowed
		}
	}
	return p.AllowDownload
}
