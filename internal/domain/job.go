package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusActive = "active"
	JobStatusClosed = "closed"
)

// Industry keys with dedicated weight profiles. Anything else falls back to
// the default profile.
const (
	IndustryTechnology = "technology"
	IndustryFinance    = "finance"
	IndustryMarketing  = "marketing"
	IndustryHealthcare = "healthcare"
)

// Degree levels on an ordinal scale. Matching compares the candidate's highest
// level against the job's required level.
const (
	DegreeHighSchool = "high_school"
	DegreeTechnical  = "technical"
	DegreeAssociate  = "associate"
	DegreeBachelor   = "bachelor"
	DegreeMaster     = "master"
	DegreeDoctorate  = "doctorate"
	DegreePostdoc    = "postdoc"
)

var degreeLevels = map[string]int{
	DegreeHighSchool: 1,
	DegreeTechnical:  1,
	DegreeAssociate:  2,
	DegreeBachelor:   3,
	DegreeMaster:     4,
	DegreeDoctorate:  5,
	DegreePostdoc:    6,
}

// DegreeLevel maps a degree name to its ordinal rank, 0 if unknown.
func DegreeLevel(degree string) int {
	return degreeLevels[strings.ToLower(strings.TrimSpace(degree))]
}

// JobRecord is a posting as read from the relational store. Created and
// updated by the job-posting service; strictly read-only here.
type JobRecord struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	CompanyID          uuid.UUID `json:"company_id" db:"company_id"`
	Title              string    `json:"title" db:"title"`
	Description        string    `json:"description" db:"description"`
	Requirements       string    `json:"requirements" db:"requirements"`
	Industry           string    `json:"industry" db:"industry"`
	Location           string    `json:"location" db:"location"`
	SalaryMin          int       `json:"salary_min" db:"salary_min"`
	SalaryMax          int       `json:"salary_max" db:"salary_max"`
	ExperienceLevel    string    `json:"experience_level" db:"experience_level"`
	MinExperienceYears float64   `json:"min_experience_years" db:"min_experience_years"`
	RequiredDegree     string    `json:"required_degree" db:"required_degree"`
	RequiredSkills     []string  `json:"required_skills" db:"required_skills"`
	CultureKeywords    []string  `json:"culture_keywords" db:"culture_keywords"`
	Status             string    `json:"status" db:"status"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// JobVectors are the two stored embeddings for a posting.
type JobVectors struct {
	Description  []float32 `json:"description_vector"`
	Requirements []float32 `json:"requirements_vector"`
}

// MatchFilters are the caller-supplied hard constraints applied before any
// vector work. Zero values mean "no constraint".
type MatchFilters struct {
	Industry        string `json:"industry,omitempty"`
	Location        string `json:"location,omitempty"`
	SalaryMin       int    `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax       int    `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	ExperienceLevel string `json:"experience_level,omitempty"`
}

// Empty reports whether no constraint is set.
func (f *MatchFilters) Empty() bool {
	return f == nil || *f == MatchFilters{}
}
