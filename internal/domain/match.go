package domain

import (
	"time"

	"github.com/google/uuid"
)

// Match tiers derived from the overall score.
const (
	TierExcellent = "excellent"
	TierGood      = "good"
	TierFair      = "fair"
	TierPoor      = "poor"
)

// ScoreBreakdown carries the five independent sub-scores, each in [0,1].
type ScoreBreakdown struct {
	Semantic   float64 `json:"semantic_similarity"`
	Skills     float64 `json:"skills_match"`
	Experience float64 `json:"experience_match"`
	Education  float64 `json:"education_match"`
	Cultural   float64 `json:"cultural_fit"`
}

// MatchResult scores one job against the resume. Transient: recomputed per
// request, never cached.
type MatchResult struct {
	JobID      uuid.UUID      `json:"job_id"`
	Job        *JobRecord     `json:"job_info,omitempty"`
	Score      float64        `json:"overall_score"`
	Confidence float64        `json:"confidence"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
	Tier       string         `json:"match_level"`
}

// Recommendation types.
const (
	RecommendationApply        = "application_advice"
	RecommendationSkillGap     = "skill_improvement"
	RecommendationCompleteness = "resume_optimization"
)

type Recommendation struct {
	Type        string      `json:"type"`
	Priority    string      `json:"priority"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	JobIDs      []uuid.UUID `json:"matches,omitempty"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

// MatchMetadata summarizes pipeline attrition for one request.
type MatchMetadata struct {
	TotalCandidates int       `json:"total_candidates"`
	VectorMatches   int       `json:"vector_matches"`
	FinalResults    int       `json:"final_results"`
	Degraded        bool      `json:"degraded,omitempty"`
	ProcessedAt     time.Time `json:"processing_time"`
}

// MatchResponse is the full result set handed back to the caller. Denied is
// set when consent or permission checks failed; the matches list is then
// empty and Reason carries a non-identifying code.
type MatchResponse struct {
	Matches         []MatchResult    `json:"matches"`
	Recommendations []Recommendation `json:"recommendations"`
	Metadata        MatchMetadata    `json:"metadata"`
	Denied          bool             `json:"denied,omitempty"`
	Reason          string           `json:"reason,omitempty"`
}
