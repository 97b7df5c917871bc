package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

func TestSkillsScore(t *testing.T) {
	tests := []struct {
		name     string
		resume   []string
		required []string
		expected float64
	}{
		{"TwoOfThree", []string{"Python", "Docker"}, []string{"Python", "Docker", "Kubernetes"}, 2.0 / 3.0},
		{"CaseInsensitive", []string{"python", "DOCKER"}, []string{"Python", "docker"}, 1},
		{"NoRequirements", []string{"Go"}, nil, 1},
		{"NoOverlap", []string{"Go"}, []string{"Rust"}, 0},
		{"EmptyResumeSkills", nil, []string{"Go"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SkillsScore(tt.resume, tt.required), 1e-9)
		})
	}
}

func TestExperienceScore(t *testing.T) {
	assert.InDelta(t, 1.0, ExperienceScore(10, 5), 1e-9)
	assert.InDelta(t, 0.5, ExperienceScore(2.5, 5), 1e-9)
	assert.InDelta(t, 1.0, ExperienceScore(0, 0), 1e-9)
	assert.InDelta(t, 0.0, ExperienceScore(0, 3), 1e-9)
}

func TestEducationScore(t *testing.T) {
	masters := []domain.Education{{Degree: "master"}}
	bachelors := []domain.Education{{Degree: "bachelor"}}

	assert.InDelta(t, 1.0, EducationScore(masters, "bachelor"), 1e-9)
	assert.InDelta(t, 0.75, EducationScore(bachelors, "master"), 1e-9)
	assert.InDelta(t, 1.0, EducationScore(nil, ""), 1e-9)
	assert.InDelta(t, 0.0, EducationScore(nil, "bachelor"), 1e-9)
	// Highest degree wins when several are listed.
	assert.InDelta(t, 1.0, EducationScore([]domain.Education{{Degree: "associate"}, {Degree: "doctorate"}}, "master"), 1e-9)
}

func TestCulturalScore(t *testing.T) {
	assert.InDelta(t, 0.5, CulturalScore(nil, []string{"teamwork"}), 1e-9)
	assert.InDelta(t, 0.5, CulturalScore([]string{"teamwork"}, nil), 1e-9)
	assert.InDelta(t, 0.5, CulturalScore([]string{"teamwork"}, []string{"teamwork", "ownership"}), 1e-9)
	assert.InDelta(t, 1.0, CulturalScore([]string{"Teamwork", "Ownership"}, []string{"teamwork", "ownership"}), 1e-9)
}

func TestSemanticScore(t *testing.T) {
	assert.InDelta(t, 1.0, SemanticScore(0), 1e-9)
	assert.InDelta(t, 0.3, SemanticScore(0.7), 1e-9)
	// Distances past 1 clamp to zero instead of going negative.
	assert.InDelta(t, 0.0, SemanticScore(1.6), 1e-9)
}

func TestTechnologyProfileScore(t *testing.T) {
	breakdown := domain.ScoreBreakdown{
		Semantic:   0.8,
		Skills:     0.9,
		Experience: 0.6,
		Education:  0.5,
		Cultural:   0.5,
	}
	score := OverallScore(breakdown, ProfileForIndustry("technology"))
	assert.InDelta(t, 0.77, score, 1e-9)
	assert.Equal(t, domain.TierGood, TierForScore(score))
}

func TestProfilesSumToOne(t *testing.T) {
	for _, industry := range []string{"technology", "finance", "marketing", "healthcare", "anything-else"} {
		assert.InDelta(t, 1.0, ProfileForIndustry(industry).sum(), 1e-9, industry)
	}
}

func TestOverallScoreBounds(t *testing.T) {
	breakdowns := []domain.ScoreBreakdown{
		{},
		{Semantic: 1, Skills: 1, Experience: 1, Education: 1, Cultural: 1},
		{Semantic: 0.1, Skills: 0.9, Experience: 0.3, Education: 0.7, Cultural: 0.5},
	}
	for _, b := range breakdowns {
		for industry := range industryProfiles {
			score := OverallScore(b, ProfileForIndustry(industry))
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestTierThresholds(t *testing.T) {
	tests := []struct {
		score float64
		tier  string
	}{
		{0.90, domain.TierExcellent},
		{0.85, domain.TierExcellent},
		{0.84, domain.TierGood},
		{0.70, domain.TierGood},
		{0.69, domain.TierFair},
		{0.55, domain.TierFair},
		{0.54, domain.TierPoor},
		{0.0, domain.TierPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tier, TierForScore(tt.score), "score %v", tt.score)
	}
}

func TestConfidencePenalizesVariance(t *testing.T) {
	even := Confidence(0.6, 0.6, 0.6, 0.6, 0.6)
	uneven := Confidence(1.0, 1.0, 0.5, 0.3, 0.2)
	assert.InDelta(t, 0.6, even, 1e-9)
	assert.Less(t, uneven, even)

	// Same mean, more spread, never higher confidence.
	tight := Confidence(0.5, 0.5, 0.5, 0.5, 0.5)
	spread := Confidence(0.9, 0.7, 0.5, 0.3, 0.1)
	assert.Less(t, spread, tight)
}

func TestConfidenceClamped(t *testing.T) {
	assert.GreaterOrEqual(t, Confidence(0, 1, 0, 1, 0), 0.0)
	assert.LessOrEqual(t, Confidence(1, 1, 1, 1, 1), 1.0)
}

func TestScoreJob(t *testing.T) {
	record := &domain.ResumeRecord{
		Skills: []string{"Go", "PostgreSQL", "Kubernetes"},
		Experience: []domain.WorkExperience{
			{Title: "Engineer", Years: 6},
		},
		Education:         []domain.Education{{Degree: "master"}},
		PersonalityTraits: []string{"ownership"},
	}
	job := &domain.JobRecord{
		ID:                 uuid.New(),
		Industry:           domain.IndustryTechnology,
		RequiredSkills:     []string{"Go", "PostgreSQL"},
		MinExperienceYears: 5,
		RequiredDegree:     "bachelor",
		CultureKeywords:    []string{"ownership", "speed"},
	}

	match := ScoreJob(record, job, 0.2, false)
	assert.Equal(t, job.ID, match.JobID)
	assert.InDelta(t, 0.8, match.Breakdown.Semantic, 1e-9)
	assert.InDelta(t, 1.0, match.Breakdown.Skills, 1e-9)
	assert.InDelta(t, 1.0, match.Breakdown.Experience, 1e-9)
	assert.InDelta(t, 1.0, match.Breakdown.Education, 1e-9)
	assert.InDelta(t, 0.5, match.Breakdown.Cultural, 1e-9)
	// technology profile: 0.8*0.30 + 1*0.40 + 1*0.20 + 1*0.10 = 0.94
	assert.InDelta(t, 0.94, match.Score, 1e-9)
	assert.Equal(t, domain.TierExcellent, match.Tier)
}

func TestScoreJobDegraded(t *testing.T) {
	record := &domain.ResumeRecord{
		Skills:     []string{"Go"},
		Experience: []domain.WorkExperience{{Years: 6}},
	}
	job := &domain.JobRecord{
		ID:                 uuid.New(),
		Industry:           domain.IndustryTechnology,
		RequiredSkills:     []string{"Go"},
		MinExperienceYears: 3,
	}

	normal := ScoreJob(record, job, 0.2, false)
	degraded := ScoreJob(record, job, 0, true)

	assert.Zero(t, degraded.Breakdown.Semantic)
	// Remaining weights are renormalized, so the degraded score stays in range.
	assert.GreaterOrEqual(t, degraded.Score, 0.0)
	assert.LessOrEqual(t, degraded.Score, 1.0)
	assert.Less(t, degraded.Confidence, normal.Confidence)
}
