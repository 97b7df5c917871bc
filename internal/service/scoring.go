package service

import (
	"math"
	"strings"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

// WeightProfile distributes the overall score across the five dimensions.
// Profiles must sum to 1.0; score() renormalizes if one does not.
type WeightProfile struct {
	Semantic   float64
	Skills     float64
	Experience float64
	Education  float64
	Cultural   float64
}

func (w WeightProfile) sum() float64 {
	return w.Semantic + w.Skills + w.Experience + w.Education + w.Cultural
}

var defaultProfile = WeightProfile{
	Semantic:   0.35,
	Skills:     0.30,
	Experience: 0.20,
	Education:  0.10,
	Cultural:   0.05,
}

// Per-industry profiles. Industries without a profile use the default.
var industryProfiles = map[string]WeightProfile{
	domain.IndustryTechnology: {Skills: 0.40, Semantic: 0.30, Experience: 0.20, Education: 0.10},
	domain.IndustryFinance:    {Semantic: 0.40, Experience: 0.30, Skills: 0.20, Education: 0.10},
	domain.IndustryMarketing:  {Semantic: 0.35, Cultural: 0.25, Skills: 0.25, Experience: 0.15},
	domain.IndustryHealthcare: {Education: 0.35, Experience: 0.30, Semantic: 0.25, Skills: 0.10},
}

// ProfileForIndustry picks the weight profile for a job's industry.
func ProfileForIndustry(industry string) WeightProfile {
	if profile, ok := industryProfiles[strings.ToLower(strings.TrimSpace(industry))]; ok {
		return profile
	}
	return defaultProfile
}

// Tier thresholds on the overall score.
const (
	tierExcellentMin = 0.85
	tierGoodMin      = 0.70
	tierFairMin      = 0.55

	// Candidates scoring below the floor are dropped before ranking.
	minScoreFloor = 0.30
)

// TierForScore maps an overall score to its match tier.
func TierForScore(score float64) string {
	switch {
	case score >= tierExcellentMin:
		return domain.TierExcellent
	case score >= tierGoodMin:
		return domain.TierGood
	case score >= tierFairMin:
		return domain.TierFair
	default:
		return domain.TierPoor
	}
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// SemanticScore converts a cosine distance in [0,2] to a similarity in [0,1].
func SemanticScore(contentDistance float64) float64 {
	return clamp01(1 - contentDistance)
}

// SkillsScore is the fraction of the job's required skills the candidate
// covers, compared case-insensitively. A job with no requirements scores 1.
func SkillsScore(resumeSkills, requiredSkills []string) float64 {
	if len(requiredSkills) == 0 {
		return 1
	}
	have := make(map[string]struct{}, len(resumeSkills))
	for _, s := range resumeSkills {
		have[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	matched := 0
	for _, s := range requiredSkills {
		if _, ok := have[strings.ToLower(strings.TrimSpace(s))]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(requiredSkills))
}

// ExperienceScore is candidate years over required years, capped at 1.
func ExperienceScore(totalYears, requiredYears float64) float64 {
	if requiredYears <= 0 {
		return 1
	}
	return math.Min(1, totalYears/requiredYears)
}

// EducationScore compares the candidate's highest degree against the job's
// required degree on the ordinal scale, capped at 1.
func EducationScore(education []domain.Education, requiredDegree string) float64 {
	required := domain.DegreeLevel(requiredDegree)
	if required == 0 {
		return 1
	}
	highest := 0
	for _, edu := range education {
		if level := domain.DegreeLevel(edu.Degree); level > highest {
			highest = level
		}
	}
	return math.Min(1, float64(highest)/float64(required))
}

// CulturalScore is the fraction of the job's culture keywords the candidate's
// declared traits cover. Either side empty means unknown, scored neutral.
func CulturalScore(traits, cultureKeywords []string) float64 {
	if len(traits) == 0 || len(cultureKeywords) == 0 {
		return 0.5
	}
	have := make(map[string]struct{}, len(traits))
	for _, t := range traits {
		have[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	matched := 0
	for _, k := range cultureKeywords {
		if _, ok := have[strings.ToLower(strings.TrimSpace(k))]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(cultureKeywords))
}

// OverallScore is the profile-weighted sum of the breakdown, clamped to [0,1].
func OverallScore(breakdown domain.ScoreBreakdown, profile WeightProfile) float64 {
	score := breakdown.Semantic*profile.Semantic +
		breakdown.Skills*profile.Skills +
		breakdown.Experience*profile.Experience +
		breakdown.Education*profile.Education +
		breakdown.Cultural*profile.Cultural
	if sum := profile.sum(); sum > 0 && math.Abs(sum-1) > 1e-9 {
		score /= sum
	}
	return clamp01(score)
}

// Confidence is mean minus population variance of the sub-scores, clamped to
// [0,1]. High even scores are trustworthy; one inflated dimension is not.
func Confidence(scores ...float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var mean float64
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	var variance float64
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(scores))

	return clamp01(mean - variance)
}

const degradedConfidencePenalty = 0.2

// ScoreJob computes the full breakdown, overall score, confidence and tier for
// one candidate. A degraded pipeline scores without the semantic dimension:
// its weight is redistributed across the rest and confidence takes a fixed
// penalty on top of being computed over four dimensions only.
func ScoreJob(record *domain.ResumeRecord, job *domain.JobRecord, contentDistance float64, degraded bool) domain.MatchResult {
	breakdown := domain.ScoreBreakdown{
		Skills:     SkillsScore(record.Skills, job.RequiredSkills),
		Experience: ExperienceScore(record.TotalExperienceYears(), job.MinExperienceYears),
		Education:  EducationScore(record.Education, job.RequiredDegree),
		Cultural:   CulturalScore(record.PersonalityTraits, job.CultureKeywords),
	}

	profile := ProfileForIndustry(job.Industry)
	var confidence float64
	if degraded {
		profile.Semantic = 0
		confidence = clamp01(Confidence(breakdown.Skills, breakdown.Experience, breakdown.Education, breakdown.Cultural) - degradedConfidencePenalty)
	} else {
		breakdown.Semantic = SemanticScore(contentDistance)
		confidence = Confidence(breakdown.Semantic, breakdown.Skills, breakdown.Experience, breakdown.Education, breakdown.Cultural)
	}
	score := OverallScore(breakdown, profile)

	return domain.MatchResult{
		JobID:      job.ID,
		Job:        job,
		Score:      score,
		Confidence: confidence,
		Breakdown:  breakdown,
		Tier:       TierForScore(score),
	}
}
