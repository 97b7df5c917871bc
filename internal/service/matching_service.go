package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xiajason/jobfirst-future/internal/domain"
	"github.com/xiajason/jobfirst-future/internal/domain/dto"
	"github.com/xiajason/jobfirst-future/internal/privacy"
)

// Data types the matching pipeline reads; the caller's grant must cover all
// of them.
var matchingDataTypes = []string{
	domain.DataTypeResume,
	domain.DataTypeSkills,
	domain.DataTypeExperience,
	domain.DataTypeEducation,
}

// MatchingService ranks active jobs against one of the caller's resumes.
type MatchingService interface {
	FindMatches(ctx context.Context, principal domain.Principal, req *dto.MatchRequest) (*domain.MatchResponse, error)
}

type matchingService struct {
	records       RecordService
	consent       ConsentService
	jobRepo       domain.JobRepository
	vectorRepo    domain.VectorRepository
	embedder      EmbeddingProvider
	auditRepo     domain.AuditRepository
	vectorDim     int
	defaultLimit  int
	maxCandidates int
}

func NewMatchingService(
	records RecordService,
	consent ConsentService,
	jobRepo domain.JobRepository,
	vectorRepo domain.VectorRepository,
	embedder EmbeddingProvider,
	auditRepo domain.AuditRepository,
	vectorDim, defaultLimit, maxCandidates int,
) MatchingService {
	return &matchingService{
		records:       records,
		consent:       consent,
		jobRepo:       jobRepo,
		vectorRepo:    vectorRepo,
		embedder:      embedder,
		auditRepo:     auditRepo,
		vectorDim:     vectorDim,
		defaultLimit:  defaultLimit,
		maxCandidates: maxCandidates,
	}
}

// FindMatches runs the full pipeline: consent, record reconciliation, hard
// filters, vector recall, multi-dimensional scoring, tiering, ranking and
// recommendations. Consent denial is a result, not an error.
func (s *matchingService) FindMatches(ctx context.Context, principal domain.Principal, req *dto.MatchRequest) (*domain.MatchResponse, error) {
	req.ApplyDefaults(s.defaultLimit)
	if err := domain.ValidateStruct(req); err != nil {
		return nil, err
	}

	decision, err := s.consent.CheckConsent(ctx, principal.UserID, domain.ServiceTypeJobMatching, matchingDataTypes)
	if err != nil {
		return nil, err
	}
	if !decision.Granted {
		s.auditMatch(ctx, principal, req.ResumeID, 0, false)
		return &domain.MatchResponse{
			Matches:         []domain.MatchResult{},
			Recommendations: []domain.Recommendation{},
			Metadata:        domain.MatchMetadata{ProcessedAt: time.Now()},
			Denied:          true,
			Reason:          decision.Reason,
		}, nil
	}

	record, err := s.records.GetMatchingRecord(ctx, principal, req.ResumeID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.filterCandidates(ctx, req.Filters)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		s.finish(ctx, principal, record, 0)
		return &domain.MatchResponse{
			Matches:         []domain.MatchResult{},
			Recommendations: []domain.Recommendation{},
			Metadata:        domain.MatchMetadata{ProcessedAt: time.Now()},
		}, nil
	}

	degraded, err := s.ensureVectors(ctx, record)
	if err != nil {
		return nil, err
	}

	overFetch := 2 * req.Limit
	var hits []domain.JobDistance
	if degraded {
		// No usable vectors: score the filtered set directly, capped the same
		// way the vector recall would have capped it.
		if len(candidates) > overFetch {
			candidates = candidates[:overFetch]
		}
		for _, id := range candidates {
			hits = append(hits, domain.JobDistance{JobID: id})
		}
	} else {
		hits, err = s.vectorRepo.SearchJobs(ctx, record.Vectors.Content, record.Vectors.Skills, candidates, overFetch)
		if err != nil {
			return nil, err
		}
	}

	matches, err := s.scoreCandidates(ctx, record, hits, degraded)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > req.Limit {
		matches = matches[:req.Limit]
	}

	s.finish(ctx, principal, record, len(matches))

	return &domain.MatchResponse{
		Matches:         matches,
		Recommendations: buildRecommendations(record, matches),
		Metadata: domain.MatchMetadata{
			TotalCandidates: len(candidates),
			VectorMatches:   len(hits),
			FinalResults:    len(matches),
			Degraded:        degraded,
			ProcessedAt:     time.Now(),
		},
	}, nil
}

func (s *matchingService) filterCandidates(ctx context.Context, filters *domain.MatchFilters) ([]uuid.UUID, error) {
	if filters.Empty() {
		return s.jobRepo.GetActiveJobIDs(ctx, s.maxCandidates)
	}
	return s.jobRepo.FilterActiveJobs(ctx, filters, s.maxCandidates)
}

// ensureVectors derives and persists the resume's vectors when the store has
// none. A failed embedding model degrades the pipeline instead of failing the
// request.
func (s *matchingService) ensureVectors(ctx context.Context, record *domain.ResumeRecord) (degraded bool, err error) {
	if record.Vectors.Complete(s.vectorDim) {
		return false, nil
	}

	contentText := record.ContentText()
	skillsText := record.SkillsText()
	if strings.TrimSpace(contentText) == "" || strings.TrimSpace(skillsText) == "" {
		return false, fmt.Errorf("%w: resume has no text to embed", domain.ErrInvalidResumeData)
	}

	vectors := &domain.ResumeVectors{}
	for _, part := range []struct {
		text string
		dst  *[]float32
	}{
		{contentText, &vectors.Content},
		{skillsText, &vectors.Skills},
		{record.ExperienceText(), &vectors.Experience},
	} {
		v, embedErr := s.embedder.Embed(ctx, part.text)
		if embedErr != nil {
			if errors.Is(embedErr, domain.ErrModelUnavailable) {
				log.Warn().Err(embedErr).
					Str("resume_id", record.ID.String()).
					Msg("embedding unavailable, degrading to non-semantic scoring")
				return true, nil
			}
			return false, embedErr
		}
		*part.dst = v
	}

	if err := s.vectorRepo.StoreResumeVectors(ctx, record.ID, record.OwnerID, vectors); err != nil {
		return false, err
	}
	record.Vectors = vectors
	return false, nil
}

func (s *matchingService) scoreCandidates(ctx context.Context, record *domain.ResumeRecord, hits []domain.JobDistance, degraded bool) ([]domain.MatchResult, error) {
	matches := make([]domain.MatchResult, 0, len(hits))
	for _, hit := range hits {
		job, err := s.jobRepo.GetJob(ctx, hit.JobID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Closed or deleted between recall and scoring.
				continue
			}
			// Never return a quietly thinned ranking on a store failure.
			return nil, fmt.Errorf("job fetch during scoring: %w", err)
		}

		match := ScoreJob(record, job, hit.ContentDistance, degraded)
		if match.Score < minScoreFloor {
			continue
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// finish writes the per-request audit trail and bumps usage counters. Skipped
// entirely on cancellation so an aborted request leaves no partial audit.
func (s *matchingService) finish(ctx context.Context, principal domain.Principal, record *domain.ResumeRecord, matchCount int) {
	if ctx.Err() != nil {
		return
	}
	s.auditMatch(ctx, principal, record.ID, matchCount, true)
	if err := s.auditRepo.LogMatchingAccess(ctx, record.OwnerID, record.ID, matchCount); err != nil {
		log.Error().Err(err).Str("resume_id", record.ID.String()).Msg("failed to log matching access")
	}
	s.consent.RecordUsage(ctx, principal.UserID, domain.ServiceTypeJobMatching, matchingDataTypes)
}

func (s *matchingService) auditMatch(ctx context.Context, principal domain.Principal, resumeID uuid.UUID, matchCount int, granted bool) {
	if ctx.Err() != nil {
		return
	}
	entry := &domain.AuditEntry{
		OwnerID:      principal.UserID,
		ActionType:   domain.ActionMatch,
		DataType:     domain.DataTypeResume,
		ServiceType:  domain.ServiceTypeJobMatching,
		PrivacyLevel: string(privacy.LevelNone),
		Granted:      granted,
		AccessorID:   principal.UserID,
		AccessorRole: principal.Role,
		Timestamp:    time.Now(),
		Details: map[string]any{
			"resume_id":   resumeID.String(),
			"match_count": matchCount,
		},
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		log.Error().Err(err).Str("resume_id", resumeID.String()).Msg("failed to append match audit entry")
	}
}

// buildRecommendations derives follow-up advice from the ranked matches.
// Purely informational; never fails the request.
func buildRecommendations(record *domain.ResumeRecord, matches []domain.MatchResult) []domain.Recommendation {
	recommendations := []domain.Recommendation{}

	var excellent []uuid.UUID
	fairCount := 0
	fairSkillGap := map[string]struct{}{}
	have := make(map[string]struct{}, len(record.Skills))
	for _, skill := range record.Skills {
		have[strings.ToLower(strings.TrimSpace(skill))] = struct{}{}
	}

	for _, match := range matches {
		switch match.Tier {
		case domain.TierExcellent:
			if len(excellent) < 3 {
				excellent = append(excellent, match.JobID)
			}
		case domain.TierFair:
			fairCount++
			if match.Job != nil {
				for _, skill := range match.Job.RequiredSkills {
					if _, ok := have[strings.ToLower(strings.TrimSpace(skill))]; !ok {
						fairSkillGap[skill] = struct{}{}
					}
				}
			}
		}
	}

	if len(excellent) > 0 {
		recommendations = append(recommendations, domain.Recommendation{
			Type:     domain.RecommendationApply,
			Priority: "high",
			Title:    "Apply to your strongest matches now",
			Content:  "These positions closely match your profile. Early applications get more attention.",
			JobIDs:   excellent,
		})
	}

	if fairCount > 0 && fairCount*2 >= len(matches) && len(fairSkillGap) > 0 {
		gaps := make([]string, 0, len(fairSkillGap))
		for skill := range fairSkillGap {
			gaps = append(gaps, skill)
		}
		sort.Strings(gaps)
		recommendations = append(recommendations, domain.Recommendation{
			Type:        domain.RecommendationSkillGap,
			Priority:    "medium",
			Title:       "Close the skill gaps holding your matches back",
			Content:     "Most of your matches are only fair. Picking up these skills would lift them.",
			Suggestions: gaps,
		})
	}

	var missing []string
	if strings.TrimSpace(record.PersonalInfo.Summary) == "" {
		missing = append(missing, "Add a short professional summary")
	}
	if len(record.Experience) == 0 {
		missing = append(missing, "List your work experience with durations")
	}
	if len(record.Skills) == 0 {
		missing = append(missing, "List your key skills")
	}
	if len(missing) > 0 {
		recommendations = append(recommendations, domain.Recommendation{
			Type:        domain.RecommendationCompleteness,
			Priority:    "low",
			Title:       "Complete your resume for better matches",
			Content:     "Matching quality improves with a fuller profile.",
			Suggestions: missing,
		})
	}

	return recommendations
}
