package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xiajason/jobfirst-future/internal/domain"
	"github.com/xiajason/jobfirst-future/internal/domain/dto"
)

// ConsentService gates every read of a user's personal data. Any doubt about
// a grant resolves to denial.
type ConsentService interface {
	CheckConsent(ctx context.Context, ownerID uuid.UUID, serviceType string, dataTypes []string) (*domain.ConsentDecision, error)
	RecordUsage(ctx context.Context, ownerID uuid.UUID, serviceType string, dataTypes []string)
	GetConsentStatus(ctx context.Context, ownerID uuid.UUID) (*dto.ConsentStatusResponse, error)
	GetUsageHistory(ctx context.Context, ownerID uuid.UUID, limit int) (*dto.UsageHistoryResponse, error)
}

type consentService struct {
	consentRepo domain.ConsentRepository
	auditRepo   domain.AuditRepository
	usageRepo   domain.UsageStatsRepository
}

func NewConsentService(consentRepo domain.ConsentRepository, auditRepo domain.AuditRepository, usageRepo domain.UsageStatsRepository) ConsentService {
	return &consentService{
		consentRepo: consentRepo,
		auditRepo:   auditRepo,
		usageRepo:   usageRepo,
	}
}

// CheckConsent verifies that an active, unexpired grant for the service type
// covers every requested data type. A missing or expired grant denies with
// no_consent; a grant that covers some but not all requested types denies
// with scope_exceeded and names the first uncovered type. Store errors also
// deny rather than propagate a maybe.
func (s *consentService) CheckConsent(ctx context.Context, ownerID uuid.UUID, serviceType string, dataTypes []string) (*domain.ConsentDecision, error) {
	grant, err := s.consentRepo.GetActiveGrant(ctx, ownerID, serviceType)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).
				Str("user_id", ownerID.String()).
				Str("service_type", serviceType).
				Msg("consent lookup failed, denying")
		}
		return &domain.ConsentDecision{Granted: false, Reason: domain.ReasonNoConsent}, nil
	}

	if !grant.Active(time.Now()) {
		return &domain.ConsentDecision{Granted: false, Reason: domain.ReasonNoConsent}, nil
	}

	for _, dataType := range dataTypes {
		if !grant.Covers(dataType) {
			return &domain.ConsentDecision{
				Granted:       false,
				Reason:        domain.ReasonScopeExceeded,
				OffendingType: dataType,
			}, nil
		}
	}

	return &domain.ConsentDecision{
		Granted:      true,
		Level:        grant.Level,
		AllowedTypes: grant.DataTypes,
		ExpiresAt:    grant.ExpiresAt,
		UsageCount:   grant.UsageCount,
	}, nil
}

// RecordUsage bumps the grant's usage counter and the per-data-type stats.
// Counter failures are logged and swallowed: usage accounting never blocks or
// fails a data access that consent already approved.
func (s *consentService) RecordUsage(ctx context.Context, ownerID uuid.UUID, serviceType string, dataTypes []string) {
	if err := s.consentRepo.IncrementUsage(ctx, ownerID, serviceType); err != nil {
		log.Warn().Err(err).
			Str("user_id", ownerID.String()).
			Str("service_type", serviceType).
			Msg("failed to increment consent usage count")
	}

	for _, dataType := range dataTypes {
		if err := s.usageRepo.IncrementUsage(ctx, ownerID, serviceType, dataType); err != nil {
			log.Warn().Err(err).
				Str("user_id", ownerID.String()).
				Str("data_type", dataType).
				Msg("failed to increment usage stats")
		}
	}
}

func (s *consentService) GetConsentStatus(ctx context.Context, ownerID uuid.UUID) (*dto.ConsentStatusResponse, error) {
	grants, err := s.consentRepo.ListGrants(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if grants == nil {
		grants = []*domain.ConsentGrant{}
	}

	// Usage counters are supplementary; a failed lookup degrades to an empty
	// map instead of failing the status read.
	stats, err := s.usageRepo.GetUsage(ctx, ownerID)
	if err != nil {
		log.Warn().Err(err).
			Str("user_id", ownerID.String()).
			Msg("usage stats lookup failed")
		stats = nil
	}
	if stats == nil {
		stats = map[string]int64{}
	}

	return &dto.ConsentStatusResponse{Consents: grants, UsageStats: stats}, nil
}

func (s *consentService) GetUsageHistory(ctx context.Context, ownerID uuid.UUID, limit int) (*dto.UsageHistoryResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	history, err := s.auditRepo.GetUsageHistory(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []*domain.AuditEntry{}
	}
	return &dto.UsageHistoryResponse{History: history}, nil
}
