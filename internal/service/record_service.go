package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/xiajason/jobfirst-future/internal/domain"
	"github.com/xiajason/jobfirst-future/internal/privacy"
)

// Data categories a cross-owner read exposes; the owner's grant must cover
// all of them.
var viewDataTypes = []string{
	domain.DataTypeSkills,
	domain.DataTypeExperience,
	domain.DataTypeEducation,
}

// RecordService assembles the per-request resume view out of the three stores
// and enforces the access rules on it.
type RecordService interface {
	// GetResumeRecord serves a view request: consent and permission checks,
	// reconciliation, anonymization by requester role, audit. Denials surface
	// as ErrNotFound so callers cannot tell which resumes exist.
	GetResumeRecord(ctx context.Context, principal domain.Principal, resumeID uuid.UUID) (*domain.ResumeRecord, error)
	// GetResumeDownload is the view path under the owner's download
	// permissions, audited as a download.
	GetResumeDownload(ctx context.Context, principal domain.Principal, resumeID uuid.UUID) (*domain.ResumeRecord, error)
	// GetMatchingRecord serves the matching pipeline: owner-only, unmasked,
	// gated by the owner's ai_service view permission. Not audited here (the
	// matching flow writes its own audit entry).
	GetMatchingRecord(ctx context.Context, principal domain.Principal, resumeID uuid.UUID) (*domain.ResumeRecord, error)
}

type recordService struct {
	metadataRepo domain.ResumeMetadataRepository
	documentRepo domain.DocumentRepository
	vectorRepo   domain.VectorRepository
	auditRepo    domain.AuditRepository
	consent      ConsentService
	vectorDim    int
}

func NewRecordService(
	metadataRepo domain.ResumeMetadataRepository,
	documentRepo domain.DocumentRepository,
	vectorRepo domain.VectorRepository,
	auditRepo domain.AuditRepository,
	consent ConsentService,
	vectorDim int,
) RecordService {
	return &recordService{
		metadataRepo: metadataRepo,
		documentRepo: documentRepo,
		vectorRepo:   vectorRepo,
		auditRepo:    auditRepo,
		consent:      consent,
		vectorDim:    vectorDim,
	}
}

func (s *recordService) GetResumeRecord(ctx context.Context, principal domain.Principal, resumeID uuid.UUID) (*domain.ResumeRecord, error) {
	return s.getRecord(ctx, principal, resumeID, domain.ActionView)
}

func (s *recordService) GetResumeDownload(ctx context.Context, principal domain.Principal, resumeID uuid.UUID) (*domain.ResumeRecord, error) {
	return s.getRecord(ctx, principal, resumeID, domain.ActionDownload)
}

func (s *recordService) getRecord(ctx context.Context, principal domain.Principal, resumeID uuid.UUID, action string) (*domain.ResumeRecord, error) {
	metadata, err := s.metadataRepo.GetMetadata(ctx, resumeID)
	if err != nil {
		return nil, err
	}

	isOwner := metadata.OwnerID == principal.UserID
	if !isOwner && !s.crossOwnerAllowed(ctx, metadata, principal, action) {
		// Nothing was returned, so nothing was anonymized.
		s.audit(ctx, metadata, principal, action, false, privacy.LevelNone)
		return nil, domain.ErrNotFound
	}

	record, err := s.reconcile(ctx, metadata)
	if err != nil {
		return nil, err
	}

	level := privacy.LevelForRole(principal.Role, metadata.OwnerID, principal.UserID)
	record = privacy.AnonymizeResume(record, level)

	s.audit(ctx, metadata, principal, action, true, level)
	if !isOwner {
		s.consent.RecordUsage(ctx, metadata.OwnerID, domain.ServiceTypeJobMatching, viewDataTypes)
	}
	return record, nil
}

func (s *recordService) GetMatchingRecord(ctx context.Context, principal domain.Principal, resumeID uuid.UUID) (*domain.ResumeRecord, error) {
	metadata, err := s.metadataRepo.GetMetadata(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	if metadata.OwnerID != principal.UserID {
		return nil, domain.ErrNotFound
	}
	if metadata.ParsingStatus != domain.ParsingCompleted {
		// An unparsed resume is indistinguishable from a missing one here.
		return nil, domain.ErrNotFound
	}
	settings, ok := s.privacySettings(ctx, metadata)
	if !ok || !settings.AllowsView(domain.AccessorClassAIService) {
		// The owner has not opened this resume to automated processing.
		return nil, domain.ErrNotFound
	}
	return s.reconcile(ctx, metadata)
}

// crossOwnerAllowed gates a non-owner read. The owner must hold an active
// grant covering the exposed data categories (super admins are exempt), and
// the owner's stored permissions for the accessor class must allow the action.
func (s *recordService) crossOwnerAllowed(ctx context.Context, metadata *domain.ResumeMetadata, principal domain.Principal, action string) bool {
	if principal.Role != domain.RoleSuperAdmin {
		decision, err := s.consent.CheckConsent(ctx, metadata.OwnerID, domain.ServiceTypeJobMatching, viewDataTypes)
		if err != nil || !decision.Granted {
			return false
		}
	}

	settings, ok := s.privacySettings(ctx, metadata)
	if !ok {
		return false
	}
	if action == domain.ActionDownload {
		return settings.AllowsDownload(accessorClass(principal.Role))
	}
	return settings.AllowsView(accessorClass(principal.Role))
}

// privacySettings loads the owner's stored access rules. Missing or
// unreadable settings deny.
func (s *recordService) privacySettings(ctx context.Context, metadata *domain.ResumeMetadata) (*domain.PrivacySettings, bool) {
	settings, err := s.documentRepo.GetPrivacySettings(ctx, metadata.ContentKey, metadata.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).
				Str("resume_id", metadata.ID.String()).
				Msg("privacy settings lookup failed, denying access")
		}
		return nil, false
	}
	return settings, true
}

func accessorClass(role string) string {
	switch role {
	case domain.RoleSuperAdmin, domain.RoleSystemAdmin:
		return "admin"
	default:
		return domain.AccessorClassDefault
	}
}

// reconcile fetches parsed content and vectors concurrently and validates the
// cross-store references. Any mismatch between what the relational row claims
// and what the document store holds is an integrity failure, not a not-found:
// serving a partial record here could leak another owner's data.
func (s *recordService) reconcile(ctx context.Context, metadata *domain.ResumeMetadata) (*domain.ResumeRecord, error) {
	var (
		parsed  *domain.ParsedResume
		vectors *domain.ResumeVectors
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		parsed, err = s.documentRepo.GetParsedResume(gctx, metadata.ContentKey, metadata.ID)
		if errors.Is(err, domain.ErrNotFound) && metadata.ParsingStatus == domain.ParsingCompleted {
			return fmt.Errorf("%w: metadata says parsed but document store has no content for resume %s",
				domain.ErrDataIntegrity, metadata.ID)
		}
		return err
	})
	g.Go(func() error {
		var err error
		vectors, err = s.vectorRepo.GetResumeVectors(gctx, metadata.ID)
		if errors.Is(err, domain.ErrNotFound) {
			// Vectors are derivable; their absence is not an integrity failure.
			vectors = nil
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if parsed.ResumeID != metadata.ID {
		return nil, fmt.Errorf("%w: document resume_id %s does not match metadata %s",
			domain.ErrDataIntegrity, parsed.ResumeID, metadata.ID)
	}
	if parsed.OwnerID != metadata.OwnerID {
		return nil, fmt.Errorf("%w: document owner %s does not match metadata owner %s",
			domain.ErrDataIntegrity, parsed.OwnerID, metadata.OwnerID)
	}
	if vectors != nil && !vectors.Complete(s.vectorDim) {
		return nil, fmt.Errorf("%w: stored vectors for resume %s have wrong dimensionality",
			domain.ErrDataIntegrity, metadata.ID)
	}

	return &domain.ResumeRecord{
		ID:                metadata.ID,
		OwnerID:           metadata.OwnerID,
		ParsingStatus:     metadata.ParsingStatus,
		PersonalInfo:      parsed.PersonalInfo,
		Experience:        parsed.Experience,
		Education:         parsed.Education,
		Skills:            parsed.Skills,
		PersonalityTraits: parsed.PersonalityTraits,
		Vectors:           vectors,
	}, nil
}

// audit appends a view entry. Append failures are logged, never surfaced: the
// read already happened or was already denied.
func (s *recordService) audit(ctx context.Context, metadata *domain.ResumeMetadata, principal domain.Principal, action string, granted bool, level privacy.Level) {
	if ctx.Err() != nil {
		return
	}
	entry := &domain.AuditEntry{
		OwnerID:      metadata.OwnerID,
		ActionType:   action,
		DataType:     domain.DataTypeResume,
		PrivacyLevel: string(level),
		Anonymized:   level != privacy.LevelNone,
		Granted:      granted,
		AccessorID:   principal.UserID,
		AccessorRole: principal.Role,
		Timestamp:    time.Now(),
		Details:      map[string]any{"resume_id": metadata.ID.String()},
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("resume_id", metadata.ID.String()).
			Str("accessor_id", principal.UserID.String()).
			Msg("failed to append audit entry")
	}
}
