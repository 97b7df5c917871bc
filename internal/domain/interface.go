package domain

import (
	"context"

	"github.com/google/uuid"
)

// ResumeMetadataRepository reads resume ownership and lifecycle rows from the
// relational store.
type ResumeMetadataRepository interface {
	GetMetadata(ctx context.Context, resumeID uuid.UUID) (*ResumeMetadata, error)
}

// JobRepository reads postings from the relational store. All methods only
// ever see active jobs unless stated otherwise.
type JobRepository interface {
	GetActiveJobIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*JobRecord, error)
	FilterActiveJobs(ctx context.Context, filters *MatchFilters, limit int) ([]uuid.UUID, error)
}

// DocumentRepository is the per-user document store holding parsed resume
// sections and the owner's privacy settings.
type DocumentRepository interface {
	GetParsedResume(ctx context.Context, contentKey string, resumeID uuid.UUID) (*ParsedResume, error)
	GetPrivacySettings(ctx context.Context, contentKey string, resumeID uuid.UUID) (*PrivacySettings, error)
}

// JobDistance is one nearest-neighbor hit: cosine distances of the job's two
// vectors against the resume's content and skills vectors.
type JobDistance struct {
	JobID           uuid.UUID
	ContentDistance float64
	SkillsDistance  float64
}

// VectorRepository is the vector store: stored embeddings plus approximate
// nearest-neighbor search over job vectors.
type VectorRepository interface {
	GetResumeVectors(ctx context.Context, resumeID uuid.UUID) (*ResumeVectors, error)
	StoreResumeVectors(ctx context.Context, resumeID, ownerID uuid.UUID, vectors *ResumeVectors) error
	UpsertJobVectors(ctx context.Context, jobID uuid.UUID, vectors *JobVectors) error
	SearchJobs(ctx context.Context, content, skills []float32, candidates []uuid.UUID, k int) ([]JobDistance, error)
}

// ConsentRepository persists consent grants and their usage counters.
type ConsentRepository interface {
	GetActiveGrant(ctx context.Context, ownerID uuid.UUID, serviceType string) (*ConsentGrant, error)
	ListGrants(ctx context.Context, ownerID uuid.UUID) ([]*ConsentGrant, error)
	IncrementUsage(ctx context.Context, ownerID uuid.UUID, serviceType string) error
}

// AuditRepository appends privacy audit entries and serves usage history.
type AuditRepository interface {
	Append(ctx context.Context, entry *AuditEntry) error
	GetUsageHistory(ctx context.Context, ownerID uuid.UUID, limit int) ([]*AuditEntry, error)
	LogMatchingAccess(ctx context.Context, ownerID, resumeID uuid.UUID, matchCount int) error
}

// UsageStatsRepository keeps fast per-owner usage counters, keyed by service
// and data type. Increments are idempotent per (owner, service) request key.
type UsageStatsRepository interface {
	IncrementUsage(ctx context.Context, ownerID uuid.UUID, serviceType, dataType string) error
	GetUsage(ctx context.Context, ownerID uuid.UUID) (map[string]int64, error)
}
