package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

// IndexService keeps the vector store's job side in sync with the relational
// job set. The posting service owns job rows; this service only derives and
// upserts their embeddings.
type IndexService interface {
	RefreshJobIndex(ctx context.Context) error
	Run(ctx context.Context, interval time.Duration)
}

type indexService struct {
	jobRepo    domain.JobRepository
	vectorRepo domain.VectorRepository
	embedder   EmbeddingProvider
	batchSize  int
}

func NewIndexService(jobRepo domain.JobRepository, vectorRepo domain.VectorRepository, embedder EmbeddingProvider, batchSize int) IndexService {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &indexService{
		jobRepo:    jobRepo,
		vectorRepo: vectorRepo,
		embedder:   embedder,
		batchSize:  batchSize,
	}
}

// RefreshJobIndex embeds every active job's description and requirements and
// upserts them. Upserts are idempotent, so a refresh over unchanged jobs is a
// no-op apart from the embedding cost.
func (s *indexService) RefreshJobIndex(ctx context.Context) error {
	ids, err := s.jobRepo.GetActiveJobIDs(ctx, s.batchSize)
	if err != nil {
		return err
	}

	indexed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		job, err := s.jobRepo.GetJob(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			log.Error().Err(err).Str("job_id", id.String()).Msg("job fetch failed during index refresh")
			continue
		}

		description, err := s.embedder.Embed(ctx, job.Title+" "+job.Description)
		if err != nil {
			return err
		}
		requirements, err := s.embedder.Embed(ctx, job.Requirements)
		if err != nil {
			return err
		}

		vectors := &domain.JobVectors{Description: description, Requirements: requirements}
		if err := s.vectorRepo.UpsertJobVectors(ctx, job.ID, vectors); err != nil {
			log.Error().Err(err).Str("job_id", job.ID.String()).Msg("job vector upsert failed")
			continue
		}
		indexed++
	}

	log.Info().Int("jobs", indexed).Msg("job vector index refreshed")
	return nil
}

// Run refreshes the index on the given interval until the context ends.
func (s *indexService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RefreshJobIndex(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("periodic job index refresh failed")
			}
		}
	}
}
