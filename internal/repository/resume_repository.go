package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

type postgresResumeRepository struct {
	db *sql.DB
}

func NewResumeMetadataRepository(db *sql.DB) domain.ResumeMetadataRepository {
	return &postgresResumeRepository{db: db}
}

func (r *postgresResumeRepository) GetMetadata(ctx context.Context, resumeID uuid.UUID) (*domain.ResumeMetadata, error) {
	meta := &domain.ResumeMetadata{}
	query := `
        SELECT id, user_id, title, parsing_status, content_key, created_at, updated_at
        FROM resume_metadata WHERE id = $1`

	err := withRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, query, resumeID).Scan(
			&meta.ID,
			&meta.OwnerID,
			&meta.Title,
			&meta.ParsingStatus,
			&meta.ContentKey,
			&meta.CreatedAt,
			&meta.UpdatedAt,
		)
	})

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("resume_id", resumeID.String()).Msg("failed to fetch resume metadata")
		return nil, err
	}

	return meta, nil
}
