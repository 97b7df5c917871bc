package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

type postgresConsentRepository struct {
	db *sql.DB
}

func NewConsentRepository(db *sql.DB) domain.ConsentRepository {
	return &postgresConsentRepository{db: db}
}

// GetActiveGrant returns the newest active, non-expired grant for the
// (owner, service) pair, or ErrNotFound.
func (r *postgresConsentRepository) GetActiveGrant(ctx context.Context, ownerID uuid.UUID, serviceType string) (*domain.ConsentGrant, error) {
	grant := &domain.ConsentGrant{}
	query := `
        SELECT id, user_id, service_type, data_types, consent_level,
               granted_at, expires_at, usage_count, status
        FROM consent_records
        WHERE user_id = $1 AND service_type = $2
          AND status = 'active' AND expires_at > NOW()
        ORDER BY granted_at DESC
        LIMIT 1`

	err := withRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, query, ownerID, serviceType).Scan(
			&grant.ID,
			&grant.OwnerID,
			&grant.ServiceType,
			pq.Array(&grant.DataTypes),
			&grant.Level,
			&grant.GrantedAt,
			&grant.ExpiresAt,
			&grant.UsageCount,
			&grant.Status,
		)
	})

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).
			Str("user_id", ownerID.String()).
			Str("service_type", serviceType).
			Msg("failed to fetch consent grant")
		return nil, err
	}

	return grant, nil
}

func (r *postgresConsentRepository) ListGrants(ctx context.Context, ownerID uuid.UUID) ([]*domain.ConsentGrant, error) {
	query := `
        SELECT id, user_id, service_type, data_types, consent_level,
               granted_at, expires_at, usage_count, status
        FROM consent_records
        WHERE user_id = $1
        ORDER BY granted_at DESC`

	var grants []*domain.ConsentGrant
	err := withRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, query, ownerID)
		if err != nil {
			return err
		}
		defer rows.Close()

		grants = grants[:0]
		for rows.Next() {
			grant := &domain.ConsentGrant{}
			if err := rows.Scan(
				&grant.ID,
				&grant.OwnerID,
				&grant.ServiceType,
				pq.Array(&grant.DataTypes),
				&grant.Level,
				&grant.GrantedAt,
				&grant.ExpiresAt,
				&grant.UsageCount,
				&grant.Status,
			); err != nil {
				return err
			}
			grants = append(grants, grant)
		}
		return rows.Err()
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", ownerID.String()).Msg("failed to list consent grants")
		return nil, err
	}

	return grants, nil
}

// IncrementUsage bumps the grant's usage counter. Keyed by owner+service and
// applied as a single UPDATE, so re-running for the same request updates the
// same row instead of creating records.
func (r *postgresConsentRepository) IncrementUsage(ctx context.Context, ownerID uuid.UUID, serviceType string) error {
	query := `
        UPDATE consent_records
        SET usage_count = usage_count + 1, last_used_at = NOW()
        WHERE user_id = $1 AND service_type = $2 AND status = 'active'`

	err := withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, query, ownerID, serviceType)
		return err
	})
	if err != nil {
		log.Error().Err(err).
			Str("user_id", ownerID.String()).
			Str("service_type", serviceType).
			Msg("failed to update consent usage")
	}
	return err
}
