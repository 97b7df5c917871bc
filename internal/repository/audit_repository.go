package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

type postgresAuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) domain.AuditRepository {
	return &postgresAuditRepository{db: db}
}

// Append writes one immutable audit row. There is deliberately no update or
// delete path in this repository.
func (r *postgresAuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
        INSERT INTO privacy_audit_log (
            user_id, action_type, data_type, service_type, privacy_level,
            anonymized, granted, accessed_by_user_id, accessed_by_role, timestamp, details
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var details []byte
	if entry.Details != nil {
		var err error
		if details, err = json.Marshal(entry.Details); err != nil {
			return err
		}
	}

	err := withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, query,
			entry.OwnerID,
			entry.ActionType,
			entry.DataType,
			entry.ServiceType,
			entry.PrivacyLevel,
			entry.Anonymized,
			entry.Granted,
			entry.AccessorID,
			entry.AccessorRole,
			entry.Timestamp,
			details,
		)
		return err
	})
	if err != nil {
		log.Error().Err(err).
			Str("user_id", entry.OwnerID.String()).
			Str("action_type", entry.ActionType).
			Msg("failed to append audit entry")
	}
	return err
}

func (r *postgresAuditRepository) GetUsageHistory(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.AuditEntry, error) {
	query := `
        SELECT id, user_id, action_type, data_type, service_type, privacy_level,
               anonymized, granted, accessed_by_user_id, accessed_by_role, timestamp, details
        FROM privacy_audit_log
        WHERE user_id = $1
        ORDER BY timestamp DESC
        LIMIT $2`

	var entries []*domain.AuditEntry
	err := withRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		entries = entries[:0]
		for rows.Next() {
			entry := &domain.AuditEntry{}
			var details []byte
			if err := rows.Scan(
				&entry.ID,
				&entry.OwnerID,
				&entry.ActionType,
				&entry.DataType,
				&entry.ServiceType,
				&entry.PrivacyLevel,
				&entry.Anonymized,
				&entry.Granted,
				&entry.AccessorID,
				&entry.AccessorRole,
				&entry.Timestamp,
				&details,
			); err != nil {
				return err
			}
			if len(details) > 0 {
				if err := json.Unmarshal(details, &entry.Details); err != nil {
					entry.Details = nil
				}
			}
			entries = append(entries, entry)
		}
		return rows.Err()
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", ownerID.String()).Msg("failed to fetch usage history")
		return nil, err
	}

	return entries, nil
}

func (r *postgresAuditRepository) LogMatchingAccess(ctx context.Context, ownerID, resumeID uuid.UUID, matchCount int) error {
	query := `
        INSERT INTO job_matching_logs (user_id, resume_id, matches_count, created_at)
        VALUES ($1, $2, $3, NOW())`

	err := withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, query, ownerID, resumeID, matchCount)
		return err
	})
	if err != nil {
		log.Error().Err(err).
			Str("user_id", ownerID.String()).
			Str("resume_id", resumeID.String()).
			Msg("failed to log matching access")
	}
	return err
}
