package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

type postgresJobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) domain.JobRepository {
	return &postgresJobRepository{db: db}
}

func (j *postgresJobRepository) GetActiveJobIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	query := `
        SELECT id FROM jobs
        WHERE status = 'active'
        ORDER BY created_at DESC
        LIMIT $1`

	var ids []uuid.UUID
	err := withRetry(ctx, func() error {
		rows, err := j.db.QueryContext(ctx, query, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		ids = ids[:0]
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list active jobs")
		return nil, err
	}

	return ids, nil
}

func (j *postgresJobRepository) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.JobRecord, error) {
	job := &domain.JobRecord{}
	query := `
        SELECT id, company_id, title, description, requirements, industry, location,
               salary_min, salary_max, experience_level, min_experience_years,
               required_degree, required_skills, culture_keywords, status,
               created_at, updated_at
        FROM jobs WHERE id = $1 AND status = 'active'`

	var requiredDegree sql.NullString
	err := withRetry(ctx, func() error {
		return j.db.QueryRowContext(ctx, query, jobID).Scan(
			&job.ID,
			&job.CompanyID,
			&job.Title,
			&job.Description,
			&job.Requirements,
			&job.Industry,
			&job.Location,
			&job.SalaryMin,
			&job.SalaryMax,
			&job.ExperienceLevel,
			&job.MinExperienceYears,
			&requiredDegree,
			pq.Array(&job.RequiredSkills),
			pq.Array(&job.CultureKeywords),
			&job.Status,
			&job.CreatedAt,
			&job.UpdatedAt,
		)
	})

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("job_id", jobID.String()).Msg("failed to fetch job")
		return nil, err
	}

	job.RequiredDegree = requiredDegree.String
	return job, nil
}

// FilterActiveJobs applies the caller's hard constraints in a single query:
// industry equality, location substring, salary range overlap and experience
// category equality.
func (j *postgresJobRepository) FilterActiveJobs(ctx context.Context, filters *domain.MatchFilters, limit int) ([]uuid.UUID, error) {
	query := `SELECT id FROM jobs WHERE status = 'active'`
	args := []interface{}{}

	if filters != nil {
		if filters.Industry != "" {
			args = append(args, filters.Industry)
			query += fmt.Sprintf(" AND LOWER(industry) = LOWER($%d)", len(args))
		}
		if filters.Location != "" {
			args = append(args, "%"+filters.Location+"%")
			query += fmt.Sprintf(" AND location ILIKE $%d", len(args))
		}
		if filters.SalaryMin > 0 {
			args = append(args, filters.SalaryMin)
			query += fmt.Sprintf(" AND salary_max >= $%d", len(args))
		}
		if filters.SalaryMax > 0 {
			args = append(args, filters.SalaryMax)
			query += fmt.Sprintf(" AND salary_min <= $%d", len(args))
		}
		if filters.ExperienceLevel != "" {
			args = append(args, filters.ExperienceLevel)
			query += fmt.Sprintf(" AND LOWER(experience_level) = LOWER($%d)", len(args))
		}
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	var ids []uuid.UUID
	err := withRetry(ctx, func() error {
		rows, err := j.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		ids = ids[:0]
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to filter active jobs")
		return nil, err
	}

	return ids, nil
}
