package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// NewPostgresConnection opens the relational store with a bounded pool.
func NewPostgresConnection(databaseURL string, maxOpen, maxIdle int, connLifetime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS resume_metadata (
        id UUID PRIMARY KEY,
        user_id UUID NOT NULL,
        title TEXT NOT NULL DEFAULT '',
        parsing_status TEXT NOT NULL DEFAULT 'pending',
        content_key TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_resume_metadata_user ON resume_metadata (user_id)`,

	`CREATE TABLE IF NOT EXISTS jobs (
        id UUID PRIMARY KEY,
        company_id UUID NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        requirements TEXT NOT NULL DEFAULT '',
        industry TEXT NOT NULL DEFAULT '',
        location TEXT NOT NULL DEFAULT '',
        salary_min INTEGER NOT NULL DEFAULT 0,
        salary_max INTEGER NOT NULL DEFAULT 0,
        experience_level TEXT NOT NULL DEFAULT '',
        min_experience_years DOUBLE PRECISION NOT NULL DEFAULT 0,
        required_degree TEXT,
        required_skills TEXT[] NOT NULL DEFAULT '{}',
        culture_keywords TEXT[] NOT NULL DEFAULT '{}',
        status TEXT NOT NULL DEFAULT 'active',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status_created ON jobs (status, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_industry ON jobs (industry)`,

	`CREATE TABLE IF NOT EXISTS consent_records (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        user_id UUID NOT NULL,
        service_type TEXT NOT NULL,
        data_types TEXT[] NOT NULL DEFAULT '{}',
        consent_level TEXT NOT NULL DEFAULT 'basic',
        granted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        expires_at TIMESTAMPTZ NOT NULL,
        last_used_at TIMESTAMPTZ,
        usage_count INTEGER NOT NULL DEFAULT 0,
        status TEXT NOT NULL DEFAULT 'active'
    )`,
	`CREATE INDEX IF NOT EXISTS idx_consent_user_service ON consent_records (user_id, service_type, status)`,

	`CREATE TABLE IF NOT EXISTS privacy_audit_log (
        id BIGSERIAL PRIMARY KEY,
        user_id UUID NOT NULL,
        action_type TEXT NOT NULL,
        data_type TEXT NOT NULL DEFAULT '',
        service_type TEXT NOT NULL DEFAULT '',
        privacy_level TEXT NOT NULL DEFAULT '',
        anonymized BOOLEAN NOT NULL DEFAULT FALSE,
        granted BOOLEAN NOT NULL DEFAULT FALSE,
        accessed_by_user_id UUID NOT NULL,
        accessed_by_role TEXT NOT NULL DEFAULT '',
        timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        details JSONB
    )`,
	`CREATE INDEX IF NOT EXISTS idx_audit_user_time ON privacy_audit_log (user_id, timestamp DESC)`,

	`CREATE TABLE IF NOT EXISTS job_matching_logs (
        id BIGSERIAL PRIMARY KEY,
        user_id UUID NOT NULL,
        resume_id UUID NOT NULL,
        matches_count INTEGER NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
}

// RunMigrations applies the schema idempotently on startup.
func RunMigrations(db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}
	return nil
}
