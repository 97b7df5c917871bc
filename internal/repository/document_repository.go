package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

// redisDocumentRepository reads the per-user document store: parsed resume
// sections and the owner's privacy settings, both JSON values under
// per-user key schemes. The contentKey is the owner-scoped namespace recorded
// in the relational metadata row.
type redisDocumentRepository struct {
	client    *redis.Client
	sanitizer *domain.SecuritySanitizer
}

func NewDocumentRepository(client *redis.Client) domain.DocumentRepository {
	return &redisDocumentRepository{
		client:    client,
		sanitizer: domain.NewSecuritySanitizer(),
	}
}

func contentDocKey(contentKey string, resumeID uuid.UUID) string {
	return fmt.Sprintf("%s:content:%s", contentKey, resumeID)
}

func privacyDocKey(contentKey string, resumeID uuid.UUID) string {
	return fmt.Sprintf("%s:privacy:%s", contentKey, resumeID)
}

func (r *redisDocumentRepository) GetParsedResume(ctx context.Context, contentKey string, resumeID uuid.UUID) (*domain.ParsedResume, error) {
	var data string
	err := withRetry(ctx, func() error {
		var err error
		data, err = r.client.Get(ctx, contentDocKey(contentKey, resumeID)).Result()
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).Str("resume_id", resumeID.String()).Msg("failed to fetch parsed resume")
		}
		return nil, err
	}

	var parsed domain.ParsedResume
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		log.Error().Err(err).Str("resume_id", resumeID.String()).Msg("malformed parsed resume document")
		return nil, fmt.Errorf("%w: malformed parsed resume document", domain.ErrDataIntegrity)
	}

	// Parsed content originates from uploaded files; strip anything unsafe
	// before it reaches scoring or leaves through the API.
	r.sanitizer.SanitizeResume(&parsed)

	return &parsed, nil
}

func (r *redisDocumentRepository) GetPrivacySettings(ctx context.Context, contentKey string, resumeID uuid.UUID) (*domain.PrivacySettings, error) {
	var data string
	err := withRetry(ctx, func() error {
		var err error
		data, err = r.client.Get(ctx, privacyDocKey(contentKey, resumeID)).Result()
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).Str("resume_id", resumeID.String()).Msg("failed to fetch privacy settings")
		}
		return nil, err
	}

	var settings domain.PrivacySettings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		log.Error().Err(err).Str("resume_id", resumeID.String()).Msg("malformed privacy settings document")
		return nil, fmt.Errorf("%w: malformed privacy settings document", domain.ErrDataIntegrity)
	}

	return &settings, nil
}
