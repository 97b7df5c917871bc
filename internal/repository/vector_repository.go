package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hupe1980/vecgo"
	"github.com/rs/zerolog/log"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

// resumePayload is the data stored alongside a resume's searchable content
// vector; the skills and experience vectors ride along since the resume side
// is looked up by id, never searched.
type resumePayload struct {
	ResumeID   uuid.UUID
	OwnerID    uuid.UUID
	Skills     []float32
	Experience []float32

	// contentVector mirrors the indexed vector so lookups by id do not need a
	// search round-trip.
	contentVector []float32
}

// vecgoVectorRepository keeps three flat cosine indexes: resume content
// vectors plus the two job-side vectors that nearest-neighbor search runs
// against. A pk map per index makes upserts idempotent.
type vecgoVectorRepository struct {
	dim int

	resumes *vecgo.Vecgo[resumePayload]
	jobDesc *vecgo.Vecgo[string]
	jobReq  *vecgo.Vecgo[string]

	mu         sync.RWMutex
	resumeIDs  map[uuid.UUID]uint64
	jobDescIDs map[uuid.UUID]uint64
	jobReqIDs  map[uuid.UUID]uint64
}

func NewVectorRepository(dim int) (domain.VectorRepository, error) {
	resumes, err := vecgo.Flat[resumePayload](dim).Cosine().Build()
	if err != nil {
		return nil, fmt.Errorf("build resume index: %w", err)
	}
	jobDesc, err := vecgo.Flat[string](dim).Cosine().Build()
	if err != nil {
		return nil, fmt.Errorf("build job description index: %w", err)
	}
	jobReq, err := vecgo.Flat[string](dim).Cosine().Build()
	if err != nil {
		return nil, fmt.Errorf("build job requirements index: %w", err)
	}

	return &vecgoVectorRepository{
		dim:        dim,
		resumes:    resumes,
		jobDesc:    jobDesc,
		jobReq:     jobReq,
		resumeIDs:  make(map[uuid.UUID]uint64),
		jobDescIDs: make(map[uuid.UUID]uint64),
		jobReqIDs:  make(map[uuid.UUID]uint64),
	}, nil
}

func (v *vecgoVectorRepository) GetResumeVectors(ctx context.Context, resumeID uuid.UUID) (*domain.ResumeVectors, error) {
	v.mu.RLock()
	id, ok := v.resumeIDs[resumeID]
	v.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	payload, err := v.resumes.Get(id)
	if err != nil {
		if errors.Is(err, vecgo.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	// The content vector lives in the index itself; re-fetch it via search is
	// wasteful, so it is mirrored in the payload alongside the other two.
	return &domain.ResumeVectors{
		Content:    payload.contentVector,
		Skills:     payload.Skills,
		Experience: payload.Experience,
	}, nil
}

func (v *vecgoVectorRepository) StoreResumeVectors(ctx context.Context, resumeID, ownerID uuid.UUID, vectors *domain.ResumeVectors) error {
	if !vectors.Complete(v.dim) {
		return fmt.Errorf("%w: resume vectors must all have dimension %d", domain.ErrInvalidResumeData, v.dim)
	}

	payload := resumePayload{
		ResumeID:      resumeID,
		OwnerID:       ownerID,
		Skills:        vectors.Skills,
		Experience:    vectors.Experience,
		contentVector: vectors.Content,
	}
	item := vecgo.VectorWithData[resumePayload]{Vector: vectors.Content, Data: payload}

	v.mu.Lock()
	defer v.mu.Unlock()

	// Recomputing for the same resume id updates in place, never duplicates.
	if existing, ok := v.resumeIDs[resumeID]; ok {
		if err := v.resumes.Update(ctx, existing, item); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		return nil
	}

	id, err := v.resumes.Insert(ctx, item)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	v.resumeIDs[resumeID] = id

	log.Debug().Str("resume_id", resumeID.String()).Msg("resume vectors stored")
	return nil
}

func (v *vecgoVectorRepository) UpsertJobVectors(ctx context.Context, jobID uuid.UUID, vectors *domain.JobVectors) error {
	if len(vectors.Description) != v.dim || len(vectors.Requirements) != v.dim {
		return fmt.Errorf("%w: job vectors must have dimension %d", domain.ErrInvalidResumeData, v.dim)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.upsertLocked(ctx, v.jobDesc, v.jobDescIDs, jobID, vectors.Description); err != nil {
		return err
	}
	return v.upsertLocked(ctx, v.jobReq, v.jobReqIDs, jobID, vectors.Requirements)
}

func (v *vecgoVectorRepository) upsertLocked(ctx context.Context, db *vecgo.Vecgo[string], ids map[uuid.UUID]uint64, jobID uuid.UUID, vector []float32) error {
	item := vecgo.VectorWithData[string]{Vector: vector, Data: jobID.String()}
	if existing, ok := ids[jobID]; ok {
		if err := db.Update(ctx, existing, item); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		return nil
	}
	id, err := db.Insert(ctx, item)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	ids[jobID] = id
	return nil
}

// SearchJobs runs KNN over both job indexes restricted to the candidate set
// and joins the two distance lists by job id. Results are ordered by summed
// cosine distance, nearest first.
func (v *vecgoVectorRepository) SearchJobs(ctx context.Context, content, skills []float32, candidates []uuid.UUID, k int) ([]domain.JobDistance, error) {
	if len(candidates) == 0 || k <= 0 {
		return nil, nil
	}

	v.mu.RLock()
	descAllowed := make(map[uint64]uuid.UUID, len(candidates))
	reqAllowed := make(map[uint64]uuid.UUID, len(candidates))
	for _, jobID := range candidates {
		if id, ok := v.jobDescIDs[jobID]; ok {
			descAllowed[id] = jobID
		}
		if id, ok := v.jobReqIDs[jobID]; ok {
			reqAllowed[id] = jobID
		}
	}
	v.mu.RUnlock()

	descResults, err := v.jobDesc.KNNSearch(ctx, content, k, func(o *vecgo.KNNSearchOptions) {
		o.FilterFunc = func(id uint64) bool { _, ok := descAllowed[id]; return ok }
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	reqResults, err := v.jobReq.KNNSearch(ctx, skills, k, func(o *vecgo.KNNSearchOptions) {
		o.FilterFunc = func(id uint64) bool { _, ok := reqAllowed[id]; return ok }
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	// Join by job id; a candidate missing either vector is dropped: half a
	// similarity signal would skew the summed ordering.
	byJob := make(map[uuid.UUID]*domain.JobDistance, len(descResults))
	for _, res := range descResults {
		jobID, ok := descAllowed[uint64(res.ID)]
		if !ok {
			continue
		}
		byJob[jobID] = &domain.JobDistance{JobID: jobID, ContentDistance: float64(res.Distance), SkillsDistance: -1}
	}
	for _, res := range reqResults {
		jobID, ok := reqAllowed[uint64(res.ID)]
		if !ok {
			continue
		}
		if entry, seen := byJob[jobID]; seen {
			entry.SkillsDistance = float64(res.Distance)
		}
	}

	matches := make([]domain.JobDistance, 0, len(byJob))
	for _, entry := range byJob {
		if entry.SkillsDistance >= 0 {
			matches = append(matches, *entry)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ContentDistance+matches[i].SkillsDistance <
			matches[j].ContentDistance+matches[j].SkillsDistance
	})
	if len(matches) > k {
		matches = matches[:k]
	}

	return matches, nil
}
