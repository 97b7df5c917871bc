package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

type fakeConsentRepo struct {
	grants     map[string]*domain.ConsentGrant
	err        error
	increments int
}

func (f *fakeConsentRepo) key(ownerID uuid.UUID, serviceType string) string {
	return ownerID.String() + ":" + serviceType
}

func (f *fakeConsentRepo) GetActiveGrant(_ context.Context, ownerID uuid.UUID, serviceType string) (*domain.ConsentGrant, error) {
	if f.err != nil {
		return nil, f.err
	}
	grant, ok := f.grants[f.key(ownerID, serviceType)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return grant, nil
}

func (f *fakeConsentRepo) ListGrants(_ context.Context, ownerID uuid.UUID) ([]*domain.ConsentGrant, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.ConsentGrant
	for _, g := range f.grants {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeConsentRepo) IncrementUsage(_ context.Context, _ uuid.UUID, _ string) error {
	f.increments++
	return f.err
}

type fakeAuditRepo struct {
	entries    []*domain.AuditEntry
	matchLogs  int
	appendErr  error
	historyErr error
}

func (f *fakeAuditRepo) Append(_ context.Context, entry *domain.AuditEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) GetUsageHistory(_ context.Context, ownerID uuid.UUID, limit int) ([]*domain.AuditEntry, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	var out []*domain.AuditEntry
	for _, e := range f.entries {
		if e.OwnerID == ownerID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAuditRepo) LogMatchingAccess(_ context.Context, _, _ uuid.UUID, _ int) error {
	f.matchLogs++
	return nil
}

type fakeUsageRepo struct {
	counts map[string]int64
	err    error
}

func (f *fakeUsageRepo) IncrementUsage(_ context.Context, ownerID uuid.UUID, serviceType, dataType string) error {
	if f.err != nil {
		return f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[serviceType+":"+dataType]++
	return nil
}

func (f *fakeUsageRepo) GetUsage(_ context.Context, _ uuid.UUID) (map[string]int64, error) {
	return f.counts, f.err
}

func activeGrant(ownerID uuid.UUID, serviceType string, dataTypes ...string) *domain.ConsentGrant {
	return &domain.ConsentGrant{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		ServiceType: serviceType,
		DataTypes:   dataTypes,
		Level:       "standard",
		GrantedAt:   time.Now().Add(-time.Hour),
		ExpiresAt:   time.Now().Add(24 * time.Hour),
		Status:      domain.ConsentStatusActive,
	}
}

func TestCheckConsentNoGrant(t *testing.T) {
	owner := uuid.New()
	svc := NewConsentService(&fakeConsentRepo{}, &fakeAuditRepo{}, &fakeUsageRepo{})

	decision, err := svc.CheckConsent(context.Background(), owner, domain.ServiceTypeJobMatching, []string{domain.DataTypeResume})
	require.NoError(t, err)
	assert.False(t, decision.Granted)
	assert.Equal(t, domain.ReasonNoConsent, decision.Reason)
}

func TestCheckConsentStoreErrorFailsClosed(t *testing.T) {
	owner := uuid.New()
	repo := &fakeConsentRepo{err: domain.ErrStoreUnavailable}
	svc := NewConsentService(repo, &fakeAuditRepo{}, &fakeUsageRepo{})

	decision, err := svc.CheckConsent(context.Background(), owner, domain.ServiceTypeJobMatching, []string{domain.DataTypeResume})
	require.NoError(t, err)
	assert.False(t, decision.Granted)
	assert.Equal(t, domain.ReasonNoConsent, decision.Reason)
}

func TestCheckConsentGranted(t *testing.T) {
	owner := uuid.New()
	repo := &fakeConsentRepo{grants: map[string]*domain.ConsentGrant{}}
	grant := activeGrant(owner, domain.ServiceTypeJobMatching, domain.DataTypeResume, domain.DataTypeSkills)
	repo.grants[repo.key(owner, domain.ServiceTypeJobMatching)] = grant
	svc := NewConsentService(repo, &fakeAuditRepo{}, &fakeUsageRepo{})

	decision, err := svc.CheckConsent(context.Background(), owner, domain.ServiceTypeJobMatching, []string{domain.DataTypeResume, domain.DataTypeSkills})
	require.NoError(t, err)
	assert.True(t, decision.Granted)
	assert.Equal(t, "standard", decision.Level)
	assert.Equal(t, grant.DataTypes, decision.AllowedTypes)
}

func TestCheckConsentScopeExceeded(t *testing.T) {
	owner := uuid.New()
	repo := &fakeConsentRepo{grants: map[string]*domain.ConsentGrant{}}
	repo.grants[repo.key(owner, domain.ServiceTypeJobMatching)] = activeGrant(owner, domain.ServiceTypeJobMatching, domain.DataTypeResume)
	svc := NewConsentService(repo, &fakeAuditRepo{}, &fakeUsageRepo{})

	decision, err := svc.CheckConsent(context.Background(), owner, domain.ServiceTypeJobMatching,
		[]string{domain.DataTypeResume, domain.DataTypeSkills, domain.DataTypeEducation})
	require.NoError(t, err)
	assert.False(t, decision.Granted)
	assert.Equal(t, domain.ReasonScopeExceeded, decision.Reason)
	// The first uncovered type is the one reported.
	assert.Equal(t, domain.DataTypeSkills, decision.OffendingType)
}

func TestCheckConsentWildcard(t *testing.T) {
	owner := uuid.New()
	repo := &fakeConsentRepo{grants: map[string]*domain.ConsentGrant{}}
	repo.grants[repo.key(owner, domain.ServiceTypeJobMatching)] = activeGrant(owner, domain.ServiceTypeJobMatching, domain.DataTypeAll)
	svc := NewConsentService(repo, &fakeAuditRepo{}, &fakeUsageRepo{})

	decision, err := svc.CheckConsent(context.Background(), owner, domain.ServiceTypeJobMatching,
		[]string{domain.DataTypeResume, domain.DataTypeSkills, domain.DataTypeExperience, domain.DataTypeEducation})
	require.NoError(t, err)
	assert.True(t, decision.Granted)
}

func TestCheckConsentExpiredGrant(t *testing.T) {
	owner := uuid.New()
	repo := &fakeConsentRepo{grants: map[string]*domain.ConsentGrant{}}
	grant := activeGrant(owner, domain.ServiceTypeJobMatching, domain.DataTypeAll)
	grant.ExpiresAt = time.Now().Add(-time.Minute)
	repo.grants[repo.key(owner, domain.ServiceTypeJobMatching)] = grant
	svc := NewConsentService(repo, &fakeAuditRepo{}, &fakeUsageRepo{})

	decision, err := svc.CheckConsent(context.Background(), owner, domain.ServiceTypeJobMatching, []string{domain.DataTypeResume})
	require.NoError(t, err)
	assert.False(t, decision.Granted)
	assert.Equal(t, domain.ReasonNoConsent, decision.Reason)
}

func TestCheckConsentRevokedGrant(t *testing.T) {
	owner := uuid.New()
	repo := &fakeConsentRepo{grants: map[string]*domain.ConsentGrant{}}
	grant := activeGrant(owner, domain.ServiceTypeJobMatching, domain.DataTypeAll)
	grant.Status = domain.ConsentStatusRevoked
	repo.grants[repo.key(owner, domain.ServiceTypeJobMatching)] = grant
	svc := NewConsentService(repo, &fakeAuditRepo{}, &fakeUsageRepo{})

	decision, err := svc.CheckConsent(context.Background(), owner, domain.ServiceTypeJobMatching, []string{domain.DataTypeResume})
	require.NoError(t, err)
	assert.False(t, decision.Granted)
}

func TestRecordUsage(t *testing.T) {
	owner := uuid.New()
	consentRepo := &fakeConsentRepo{grants: map[string]*domain.ConsentGrant{}}
	usageRepo := &fakeUsageRepo{}
	svc := NewConsentService(consentRepo, &fakeAuditRepo{}, usageRepo)

	svc.RecordUsage(context.Background(), owner, domain.ServiceTypeJobMatching,
		[]string{domain.DataTypeResume, domain.DataTypeSkills})

	assert.Equal(t, 1, consentRepo.increments)
	assert.Equal(t, int64(1), usageRepo.counts[domain.ServiceTypeJobMatching+":"+domain.DataTypeResume])
	assert.Equal(t, int64(1), usageRepo.counts[domain.ServiceTypeJobMatching+":"+domain.DataTypeSkills])
}

func TestGetUsageHistoryDefaultsLimit(t *testing.T) {
	owner := uuid.New()
	auditRepo := &fakeAuditRepo{}
	for i := 0; i < 3; i++ {
		auditRepo.entries = append(auditRepo.entries, &domain.AuditEntry{OwnerID: owner})
	}
	svc := NewConsentService(&fakeConsentRepo{}, auditRepo, &fakeUsageRepo{})

	history, err := svc.GetUsageHistory(context.Background(), owner, 0)
	require.NoError(t, err)
	assert.Len(t, history.History, 3)
}

func TestGetConsentStatusEmpty(t *testing.T) {
	svc := NewConsentService(&fakeConsentRepo{}, &fakeAuditRepo{}, &fakeUsageRepo{})
	status, err := svc.GetConsentStatus(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, status.Consents)
	assert.Empty(t, status.Consents)
	assert.NotNil(t, status.UsageStats)
}

func TestGetConsentStatusIncludesUsageStats(t *testing.T) {
	owner := uuid.New()
	consentRepo := &fakeConsentRepo{grants: map[string]*domain.ConsentGrant{}}
	consentRepo.grants[consentRepo.key(owner, domain.ServiceTypeJobMatching)] =
		activeGrant(owner, domain.ServiceTypeJobMatching, domain.DataTypeAll)
	usageRepo := &fakeUsageRepo{}
	svc := NewConsentService(consentRepo, &fakeAuditRepo{}, usageRepo)

	svc.RecordUsage(context.Background(), owner, domain.ServiceTypeJobMatching, []string{domain.DataTypeResume})

	status, err := svc.GetConsentStatus(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, status.Consents, 1)
	assert.Equal(t, int64(1), status.UsageStats[domain.ServiceTypeJobMatching+":"+domain.DataTypeResume])
}

func TestGetConsentStatusUsageLookupFailureTolerated(t *testing.T) {
	owner := uuid.New()
	svc := NewConsentService(&fakeConsentRepo{}, &fakeAuditRepo{}, &fakeUsageRepo{err: domain.ErrStoreUnavailable})

	status, err := svc.GetConsentStatus(context.Background(), owner)
	require.NoError(t, err)
	assert.NotNil(t, status.UsageStats)
	assert.Empty(t, status.UsageStats)
}
