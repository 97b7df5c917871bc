package privacy

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

func sampleRecord() *domain.ResumeRecord {
	return &domain.ResumeRecord{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		PersonalInfo: domain.PersonalInfo{
			Name:     "Zhang Wei",
			Email:    "zhangwei@example.com",
			Phone:    "13812345678",
			Location: "Shanghai, Pudong District",
			Summary:  "Backend engineer with 8 years in distributed systems",
		},
		Experience: []domain.WorkExperience{
			{Title: "Senior Engineer", Company: "Alibaba Cloud", Location: "Hangzhou", Description: "Built payment infrastructure", Years: 5},
		},
		Education: []domain.Education{
			{School: "Tsinghua University", Degree: "master", Major: "Computer Science", Location: "Beijing"},
		},
		Skills: []string{"Go", "PostgreSQL", "Kubernetes"},
	}
}

func TestLevelForRole(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	tests := []struct {
		name       string
		role       string
		accessorID uuid.UUID
		expected   Level
	}{
		{"SelfAlwaysNone", domain.RoleNormalUser, owner, LevelNone},
		{"SelfAdminStillNone", domain.RoleSuperAdmin, owner, LevelNone},
		{"SuperAdminPartial", domain.RoleSuperAdmin, other, LevelPartial},
		{"SystemAdminPartial", domain.RoleSystemAdmin, other, LevelPartial},
		{"NormalUserFull", domain.RoleNormalUser, other, LevelFull},
		{"UnknownRoleFull", "recruiter", other, LevelFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevelForRole(tt.role, owner, tt.accessorID))
		})
	}
}

func TestAnonymizeNoneIsIdentity(t *testing.T) {
	record := sampleRecord()
	out := AnonymizeResume(record, LevelNone)
	assert.Equal(t, record, out)
}

func TestAnonymizeFullHidesIdentifiers(t *testing.T) {
	record := sampleRecord()
	out := AnonymizeResume(record, LevelFull)
	require.NotNil(t, out)

	assert.NotContains(t, out.PersonalInfo.Name, "Zhang")
	assert.NotContains(t, out.PersonalInfo.Email, "zhangwei")
	assert.NotContains(t, out.PersonalInfo.Phone, "1381234")
	assert.Equal(t, "***@***.***", out.PersonalInfo.Email)
	assert.Equal(t, "***-****-****", out.PersonalInfo.Phone)

	// Matching-relevant fields survive untouched.
	assert.Equal(t, "Senior Engineer", out.Experience[0].Title)
	assert.Equal(t, "master", out.Education[0].Degree)
	assert.Equal(t, []string{"Go", "PostgreSQL", "Kubernetes"}, out.Skills)
}

func TestAnonymizeFullInputUnchanged(t *testing.T) {
	record := sampleRecord()
	_ = AnonymizeResume(record, LevelFull)
	assert.Equal(t, "Zhang Wei", record.PersonalInfo.Name)
	assert.Equal(t, "Alibaba Cloud", record.Experience[0].Company)
}

func TestAnonymizePartial(t *testing.T) {
	record := sampleRecord()
	out := AnonymizeResume(record, LevelPartial)

	assert.True(t, strings.HasPrefix(out.PersonalInfo.Name, "Z"))
	assert.NotEqual(t, record.PersonalInfo.Name, out.PersonalInfo.Name)

	// Email keeps first character and domain.
	assert.True(t, strings.HasPrefix(out.PersonalInfo.Email, "z"))
	assert.True(t, strings.HasSuffix(out.PersonalInfo.Email, "@example.com"))
	assert.NotContains(t, out.PersonalInfo.Email, "zhangwei")

	// Phone keeps first 3 and last 4 digits.
	assert.True(t, strings.HasPrefix(out.PersonalInfo.Phone, "138"))
	assert.True(t, strings.HasSuffix(out.PersonalInfo.Phone, "5678"))

	// Location reduced to city granularity.
	assert.Equal(t, "Shanghai", out.PersonalInfo.Location)

	// Title, skills, degree and major never masked.
	assert.Equal(t, "Senior Engineer", out.Experience[0].Title)
	assert.Equal(t, "Computer Science", out.Education[0].Major)
	assert.Equal(t, record.Skills, out.Skills)
}

func TestMaskOrganizations(t *testing.T) {
	record := sampleRecord()
	out := AnonymizeResume(record, LevelPartial)

	assert.NotEqual(t, "Alibaba Cloud", out.Experience[0].Company)
	assert.NotEqual(t, "Tsinghua University", out.Education[0].School)
}

func TestHashSensitiveFieldDeterministic(t *testing.T) {
	a := HashSensitiveField("zhangwei@example.com")
	b := HashSensitiveField("zhangwei@example.com")
	c := HashSensitiveField("other@example.com")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestAnonymizeEmptyFields(t *testing.T) {
	record := &domain.ResumeRecord{}
	out := AnonymizeResume(record, LevelFull)
	require.NotNil(t, out)

	outPartial := AnonymizeResume(&domain.ResumeRecord{}, LevelPartial)
	require.NotNil(t, outPartial)
}
