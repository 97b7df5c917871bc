package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrivacySettingsAllowsView(t *testing.T) {
	tests := []struct {
		name     string
		settings *PrivacySettings
		class    string
		expected bool
	}{
		{"NilSettings", nil, AccessorClassAIService, false},
		{"ExplicitAllow", &PrivacySettings{ViewPermissions: map[string]string{AccessorClassAIService: PermissionAllowed}}, AccessorClassAIService, true},
		{"ExplicitDeny", &PrivacySettings{IsPublic: true, ViewPermissions: map[string]string{AccessorClassAIService: PermissionDenied}}, AccessorClassAIService, false},
		{"DefaultPublic", &PrivacySettings{ViewPermissions: map[string]string{AccessorClassDefault: PermissionPublic}}, AccessorClassAIService, true},
		{"DefaultNotPublic", &PrivacySettings{ViewPermissions: map[string]string{AccessorClassDefault: PermissionDenied}}, AccessorClassAIService, false},
		{"CoarsePublicFlag", &PrivacySettings{IsPublic: true}, AccessorClassAIService, true},
		{"AllClosed", &PrivacySettings{}, AccessorClassAIService, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.AllowsView(tt.class))
		})
	}
}

func TestConsentGrantCovers(t *testing.T) {
	scoped := &ConsentGrant{DataTypes: []string{DataTypeResume, DataTypeSkills}}
	assert.True(t, scoped.Covers(DataTypeResume))
	assert.False(t, scoped.Covers(DataTypeEducation))

	wildcard := &ConsentGrant{DataTypes: []string{DataTypeAll}}
	assert.True(t, wildcard.Covers(DataTypePersonalInfo))
	assert.True(t, wildcard.Covers(DataTypeEducation))
}

func TestDegreeLevel(t *testing.T) {
	assert.Equal(t, 1, DegreeLevel("high_school"))
	assert.Equal(t, 3, DegreeLevel(" Bachelor "))
	assert.Equal(t, 6, DegreeLevel("postdoc"))
	assert.Equal(t, 0, DegreeLevel("bootcamp"))
}

func TestResumeTextViews(t *testing.T) {
	record := &ResumeRecord{
		PersonalInfo: PersonalInfo{Name: "Li Na", Summary: "Systems engineer"},
		Experience: []WorkExperience{
			{Title: "Engineer", Company: "ACME", Description: "Built APIs", Years: 3},
		},
		Education: []Education{{School: "Fudan", Degree: "bachelor"}},
		Skills:    []string{"Go", "Redis"},
	}

	content := record.ContentText()
	assert.Contains(t, content, "Li Na")
	assert.Contains(t, content, "Systems engineer")
	assert.Contains(t, content, "Engineer ACME Built APIs")
	assert.Contains(t, content, "bachelor Fudan")
	assert.Contains(t, content, "Go, Redis")

	skills := record.SkillsText()
	assert.Contains(t, skills, "Go")
	assert.Contains(t, skills, "Built APIs")

	assert.Equal(t, "Engineer ACME Built APIs", record.ExperienceText())
	assert.InDelta(t, 3.0, record.TotalExperienceYears(), 1e-9)
}

func TestMatchFiltersEmpty(t *testing.T) {
	assert.True(t, (*MatchFilters)(nil).Empty())
	assert.True(t, (&MatchFilters{}).Empty())
	assert.False(t, (&MatchFilters{Industry: "technology"}).Empty())
}

func TestResumeVectorsComplete(t *testing.T) {
	assert.False(t, (*ResumeVectors)(nil).Complete(2))
	assert.False(t, (&ResumeVectors{Content: []float32{1, 0}}).Complete(2))
	full := &ResumeVectors{
		Content:    []float32{1, 0},
		Skills:     []float32{0, 1},
		Experience: []float32{1, 1},
	}
	assert.True(t, full.Complete(2))
	assert.False(t, full.Complete(3))
}
