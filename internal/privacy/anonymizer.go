// Package privacy implements the anonymization rules applied to personal data
// before it crosses an ownership boundary. All transformations are pure and
// deterministic; the full level is not reversible.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	"github.com/xiajason/jobfirst-future/internal/domain"
)

// Level controls how aggressively personal fields are masked.
type Level string

const (
	LevelNone    Level = "none"
	LevelPartial Level = "partial"
	LevelFull    Level = "full"
)

// Fixed placeholders used at the full level.
const (
	fullMask      = "***"
	fullMaskEmail = "***@***.***"
	fullMaskPhone = "***-****-****"
)

// LevelForRole is the policy table deciding the anonymization level from the
// relationship between requester and data owner. Kept explicit so it can be
// audited line by line.
func LevelForRole(accessorRole string, ownerID, accessorID uuid.UUID) Level {
	if ownerID == accessorID {
		return LevelNone
	}
	switch accessorRole {
	case domain.RoleSuperAdmin, domain.RoleSystemAdmin:
		return LevelPartial
	default:
		return LevelFull
	}
}

// AnonymizeResume returns a masked copy of the record. Role/title, skills and
// degree/major are never masked: they drive matching.
func AnonymizeResume(record *domain.ResumeRecord, level Level) *domain.ResumeRecord {
	if record == nil || level == LevelNone {
		return record
	}

	out := *record
	out.PersonalInfo = AnonymizePersonalInfo(record.PersonalInfo, level)
	out.Experience = AnonymizeExperience(record.Experience, level)
	out.Education = AnonymizeEducation(record.Education, level)
	return &out
}

// AnonymizePersonalInfo masks the identifying section.
func AnonymizePersonalInfo(info domain.PersonalInfo, level Level) domain.PersonalInfo {
	switch level {
	case LevelNone:
		return info
	case LevelFull:
		if info.Name != "" {
			info.Name = fullMask
		}
		if info.Email != "" {
			info.Email = fullMaskEmail
		}
		if info.Phone != "" {
			info.Phone = fullMaskPhone
		}
		if info.Location != "" {
			info.Location = fullMask
		}
		return info
	default:
		info.Name = maskName(info.Name)
		info.Email = maskEmail(info.Email)
		info.Phone = maskPhone(info.Phone)
		info.Location = generalizeLocation(info.Location)
		return info
	}
}

// AnonymizeExperience masks employer names and locations while preserving
// titles and descriptions needed for matching inference.
func AnonymizeExperience(experience []domain.WorkExperience, level Level) []domain.WorkExperience {
	if level == LevelNone || len(experience) == 0 {
		return experience
	}

	out := make([]domain.WorkExperience, len(experience))
	for i, exp := range experience {
		if level == LevelFull {
			if exp.Company != "" {
				exp.Company = fullMask
			}
			if exp.Location != "" {
				exp.Location = fullMask
			}
			if exp.Description != "" {
				exp.Description = fullMask
			}
		} else {
			exp.Company = maskOrganization(exp.Company, "Co.")
			exp.Location = generalizeLocation(exp.Location)
		}
		out[i] = exp
	}
	return out
}

// AnonymizeEducation masks school names and locations; degree and major stay.
func AnonymizeEducation(education []domain.Education, level Level) []domain.Education {
	if level == LevelNone || len(education) == 0 {
		return education
	}

	out := make([]domain.Education, len(education))
	for i, edu := range education {
		if level == LevelFull {
			if edu.School != "" {
				edu.School = fullMask
			}
			if edu.Location != "" {
				edu.Location = fullMask
			}
		} else {
			edu.School = maskOrganization(edu.School, "University")
			edu.Location = generalizeLocation(edu.Location)
		}
		out[i] = edu
	}
	return out
}

// HashSensitiveField produces a short non-reversible digest for audit details.
func HashSensitiveField(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:16]
}

// maskName keeps the first rune and replaces the rest.
func maskName(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return name
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}

// maskEmail keeps the first character of the local part and the full domain.
func maskEmail(email string) string {
	if email == "" {
		return email
	}
	local, dom, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return string([]rune(email)[0]) + "****"
	}
	return string([]rune(local)[0]) + "****@" + dom
}

// maskPhone keeps the first 3 and last 4 digits.
func maskPhone(phone string) string {
	if phone == "" {
		return phone
	}
	if len(phone) >= 7 {
		return phone[:3] + "****" + phone[len(phone)-4:]
	}
	return "***-****"
}

// generalizeLocation reduces a location to its first (province/city) segment.
func generalizeLocation(location string) string {
	if location == "" {
		return location
	}
	if first, _, ok := strings.Cut(location, ","); ok {
		return strings.TrimSpace(first)
	}
	runes := []rune(location)
	if len(runes) <= 2 {
		return location
	}
	return string(runes[:2]) + "***"
}

// maskOrganization keeps a two-rune prefix and appends a generic suffix.
func maskOrganization(name, suffix string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	prefix := string(runes)
	if len(runes) > 2 {
		prefix = string(runes[:2])
	}
	return prefix + "*** " + suffix
}
