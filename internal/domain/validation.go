package domain

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// getValidator lazily initializes the shared validator instance.
func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New()
	})
	return validatorInst
}

// ValidateStruct validates a struct using go-playground/validator and maps
// failures into the package's ValidationErrors format.
func ValidateStruct(model interface{}) error {
	if err := getValidator().Struct(model); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			mapped := make(ValidationErrors, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				mapped = append(mapped, ValidationError{
					Field:   fieldErr.Field(),
					Message: formatValidationMessage(fieldErr),
				})
			}
			return mapped
		}
		return err
	}
	return nil
}

func formatValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "field is required"
	case "max":
		return fmt.Sprintf("must not exceed %s", err.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "email":
		return "must be a valid email address"
	default:
		return err.Error()
	}
}

// SecuritySanitizer strips unsafe HTML from free-text fields before they
// enter the stores or leave through the API.
type SecuritySanitizer struct {
	policy *bluemonday.Policy
}

func NewSecuritySanitizer() *SecuritySanitizer {
	return &SecuritySanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *SecuritySanitizer) SanitizeString(input string) string {
	return s.policy.Sanitize(input)
}

func (s *SecuritySanitizer) SanitizeStrings(inputs ...string) []string {
	result := make([]string, len(inputs))
	for i, input := range inputs {
		result[i] = s.policy.Sanitize(input)
	}
	return result
}

// SanitizeResume cleans every free-text field of a parsed resume in place.
func (s *SecuritySanitizer) SanitizeResume(r *ParsedResume) {
	r.PersonalInfo.Name = s.policy.Sanitize(r.PersonalInfo.Name)
	r.PersonalInfo.Summary = s.policy.Sanitize(r.PersonalInfo.Summary)
	r.PersonalInfo.Location = s.policy.Sanitize(r.PersonalInfo.Location)
	for i := range r.Experience {
		r.Experience[i].Title = s.policy.Sanitize(r.Experience[i].Title)
		r.Experience[i].Company = s.policy.Sanitize(r.Experience[i].Company)
		r.Experience[i].Description = s.policy.Sanitize(r.Experience[i].Description)
	}
	for i := range r.Education {
		r.Education[i].School = s.policy.Sanitize(r.Education[i].School)
		r.Education[i].Degree = s.policy.Sanitize(r.Education[i].Degree)
		r.Education[i].Major = s.policy.Sanitize(r.Education[i].Major)
	}
	r.Skills = s.SanitizeStrings(r.Skills...)
}
