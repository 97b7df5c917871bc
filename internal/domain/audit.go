package domain

import (
	"time"

	"github.com/google/uuid"
)

// User roles as supplied by the upstream authenticator.
const (
	RoleSuperAdmin  = "super_admin"
	RoleSystemAdmin = "system_admin"
	RoleNormalUser  = "normal_user"
)

// Audit action types.
const (
	ActionView     = "view"
	ActionDownload = "download"
	ActionMatch    = "match"
)

// Principal identifies the authenticated requester.
type Principal struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

// AuditEntry is one immutable row in the privacy audit log. Entries are only
// ever appended; nothing in this core mutates or deletes them.
type AuditEntry struct {
	ID           int64          `json:"id" db:"id"`
	OwnerID      uuid.UUID      `json:"user_id" db:"user_id"`
	ActionType   string         `json:"action_type" db:"action_type"`
	DataType     string         `json:"data_type" db:"data_type"`
	ServiceType  string         `json:"service_type" db:"service_type"`
	PrivacyLevel string         `json:"privacy_level" db:"privacy_level"`
	Anonymized   bool           `json:"anonymized" db:"anonymized"`
	Granted      bool           `json:"granted" db:"granted"`
	AccessorID   uuid.UUID      `json:"accessed_by_user_id" db:"accessed_by_user_id"`
	AccessorRole string         `json:"accessed_by_role" db:"accessed_by_role"`
	Timestamp    time.Time      `json:"timestamp" db:"timestamp"`
	Details      map[string]any `json:"details,omitempty" db:"details"`
}
