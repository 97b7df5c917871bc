package dto

import "github.com/xiajason/jobfirst-future/internal/domain"

// ConsentStatusResponse lists the caller's grants alongside the per
// service:data-type usage counters accumulated against them.
type ConsentStatusResponse struct {
	Consents   []*domain.ConsentGrant `json:"consents"`
	UsageStats map[string]int64       `json:"usage_stats"`
}

// UsageHistoryResponse lists recent audited accesses of the caller's data.
type UsageHistoryResponse struct {
	History []*domain.AuditEntry `json:"history"`
}
