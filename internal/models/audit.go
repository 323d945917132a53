package models

import "time"

// AuditEntry records one mutation applied through the graph service.
type AuditEntry struct {
	Action     string         `json:"action"`
	Graph      string         `json:"graph"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Actor      string         `json:"actor,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
