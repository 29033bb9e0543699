package models

import "time"

// AuditStatus marks whether the attempted transition succeeded.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// AuditLogEntry is an immutable record of an attempted or completed
// transition. The engine only ever writes these; nothing in the core reads
// them back.
type AuditLogEntry struct {
	ID          string         `json:"id"`
	ActorID     string         `json:"actor_id"`
	ActorName   string         `json:"actor_name,omitempty"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
	ResourceRef string         `json:"resource_ref"`
	Status      AuditStatus    `json:"status"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}
