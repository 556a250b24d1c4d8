package models

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle audit actions.
const (
	AuditActionSuspend       = "suspend"
	AuditActionUnsuspend     = "unsuspend"
	AuditActionDeleteRequest = "delete_request"
	AuditActionDeleteNow     = "delete_now"
	AuditActionReaped        = "reaped" // grace period elapsed, removed by the reaper
)

// AuditEntry is one row of the lifecycle audit log (PostgreSQL).
type AuditEntry struct {
	ID        uuid.UUID  `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	AdminID   *uuid.UUID `json:"admin_id,omitempty"` // nil for reaper entries
	UserID    string     `json:"user_id"`
	Action    string     `json:"action"`
	Reason    string     `json:"reason,omitempty"`
}
