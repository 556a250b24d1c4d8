package services

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tax-e/taxe-admin/internal/database"
	"github.com/tax-e/taxe-admin/internal/models"
)

// RecordLifecycleAction appends one row to the lifecycle audit log.
// Audit failures are logged but never fail the lifecycle action itself;
// the remote mutation already happened and must stay authoritative.
func RecordLifecycleAction(adminID *uuid.UUID, userID, action, reason string) {
	_, err := database.PostgresDB.Exec(`
		INSERT INTO lifecycle_audit (id, created_at, admin_id, user_id, action, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), time.Now(), adminID, userID, action, reason)
	if err != nil {
		log.Printf("⚠️  failed to record lifecycle audit entry (%s %s): %v", action, userID, err)
	}
}

// RecentAuditEntries returns the newest audit log rows, capped at limit.
func RecentAuditEntries(limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := database.PostgresDB.Query(`
		SELECT id, created_at, admin_id, user_id, action, COALESCE(reason, '')
		FROM lifecycle_audit
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var adminID uuid.NullUUID
		if err := rows.Scan(&e.ID, &e.CreatedAt, &adminID, &e.UserID, &e.Action, &e.Reason); err != nil {
			return nil, err
		}
		if adminID.Valid {
			id := adminID.UUID
			e.AdminID = &id
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
