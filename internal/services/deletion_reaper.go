package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tax-e/taxe-admin/internal/database"
	"github.com/tax-e/taxe-admin/internal/models"
)

// DaysRemaining returns how many whole days are left in a deletion grace
// period. Clamped at zero: on and after the final day the countdown shows
// "0d left" until the reaper removes the account.
func DaysRemaining(requestedAt time.Time, graceDays int, now time.Time) int {
	elapsed := int(now.Sub(requestedAt).Hours() / 24)
	remaining := graceDays - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// graceExpired reports whether the grace period has fully elapsed.
func graceExpired(requestedAt time.Time, graceDays int, now time.Time) bool {
	return !now.Before(requestedAt.Add(time.Duration(graceDays) * 24 * time.Hour))
}

// StartDeletionReaper starts a background goroutine that permanently
// removes users whose deletion grace period has elapsed. Runs once on
// startup and then on every tick.
func StartDeletionReaper(interval time.Duration, defaultGraceDays int) {
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		reapExpiredDeletions(defaultGraceDays)

		for range ticker.C {
			reapExpiredDeletions(defaultGraceDays)
		}
	}()
}

func reapExpiredDeletions(defaultGraceDays int) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	col := database.DB.Collection("users")

	cursor, err := col.Find(ctx, bson.M{"delete_requested_at": bson.M{"$exists": true}})
	if err != nil {
		log.Printf("⚠️  deletion reaper: failed to list pending deletions: %v", err)
		return
	}
	defer cursor.Close(ctx)

	now := time.Now().UTC()
	reaped := 0
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			continue
		}
		if user.DeleteRequestedAt == nil {
			continue
		}

		graceDays := user.GraceDays
		if graceDays <= 0 {
			graceDays = defaultGraceDays
		}
		if !graceExpired(*user.DeleteRequestedAt, graceDays, now) {
			continue
		}

		if _, err := col.DeleteOne(ctx, bson.M{"_id": user.ID}); err != nil {
			log.Printf("⚠️  deletion reaper: failed to delete user %s: %v", user.ID.Hex(), err)
			continue
		}
		RecordLifecycleAction(nil, user.ID.Hex(), models.AuditActionReaped, user.DeleteReason)
		reaped++
	}

	if reaped > 0 {
		log.Printf("🧹 deletion reaper removed %d account(s) past their grace period", reaped)
	}
}
