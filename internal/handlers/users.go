package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tax-e/taxe-admin/internal/database"
	"github.com/tax-e/taxe-admin/internal/middleware"
	"github.com/tax-e/taxe-admin/internal/models"
	"github.com/tax-e/taxe-admin/internal/services"
)

// DeletionGraceDays is the default grace period; main overrides it from config.
var DeletionGraceDays = 10

// reasonRequest is the body of every lifecycle mutation that needs a
// human-entered justification.
type reasonRequest struct {
	Reason string `json:"reason"`
}

// GetUsers handles GET /api/admin/users. Days remaining in a deletion
// grace period are computed here, per request, so the console always
// shows server time, never client countdown arithmetic.
func GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("users").Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to decode users")
		return
	}

	now := time.Now().UTC()
	for i := range users {
		if users[i].DeleteRequestedAt == nil {
			continue
		}
		graceDays := users[i].GraceDays
		if graceDays <= 0 {
			graceDays = DeletionGraceDays
		}
		remaining := services.DaysRemaining(*users[i].DeleteRequestedAt, graceDays, now)
		users[i].DeletePhaseDaysRemaining = &remaining
	}

	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    users,
	})
}

// fetchUser loads one user by hex id. Returns (nil, nil) when not found.
func fetchUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// decodeReason reads and validates the justification body. Lifecycle
// mutations without a non-empty reason are rejected before any store access.
func decodeReason(r *http.Request) (string, bool) {
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", false
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return "", false
	}
	return reason, true
}

// SuspendUser handles PATCH /api/admin/users/{id}/suspend.
func SuspendUser(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	reason, ok := decodeReason(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "A suspension reason is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := fetchUser(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if user.IsSuspended {
		writeError(w, http.StatusConflict, "User is already suspended")
		return
	}

	_, err = database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"is_suspended":   true,
			"suspend_reason": reason,
			"suspended_at":   time.Now().UTC(),
		}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to suspend user")
		return
	}

	recordAudit(r, userID, models.AuditActionSuspend, reason)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User suspended",
	})
}

// UnsuspendUser handles PATCH /api/admin/users/{id}/unsuspend. No reason
// body; the console gates this behind an explicit confirmation instead.
func UnsuspendUser(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := fetchUser(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !user.IsSuspended {
		writeError(w, http.StatusConflict, "User is not suspended")
		return
	}

	_, err = database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$set":   bson.M{"is_suspended": false},
			"$unset": bson.M{"suspend_reason": "", "suspended_at": ""},
		},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to unsuspend user")
		return
	}

	recordAudit(r, userID, models.AuditActionUnsuspend, "")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User unsuspended",
	})
}

// RequestUserDeletion handles POST /api/admin/users/{id}/delete-request.
// Starts the grace period: the account is marked pending deletion but not
// erased until the period elapses or an operator confirms immediate removal.
func RequestUserDeletion(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	reason, ok := decodeReason(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "A deletion reason is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := fetchUser(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if user.DeleteRequestedAt != nil {
		writeError(w, http.StatusConflict, "Deletion has already been requested for this user")
		return
	}

	_, err = database.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"delete_requested_at": time.Now().UTC(),
			"delete_reason":       reason,
			"grace_days":          DeletionGraceDays,
		}},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to request deletion")
		return
	}

	recordAudit(r, userID, models.AuditActionDeleteRequest, reason)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Deletion requested; grace period started",
	})
}

// DeleteUserNow handles DELETE /api/admin/users/{id}. Permanent and
// unrecoverable; only allowed once a deletion request has put the account
// into its grace period.
func DeleteUserNow(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	reason, ok := decodeReason(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "A deletion reason is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := fetchUser(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if user.DeleteRequestedAt == nil {
		writeError(w, http.StatusConflict, "Deletion must be requested before the account can be removed")
		return
	}

	if _, err = database.DB.Collection("users").DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	recordAudit(r, userID, models.AuditActionDeleteNow, reason)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User permanently deleted",
	})
}

func recordAudit(r *http.Request, userID primitive.ObjectID, action, reason string) {
	if adminID, ok := middleware.AdminIDFromContext(r.Context()); ok {
		services.RecordLifecycleAction(&adminID, userID.Hex(), action, reason)
		return
	}
	services.RecordLifecycleAction(nil, userID.Hex(), action, reason)
}

// GetAuditLog handles GET /api/admin/audit.
func GetAuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := services.RecentAuditEntries(100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch audit log")
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    entries,
	})
}
