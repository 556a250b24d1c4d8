package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tax-e/taxe-admin/internal/database"
	"github.com/tax-e/taxe-admin/internal/middleware"
	"github.com/tax-e/taxe-admin/internal/services"
	"github.com/tax-e/taxe-admin/pkg/utils"
)

// LoginRequest is the admin console login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session token the console attaches to every
// subsequent request.
type LoginResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Token   string                 `json:"token,omitempty"`
	User    map[string]interface{} `json:"user,omitempty"`
}

// AdminLogin handles POST /api/admin/login.
func AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	var adminID uuid.UUID
	var name, email, passwordHash string
	var isActive bool
	var createdAt time.Time

	err := database.PostgresDB.QueryRow(`
		SELECT id, created_at, name, email, password_hash, is_active
		FROM admins
		WHERE LOWER(email) = $1
	`, req.Email).Scan(&adminID, &createdAt, &name, &email, &passwordHash, &isActive)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !isActive {
		writeError(w, http.StatusForbidden, "Admin account is inactive")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := services.CreateAdminSession(adminID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		User: map[string]interface{}{
			"id":    adminID.String(),
			"name":  name,
			"email": email,
		},
	})
}

// AdminLogout invalidates the current session token.
func AdminLogout(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractBearerToken(r.Header.Get("Authorization"))
	if err := services.InvalidateAdminSession(token); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to invalidate session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Signed out",
	})
}

// UpdateProfileRequest carries optional fields; absent fields are untouched.
type UpdateProfileRequest struct {
	Name     string `json:"name,omitempty"`
	Password string `json:"password,omitempty"`
}

// UpdateProfile handles PUT /api/admin/profile for the signed-in admin.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.AdminIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" && req.Password == "" {
		writeError(w, http.StatusBadRequest, "Nothing to update")
		return
	}
	if req.Password != "" && len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	if req.Name != "" {
		_, err := database.PostgresDB.Exec(`
			UPDATE admins SET name = $1, updated_at = $2 WHERE id = $3
		`, req.Name, time.Now(), adminID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}

	if req.Password != "" {
		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		_, err = database.PostgresDB.Exec(`
			UPDATE admins SET password_hash = $1, updated_at = $2 WHERE id = $3
		`, hashed, time.Now(), adminID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update password")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile updated successfully",
	})
}

// CreateAdminRequest is the payload for creating a new console operator.
type CreateAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateAdmin handles POST /api/admin/create-admin.
func CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	var existing string
	err := database.PostgresDB.QueryRow(`SELECT email FROM admins WHERE LOWER(email) = $1`, req.Email).Scan(&existing)
	if err == nil {
		writeError(w, http.StatusConflict, "Admin with this email already exists")
		return
	} else if err != sql.ErrNoRows {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	adminID := uuid.New()
	now := time.Now()
	_, err = database.PostgresDB.Exec(`
		INSERT INTO admins (id, created_at, updated_at, name, email, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, adminID, now, now, req.Name, req.Email, hashed, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create admin account")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "New admin created successfully",
		"admin": map[string]interface{}{
			"id":         adminID.String(),
			"name":       req.Name,
			"email":      req.Email,
			"created_at": now,
		},
	})
}
