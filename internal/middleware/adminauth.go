package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/tax-e/taxe-admin/internal/services"
)

type contextKey string

// adminIDKey carries the authenticated admin's ID through the request context.
const adminIDKey contextKey = "admin_id"

// ExtractBearerToken pulls the token out of an "Authorization: Bearer x" header.
func ExtractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AdminAuth authenticates requests with a bearer session token. A missing
// or invalid token answers 401 with the standard envelope; the console
// treats that as "session over" and sends the operator back to login.
func AdminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			// Browser WebSocket clients cannot set headers; accept ?token=
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			unauthorized(w)
			return
		}

		adminID, ok, err := services.ValidateAdminSession(token)
		if err != nil || !ok {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), adminIDKey, adminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminIDFromContext returns the authenticated admin's ID, if any.
func AdminIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(adminIDKey).(uuid.UUID)
	return id, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"message":"invalid or expired session token"}`))
}
