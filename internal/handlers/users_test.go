package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// Validation runs before any store access, so the rejection paths are
// testable without a database.

func patchSuspend(t *testing.T, userID, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	r.Patch("/users/{id}/suspend", SuspendUser)

	req := httptest.NewRequest(http.MethodPatch, "/users/"+userID+"/suspend", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSuspendUserRejectsInvalidID(t *testing.T) {
	rec := patchSuspend(t, "not-an-object-id", `{"reason":"fraud"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid user ID")
}

func TestSuspendUserRequiresReason(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing body", ""},
		{"empty object", `{}`},
		{"empty reason", `{"reason":""}`},
		{"whitespace reason", `{"reason":"   "}`},
		{"malformed json", `{"reason":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := patchSuspend(t, "64f000000000000000000001", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "reason is required")
		})
	}
}

func TestRequestUserDeletionRequiresReason(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/users/{id}/delete-request", RequestUserDeletion)

	req := httptest.NewRequest(http.MethodPost,
		"/users/64f000000000000000000001/delete-request", strings.NewReader(`{"reason":" "}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteUserNowRequiresReason(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/users/{id}", DeleteUserNow)

	req := httptest.NewRequest(http.MethodDelete,
		"/users/64f000000000000000000001", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
