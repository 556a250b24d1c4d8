package adminclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "admin@tax-e.live", body["email"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"token":   "session-token-1",
			"user":    map[string]string{"id": "a1", "name": "Admin", "email": "admin@tax-e.live"},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	admin, err := c.Login(context.Background(), "admin@tax-e.live", "secret")
	require.NoError(t, err)

	assert.Equal(t, "Admin", admin.Name)
	assert.True(t, c.HasSession())
}

func TestRequestsCarryBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": []interface{}{}})
	}))
	defer server.Close()

	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.SetToken("session-token-2"))

	c := New(server.URL, WithTokenStore(tokens))
	_, err := c.ListUsers(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer session-token-2", gotAuth)
}

func TestUnauthorizedClearsSessionAndNotifies(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Invalid session"})
		}))

		tokens := &MemoryTokenStore{}
		require.NoError(t, tokens.SetToken("stale-token"))

		notified := 0
		c := New(server.URL,
			WithTokenStore(tokens),
			WithAuthFailureHandler(func() { notified++ }),
		)

		_, err := c.ListUsers(context.Background())
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.False(t, c.HasSession(), "status %d must clear the token", status)
		assert.Equal(t, 1, notified)

		server.Close()
	}
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "User is already suspended"})
	}))
	defer server.Close()

	c := New(server.URL)
	err := c.SuspendUser(context.Background(), "64f000000000000000000001", "reason")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "User is already suspended", apiErr.Message)
}

func TestDeleteUserNowSendsReasonInBody(t *testing.T) {
	var gotMethod, gotPath, gotReason string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotReason = body["reason"]

		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer server.Close()

	c := New(server.URL)
	err := c.DeleteUserNow(context.Background(), "64f000000000000000000001", "grace waived")
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/users/64f000000000000000000001", gotPath)
	assert.Equal(t, "grace waived", gotReason)
}

func TestListUsersDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"success": true,
			"data": [{
				"_id": "64f000000000000000000001",
				"name": "Alice Johnson",
				"email": "alice@example.com",
				"isActive": true,
				"deletePhaseDaysRemaining": 0,
				"createdAt": "2026-01-15T00:00:00Z"
			}]
		}`))
	}))
	defer server.Close()

	c := New(server.URL)
	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)

	u := users[0]
	assert.Equal(t, "Alice Johnson", u.Name)
	assert.True(t, u.IsActive)
	require.NotNil(t, u.DeletePhaseDaysRemaining, "an explicit 0 countdown must survive decoding")
	assert.Equal(t, 0, *u.DeletePhaseDaysRemaining)
}

func TestLogoutToleratesDeadSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.SetToken("expired"))

	c := New(server.URL, WithTokenStore(tokens))
	assert.NoError(t, c.Logout(context.Background()))
	assert.False(t, c.HasSession())
}
