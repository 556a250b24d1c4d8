package console

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tax-e/taxe-admin/internal/lifecycle"
	"github.com/tax-e/taxe-admin/internal/models"
)

// fakeBackend serves the presenter both as the listing source and as the
// dispatcher's API, counting listing fetches so tests can pin down exactly
// when a reload happens.
type fakeBackend struct {
	users     []models.User
	listCalls int
	listErr   error
	mutateErr error
	mutations []string
}

func (f *fakeBackend) ListUsers(ctx context.Context) ([]models.User, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.users, nil
}

func (f *fakeBackend) SuspendUser(ctx context.Context, userID, reason string) error {
	f.mutations = append(f.mutations, "suspend:"+userID)
	return f.mutateErr
}

func (f *fakeBackend) UnsuspendUser(ctx context.Context, userID string) error {
	f.mutations = append(f.mutations, "unsuspend:"+userID)
	return f.mutateErr
}

func (f *fakeBackend) RequestUserDeletion(ctx context.Context, userID, reason string) error {
	f.mutations = append(f.mutations, "delete-request:"+userID)
	return f.mutateErr
}

func (f *fakeBackend) DeleteUserNow(ctx context.Context, userID, reason string) error {
	f.mutations = append(f.mutations, "delete-now:"+userID)
	return f.mutateErr
}

// yesPrompter passes every gate with a fixed reason.
type yesPrompter struct{}

func (yesPrompter) Reason(prompt string) (string, bool) { return "test reason", true }
func (yesPrompter) Confirm(prompt string) bool          { return true }

// noPrompter refuses every gate.
type noPrompter struct{}

func (noPrompter) Reason(prompt string) (string, bool) { return "", false }
func (noPrompter) Confirm(prompt string) bool          { return false }

func namedUser(name, email, phone, tin string) models.User {
	return models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		TIN:       tin,
		IsActive:  true,
		CreatedAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func newTestPresenter(t *testing.T, backend *fakeBackend, prompter lifecycle.Prompter) *Presenter {
	t.Helper()
	d := lifecycle.NewDispatcher(backend, prompter, 0)
	p := NewPresenter(backend, d)
	require.NoError(t, p.Load(context.Background()))
	return p
}

func TestFilter(t *testing.T) {
	backend := &fakeBackend{users: []models.User{
		namedUser("Alice Johnson", "alice@example.com", "+15550001", "TIN-1001"),
		namedUser("Bob Smith", "bob@taxmail.org", "", ""),
		namedUser("Carol Jones", "carol@example.com", "+15550003", "TIN-2002"),
		{ID: primitive.NewObjectID()}, // record with every field missing
	}}
	p := newTestPresenter(t, backend, yesPrompter{})

	tests := []struct {
		name      string
		query     string
		wantNames []string
	}{
		{"empty query returns all", "", []string{"Alice Johnson", "Bob Smith", "Carol Jones", ""}},
		{"matches name case-insensitively", "ALICE", []string{"Alice Johnson"}},
		{"substring across users", "jo", []string{"Alice Johnson", "Carol Jones"}},
		{"matches email domain", "taxmail", []string{"Bob Smith"}},
		{"matches phone", "5550003", []string{"Carol Jones"}},
		{"matches tax id", "tin-1001", []string{"Alice Johnson"}},
		{"no match", "zzz", nil},
		{"surrounding whitespace is ignored", "  alice  ", []string{"Alice Johnson"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, u := range p.Filter(tt.query) {
				got = append(got, u.Name)
			}
			assert.Equal(t, tt.wantNames, got)
		})
	}
}

func TestFilterAllFieldsMissing(t *testing.T) {
	backend := &fakeBackend{users: []models.User{{ID: primitive.NewObjectID()}}}
	p := newTestPresenter(t, backend, yesPrompter{})

	assert.Empty(t, p.Filter("anything"), "an all-empty record never matches a non-empty query")
	assert.Len(t, p.Filter(""), 1)
}

func TestSuccessfulMutationReloadsListing(t *testing.T) {
	user := namedUser("Alice Johnson", "alice@example.com", "", "")
	backend := &fakeBackend{users: []models.User{user}}
	p := newTestPresenter(t, backend, yesPrompter{})
	require.Equal(t, 1, backend.listCalls)

	err := p.Suspend(context.Background(), user.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, []string{"suspend:" + user.ID.Hex()}, backend.mutations)
	assert.Equal(t, 2, backend.listCalls, "success forces a server round-trip, never a local patch")
}

func TestAbortedMutationDoesNotReload(t *testing.T) {
	user := namedUser("Alice Johnson", "alice@example.com", "", "")
	backend := &fakeBackend{users: []models.User{user}}
	p := newTestPresenter(t, backend, noPrompter{})

	err := p.Suspend(context.Background(), user.ID.Hex())
	assert.ErrorIs(t, err, lifecycle.ErrAborted)
	assert.Empty(t, backend.mutations)
	assert.Equal(t, 1, backend.listCalls, "aborting must leave the listing untouched")
}

func TestFailedMutationDoesNotReload(t *testing.T) {
	user := namedUser("Alice Johnson", "alice@example.com", "", "")
	backend := &fakeBackend{users: []models.User{user}, mutateErr: errors.New("boom")}
	p := newTestPresenter(t, backend, yesPrompter{})

	err := p.Suspend(context.Background(), user.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, 1, backend.listCalls)
}

func TestMutateUnknownUser(t *testing.T) {
	backend := &fakeBackend{users: []models.User{namedUser("Alice Johnson", "a@example.com", "", "")}}
	p := newTestPresenter(t, backend, yesPrompter{})

	err := p.Suspend(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, backend.mutations)
}

func TestRenderShowsDerivedStatus(t *testing.T) {
	days := 3
	pending := namedUser("Dana Cruz", "dana@example.com", "", "")
	at := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	pending.DeleteRequestedAt = &at
	pending.DeletePhaseDaysRemaining = &days

	suspended := namedUser("Bob Smith", "bob@example.com", "", "")
	suspended.IsSuspended = true

	backend := &fakeBackend{users: []models.User{pending, suspended}}
	p := newTestPresenter(t, backend, yesPrompter{})

	var buf bytes.Buffer
	p.Render(&buf, "")
	out := buf.String()

	assert.Contains(t, out, "Pending deletion (3d left)")
	assert.Contains(t, out, "Suspended")
	assert.Contains(t, out, "Dana Cruz")
}

func TestRenderEmptyListing(t *testing.T) {
	backend := &fakeBackend{users: []models.User{namedUser("Alice Johnson", "a@example.com", "", "")}}
	p := newTestPresenter(t, backend, yesPrompter{})

	var buf bytes.Buffer
	p.Render(&buf, "no-such-user")
	assert.Contains(t, buf.String(), "No users found matching your search.")
}
