package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tax-e/taxe-admin/internal/models"
)

// recordingAPI captures every remote mutation so tests can assert that
// aborted actions touched nothing.
type recordingAPI struct {
	calls []apiCall
	err   error
}

type apiCall struct {
	action string
	userID string
	reason string
}

func (a *recordingAPI) SuspendUser(ctx context.Context, userID, reason string) error {
	a.calls = append(a.calls, apiCall{"suspend", userID, reason})
	return a.err
}

func (a *recordingAPI) UnsuspendUser(ctx context.Context, userID string) error {
	a.calls = append(a.calls, apiCall{"unsuspend", userID, ""})
	return a.err
}

func (a *recordingAPI) RequestUserDeletion(ctx context.Context, userID, reason string) error {
	a.calls = append(a.calls, apiCall{"delete-request", userID, reason})
	return a.err
}

func (a *recordingAPI) DeleteUserNow(ctx context.Context, userID, reason string) error {
	a.calls = append(a.calls, apiCall{"delete-now", userID, reason})
	return a.err
}

// scriptedPrompter answers gates from canned values.
type scriptedPrompter struct {
	reason         string
	reasonOK       bool
	confirmAnswer  bool
	reasonPrompts  []string
	confirmPrompts []string
}

func (p *scriptedPrompter) Reason(prompt string) (string, bool) {
	p.reasonPrompts = append(p.reasonPrompts, prompt)
	return p.reason, p.reasonOK
}

func (p *scriptedPrompter) Confirm(prompt string) bool {
	p.confirmPrompts = append(p.confirmPrompts, prompt)
	return p.confirmAnswer
}

func testUser(suspended bool, deleteRequested bool) models.User {
	u := models.User{
		ID:          primitive.NewObjectID(),
		Name:        "Jordan Riley",
		Email:       "jordan@example.com",
		IsActive:    true,
		IsSuspended: suspended,
	}
	if deleteRequested {
		at := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
		u.DeleteRequestedAt = &at
	}
	return u
}

func TestSuspendSendsReason(t *testing.T) {
	api := &recordingAPI{}
	prompter := &scriptedPrompter{reason: "fraudulent receipts", reasonOK: true}
	d := NewDispatcher(api, prompter, 0)

	user := testUser(false, false)
	err := d.Suspend(context.Background(), user)
	require.NoError(t, err)

	require.Len(t, api.calls, 1)
	assert.Equal(t, "suspend", api.calls[0].action)
	assert.Equal(t, user.ID.Hex(), api.calls[0].userID)
	assert.Equal(t, "fraudulent receipts", api.calls[0].reason)
}

func TestSuspendEmptyReasonAborts(t *testing.T) {
	tests := []struct {
		name     string
		reason   string
		reasonOK bool
	}{
		{"cancelled entry", "", false},
		{"empty reason", "", true},
		{"whitespace-only reason", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &recordingAPI{}
			prompter := &scriptedPrompter{reason: tt.reason, reasonOK: tt.reasonOK}
			d := NewDispatcher(api, prompter, 0)

			err := d.Suspend(context.Background(), testUser(false, false))
			assert.ErrorIs(t, err, ErrAborted)
			assert.Empty(t, api.calls, "aborted action must not reach the API")
		})
	}
}

func TestSuspendAlreadySuspended(t *testing.T) {
	api := &recordingAPI{}
	prompter := &scriptedPrompter{reason: "x", reasonOK: true}
	d := NewDispatcher(api, prompter, 0)

	err := d.Suspend(context.Background(), testUser(true, false))
	assert.ErrorIs(t, err, ErrAlreadySuspended)
	assert.Empty(t, api.calls)
	assert.Empty(t, prompter.reasonPrompts, "precondition failures skip the gates")
}

func TestUnsuspendConfirmed(t *testing.T) {
	api := &recordingAPI{}
	prompter := &scriptedPrompter{confirmAnswer: true}
	d := NewDispatcher(api, prompter, 0)

	user := testUser(true, false)
	err := d.Unsuspend(context.Background(), user)
	require.NoError(t, err)

	require.Len(t, api.calls, 1)
	assert.Equal(t, "unsuspend", api.calls[0].action)
	assert.Equal(t, user.ID.Hex(), api.calls[0].userID)
	assert.Empty(t, prompter.reasonPrompts, "unsuspend takes no reason")
}

func TestUnsuspendDeclined(t *testing.T) {
	api := &recordingAPI{}
	prompter := &scriptedPrompter{confirmAnswer: false}
	d := NewDispatcher(api, prompter, 0)

	err := d.Unsuspend(context.Background(), testUser(true, false))
	assert.ErrorIs(t, err, ErrAborted)
	assert.Empty(t, api.calls)
}

func TestUnsuspendNotSuspended(t *testing.T) {
	api := &recordingAPI{}
	prompter := &scriptedPrompter{confirmAnswer: true}
	d := NewDispatcher(api, prompter, 0)

	err := d.Unsuspend(context.Background(), testUser(false, false))
	assert.ErrorIs(t, err, ErrNotSuspended)
	assert.Empty(t, api.calls)
	assert.Empty(t, prompter.confirmPrompts)
}

func TestDeletePhaseARequestsDeletion(t *testing.T) {
	api := &recordingAPI{}
	prompter := &scriptedPrompter{reason: "account closure request", reasonOK: true}
	d := NewDispatcher(api, prompter, 0)

	user := testUser(false, false)
	err := d.Delete(context.Background(), user)
	require.NoError(t, err)

	require.Len(t, api.calls, 1)
	assert.Equal(t, "delete-request", api.calls[0].action)
	assert.Equal(t, "account closure request", api.calls[0].reason)
	assert.Empty(t, prompter.confirmPrompts, "requesting deletion is reversible, no confirmation gate")
}

func TestDeletePhaseBDeletesNow(t *testing.T) {
	api := &recordingAPI{}
	prompter := &scriptedPrompter{reason: "grace period waived", reasonOK: true, confirmAnswer: true}
	d := NewDispatcher(api, prompter, 0)

	user := testUser(false, true)
	err := d.Delete(context.Background(), user)
	require.NoError(t, err)

	require.Len(t, api.calls, 1)
	assert.Equal(t, "delete-now", api.calls[0].action)
	assert.Equal(t, "grace period waived", api.calls[0].reason)

	require.Len(t, prompter.confirmPrompts, 1)
	assert.Contains(t, prompter.confirmPrompts[0], "PERMANENTLY delete")
	assert.Contains(t, prompter.confirmPrompts[0], "cannot be undone")
}

func TestDeletePhaseBDeclinedConfirmation(t *testing.T) {
	api := &recordingAPI{}
	prompter := &scriptedPrompter{reason: "x", reasonOK: true, confirmAnswer: false}
	d := NewDispatcher(api, prompter, 0)

	err := d.Delete(context.Background(), testUser(false, true))
	assert.ErrorIs(t, err, ErrAborted)
	assert.Empty(t, api.calls)
	assert.Empty(t, prompter.reasonPrompts, "confirmation is declined before the reason is asked")
}

// blockingAPI parks the first call until released so a second dispatch can
// observe the in-flight gate.
type blockingAPI struct {
	recordingAPI
	entered  chan struct{}
	release  chan struct{}
	blockOne bool
}

func (a *blockingAPI) SuspendUser(ctx context.Context, userID, reason string) error {
	if a.blockOne {
		a.blockOne = false
		close(a.entered)
		<-a.release
	}
	return a.recordingAPI.SuspendUser(ctx, userID, reason)
}

func TestOnlyOneActionInFlight(t *testing.T) {
	api := &blockingAPI{
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
		blockOne: true,
	}
	prompter := &scriptedPrompter{reason: "reason", reasonOK: true}
	d := NewDispatcher(api, prompter, time.Minute)

	first := make(chan error, 1)
	go func() {
		first <- d.Suspend(context.Background(), testUser(false, false))
	}()

	<-api.entered

	err := d.Suspend(context.Background(), testUser(false, false))
	assert.ErrorIs(t, err, ErrActionInFlight)

	close(api.release)
	require.NoError(t, <-first)
	assert.Len(t, api.calls, 1, "the gated second attempt never reached the API")
}

func TestFailedActionReportsError(t *testing.T) {
	api := &recordingAPI{err: assert.AnError}
	prompter := &scriptedPrompter{reason: "reason", reasonOK: true}
	d := NewDispatcher(api, prompter, 0)

	err := d.Suspend(context.Background(), testUser(false, false))
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, d.InFlight(), "the gate is released after a failure")
}
