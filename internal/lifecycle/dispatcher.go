package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tax-e/taxe-admin/internal/models"
)

// API is the slice of the admin client the dispatcher mutates through.
type API interface {
	SuspendUser(ctx context.Context, userID, reason string) error
	UnsuspendUser(ctx context.Context, userID string) error
	RequestUserDeletion(ctx context.Context, userID, reason string) error
	DeleteUserNow(ctx context.Context, userID, reason string) error
}

// Prompter captures operator input for the gates every lifecycle mutation
// must pass. Implementations may read stdin, drive a dialog, or be
// scripted in tests; the dispatcher never talks to a terminal itself.
type Prompter interface {
	// Reason asks for justification text. ok is false when the operator
	// cancels entry.
	Reason(prompt string) (text string, ok bool)
	// Confirm asks a yes/no question and reports the answer.
	Confirm(prompt string) bool
}

// ErrAborted means the operator cancelled at a gate or supplied an empty
// reason. Nothing was sent; the listing is untouched. Callers treat it as
// a quiet no-op, not a failure to display.
var ErrAborted = errors.New("lifecycle: action aborted by operator")

// ErrActionInFlight means another lifecycle mutation had not resolved yet.
// Mutations are serialized at the console: one outstanding request at a
// time, for any user.
var ErrActionInFlight = errors.New("lifecycle: another action is still in flight")

// Precondition failures: the action does not apply to the user's current
// state, so no gates are run and nothing is sent.
var (
	ErrAlreadySuspended = errors.New("lifecycle: user is already suspended")
	ErrNotSuspended     = errors.New("lifecycle: user is not suspended")
)

// DefaultActionTimeout bounds each remote mutation. Without it a hung
// request would hold the in-flight gate forever.
const DefaultActionTimeout = 15 * time.Second

// command describes one lifecycle mutation and the gates it requires.
// Gates always run before the network call; a refused gate means zero
// side effects.
type command struct {
	action               string
	requiresReason       bool
	requiresConfirmation bool
	confirmPrompt        string
	reasonPrompt         string
	call                 func(ctx context.Context, reason string) error
}

// Dispatcher orchestrates lifecycle mutations: capture justification,
// call the remote API, report the outcome. It never patches local state;
// after a successful mutation the caller reloads the listing from the
// server, which stays the single source of truth.
//
// Not safe for concurrent use; it belongs to the single console event
// loop, which is exactly where the in-flight gate is enforced.
type Dispatcher struct {
	api      API
	prompter Prompter
	timeout  time.Duration
	inFlight bool
}

// NewDispatcher wires a dispatcher. A non-positive timeout falls back to
// DefaultActionTimeout.
func NewDispatcher(api API, prompter Prompter, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultActionTimeout
	}
	return &Dispatcher{api: api, prompter: prompter, timeout: timeout}
}

// InFlight reports whether a mutation is outstanding.
func (d *Dispatcher) InFlight() bool {
	return d.inFlight
}

// Suspend blocks a user's account. Requires a non-empty operator reason.
func (d *Dispatcher) Suspend(ctx context.Context, user models.User) error {
	if user.IsSuspended {
		return ErrAlreadySuspended
	}
	return d.run(ctx, command{
		action:         "suspend",
		requiresReason: true,
		reasonPrompt:   fmt.Sprintf("Reason for suspending %s", user.Name),
		call: func(ctx context.Context, reason string) error {
			return d.api.SuspendUser(ctx, user.ID.Hex(), reason)
		},
	})
}

// Unsuspend lifts a suspension. Requires explicit confirmation; the
// server decides whether the user comes back active or inactive.
func (d *Dispatcher) Unsuspend(ctx context.Context, user models.User) error {
	if !user.IsSuspended {
		return ErrNotSuspended
	}
	return d.run(ctx, command{
		action:               "unsuspend",
		requiresConfirmation: true,
		confirmPrompt:        fmt.Sprintf("Lift the suspension on %s?", user.Name),
		call: func(ctx context.Context, reason string) error {
			return d.api.UnsuspendUser(ctx, user.ID.Hex())
		},
	})
}

// Delete is the single user-facing deletion action; the user's current
// phase picks the transition.
//
// Phase A (no deletion requested yet): request deletion, which starts the
// server-side grace period.
//
// Phase B (deletion already pending): permanently delete now. Gated by a
// destructive confirmation that states the irreversibility, plus a reason.
func (d *Dispatcher) Delete(ctx context.Context, user models.User) error {
	if user.DeleteRequestedAt == nil {
		return d.run(ctx, command{
			action:         "delete-request",
			requiresReason: true,
			reasonPrompt:   fmt.Sprintf("Reason for requesting deletion of %s", user.Name),
			call: func(ctx context.Context, reason string) error {
				return d.api.RequestUserDeletion(ctx, user.ID.Hex(), reason)
			},
		})
	}

	return d.run(ctx, command{
		action:               "delete-now",
		requiresReason:       true,
		requiresConfirmation: true,
		confirmPrompt: fmt.Sprintf(
			"PERMANENTLY delete %s right now? This cannot be undone.", user.Name),
		reasonPrompt: fmt.Sprintf("Reason for permanently deleting %s", user.Name),
		call: func(ctx context.Context, reason string) error {
			return d.api.DeleteUserNow(ctx, user.ID.Hex(), reason)
		},
	})
}

// run takes a command through its gates and, only if every gate passes,
// through the remote call. The in-flight flag is held only around the
// network call; aborted commands never touch it.
func (d *Dispatcher) run(ctx context.Context, cmd command) error {
	if d.inFlight {
		return ErrActionInFlight
	}

	if cmd.requiresConfirmation {
		if !d.prompter.Confirm(cmd.confirmPrompt) {
			return ErrAborted
		}
	}

	var reason string
	if cmd.requiresReason {
		text, ok := d.prompter.Reason(cmd.reasonPrompt)
		text = strings.TrimSpace(text)
		if !ok || text == "" {
			return ErrAborted
		}
		reason = text
	}

	d.inFlight = true
	defer func() { d.inFlight = false }()

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	return cmd.call(callCtx, reason)
}
