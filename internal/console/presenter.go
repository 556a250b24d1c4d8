// Package console holds the user-listing presenter of the admin console:
// the in-memory user collection, its search filter, and the
// reload-after-mutation discipline around the lifecycle dispatcher.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/tax-e/taxe-admin/internal/lifecycle"
	"github.com/tax-e/taxe-admin/internal/models"
)

// Lister is the read side of the admin client the presenter needs.
type Lister interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// ErrUserNotFound is returned when a lifecycle action targets an id that
// is not in the loaded listing.
var ErrUserNotFound = errors.New("console: no such user in the current listing")

// Presenter owns the cached user collection. Local state is never patched
// after a mutation: the whole listing is re-fetched so status labels and
// the days-remaining countdown always reflect server-computed truth.
//
// Confined to the single console loop; the busy flag serializes mutations
// without blocking reads of the already-loaded collection.
type Presenter struct {
	lister     Lister
	dispatcher *lifecycle.Dispatcher

	users []models.User
	busy  bool
}

func NewPresenter(lister Lister, dispatcher *lifecycle.Dispatcher) *Presenter {
	return &Presenter{lister: lister, dispatcher: dispatcher}
}

// Load fetches the full listing, replacing the cached collection.
func (p *Presenter) Load(ctx context.Context) error {
	users, err := p.lister.ListUsers(ctx)
	if err != nil {
		return err
	}
	p.users = users
	return nil
}

// Users returns the loaded collection. Always readable, also while a
// mutation is in flight.
func (p *Presenter) Users() []models.User {
	return p.users
}

// Busy reports whether a lifecycle mutation is being applied. The console
// shows an "applying changes" indicator while true.
func (p *Presenter) Busy() bool {
	return p.busy
}

// matchesQuery reports whether a user matches a case-insensitive substring
// query. Fields are ORed: any one match includes the record. Missing
// optional fields behave as empty strings.
func matchesQuery(u models.User, query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	for _, field := range []string{u.Name, u.Email, u.Phone, u.TIN} {
		if field == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Filter returns the users matching the query, in listing order.
func (p *Presenter) Filter(query string) []models.User {
	query = strings.TrimSpace(query)
	var out []models.User
	for _, u := range p.users {
		if matchesQuery(u, query) {
			out = append(out, u)
		}
	}
	return out
}

// Find looks a user up by hex id in the loaded listing.
func (p *Presenter) Find(userID string) (models.User, bool) {
	for _, u := range p.users {
		if u.ID.Hex() == userID {
			return u, true
		}
	}
	return models.User{}, false
}

// Suspend runs the suspend action for the given user id, then reloads the
// listing if the mutation went through.
func (p *Presenter) Suspend(ctx context.Context, userID string) error {
	return p.mutate(ctx, userID, p.dispatcher.Suspend)
}

// Unsuspend runs the unsuspend action, then reloads on success.
func (p *Presenter) Unsuspend(ctx context.Context, userID string) error {
	return p.mutate(ctx, userID, p.dispatcher.Unsuspend)
}

// Delete runs the phase-dependent delete action, then reloads on success.
func (p *Presenter) Delete(ctx context.Context, userID string) error {
	return p.mutate(ctx, userID, p.dispatcher.Delete)
}

// mutate applies one lifecycle action and reloads the listing only after
// success. Aborted or failed actions leave the cached collection exactly
// as it was.
func (p *Presenter) mutate(ctx context.Context, userID string, action func(context.Context, models.User) error) error {
	user, ok := p.Find(userID)
	if !ok {
		return ErrUserNotFound
	}

	p.busy = true
	err := action(ctx, user)
	p.busy = false

	if err != nil {
		return err
	}
	return p.Load(ctx)
}

// Render writes the filtered listing as a table. Optional fields render
// as "-", matching the web console.
func (p *Presenter) Render(w io.Writer, query string) {
	users := p.Filter(query)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tEMAIL\tPHONE\tTIN\tJOINED\tSTATUS")
	for i, u := range users {
		status := lifecycle.DeriveStatus(u)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			u.Name,
			u.Email,
			orDash(u.Phone),
			orDash(u.TIN),
			u.CreatedAt.Format("2006-01-02"),
			status.Label,
		)
	}
	tw.Flush()

	if len(users) == 0 {
		fmt.Fprintln(w, "No users found matching your search.")
	}
	if p.busy {
		fmt.Fprintln(w, "Applying changes...")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
