// Package lifecycle implements the user lifecycle core of the admin
// console: deriving a single display status from a user's independent
// lifecycle flags, and dispatching suspend/unsuspend/delete actions
// against the admin API with operator-entered justification.
package lifecycle

import (
	"fmt"

	"github.com/tax-e/taxe-admin/internal/models"
)

// Category is the machine-readable status of a user.
type Category string

const (
	CategoryActive          Category = "active"
	CategorySuspended       Category = "suspended"
	CategoryInactive        Category = "inactive"
	CategoryPendingDeletion Category = "pending-deletion"
)

// Status is the single derived display status of a user.
type Status struct {
	Label    string
	Category Category
}

// statusRule is one entry of the ordered precedence list. The first rule
// whose match function returns true decides the status.
type statusRule struct {
	match func(u models.User) bool
	build func(u models.User) Status
}

// statusRules encodes the precedence contract:
// PendingDeletion > Suspended > Active > Inactive.
// A pending deletion request overrides every other flag.
var statusRules = []statusRule{
	{
		match: func(u models.User) bool { return u.DeleteRequestedAt != nil },
		build: func(u models.User) Status {
			label := "Pending deletion"
			// The days-remaining suffix must render for a value of 0 too:
			// the presence of the count is what matters, not its truthiness.
			if u.DeletePhaseDaysRemaining != nil {
				label = fmt.Sprintf("Pending deletion (%dd left)", *u.DeletePhaseDaysRemaining)
			}
			return Status{Label: label, Category: CategoryPendingDeletion}
		},
	},
	{
		match: func(u models.User) bool { return u.IsSuspended },
		build: func(u models.User) Status {
			return Status{Label: "Suspended", Category: CategorySuspended}
		},
	},
	{
		match: func(u models.User) bool { return u.IsActive },
		build: func(u models.User) Status {
			return Status{Label: "Active", Category: CategoryActive}
		},
	},
	{
		match: func(u models.User) bool { return true },
		build: func(u models.User) Status {
			return Status{Label: "Inactive", Category: CategoryInactive}
		},
	},
}

// DeriveStatus maps a user record to its single display status. Pure and
// total: every record matches exactly one rule, the last rule matches
// everything.
func DeriveStatus(u models.User) Status {
	for _, rule := range statusRules {
		if rule.match(u) {
			return rule.build(u)
		}
	}
	// Unreachable; the final rule always matches.
	return Status{Label: "Inactive", Category: CategoryInactive}
}
