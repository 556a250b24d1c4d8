package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a taxpayer account as stored in MongoDB. The aggregate counters
// are maintained by the mobile backend whenever receipts and payments are
// recorded; the admin API only reads them.
//
// Lifecycle flags: IsSuspended and DeleteRequestedAt are mutated only
// through the admin lifecycle endpoints. A user whose grace period has
// elapsed is removed permanently by the deletion reaper and simply stops
// appearing in listings.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	LastLogin *time.Time         `bson:"last_login,omitempty" json:"lastLogin,omitempty"`

	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
	TIN   string `bson:"tin,omitempty" json:"tin,omitempty"` // tax identification number

	ReceiptCount int     `bson:"receipt_count" json:"receiptCount"`
	TotalSpent   float64 `bson:"total_spent" json:"totalSpent"`
	TotalTaxPaid float64 `bson:"total_tax_paid" json:"totalTaxPaid"`
	UnpaidMonths int     `bson:"unpaid_months" json:"unpaidMonths"`

	IsActive      bool   `bson:"is_active" json:"isActive"`
	IsSuspended   bool   `bson:"is_suspended" json:"isSuspended"`
	SuspendReason string `bson:"suspend_reason,omitempty" json:"-"`

	DeleteRequestedAt *time.Time `bson:"delete_requested_at,omitempty" json:"deleteRequestedAt,omitempty"`
	DeleteReason      string     `bson:"delete_reason,omitempty" json:"-"`
	GraceDays         int        `bson:"grace_days,omitempty" json:"-"`

	// DeletePhaseDaysRemaining is computed by the users handler while a
	// deletion is pending. Never stored; a pointer so that a value of 0
	// ("deleting today") still round-trips through JSON.
	DeletePhaseDaysRemaining *int `bson:"-" json:"deletePhaseDaysRemaining,omitempty"`
}
