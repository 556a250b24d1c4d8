package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment is a monthly tax payment record.
type Payment struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Month string             `bson:"month" json:"month"` // e.g. "2026-08"

	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	UserName  string             `bson:"user_name" json:"userName"`
	UserEmail string             `bson:"user_email" json:"userEmail"`

	TotalTax   float64    `bson:"total_tax" json:"totalTax"`
	PaidAmount float64    `bson:"paid_amount" json:"paidAmount"`
	IsPaid     bool       `bson:"is_paid" json:"isPaid"`
	PaidDate   *time.Time `bson:"paid_date,omitempty" json:"paidDate,omitempty"`
}
