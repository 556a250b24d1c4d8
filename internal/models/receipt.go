package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Receipt is an uploaded purchase receipt. UserName and UserEmail are
// denormalized at upload time so the admin listing needs no join.
type Receipt struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Date time.Time          `bson:"date" json:"date"`

	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	UserName  string             `bson:"user_name" json:"userName"`
	UserEmail string             `bson:"user_email" json:"userEmail"`

	Merchant  string  `bson:"merchant" json:"merchant"`
	Amount    float64 `bson:"amount" json:"amount"`
	TaxAmount float64 `bson:"tax_amount" json:"taxAmount"`
	Category  string  `bson:"category" json:"category"`
	ImagePath string  `bson:"image_path,omitempty" json:"imagePath,omitempty"`
}
