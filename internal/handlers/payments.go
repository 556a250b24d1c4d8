package handlers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tax-e/taxe-admin/internal/database"
	"github.com/tax-e/taxe-admin/internal/models"
)

// GetPayments handles GET /api/admin/payments, most recent months first.
func GetPayments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("payments").Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"month": -1}).SetLimit(500))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch payments")
		return
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err = cursor.All(ctx, &payments); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to decode payments")
		return
	}

	if payments == nil {
		payments = []models.Payment{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    payments,
	})
}
