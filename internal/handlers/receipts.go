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

// GetReceipts handles GET /api/admin/receipts, newest first.
func GetReceipts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.DB.Collection("receipts").Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"date": -1}).SetLimit(500))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch receipts")
		return
	}
	defer cursor.Close(ctx)

	var receipts []models.Receipt
	if err = cursor.All(ctx, &receipts); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to decode receipts")
		return
	}

	if receipts == nil {
		receipts = []models.Receipt{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    receipts,
	})
}
