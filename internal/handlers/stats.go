package handlers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tax-e/taxe-admin/internal/database"
	"github.com/tax-e/taxe-admin/internal/services"
)

// DashboardStats is the payload behind the four dashboard cards.
type DashboardStats struct {
	TotalUsers      int64   `json:"totalUsers"`
	TotalReceipts   int64   `json:"totalReceipts"`
	TotalRevenue    float64 `json:"totalRevenue"`
	PendingPayments int64   `json:"pendingPayments"`
}

const statsCacheKey = "dashboard_stats"

// GetStats handles GET /api/admin/stats. Served from the Redis cache when
// fresh; otherwise recomputed from Mongo and cached.
func GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var stats DashboardStats
	if hit, _ := services.Cache.Get(ctx, statsCacheKey, &stats); hit {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    stats,
		})
		return
	}

	stats, err := computeStats(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	_ = services.Cache.Set(ctx, statsCacheKey, stats, services.StatsCacheTTL)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stats,
	})
}

func computeStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.TotalUsers, err = database.DB.Collection("users").CountDocuments(ctx, bson.M{}); err != nil {
		return stats, err
	}
	if stats.TotalReceipts, err = database.DB.Collection("receipts").CountDocuments(ctx, bson.M{}); err != nil {
		return stats, err
	}
	if stats.PendingPayments, err = database.DB.Collection("payments").CountDocuments(ctx, bson.M{"is_paid": false}); err != nil {
		return stats, err
	}

	// Revenue: sum of everything actually paid.
	pipeline := []bson.M{
		{"$match": bson.M{"is_paid": true}},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$paid_amount"}}},
	}
	cursor, err := database.DB.Collection("payments").Aggregate(ctx, pipeline)
	if err != nil {
		return stats, err
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return stats, err
	}
	if len(result) > 0 {
		stats.TotalRevenue = result[0].Total
	}

	return stats, nil
}
