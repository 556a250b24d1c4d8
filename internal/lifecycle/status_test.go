package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tax-e/taxe-admin/internal/models"
)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestDeriveStatus(t *testing.T) {
	requested := timePtr(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name         string
		user         models.User
		wantLabel    string
		wantCategory Category
	}{
		{
			name:         "active user",
			user:         models.User{IsActive: true},
			wantLabel:    "Active",
			wantCategory: CategoryActive,
		},
		{
			name:         "inactive user",
			user:         models.User{},
			wantLabel:    "Inactive",
			wantCategory: CategoryInactive,
		},
		{
			name:         "suspended overrides active",
			user:         models.User{IsActive: true, IsSuspended: true},
			wantLabel:    "Suspended",
			wantCategory: CategorySuspended,
		},
		{
			name:         "suspended overrides inactive",
			user:         models.User{IsSuspended: true},
			wantLabel:    "Suspended",
			wantCategory: CategorySuspended,
		},
		{
			name: "pending deletion overrides suspended and active",
			user: models.User{
				IsActive:                 true,
				IsSuspended:              true,
				DeleteRequestedAt:        requested,
				DeletePhaseDaysRemaining: intPtr(7),
			},
			wantLabel:    "Pending deletion (7d left)",
			wantCategory: CategoryPendingDeletion,
		},
		{
			name: "zero days remaining still renders the countdown",
			user: models.User{
				DeleteRequestedAt:        requested,
				DeletePhaseDaysRemaining: intPtr(0),
			},
			wantLabel:    "Pending deletion (0d left)",
			wantCategory: CategoryPendingDeletion,
		},
		{
			name:         "pending deletion without a server-computed countdown",
			user:         models.User{DeleteRequestedAt: requested},
			wantLabel:    "Pending deletion",
			wantCategory: CategoryPendingDeletion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(tt.user)
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Equal(t, tt.wantCategory, got.Category)
		})
	}
}
