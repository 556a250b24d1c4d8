package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tax-e/taxe-admin/internal/handlers"
	"github.com/tax-e/taxe-admin/internal/middleware"
)

// SetupRoutes mounts the admin API. Everything except login sits behind
// the bearer-token session check.
func SetupRoutes(r *chi.Mux) {
	// Login is rate limited harder than the rest of the API
	r.With(middleware.RateLimit("login", 10, 5*time.Minute)).
		Post("/api/admin/login", handlers.AdminLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuth)

		r.Post("/api/admin/logout", handlers.AdminLogout)
		r.Get("/api/admin/stats", handlers.GetStats)

		// User lifecycle
		r.Get("/api/admin/users", handlers.GetUsers)
		r.Patch("/api/admin/users/{id}/suspend", handlers.SuspendUser)
		r.Patch("/api/admin/users/{id}/unsuspend", handlers.UnsuspendUser)
		r.Post("/api/admin/users/{id}/delete-request", handlers.RequestUserDeletion)
		r.Delete("/api/admin/users/{id}", handlers.DeleteUserNow)
		r.Get("/api/admin/audit", handlers.GetAuditLog)

		// Financial views
		r.Get("/api/admin/receipts", handlers.GetReceipts)
		r.Get("/api/admin/payments", handlers.GetPayments)
		r.Post("/api/admin/upload", handlers.UploadReceiptImage)

		// Account settings
		r.Put("/api/admin/profile", handlers.UpdateProfile)
		r.Post("/api/admin/create-admin", handlers.CreateAdmin)

		// Assistant chat
		r.Post("/api/admin/chat", handlers.Chat)
		r.Get("/api/admin/chat/history", handlers.GetChatHistory)
		r.Get("/ws/assistant", handlers.AssistantWebSocket)
	})
}
