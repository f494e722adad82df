package routes

import (
	"net/http"

	"seva-kendra/controllers"
	"seva-kendra/metrics"
	"seva-kendra/middleware"
	"seva-kendra/utils"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, userController *controllers.UserController, adminController *controllers.AdminController, healthController *controllers.HealthController, tokens *utils.TokenManager, m *metrics.Metrics) {
	// Auth routes
	router.HandleFunc("/api/auth/register", userController.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", userController.Login).Methods(http.MethodPost)

	// Protected routes
	requireAuth := middleware.AuthMiddleware(tokens)
	router.Handle("/api/auth/me", requireAuth(http.HandlerFunc(userController.GetProfile))).Methods(http.MethodGet)

	// Admin routes
	router.HandleFunc("/api/admin/users", adminController.GetUsers).Methods(http.MethodGet)
	router.HandleFunc("/api/admin/vendors", adminController.GetVendors).Methods(http.MethodGet)
	router.HandleFunc("/api/admin/vendors/{id}/status", adminController.UpdateVendorStatus).Methods(http.MethodPut)
	router.HandleFunc("/api/admin/dashboard", adminController.GetDashboard).Methods(http.MethodGet)

	router.HandleFunc("/api/catalog", controllers.GetCatalog).Methods(http.MethodGet)

	// Operational routes
	router.HandleFunc("/healthz", healthController.Health).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
}
