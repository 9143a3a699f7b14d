// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"stagepay/internal/domain/escrow"
	"stagepay/internal/handlers"
	"stagepay/internal/middleware"
	"stagepay/internal/repositories"
	"stagepay/internal/services/booking"
	"stagepay/internal/services/cancellation"
	"stagepay/internal/services/dispute"
	"stagepay/internal/services/notification"

	"github.com/gofiber/fiber/v2"
)

// Dependencies is everything the HTTP layer needs from the rest of the
// application.
type Dependencies struct {
	JWTSecret           string
	Store               repositories.Store
	Notifier            *notification.Service
	BookingService      *booking.Service
	DisputeService      *dispute.Service
	CancellationService *cancellation.Service
	HealthChecks        map[string]handlers.HealthCheckFunc
}

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	authMiddleware := middleware.NewAuthMiddleware(deps.JWTSecret)

	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)
	bookingHandler := handlers.NewBookingHandler(deps.BookingService)
	disputeHandler := handlers.NewDisputeHandler(deps.DisputeService)
	cancellationHandler := handlers.NewCancellationHandler(deps.CancellationService)
	notificationHandler := handlers.NewNotificationHandler(deps.Notifier, deps.Store)
	adminHandler := handlers.NewAdminHandler(deps.DisputeService, deps.BookingService)

	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api", authMiddleware.Handler)

	bookings := api.Group("/bookings")
	bookings.Get("/:id", bookingHandler.GetBooking)
	bookings.Post("/:id/confirm-delivery", middleware.RequireRole(escrow.RoleOrganizer), bookingHandler.ConfirmDelivery)
	bookings.Post("/:id/disputes", middleware.RequireRole(escrow.RoleOrganizer), disputeHandler.ReportNonDelivery)
	bookings.Get("/:id/cancellation-policy", middleware.RequireRole(escrow.RoleOrganizer, escrow.RoleArtist), cancellationHandler.PreviewPolicy)
	bookings.Post("/:id/cancellations", middleware.RequireRole(escrow.RoleOrganizer, escrow.RoleArtist), cancellationHandler.RequestCancellation)
	bookings.Get("/:id/cancellations", cancellationHandler.ListCancellations)

	disputes := api.Group("/disputes")
	disputes.Get("/:id", disputeHandler.GetDispute)
	disputes.Post("/:id/respond", middleware.RequireRole(escrow.RoleArtist), disputeHandler.RespondToDispute)

	api.Get("/notifications", notificationHandler.ListNotifications)

	admin := api.Group("/admin", middleware.AdminAuthMiddleware)
	admin.Get("/disputes", adminHandler.ListDisputes)
	admin.Post("/disputes/:id/resolve", adminHandler.ResolveDispute)
	admin.Post("/bookings/:id/payment", adminHandler.RecordPayment)
}
