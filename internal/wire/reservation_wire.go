package wire

import (
	"seat-reservation/internal/adaptor"
	"seat-reservation/pkg/middleware"
	"seat-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReservation(
	r chi.Router,
	reservationHandler *adaptor.ReservationHandler,
	deps Collaborators,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require identity) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(config.JWT.Secret, log))

		// POST /api/reservations - reserve seats and send the receipt
		r.Post("/api/reservations", reservationHandler.CreateReservation)

		// POST /api/orders/{order_id}/resend - send the receipt again
		r.Post("/api/orders/{order_id}/resend", reservationHandler.ResendReceipt)
	})

	// ==================== PUBLIC ROUTES ====================
	// GET /api/orders/{order_id} - exact-match lookup for door validation
	r.With(middleware.RateLimit(config.RateLimit, deps.Redis, "order_lookup", log)).
		Get("/api/orders/{order_id}", reservationHandler.GetOrder)
}

func wireVenue(r chi.Router, venueHandler *adaptor.VenueHandler) {
	// GET /api/seats - public seat map
	r.Get("/api/seats", venueHandler.ListSeats)
}
