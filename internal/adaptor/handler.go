package adaptor

import (
	"seat-reservation/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Reservation *ReservationHandler
	Venue       *VenueHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Reservation: NewReservationHandler(service.Reservation, service.Notification, log),
		Venue:       NewVenueHandler(service.Venue, log),
	}
}
