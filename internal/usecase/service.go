package usecase

import (
	"seat-reservation/internal/data/repository"
	"seat-reservation/pkg/mailer"
	"seat-reservation/pkg/receipt"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Reservation  ReservationService
	Notification NotificationService
	Venue        VenueService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	renderer receipt.Renderer,
	notifier mailer.Notifier,
	log *zap.Logger,
) *Service {
	policy := NewDomainPolicy(config.Reservation.RestrictedAffiliations, config.Reservation.AllowedDomains)
	reservation := NewReservationService(repo, config.Reservation, policy, log)

	return &Service{
		Reservation:  reservation,
		Notification: NewNotificationService(reservation, renderer, notifier, config.Venue.ShowTime, config.Email.Timeout, log),
		Venue:        NewVenueService(repo, log),
	}
}
