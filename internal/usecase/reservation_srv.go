package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	maxGuestNameLength = 100
	orderIDAttempts    = 5
)

var tracer = otel.Tracer("seat-reservation/usecase")

type ReserveInput struct {
	Identity       string
	ContactEmail   string
	SeatIDs        []string
	Guests         []entity.Guest
	AffiliationTag string
}

type ReservationService interface {
	// Reserve grants every requested seat to the identity in one commit, or none.
	Reserve(ctx context.Context, in ReserveInput) (*entity.Order, error)
	// Lookup finds a committed order by its exact id.
	Lookup(ctx context.Context, orderID string) (*entity.Order, error)
}

type reservationService struct {
	repo      *repository.Repository
	quotaMax  int
	organizer string
	policy    ContactPolicy
	now       func() time.Time
	log       *zap.Logger
}

func NewReservationService(repo *repository.Repository, config utils.ReservationConfig, policy ContactPolicy, log *zap.Logger) ReservationService {
	return &reservationService{
		repo:      repo,
		quotaMax:  config.QuotaMax,
		organizer: strings.TrimSpace(config.OrganizerIdentity),
		policy:    policy,
		now:       time.Now,
		log:       log.With(zap.String("service", "reservation")),
	}
}

func (s *reservationService) Reserve(ctx context.Context, in ReserveInput) (*entity.Order, error) {
	ctx, span := tracer.Start(ctx, "reservation.Reserve",
		trace.WithAttributes(attribute.Int("seat_count", len(in.SeatIDs))),
	)
	defer span.End()

	order, err := s.reserve(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("order_id", order.OrderID))
	return order, nil
}

func (s *reservationService) reserve(ctx context.Context, in ReserveInput) (*entity.Order, error) {
	req, err := s.normalize(in)
	if err != nil {
		s.log.Warn("Reservation rejected", zap.String("identity", in.Identity), zap.Error(err))
		return nil, err
	}

	organizer := s.organizer != "" && req.Identity == s.organizer

	var order *entity.Order
	err = s.repo.Reservation.InTx(ctx, func(tx repository.ReservationTx) error {
		if err := tx.LockIdentity(ctx, req.Identity); err != nil {
			return err
		}
		already, err := tx.CountSeatsByIdentity(ctx, req.Identity)
		if err != nil {
			return err
		}
		if !organizer && already+len(req.SeatIDs) > s.quotaMax {
			return &QuotaExceededError{Already: already, Requested: len(req.SeatIDs), Max: s.quotaMax}
		}

		statuses, err := tx.LockSeats(ctx, req.SeatIDs)
		if err != nil {
			return err
		}
		var unavailable []string
		for _, id := range req.SeatIDs {
			if status, ok := statuses[id]; !ok || !status.IsAvailable() {
				unavailable = append(unavailable, id)
			}
		}
		if len(unavailable) > 0 {
			return &SeatsUnavailableError{SeatIDs: unavailable}
		}

		// Postgres keeps microseconds; truncating keeps Lookup equal to what Reserve returned.
		now := s.now().UTC().Truncate(time.Microsecond)
		orderID, err := s.newOrderID(ctx, tx, now)
		if err != nil {
			return err
		}

		moved, err := tx.MarkSeatsSold(ctx, orderID, req.SeatIDs, now)
		if err != nil {
			return err
		}
		if len(moved) != len(req.SeatIDs) {
			return &SeatsUnavailableError{SeatIDs: missing(req.SeatIDs, moved)}
		}

		order = &entity.Order{
			OrderID:        orderID,
			Identity:       req.Identity,
			ContactEmail:   req.ContactEmail,
			Seats:          req.SeatIDs,
			Guests:         req.Guests,
			AffiliationTag: req.AffiliationTag,
			CreatedAt:      now,
		}
		return tx.InsertOrder(ctx, order)
	})

	switch {
	case err == nil:
	case errors.Is(err, ErrQuotaExceeded), errors.Is(err, ErrSeatsUnavailable):
		s.log.Warn("Reservation rejected", zap.String("identity", req.Identity), zap.Error(err))
		return nil, err
	default:
		s.log.Error("Reservation failed",
			zap.Error(err),
			zap.String("identity", req.Identity),
			zap.Strings("seat_ids", req.SeatIDs),
		)
		return nil, wrapInternal("reserve seats", err)
	}

	s.log.Info("Reservation committed",
		zap.String("order_id", order.OrderID),
		zap.String("identity", order.Identity),
		zap.Strings("seat_ids", order.Seats),
		zap.Bool("organizer", organizer),
	)
	return order, nil
}

// normalize checks everything that can be checked without storage and
// returns the request in canonical form.
func (s *reservationService) normalize(in ReserveInput) (*ReserveInput, error) {
	out := &ReserveInput{
		Identity:       strings.TrimSpace(in.Identity),
		ContactEmail:   strings.TrimSpace(in.ContactEmail),
		AffiliationTag: strings.ToLower(strings.TrimSpace(in.AffiliationTag)),
	}
	if out.Identity == "" {
		return nil, newValidationError("identity", "identity is required")
	}

	if len(in.SeatIDs) == 0 {
		return nil, newValidationError("seat_ids", "at least one seat is required")
	}
	requested := make(map[string]struct{}, len(in.SeatIDs))
	out.SeatIDs = make([]string, 0, len(in.SeatIDs))
	for _, raw := range in.SeatIDs {
		id := strings.ToUpper(strings.TrimSpace(raw))
		if !utils.IsSeatID(id) {
			return nil, newValidationError("seat_ids", fmt.Sprintf("%q is not a seat id", raw))
		}
		if _, dup := requested[id]; dup {
			return nil, newValidationError("seat_ids", fmt.Sprintf("seat %s is listed twice", id))
		}
		requested[id] = struct{}{}
		out.SeatIDs = append(out.SeatIDs, id)
	}

	if s.policy != nil && !s.policy(out.ContactEmail, out.AffiliationTag) {
		return nil, newValidationError("contact_email", "email is not accepted for this affiliation")
	}

	if len(in.Guests) > len(out.SeatIDs) {
		return nil, newValidationError("guests", "more guests than seats")
	}
	named := make(map[string]struct{}, len(in.Guests))
	for _, g := range in.Guests {
		seatID := strings.ToUpper(strings.TrimSpace(g.SeatID))
		name := strings.TrimSpace(g.Name)
		if _, ok := requested[seatID]; !ok {
			return nil, newValidationError("guests", fmt.Sprintf("guest seat %q is not part of the request", g.SeatID))
		}
		if _, dup := named[seatID]; dup {
			return nil, newValidationError("guests", fmt.Sprintf("seat %s has more than one guest", seatID))
		}
		if name == "" || utf8.RuneCountInString(name) > maxGuestNameLength {
			return nil, newValidationError("guests", fmt.Sprintf("guest name for %s must be 1 to %d characters", seatID, maxGuestNameLength))
		}
		named[seatID] = struct{}{}
		out.Guests = append(out.Guests, entity.Guest{SeatID: seatID, Name: name})
	}

	return out, nil
}

func (s *reservationService) newOrderID(ctx context.Context, tx repository.ReservationTx, now time.Time) (string, error) {
	for range orderIDAttempts {
		id := utils.GenerateOrderID(now)
		exists, err := tx.OrderExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
		s.log.Warn("Order id collision, regenerating", zap.String("order_id", id))
	}
	return "", fmt.Errorf("no free order id after %d attempts", orderIDAttempts)
}

func (s *reservationService) Lookup(ctx context.Context, orderID string) (*entity.Order, error) {
	ctx, span := tracer.Start(ctx, "reservation.Lookup")
	defer span.End()

	orderID = strings.ToUpper(strings.TrimSpace(orderID))
	if !utils.LooksLikeOrderID(orderID) {
		return nil, ErrOrderNotFound
	}
	span.SetAttributes(attribute.String("order_id", orderID))

	order, err := s.repo.Order.FindByOrderID(ctx, orderID)
	if err != nil && ctx.Err() == nil {
		// read-only, so one retry is safe
		s.log.Warn("Order lookup failed, retrying", zap.String("order_id", orderID), zap.Error(err))
		order, err = s.repo.Order.FindByOrderID(ctx, orderID)
	}
	if err != nil {
		s.log.Error("Order lookup failed", zap.String("order_id", orderID), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapInternal("lookup order", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// missing returns the ids of want that are not in got, in want's order.
func missing(want, got []string) []string {
	seen := make(map[string]struct{}, len(got))
	for _, id := range got {
		seen[id] = struct{}{}
	}
	var out []string
	for _, id := range want {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
