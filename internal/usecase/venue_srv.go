package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"

	"go.uber.org/zap"
)

const (
	maxVenueRows   = 26 // one letter per row
	maxSeatsPerRow = 999
)

var ErrReseedForbidden = repository.ErrReseedForbidden

type VenueService interface {
	// SeedVenue installs a rows x seatsPerRow map, A1 first. It returns the
	// number of seats written, 0 when the same map is already in place.
	SeedVenue(ctx context.Context, rows, seatsPerRow int) (int, error)
	ListSeats(ctx context.Context) ([]*entity.Seat, error)
}

type venueService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewVenueService(repo *repository.Repository, log *zap.Logger) VenueService {
	return &venueService{
		repo: repo,
		log:  log.With(zap.String("service", "venue")),
	}
}

func (s *venueService) SeedVenue(ctx context.Context, rows, seatsPerRow int) (int, error) {
	if rows < 1 || rows > maxVenueRows {
		return 0, newValidationError("rows", fmt.Sprintf("must be between 1 and %d", maxVenueRows))
	}
	if seatsPerRow < 1 || seatsPerRow > maxSeatsPerRow {
		return 0, newValidationError("seats_per_row", fmt.Sprintf("must be between 1 and %d", maxSeatsPerRow))
	}

	seats := BuildLayout(rows, seatsPerRow, time.Now().UTC())
	inserted, err := s.repo.Seat.Seed(ctx, seats)
	if err != nil {
		if errors.Is(err, ErrReseedForbidden) {
			return 0, err
		}
		s.log.Error("Failed to seed venue", zap.Error(err))
		return 0, wrapInternal("seed venue", err)
	}

	if inserted == 0 {
		s.log.Info("Venue map already in place", zap.Int("seat_count", len(seats)))
	}
	return inserted, nil
}

func (s *venueService) ListSeats(ctx context.Context) ([]*entity.Seat, error) {
	seats, err := s.repo.Seat.FindAll(ctx)
	if err != nil {
		return nil, wrapInternal("list seats", err)
	}
	return seats, nil
}

// BuildLayout returns rows A.. each holding seats 1..seatsPerRow, all available.
func BuildLayout(rows, seatsPerRow int, at time.Time) []*entity.Seat {
	seats := make([]*entity.Seat, 0, rows*seatsPerRow)
	for r := range rows {
		row := string(rune('A' + r))
		for n := 1; n <= seatsPerRow; n++ {
			seats = append(seats, &entity.Seat{
				ID:        row + strconv.Itoa(n),
				Row:       row,
				Number:    n,
				Status:    entity.SeatStatusAvailable,
				UpdatedAt: at,
			})
		}
	}
	return seats
}
