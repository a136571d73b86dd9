package repository

import (
	"seat-reservation/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Seat        SeatRepository
	Order       OrderRepository
	Reservation ReservationStore
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Seat:        NewSeatRepository(db, log),
		Order:       NewOrderRepository(db, log),
		Reservation: NewReservationStore(db, log),
	}
}

// NewMemoryRepository backs every repository with one shared MemoryStore.
func NewMemoryRepository(store *MemoryStore) *Repository {
	return &Repository{
		Seat:        store,
		Order:       store,
		Reservation: store,
	}
}
