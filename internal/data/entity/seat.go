package entity

import "time"

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusSold      SeatStatus = "sold"
)

type Seat struct {
	ID        string     `db:"seat_id"`     // A1, A2, B1, etc.
	Row       string     `db:"seat_row"`    // A, B, C, etc.
	Number    int        `db:"seat_number"` // 1, 2, 3, etc.
	Status    SeatStatus `db:"status"`
	OrderID   *string    `db:"order_id"` // set once sold
	UpdatedAt time.Time  `db:"updated_at"`
}

func (s SeatStatus) IsAvailable() bool {
	return s == SeatStatusAvailable
}
