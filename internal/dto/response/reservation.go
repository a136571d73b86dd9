package response

import (
	"time"

	"seat-reservation/internal/data/entity"
)

type ReservationResponse struct {
	OrderID   string   `json:"order_id"`
	Seats     []string `json:"seats"`
	EmailSent bool     `json:"email_sent"`
}

type GuestResponse struct {
	Seat string `json:"seat"`
	Name string `json:"name"`
}

// OrderResponse is served without authentication, so the identity is left out.
type OrderResponse struct {
	OrderID     string          `json:"order_id"`
	Email       string          `json:"email"`
	Seats       []string        `json:"seats"`
	Guests      []GuestResponse `json:"guests"`
	Affiliation string          `json:"affiliation,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ResendResponse struct {
	OrderID   string `json:"order_id"`
	EmailSent bool   `json:"email_sent"`
}

type SeatResponse struct {
	ID     string            `json:"id"`
	Row    string            `json:"row"`
	Number int               `json:"number"`
	Status entity.SeatStatus `json:"status"`
}

type QuotaExceededDetail struct {
	Already int `json:"already"`
	Max     int `json:"max"`
}

type SeatsUnavailableDetail struct {
	SeatIDs []string `json:"seat_ids"`
}

// Helper converters
func OrderToResponse(order *entity.Order) OrderResponse {
	guests := make([]GuestResponse, len(order.Guests))
	for i, g := range order.Guests {
		guests[i] = GuestResponse{Seat: g.SeatID, Name: g.Name}
	}
	return OrderResponse{
		OrderID:     order.OrderID,
		Email:       order.ContactEmail,
		Seats:       order.Seats,
		Guests:      guests,
		Affiliation: order.AffiliationTag,
		CreatedAt:   order.CreatedAt,
	}
}

func SeatsToResponse(seats []*entity.Seat) []SeatResponse {
	out := make([]SeatResponse, len(seats))
	for i, s := range seats {
		out[i] = SeatResponse{ID: s.ID, Row: s.Row, Number: s.Number, Status: s.Status}
	}
	return out
}
