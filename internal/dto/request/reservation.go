package request

type GuestRequest struct {
	Seat string `json:"seat" validate:"required"`
	Name string `json:"name" validate:"required,max=100"`
}

// CreateReservationRequest is the body of POST /api/reservations. The identity
// comes from the bearer token, never from the body.
type CreateReservationRequest struct {
	Email       string         `json:"email" validate:"required,email"`
	SeatIDs     []string       `json:"seat_ids" validate:"required,min=1,unique,dive,seat_id"`
	Guests      []GuestRequest `json:"guests" validate:"omitempty,dive"`
	Affiliation string         `json:"affiliation" validate:"omitempty,max=32"`
}
