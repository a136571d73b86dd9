package entity

import "time"

// Guest names the person sitting in one of the order's seats.
type Guest struct {
	SeatID string `json:"seat"`
	Name   string `json:"name"`
}

// Order is written once by a successful reservation and never changed.
type Order struct {
	OrderID        string    `db:"order_id"`
	Identity       string    `db:"identity"`
	ContactEmail   string    `db:"contact_email"`
	Seats          []string  `db:"-"` // in request order, from order_seats
	Guests         []Guest   `db:"guests"`
	AffiliationTag string    `db:"affiliation_tag"`
	CreatedAt      time.Time `db:"created_at"`
}

// GuestFor returns the guest name attached to seatID, if any.
func (o *Order) GuestFor(seatID string) (string, bool) {
	for _, g := range o.Guests {
		if g.SeatID == seatID {
			return g.Name, true
		}
	}
	return "", false
}

// Clone returns a deep copy so callers cannot alias stored slices.
func (o *Order) Clone() *Order {
	c := *o
	c.Seats = append([]string(nil), o.Seats...)
	c.Guests = append([]Guest(nil), o.Guests...)
	return &c
}
