package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"seat-reservation/internal/data/entity"
)

// MemoryStore keeps the inventory and orders in process. It satisfies the
// seat, order and reservation interfaces and is used for local runs and tests.
// Transactions are serialised by a single mutex held for the whole of InTx.
type MemoryStore struct {
	mu     sync.Mutex
	seats  map[string]*entity.Seat
	orders map[string]*entity.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seats:  make(map[string]*entity.Seat),
		orders: make(map[string]*entity.Order),
	}
}

func (m *MemoryStore) Seed(ctx context.Context, seats []*entity.Seat) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.seats) == len(seats) {
		same := true
		for _, s := range seats {
			if _, ok := m.seats[s.ID]; !ok {
				same = false
				break
			}
		}
		if same {
			return 0, nil
		}
	}
	if len(m.orders) > 0 {
		return 0, ErrReseedForbidden
	}

	m.seats = make(map[string]*entity.Seat, len(seats))
	for _, s := range seats {
		c := *s
		m.seats[s.ID] = &c
	}
	return len(seats), nil
}

func (m *MemoryStore) FindAll(ctx context.Context) ([]*entity.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seats := make([]*entity.Seat, 0, len(m.seats))
	for _, s := range m.seats {
		c := *s
		seats = append(seats, &c)
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Number < seats[j].Number
	})
	return seats, nil
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seats), nil
}

func (m *MemoryStore) FindByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return nil, nil
	}
	return order.Clone(), nil
}

func (m *MemoryStore) InTx(ctx context.Context, fn func(tx ReservationTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{store: m, sold: make(map[string]soldSeat)}
	if err := fn(tx); err != nil {
		return err
	}
	tx.apply()
	return nil
}

// Snapshot copies the full state, for asserting that a failed call left it untouched.
func (m *MemoryStore) Snapshot() (map[string]entity.Seat, map[string]*entity.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seats := make(map[string]entity.Seat, len(m.seats))
	for id, s := range m.seats {
		c := *s
		if s.OrderID != nil {
			owner := *s.OrderID
			c.OrderID = &owner
		}
		seats[id] = c
	}
	orders := make(map[string]*entity.Order, len(m.orders))
	for id, o := range m.orders {
		orders[id] = o.Clone()
	}
	return seats, orders
}

type soldSeat struct {
	orderID string
	at      time.Time
}

// memoryTx buffers writes until the callback returns without error.
type memoryTx struct {
	store  *MemoryStore
	sold   map[string]soldSeat
	orders []*entity.Order
}

func (t *memoryTx) LockIdentity(ctx context.Context, identity string) error {
	return nil
}

func (t *memoryTx) CountSeatsByIdentity(ctx context.Context, identity string) (int, error) {
	count := 0
	for _, o := range t.store.orders {
		if o.Identity == identity {
			count += len(o.Seats)
		}
	}
	for _, o := range t.orders {
		if o.Identity == identity {
			count += len(o.Seats)
		}
	}
	return count, nil
}

func (t *memoryTx) LockSeats(ctx context.Context, seatIDs []string) (map[string]entity.SeatStatus, error) {
	statuses := make(map[string]entity.SeatStatus, len(seatIDs))
	for _, id := range seatIDs {
		if s, ok := t.store.seats[id]; ok {
			statuses[id] = t.status(s)
		}
	}
	return statuses, nil
}

func (t *memoryTx) OrderExists(ctx context.Context, orderID string) (bool, error) {
	if _, ok := t.store.orders[orderID]; ok {
		return true, nil
	}
	for _, o := range t.orders {
		if o.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) MarkSeatsSold(ctx context.Context, orderID string, seatIDs []string, at time.Time) ([]string, error) {
	var moved []string
	for _, id := range seatIDs {
		s, ok := t.store.seats[id]
		if !ok || !t.status(s).IsAvailable() {
			continue
		}
		t.sold[id] = soldSeat{orderID: orderID, at: at}
		moved = append(moved, id)
	}
	return moved, nil
}

func (t *memoryTx) InsertOrder(ctx context.Context, order *entity.Order) error {
	t.orders = append(t.orders, order.Clone())
	return nil
}

func (t *memoryTx) status(s *entity.Seat) entity.SeatStatus {
	if _, ok := t.sold[s.ID]; ok {
		return entity.SeatStatusSold
	}
	return s.Status
}

func (t *memoryTx) apply() {
	for id, sold := range t.sold {
		seat := t.store.seats[id]
		owner := sold.orderID
		seat.Status = entity.SeatStatusSold
		seat.OrderID = &owner
		seat.UpdatedAt = sold.at
	}
	for _, o := range t.orders {
		t.store.orders[o.OrderID] = o
	}
}
