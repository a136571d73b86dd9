package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// lockTimeout bounds how long a reservation waits on another one's row locks.
const lockTimeout = "5s"

// ReservationTx is the unit of work a reservation runs in. Every read made
// through it is fresh as of the locks it holds, and nothing it writes is
// visible until InTx returns nil.
type ReservationTx interface {
	// LockIdentity serialises reservations made by the same identity.
	LockIdentity(ctx context.Context, identity string) error
	// CountSeatsByIdentity sums the seats of every committed order of identity.
	CountSeatsByIdentity(ctx context.Context, identity string) (int, error)
	// LockSeats locks the named seats and returns the status of those that exist.
	LockSeats(ctx context.Context, seatIDs []string) (map[string]entity.SeatStatus, error)
	OrderExists(ctx context.Context, orderID string) (bool, error)
	// MarkSeatsSold moves available seats to sold and returns the ids it moved.
	MarkSeatsSold(ctx context.Context, orderID string, seatIDs []string, at time.Time) ([]string, error)
	InsertOrder(ctx context.Context, order *entity.Order) error
}

// ReservationStore runs fn atomically: all of its writes commit, or none do.
type ReservationStore interface {
	InTx(ctx context.Context, fn func(tx ReservationTx) error) error
}

type reservationStore struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationStore(db database.PgxIface, log *zap.Logger) ReservationStore {
	return &reservationStore{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

func (s *reservationStore) InTx(ctx context.Context, fn func(tx ReservationTx) error) (err error) {
	// Read committed is enough: every decision is taken under an explicit lock
	// and the statements after the lock see the latest committed rows.
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin reservation tx: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.log.Error("Failed to roll back reservation", zap.Error(rbErr))
		}
	}()

	if _, err = tx.Exec(ctx, `SET LOCAL lock_timeout = '`+lockTimeout+`'`); err != nil {
		return fmt.Errorf("set lock timeout: %w", err)
	}

	if err = fn(&pgReservationTx{tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reservation: %w", err)
	}
	return nil
}

type pgReservationTx struct {
	tx pgx.Tx
}

func (t *pgReservationTx) LockIdentity(ctx context.Context, identity string) error {
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, identity); err != nil {
		return fmt.Errorf("lock identity: %w", err)
	}
	return nil
}

func (t *pgReservationTx) CountSeatsByIdentity(ctx context.Context, identity string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM order_seats os
		JOIN orders o ON o.order_id = os.order_id
		WHERE o.identity = $1
	`

	var count int
	if err := t.tx.QueryRow(ctx, query, identity).Scan(&count); err != nil {
		return 0, fmt.Errorf("count seats held by identity: %w", err)
	}
	return count, nil
}

func (t *pgReservationTx) LockSeats(ctx context.Context, seatIDs []string) (map[string]entity.SeatStatus, error) {
	// A fixed lock order keeps overlapping reservations from deadlocking.
	query := `
		SELECT seat_id, status
		FROM seats
		WHERE seat_id = ANY($1)
		ORDER BY seat_id
		FOR UPDATE
	`

	rows, err := t.tx.Query(ctx, query, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("lock seats: %w", err)
	}
	defer rows.Close()

	statuses := make(map[string]entity.SeatStatus, len(seatIDs))
	for rows.Next() {
		var id string
		var status entity.SeatStatus
		if err := rows.Scan(&id, &status); err != nil {
			return nil, fmt.Errorf("scan locked seat: %w", err)
		}
		statuses[id] = status
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock seats: %w", err)
	}
	return statuses, nil
}

func (t *pgReservationTx) OrderExists(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE order_id = $1)`, orderID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order id %s: %w", orderID, err)
	}
	return exists, nil
}

func (t *pgReservationTx) MarkSeatsSold(ctx context.Context, orderID string, seatIDs []string, at time.Time) ([]string, error) {
	query := `
		UPDATE seats
		SET status = 'sold', order_id = $2, updated_at = $3
		WHERE seat_id = ANY($1) AND status = 'available'
		RETURNING seat_id
	`

	rows, err := t.tx.Query(ctx, query, seatIDs, orderID, at)
	if err != nil {
		return nil, fmt.Errorf("mark seats sold: %w", err)
	}
	defer rows.Close()

	var moved []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan sold seat: %w", err)
		}
		moved = append(moved, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mark seats sold: %w", err)
	}
	return moved, nil
}

func (t *pgReservationTx) InsertOrder(ctx context.Context, order *entity.Order) error {
	guests := order.Guests
	if guests == nil {
		guests = []entity.Guest{}
	}
	guestsJSON, err := json.Marshal(guests)
	if err != nil {
		return fmt.Errorf("encode guests: %w", err)
	}

	_, err = t.tx.Exec(ctx, `
		INSERT INTO orders (order_id, identity, contact_email, guests, affiliation_tag, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		order.OrderID,
		order.Identity,
		order.ContactEmail,
		string(guestsJSON),
		order.AffiliationTag,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", order.OrderID, err)
	}

	var query strings.Builder
	query.WriteString(`INSERT INTO order_seats (order_id, seat_id, position) VALUES `)
	args := make([]any, 0, len(order.Seats)*3)
	for i, seatID := range order.Seats {
		if i > 0 {
			query.WriteString(", ")
		}
		fmt.Fprintf(&query, "($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3)
		args = append(args, order.OrderID, seatID, i)
	}

	if _, err := t.tx.Exec(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("insert seats of order %s: %w", order.OrderID, err)
	}
	return nil
}
