package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrReseedForbidden is returned when a different venue map is seeded after orders exist.
var ErrReseedForbidden = errors.New("venue map is fixed once any order exists")

type SeatRepository interface {
	// Seed installs the venue map. Seeding the current map again is a no-op.
	Seed(ctx context.Context, seats []*entity.Seat) (int, error)
	FindAll(ctx context.Context) ([]*entity.Seat, error)
	Count(ctx context.Context) (int, error)
}

type seatRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSeatRepository(db database.PgxIface, log *zap.Logger) SeatRepository {
	return &seatRepository{
		db:  db,
		log: log.With(zap.String("repository", "seat")),
	}
}

func (r *seatRepository) Seed(ctx context.Context, seats []*entity.Seat) (inserted int, err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return 0, fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	// Reservations take row locks on seats; this waits for them and blocks new ones.
	if _, err = tx.Exec(ctx, `LOCK TABLE seats IN EXCLUSIVE MODE`); err != nil {
		return 0, fmt.Errorf("lock seats: %w", err)
	}

	existing, err := r.seatIDs(ctx, tx)
	if err != nil {
		return 0, err
	}
	if sameSeatSet(existing, seats) {
		err = tx.Commit(ctx)
		return 0, err
	}

	var orders int
	if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&orders); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	if orders > 0 {
		r.log.Warn("Refusing to reseed venue with existing orders",
			zap.Int("orders", orders),
			zap.Int("existing_seats", len(existing)),
			zap.Int("requested_seats", len(seats)),
		)
		err = ErrReseedForbidden
		return 0, err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM seats`); err != nil {
		return 0, fmt.Errorf("clear seats: %w", err)
	}
	if err = insertSeats(ctx, tx, seats); err != nil {
		r.log.Error("Failed to seed seats", zap.Error(err), zap.Int("seat_count", len(seats)))
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}

	r.log.Info("Venue seeded", zap.Int("seat_count", len(seats)))
	return len(seats), nil
}

func (r *seatRepository) seatIDs(ctx context.Context, q database.Querier) (map[string]struct{}, error) {
	rows, err := q.Query(ctx, `SELECT seat_id FROM seats`)
	if err != nil {
		return nil, fmt.Errorf("list seat ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seat id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func insertSeats(ctx context.Context, q database.Querier, seats []*entity.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	var query strings.Builder
	query.WriteString(`INSERT INTO seats (seat_id, seat_row, seat_number, status, updated_at) VALUES `)
	args := make([]any, 0, len(seats)*5)

	for i, seat := range seats {
		if i > 0 {
			query.WriteString(", ")
		}
		fmt.Fprintf(&query, "($%d, $%d, $%d, $%d, $%d)", i*5+1, i*5+2, i*5+3, i*5+4, i*5+5)
		args = append(args, seat.ID, seat.Row, seat.Number, seat.Status, seat.UpdatedAt)
	}

	if _, err := q.Exec(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("insert seats: %w", err)
	}
	return nil
}

func (r *seatRepository) FindAll(ctx context.Context) ([]*entity.Seat, error) {
	query := `
		SELECT seat_id, seat_row, seat_number, status, order_id, updated_at
		FROM seats
		ORDER BY seat_row, seat_number
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list seats", zap.Error(err))
		return nil, fmt.Errorf("list seats: %w", err)
	}
	defer rows.Close()

	var seats []*entity.Seat
	for rows.Next() {
		var seat entity.Seat
		err := rows.Scan(
			&seat.ID,
			&seat.Row,
			&seat.Number,
			&seat.Status,
			&seat.OrderID,
			&seat.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan seat row", zap.Error(err))
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		seats = append(seats, &seat)
	}

	return seats, rows.Err()
}

func (r *seatRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM seats`).Scan(&count); err != nil {
		r.log.Error("Failed to count seats", zap.Error(err))
		return 0, fmt.Errorf("count seats: %w", err)
	}
	return count, nil
}

func sameSeatSet(existing map[string]struct{}, seats []*entity.Seat) bool {
	if len(existing) != len(seats) {
		return false
	}
	for _, s := range seats {
		if _, ok := existing[s.ID]; !ok {
			return false
		}
	}
	return true
}
