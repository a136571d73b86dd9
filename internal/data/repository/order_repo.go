package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// OrderRepository is read-only: orders are written by the
// reservation store inside its transaction, and there is no listing call.
type OrderRepository interface {
	FindByOrderID(ctx context.Context, orderID string) (*entity.Order, error)
}

type orderRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOrderRepository(db database.PgxIface, log *zap.Logger) OrderRepository {
	return &orderRepository{
		db:  db,
		log: log.With(zap.String("repository", "order")),
	}
}

func (r *orderRepository) FindByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	query := `
		SELECT order_id, identity, contact_email, guests, affiliation_tag, created_at
		FROM orders
		WHERE order_id = $1
	`

	var order entity.Order
	var guests []byte
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&order.OrderID,
		&order.Identity,
		&order.ContactEmail,
		&guests,
		&order.AffiliationTag,
		&order.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find order by ID",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
		return nil, fmt.Errorf("find order %s: %w", orderID, err)
	}

	if err := json.Unmarshal(guests, &order.Guests); err != nil {
		return nil, fmt.Errorf("decode guests of order %s: %w", orderID, err)
	}
	if len(order.Guests) == 0 {
		order.Guests = nil
	}

	seats, err := r.findSeats(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Seats = seats

	return &order, nil
}

func (r *orderRepository) findSeats(ctx context.Context, orderID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT seat_id FROM order_seats WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		r.log.Error("Failed to find order seats", zap.Error(err), zap.String("order_id", orderID))
		return nil, fmt.Errorf("find seats of order %s: %w", orderID, err)
	}
	defer rows.Close()

	var seats []string
	for rows.Next() {
		var seatID string
		if err := rows.Scan(&seatID); err != nil {
			return nil, fmt.Errorf("scan order seat: %w", err)
		}
		seats = append(seats, seatID)
	}
	return seats, rows.Err()
}
