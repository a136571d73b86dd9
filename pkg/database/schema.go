package database

import (
	"context"
	"fmt"
)

var schema = []struct {
	name string
	sql  string
}{
	{"seats", `CREATE TABLE IF NOT EXISTS seats (
		seat_id     TEXT PRIMARY KEY,
		seat_row    TEXT NOT NULL,
		seat_number INTEGER NOT NULL,
		status      TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'sold')),
		order_id    TEXT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`},
	{"orders", `CREATE TABLE IF NOT EXISTS orders (
		order_id        TEXT PRIMARY KEY,
		identity        TEXT NOT NULL,
		contact_email   TEXT NOT NULL,
		guests          JSONB NOT NULL DEFAULT '[]',
		affiliation_tag TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL
	)`},
	{"orders identity index", `CREATE INDEX IF NOT EXISTS idx_orders_identity ON orders (identity)`},
	// seat_id is unique across all orders: a seat can belong to one order only.
	{"order_seats", `CREATE TABLE IF NOT EXISTS order_seats (
		order_id TEXT NOT NULL REFERENCES orders (order_id),
		seat_id  TEXT NOT NULL UNIQUE REFERENCES seats (seat_id),
		position INTEGER NOT NULL,
		PRIMARY KEY (order_id, seat_id)
	)`},
}

// InitSchema creates the tables used by the reservation engine if missing.
func InitSchema(ctx context.Context, db Querier) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("creating %s: %w", stmt.name, err)
		}
	}
	return nil
}
