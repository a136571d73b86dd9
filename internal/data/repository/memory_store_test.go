package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"seat-reservation/internal/data/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seatsFor(ids ...string) []*entity.Seat {
	seats := make([]*entity.Seat, len(ids))
	for i, id := range ids {
		seats[i] = &entity.Seat{ID: id, Row: id[:1], Number: i + 1, Status: entity.SeatStatusAvailable}
	}
	return seats
}

func TestMemoryStore_Seed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	n, err := store.Seed(ctx, seatsFor("A1", "A2"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.Seed(ctx, seatsFor("A2", "A1"))
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMemoryStore_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Seed(ctx, seatsFor("A1", "A2"))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.InTx(ctx, func(tx ReservationTx) error {
		moved, err := tx.MarkSeatsSold(ctx, "R1", []string{"A1"}, time.Now())
		require.NoError(t, err)
		assert.Equal(t, []string{"A1"}, moved)

		// the tx sees its own write
		statuses, err := tx.LockSeats(ctx, []string{"A1"})
		require.NoError(t, err)
		assert.Equal(t, entity.SeatStatusSold, statuses["A1"])

		require.NoError(t, tx.InsertOrder(ctx, &entity.Order{OrderID: "R1", Identity: "u1", Seats: []string{"A1"}}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	seats, orders := store.Snapshot()
	assert.Equal(t, entity.SeatStatusAvailable, seats["A1"].Status)
	assert.Nil(t, seats["A1"].OrderID)
	assert.Empty(t, orders)
}

func TestMemoryStore_CommitAppliesWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Seed(ctx, seatsFor("A1", "A2"))
	require.NoError(t, err)

	at := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	err = store.InTx(ctx, func(tx ReservationTx) error {
		moved, err := tx.MarkSeatsSold(ctx, "R1", []string{"A1", "A2", "B9"}, at)
		if err != nil {
			return err
		}
		assert.Equal(t, []string{"A1", "A2"}, moved, "unknown seats are not moved")
		return tx.InsertOrder(ctx, &entity.Order{OrderID: "R1", Identity: "u1", Seats: moved, CreatedAt: at})
	})
	require.NoError(t, err)

	err = store.InTx(ctx, func(tx ReservationTx) error {
		count, err := tx.CountSeatsByIdentity(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		exists, err := tx.OrderExists(ctx, "R1")
		require.NoError(t, err)
		assert.True(t, exists)

		moved, err := tx.MarkSeatsSold(ctx, "R2", []string{"A1"}, at)
		require.NoError(t, err)
		assert.Empty(t, moved, "sold seats cannot be sold again")
		return nil
	})
	require.NoError(t, err)

	order, err := store.FindByOrderID(ctx, "R1")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, []string{"A1", "A2"}, order.Seats)

	order.Seats[0] = "Z1"
	again, err := store.FindByOrderID(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, "A1", again.Seats[0], "callers get copies")

	seats, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, entity.SeatStatusSold, seats[0].Status)
	require.NotNil(t, seats[0].OrderID)
	assert.Equal(t, "R1", *seats[0].OrderID)
	assert.Equal(t, at, seats[0].UpdatedAt)

	_, err = store.Seed(ctx, seatsFor("A1", "A2", "A3"))
	assert.ErrorIs(t, err, ErrReseedForbidden)
}

func TestMemoryStore_MissingOrder(t *testing.T) {
	order, err := NewMemoryStore().FindByOrderID(context.Background(), "R404")
	assert.NoError(t, err)
	assert.Nil(t, order)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewMemoryStore().InTx(ctx, func(tx ReservationTx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
