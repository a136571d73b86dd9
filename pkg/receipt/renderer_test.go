package receipt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt() Receipt {
	return Receipt{
		OrderID:    "R0MGXK3F2Q7K9ZDAB",
		Email:      "fan@example.com",
		Seats:      []string{"A1", "A2"},
		Guests:     []Guest{{SeatID: "A2", Name: "Sam"}},
		ShowTime:   "Friday 8 PM",
		ReservedAt: time.Date(2025, 11, 1, 18, 5, 0, 0, time.UTC),
	}
}

func TestTextRenderer_Render(t *testing.T) {
	renderer, err := NewTextRenderer("")
	require.NoError(t, err)

	artifact, err := renderer.Render(context.Background(), sampleReceipt())
	require.NoError(t, err)

	body := string(artifact.Body)
	assert.Equal(t, "ticket_receipt_R0MGXK3F2Q7K9ZDAB.txt", artifact.Filename)
	assert.Contains(t, body, "Order ID: R0MGXK3F2Q7K9ZDAB\n")
	assert.Contains(t, body, "Show Time: Friday 8 PM\n")
	assert.Contains(t, body, "Reserved At: November 1, 2025, 6:05 PM UTC\n")
	assert.Contains(t, body, "Seats: A1, A2\n")
	assert.Contains(t, body, "Guests:\n1. Sam — Seat A2\nAll tickets are free.\n")

	var payload VerificationPayload
	require.NoError(t, json.Unmarshal(artifact.Payload, &payload))
	assert.Equal(t, VerificationPayload{OrderID: "R0MGXK3F2Q7K9ZDAB", Email: "fan@example.com", Seats: []string{"A1", "A2"}}, payload)
	assert.Contains(t, body, "Verification: "+string(artifact.Payload))
}

func TestTextRenderer_NoGuests(t *testing.T) {
	renderer, err := NewTextRenderer("")
	require.NoError(t, err)

	r := sampleReceipt()
	r.Guests = nil
	artifact, err := renderer.Render(context.Background(), r)
	require.NoError(t, err)
	assert.Contains(t, string(artifact.Body), "Guests:\n(No guest names provided)\nAll tickets are free.\n")
}

func TestTextRenderer_WritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	renderer, err := NewTextRenderer(dir)
	require.NoError(t, err)

	artifact, err := renderer.Render(context.Background(), sampleReceipt())
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(dir, artifact.Filename))
	require.NoError(t, err)
	assert.Equal(t, artifact.Body, written)
}

func TestTextRenderer_CancelledContext(t *testing.T) {
	renderer, err := NewTextRenderer("")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = renderer.Render(ctx, sampleReceipt())
	assert.ErrorIs(t, err, context.Canceled)
}
