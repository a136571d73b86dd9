package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatStatus_IsAvailable(t *testing.T) {
	assert.True(t, SeatStatusAvailable.IsAvailable())
	assert.False(t, SeatStatusSold.IsAvailable())
	assert.False(t, SeatStatus("").IsAvailable())
}
