package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	n := newOrderNumber(now)
	assert.Len(t, n, 20)
	assert.Equal(t, "ORD20250314150926", n[:17])
	assert.Regexp(t, `^\d{3}$`, n[17:])
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderPaid, true},
		{OrderPending, OrderCancelled, true},
		{OrderPaid, OrderShipped, true},
		{OrderPaid, OrderCancelled, true},
		{OrderShipped, OrderCompleted, true},
		{OrderShipped, OrderCancelled, false},
		{OrderCompleted, OrderCancelled, false},
		{OrderCancelled, OrderPaid, false},
		{OrderPending, OrderCompleted, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestCancellable(t *testing.T) {
	assert.True(t, OrderPending.Cancellable())
	assert.True(t, OrderPaid.Cancellable())
	assert.False(t, OrderShipped.Cancellable())
	assert.False(t, OrderCompleted.Cancellable())
	assert.False(t, OrderCancelled.Cancellable())
}
