package redisx

import "time"

const (
	// Cache of an order's status, scoped by owner:
	// order_status:{user_id}:{order_id} -> "paid" etc.
	KeyOrderStatus = "order_status:%d:%d"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
