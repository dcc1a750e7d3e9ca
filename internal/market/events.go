package market

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPaid        = "OrderPaid"
	EventOrderCancelled   = "OrderCancelled"
	EventActivityReserved = "ActivityReserved"
	EventActivityReleased = "ActivityReleased"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type LineQty struct {
	ProductID int64 `json:"product_id"`
	Qty       int   `json:"qty"`
}

type OrderPaidPayload struct {
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      int64     `json:"user_id"`
	TotalAmount string    `json:"total_amount"`
	Lines       []LineQty `json:"lines"`
}

type OrderCancelledPayload struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	UserID      int64  `json:"user_id"`
	Refunded    bool   `json:"refunded"`
}

type ActivityReservedPayload struct {
	ActivityID    int64 `json:"activity_id"`
	UserID        int64 `json:"user_id"`
	ReservedCount int   `json:"reserved_count"`
	MaxCapacity   int   `json:"max_capacity"`
}

type ActivityReleasedPayload struct {
	ActivityID    int64 `json:"activity_id"`
	UserID        int64 `json:"user_id"`
	ReservedCount int   `json:"reserved_count"`
}
