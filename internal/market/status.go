package market

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:   {OrderPaid: true, OrderCancelled: true},
	OrderPaid:      {OrderShipped: true, OrderCancelled: true},
	OrderShipped:   {OrderCompleted: true},
	OrderCompleted: {},
	OrderCancelled: {},
}

func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// Cancellable reports whether the user may still cancel the order.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderPaid
}

type ActivityStatus string

const (
	ActivityActive ActivityStatus = "active"
	ActivityClosed ActivityStatus = "closed"
)
