package market

const (
	TopicOrderPaid        = "order.paid"
	TopicOrderCancelled   = "order.cancelled"
	TopicActivityReserved = "activity.reserved"
	TopicActivityReleased = "activity.released"
)

// Partition key = order number (or activity id), so events for the same
// aggregate keep their order.
func PartitionKey(s string) []byte { return []byte(s) }
