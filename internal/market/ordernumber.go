package market

import (
	"fmt"
	"math/rand"
	"time"
)

// Order numbers look like ORD20260901143005042: "ORD" + timestamp to the
// second + 3-digit random suffix. Two checkouts in the same second can
// collide, so callers must verify uniqueness and retry with a fresh suffix.
func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD%s%03d", now.Format("20060102150405"), rand.Intn(1000))
}
