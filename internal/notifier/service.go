package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/caroya1/campus-market/internal/kafka"
	"github.com/caroya1/campus-market/internal/market"
	"github.com/caroya1/campus-market/internal/redisx"
)

// Service consumes order lifecycle events, keeps the order-status cache warm
// and emits notification log lines. Processing is idempotent: each event_id
// is recorded in Redis and replays are dropped.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderEvent is installed as the consumer handler for both the paid and
// cancelled topics.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case market.EventOrderPaid:
		p, err := kafkax.UnwrapPayload[market.OrderPaidPayload](env.Payload)
		if err != nil {
			return err
		}
		s.cacheStatus(ctx, p.UserID, p.OrderID, string(market.OrderPaid))
		log.Printf("notify user=%d order=%s paid total=%s trace=%s",
			p.UserID, p.OrderNumber, p.TotalAmount, env.TraceID)

	case market.EventOrderCancelled:
		p, err := kafkax.UnwrapPayload[market.OrderCancelledPayload](env.Payload)
		if err != nil {
			return err
		}
		s.cacheStatus(ctx, p.UserID, p.OrderID, string(market.OrderCancelled))
		log.Printf("notify user=%d order=%s cancelled refunded=%v trace=%s",
			p.UserID, p.OrderNumber, p.Refunded, env.TraceID)

	default:
		// unknown type on this topic, commit and move on
	}
	return nil
}

func (s *Service) cacheStatus(ctx context.Context, userID, orderID int64, status string) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, userID, orderID)
	if err := s.Redis.Set(ctx, key, status, redisx.TTLStatusCache).Err(); err != nil {
		log.Printf("cache order status: %v", err)
	}
}
