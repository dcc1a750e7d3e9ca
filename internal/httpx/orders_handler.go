package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/caroya1/campus-market/internal/kafka"
	"github.com/caroya1/campus-market/internal/market"
	"github.com/caroya1/campus-market/internal/redisx"
)

type OrdersHandler struct {
	Engine   *market.OrderEngine
	Producer *kafkax.Producer
	Redis    *redis.Client
	Service  string
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/api/orders/checkout", h.checkout)
	r.Get("/api/orders", h.list)
	r.Get("/api/orders/{id}", h.detail)
	r.Get("/api/orders/{id}/status", h.status)
	r.Post("/api/orders/{id}/cancel", h.cancel)
}

type checkoutReq struct {
	ShippingAddress string `json:"shipping_address"`
	Remark          string `json:"remark"`
}

func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid json")
		return
	}
	if req.ShippingAddress == "" {
		BadRequest(w, "shipping_address is required")
		return
	}
	user := UserFrom(r.Context())

	order, err := h.Engine.Checkout(r.Context(), user.ID, req.ShippingAddress, req.Remark)
	if err != nil {
		Fail(w, err)
		return
	}

	h.cacheStatus(r, user.ID, order.ID, order.Status)
	h.publish(r, market.TopicOrderPaid, market.EventOrderPaid, order.OrderNumber, market.OrderPaidPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      user.ID,
		TotalAmount: order.TotalAmount.String(),
		Lines: lo.Map(order.Lines, func(l market.OrderLine, _ int) market.LineQty {
			return market.LineQty{ProductID: l.ProductID, Qty: l.Quantity}
		}),
	})

	OK(w, order)
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	orderID := idParam(r, "id")

	wasPaid := false
	if o, err := h.Engine.OrderDetail(r.Context(), orderID, user.ID); err == nil {
		wasPaid = o.Status == market.OrderPaid
	}

	order, err := h.Engine.CancelOrder(r.Context(), orderID, user.ID)
	if err != nil {
		Fail(w, err)
		return
	}

	h.cacheStatus(r, user.ID, order.ID, order.Status)
	h.publish(r, market.TopicOrderCancelled, market.EventOrderCancelled, order.OrderNumber, market.OrderCancelledPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      user.ID,
		Refunded:    wasPaid,
	})

	OK(w, order)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	orders, err := h.Engine.ListOrders(r.Context(), user.ID, queryInt(r, "page", 1), queryInt(r, "size", 10))
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, orders)
}

func (h *OrdersHandler) detail(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	order, err := h.Engine.OrderDetail(r.Context(), idParam(r, "id"), user.ID)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, order)
}

// status serves from the Redis cache when warm; the key is scoped by user so
// the fast path cannot leak someone else's order.
func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	orderID := idParam(r, "id")

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, user.ID, orderID)
		if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
			OK(w, map[string]string{"status": s})
			return
		}
	}

	order, err := h.Engine.OrderDetail(r.Context(), orderID, user.ID)
	if err != nil {
		Fail(w, err)
		return
	}
	h.cacheStatus(r, user.ID, orderID, order.Status)
	OK(w, map[string]string{"status": string(order.Status)})
}

func (h *OrdersHandler) cacheStatus(r *http.Request, userID, orderID int64, st market.OrderStatus) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, userID, orderID)
	_ = h.Redis.Set(r.Context(), key, string(st), redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publish(r *http.Request, topic, eventType, key string, payload any) {
	if h.Producer == nil {
		return
	}
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       middleware.GetReqID(r.Context()),
		CorrelationID: key,
		Payload:       kafkax.MustMarshal(payload),
	}
	h.Producer.Publish(topic, market.PartitionKey(key), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
