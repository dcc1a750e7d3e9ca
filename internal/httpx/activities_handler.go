package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/caroya1/campus-market/internal/kafka"
	"github.com/caroya1/campus-market/internal/market"
)

type ActivitiesHandler struct {
	Activities *market.ActivityManager
	Producer   *kafkax.Producer
	Service    string
}

// RegisterPublic mounts the read-only routes that need no token.
func (h *ActivitiesHandler) RegisterPublic(r chi.Router) {
	r.Get("/api/activities", h.list)
	r.Get("/api/activities/{id}", h.detail)
}

func (h *ActivitiesHandler) Register(r chi.Router) {
	r.Post("/api/activities/{id}/reserve", h.reserve)
	r.Delete("/api/activities/{id}/reserve", h.cancelReservation)
	r.Get("/api/activities/{id}/favorite", h.isFavorite)
	r.Post("/api/activities/{id}/favorite", h.addFavorite)
	r.Delete("/api/activities/{id}/favorite", h.removeFavorite)
	r.Get("/api/reservations", h.myReservations)
}

func (h *ActivitiesHandler) list(w http.ResponseWriter, r *http.Request) {
	activities, err := h.Activities.List(r.Context(),
		r.URL.Query().Get("keyword"), queryInt(r, "page", 1), queryInt(r, "size", 10))
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, activities)
}

func (h *ActivitiesHandler) detail(w http.ResponseWriter, r *http.Request) {
	a, err := h.Activities.Detail(r.Context(), idParam(r, "id"))
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, a)
}

func (h *ActivitiesHandler) reserve(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	a, err := h.Activities.Reserve(r.Context(), user.ID, idParam(r, "id"))
	if err != nil {
		Fail(w, err)
		return
	}
	h.publish(r, market.TopicActivityReserved, market.EventActivityReserved, a.ID, market.ActivityReservedPayload{
		ActivityID:    a.ID,
		UserID:        user.ID,
		ReservedCount: a.ReservedCount,
		MaxCapacity:   a.MaxCapacity,
	})
	OK(w, a)
}

func (h *ActivitiesHandler) cancelReservation(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	a, err := h.Activities.CancelReservation(r.Context(), user.ID, idParam(r, "id"))
	if err != nil {
		Fail(w, err)
		return
	}
	if a != nil {
		h.publish(r, market.TopicActivityReleased, market.EventActivityReleased, a.ID, market.ActivityReleasedPayload{
			ActivityID:    a.ID,
			UserID:        user.ID,
			ReservedCount: a.ReservedCount,
		})
	}
	OK(w, a)
}

func (h *ActivitiesHandler) myReservations(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	reservations, err := h.Activities.UserReservations(r.Context(), user.ID)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, reservations)
}

func (h *ActivitiesHandler) isFavorite(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	fav, err := h.Activities.IsFavorite(r.Context(), user.ID, idParam(r, "id"))
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, map[string]bool{"favorited": fav})
}

func (h *ActivitiesHandler) addFavorite(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if err := h.Activities.AddFavorite(r.Context(), user.ID, idParam(r, "id")); err != nil {
		Fail(w, err)
		return
	}
	OK(w, nil)
}

func (h *ActivitiesHandler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if err := h.Activities.RemoveFavorite(r.Context(), user.ID, idParam(r, "id")); err != nil {
		Fail(w, err)
		return
	}
	OK(w, nil)
}

func (h *ActivitiesHandler) publish(r *http.Request, topic, eventType string, activityID int64, payload any) {
	if h.Producer == nil {
		return
	}
	key := strconv.FormatInt(activityID, 10)
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
