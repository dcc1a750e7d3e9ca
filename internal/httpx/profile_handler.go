package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/caroya1/campus-market/internal/identity"
	"github.com/caroya1/campus-market/internal/market"
)

type ProfileHandler struct {
	Identity   *identity.Service
	Ledger     *market.Ledger
	Forum      *market.ForumService
	Activities *market.ActivityManager
}

func (h *ProfileHandler) Register(r chi.Router) {
	r.Get("/api/profile", h.profile)
	r.Put("/api/profile", h.update)
	r.Post("/api/recharge", h.recharge)
	r.Get("/api/recharge/history", h.history)
}

// profile aggregates the user record with their posts, reservations and
// recharge history, the way the profile page consumes it.
func (h *ProfileHandler) profile(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())

	posts, err := h.Forum.PostsByUser(r.Context(), user.ID)
	if err != nil {
		Fail(w, err)
		return
	}
	reservations, err := h.Activities.UserReservations(r.Context(), user.ID)
	if err != nil {
		Fail(w, err)
		return
	}
	events, err := h.Ledger.History(r.Context(), user.ID)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, map[string]any{
		"user":         user,
		"posts":        posts,
		"reservations": reservations,
		"recharges":    events,
	})
}

type updateProfileReq struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Gender   string `json:"gender"`
}

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateProfileReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid json")
		return
	}
	user := UserFrom(r.Context())
	updated, err := h.Identity.UpdateProfile(r.Context(), user.ID, req.Nickname, req.Email, req.Phone, req.Gender)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, updated)
}

type rechargeReq struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
}

func (h *ProfileHandler) recharge(w http.ResponseWriter, r *http.Request) {
	var req rechargeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid json")
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "balance"
	}
	user := UserFrom(r.Context())
	ev, err := h.Ledger.Credit(r.Context(), user.ID, req.Amount, req.PaymentMethod)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, ev)
}

func (h *ProfileHandler) history(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	events, err := h.Ledger.History(r.Context(), user.ID)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, events)
}
