package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caroya1/campus-market/internal/market"
)

type CartHandler struct {
	Cart *market.CartService
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/api/cart", h.list)
	r.Post("/api/cart", h.add)
	r.Put("/api/cart/{productID}", h.update)
	r.Delete("/api/cart/{productID}", h.remove)
	r.Delete("/api/cart", h.clear)
}

type cartAddReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req cartAddReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid json")
		return
	}
	user := UserFrom(r.Context())
	if err := h.Cart.Add(r.Context(), user.ID, req.ProductID, req.Quantity); err != nil {
		Fail(w, err)
		return
	}
	OK(w, nil)
}

type cartUpdateReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	var req cartUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid json")
		return
	}
	user := UserFrom(r.Context())
	if err := h.Cart.UpdateQuantity(r.Context(), user.ID, idParam(r, "productID"), req.Quantity); err != nil {
		Fail(w, err)
		return
	}
	OK(w, nil)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if err := h.Cart.Remove(r.Context(), user.ID, idParam(r, "productID")); err != nil {
		Fail(w, err)
		return
	}
	OK(w, nil)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	if err := h.Cart.Clear(r.Context(), user.ID); err != nil {
		Fail(w, err)
		return
	}
	OK(w, nil)
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	lines, total, err := h.Cart.List(r.Context(), user.ID)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, map[string]any{"items": lines, "total": total})
}
