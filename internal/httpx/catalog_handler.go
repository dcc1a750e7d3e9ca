package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caroya1/campus-market/internal/market"
)

type CatalogHandler struct {
	Catalog *market.CatalogService
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/api/products", h.list)
	r.Get("/api/products/{id}", h.get)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	f := market.ProductFilter{
		Category: r.URL.Query().Get("category"),
		Keyword:  r.URL.Query().Get("keyword"),
		Page:     queryInt(r, "page", 1),
		Size:     queryInt(r, "size", 10),
	}
	products, err := h.Catalog.List(r.Context(), f)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, products)
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.Get(r.Context(), idParam(r, "id"))
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, p)
}
