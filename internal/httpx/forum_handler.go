package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caroya1/campus-market/internal/market"
)

type ForumHandler struct {
	Forum *market.ForumService
}

func (h *ForumHandler) RegisterPublic(r chi.Router) {
	r.Get("/api/posts", h.list)
	r.Get("/api/posts/{id}", h.detail)
}

func (h *ForumHandler) Register(r chi.Router) {
	r.Post("/api/posts", h.create)
}

func (h *ForumHandler) list(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Forum.List(r.Context(),
		r.URL.Query().Get("keyword"), queryInt(r, "page", 1), queryInt(r, "size", 10))
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, posts)
}

func (h *ForumHandler) detail(w http.ResponseWriter, r *http.Request) {
	p, err := h.Forum.Detail(r.Context(), idParam(r, "id"))
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, p)
}

type createPostReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *ForumHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPostReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid json")
		return
	}
	user := UserFrom(r.Context())
	p, err := h.Forum.CreatePost(r.Context(), user.ID, req.Title, req.Content)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, p)
}
