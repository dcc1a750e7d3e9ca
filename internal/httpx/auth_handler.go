package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caroya1/campus-market/internal/identity"
)

type AuthHandler struct {
	Identity *identity.Service
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/api/auth/register", h.register)
	r.Post("/api/auth/login", h.login)
}

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid json")
		return
	}
	sess, err := h.Identity.Register(r.Context(), req.Username, req.Password, req.Nickname, req.Email)
	if err != nil {
		Fail(w, err)
		return
	}
	OK(w, sess)
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid json")
		return
	}
	sess, err := h.Identity.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// wrong credentials come back as 401, not a business 400
		Unauthorized(w, err.Error())
		return
	}
	OK(w, sess)
}
