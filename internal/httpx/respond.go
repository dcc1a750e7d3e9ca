package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/caroya1/campus-market/internal/market"
)

// Result is the uniform response envelope. Business failures keep their
// message; internal faults are logged and surfaced as a generic 500.
type Result struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Result{Success: true, Code: 200, Message: "ok", Data: data})
}

func BadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, Result{Success: false, Code: 400, Message: msg})
}

func Unauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, Result{Success: false, Code: 401, Message: msg})
}

// Fail maps a domain error to a 400 envelope with its message verbatim.
// Anything else is an internal fault: log it, hide the details.
func Fail(w http.ResponseWriter, err error) {
	var de *market.Error
	if errors.As(err, &de) {
		BadRequest(w, de.Message)
		return
	}
	log.Printf("internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, Result{Success: false, Code: 500, Message: "internal error"})
}
