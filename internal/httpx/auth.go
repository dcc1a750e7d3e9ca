package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/caroya1/campus-market/internal/identity"
	"github.com/caroya1/campus-market/internal/market"
)

type userKey struct{}

func withUser(ctx context.Context, u *market.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the authenticated caller; only set behind RequireUser.
func UserFrom(ctx context.Context) *market.User {
	u, _ := ctx.Value(userKey{}).(*market.User)
	return u
}

type Auth struct {
	Identity *identity.Service
}

// RequireUser resolves the bearer token to a user record and stores it in
// the request context.
func (a *Auth) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			Unauthorized(w, "missing bearer token")
			return
		}
		user, err := a.Identity.Resolve(r.Context(), token)
		if err != nil {
			Unauthorized(w, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}
