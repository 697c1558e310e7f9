package delivery

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Vovarama1992/dreamcatcher/internal/ports"
)

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
)

var (
	errUnauthorized = errors.New("unauthorized")
	errForbidden    = errors.New("forbidden")
)

func AuthMiddleware(auth ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				writeError(w, http.StatusUnauthorized, errUnauthorized)
				return
			}

			token := strings.TrimPrefix(h, "Bearer ")
			user, err := auth.CurrentUser(r.Context(), token)
			if err != nil || user == nil {
				writeError(w, http.StatusUnauthorized, errUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly пускает только пользователей из списка; ставится после AuthMiddleware
func AdminOnly(emails []string) func(http.Handler) http.Handler {
	admins := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, errUnauthorized)
				return
			}
			if _, ok := admins[strings.ToLower(user.Email)]; !ok {
				writeError(w, http.StatusForbidden, errForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserFromContext(ctx context.Context) *ports.User {
	u, _ := ctx.Value(userKey).(*ports.User)
	return u
}

func tokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}
