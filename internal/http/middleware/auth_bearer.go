package middleware

import (
	"net/http"
	"strings"

	"github.com/pribylovaa/go-threads/internal/identity"
)

// AuthBearer извлекает Bearer-токен из Authorization (или cookie __session,
// которую ставит провайдер идентичности) и кладёт «сырой» токен в контекст.
// Проверка токена — забота identity.JWTResolver; здесь запрос не отклоняется.
func AuthBearer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearer(r); token != "" {
				r = r.WithContext(identity.WithToken(r.Context(), token))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(r *http.Request) string {
	const prefix = "Bearer "

	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, prefix) && len(auth) > len(prefix) {
			return strings.TrimSpace(auth[len(prefix):])
		}
		return ""
	}

	if c, err := r.Cookie("__session"); err == nil {
		return strings.TrimSpace(c.Value)
	}

	return ""
}
