package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
)

const msgInvalidInternalToken = "доступ запрещен"

// InternalToken защищает внутренние эндпоинты (платежные хуки) общим секретом
// в заголовке X-Internal-Token
func InternalToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-Internal-Token")
			if token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				handlers.RespondForbidden(w, msgInvalidInternalToken)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
