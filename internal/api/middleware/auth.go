package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SPA-BookingService/internal/api/handlers"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

const msgMissingUserID = "не указан идентификатор пользователя"

// Auth извлекает идентификатор пользователя из заголовка X-User-ID
// Аутентификацию выполняет шлюз перед сервисом, здесь только идентификация
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondError(w, http.StatusUnauthorized, msgMissingUserID)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext возвращает идентификатор пользователя запроса
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
