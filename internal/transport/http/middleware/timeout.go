package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout ограничивает общее время обработки запроса дедлайном d.
// Нулевое или отрицательное d выключает мидлвар. Запрос, уже пришедший
// с дедлайном (например, от внешнего прокси), не трогаем: более короткий
// внешний лимит важнее нашего.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
