package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/quitline-accounts/internal/transport/http/httperr"
)

// AuthTokenHeader — заголовок, в котором клиент передаёт токен
// и в котором сервис возвращает его после регистрации/входа.
const AuthTokenHeader = "X-Auth-Token"

// TokenVerifier проверяет токен и возвращает идентификатор его владельца.
type TokenVerifier interface {
	AuthenticateToken(token string) (uuid.UUID, error)
}

// AuthToken защищает маршрут: извлекает X-Auth-Token, проверяет его через
// verifier и кладёт идентификатор пользователя в контекст.
//
// Отсутствие заголовка — 401; присутствующий, но невалидный или просроченный
// токен — 400 (маппинг в httperr). Идентификатор из токена — единственный
// источник личности для защищённых операций: id из URL или тела не принимается.
func AuthToken(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(AuthTokenHeader))
			if token == "" {
				httperr.WriteError(w, r, httperr.ErrNoToken)
				return
			}

			userID, err := verifier.AuthenticateToken(token)
			if err != nil {
				httperr.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom возвращает идентификатор пользователя, положенный AuthToken.
func IdentityFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxUserID).(uuid.UUID)
	return id, ok
}
