// httperr стандартизирует ответы об ошибках HTTP-слоя accounts-сервиса.
// На вход он принимает ошибку сервисного слоя, а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Источник истинности по маппингу: сентинельные ошибки пакета service.
//
// Важная асимметрия контракта: отсутствие токена на защищённом маршруте — 401,
// а присутствующий, но невалидный/просроченный токен — 400. Клиенты различают
// по этим статусам «надо залогиниться» и «токен испорчен».
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/quitline-accounts/internal/service"
)

// ErrNoToken — на защищённый маршрут пришёл запрос без X-Auth-Token.
var ErrNoToken = errors.New("no token provided")

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и унифицированный
// ответ для фронта.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
//   - ошибки валидации несут имя первого нарушенного поля в message;
//   - ErrInvalidCredentials и ErrEmailTaken идут с родными безопасными
//     сообщениями (намеренно общими, без подсказки «какое поле не так»);
//   - ErrTokenExpired для клиента неотличим от ErrInvalidToken;
//   - всё нераспознанное — 500/internal без деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, ErrorResponse{
			Error: APIError{
				Code:    "internal",
				Message: "internal error",
			},
		}
	}

	var verr *service.ValidationError

	switch {
	case errors.Is(err, ErrNoToken):
		return http.StatusUnauthorized, response("no_token", "no token provided")
	case errors.As(err, &verr):
		return http.StatusBadRequest, response("invalid_argument", verr.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, response("invalid_credentials", service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusBadRequest, response("email_taken", service.ErrEmailTaken.Error())
	case errors.Is(err, service.ErrTokenExpired), errors.Is(err, service.ErrInvalidToken):
		return http.StatusBadRequest, response("invalid_token", "invalid token")
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, response("invalid_argument", "invalid argument")
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, response("not_found", "not found")
	default:
		return http.StatusInternalServerError, response("internal", "internal error")
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func response(code, msg string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: msg}}
}
