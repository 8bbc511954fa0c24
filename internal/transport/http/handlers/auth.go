package handlers

import (
	"net/http"

	"github.com/pribylovaa/quitline-accounts/internal/service"
	"github.com/pribylovaa/quitline-accounts/internal/transport/http/httperr"
	"github.com/pribylovaa/quitline-accounts/internal/transport/http/middleware"
)

// RegisterUser — POST /users.
// Создаёт пользователя и сразу аутентифицирует его: свежий токен уходит
// в заголовке X-Auth-Token, тело — созданный пользователь.
func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errDecode())
		return
	}

	user, token, err := h.svc.RegisterUser(r.Context(), in)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.Header().Set(middleware.AuthTokenHeader, token)
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// LoginUser — POST /auth.
// Проверяет пару email/пароль и возвращает пользователя с новым токеном
// в заголовке X-Auth-Token. Неизвестный email и неверный пароль дают
// одинаковый ответ.
func (h *Handlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errDecode())
		return
	}

	user, token, err := h.svc.LoginUser(r.Context(), in)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.Header().Set(middleware.AuthTokenHeader, token)
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
