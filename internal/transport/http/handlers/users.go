package handlers

import (
	"net/http"

	"github.com/pribylovaa/quitline-accounts/internal/service"
	"github.com/pribylovaa/quitline-accounts/internal/transport/http/httperr"
	"github.com/pribylovaa/quitline-accounts/internal/transport/http/middleware"
)

// Me — GET /users/me.
// Возвращает пользователя, которому принадлежит токен.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, httperr.ErrNoToken)
		return
	}

	user, err := h.svc.UserByID(r.Context(), userID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateProfile — PUT /users/me/profile.
// Частичное обновление: непереданные поля не трогаются, пустая строка —
// явная очистка. Обновляется всегда профиль владельца токена.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, httperr.ErrNoToken)
		return
	}

	var in service.UpdateProfileInput
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errDecode())
		return
	}

	profile, err := h.svc.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(*profile))
}

// UpdateSettings — PUT /users/me/settings.
// Настройки заменяются целиком: все четыре поля обязательны.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, httperr.ErrNoToken)
		return
	}

	var in service.SettingsInput
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errDecode())
		return
	}

	settings, err := h.svc.UpdateSettings(r.Context(), userID, in)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(settings))
}

// avatarPresignRequest — запрос на выдачу presigned PUT URL.
type avatarPresignRequest struct {
	ContentType   string `json:"contentType"`
	ContentLength int64  `json:"contentLength"`
}

// avatarPresignResponse — ответ с URL и обязательными заголовками загрузки.
type avatarPresignResponse struct {
	UploadURL      string            `json:"uploadUrl"`
	AvatarKey      string            `json:"avatarKey"`
	ExpiresSeconds int64             `json:"expiresSeconds"`
	RequiredHeader map[string]string `json:"requiredHeaders"`
}

// avatarConfirmRequest — подтверждение загрузки по ключу объекта.
type avatarConfirmRequest struct {
	AvatarKey string `json:"avatarKey"`
}

// AvatarPresign — POST /users/me/avatar/presign.
// Выдаёт presigned PUT URL: файл уходит в хранилище напрямую, минуя сервис.
func (h *Handlers) AvatarPresign(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, httperr.ErrNoToken)
		return
	}

	var in avatarPresignRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errDecode())
		return
	}

	info, err := h.svc.AvatarUploadURL(r.Context(), userID, in.ContentType, in.ContentLength)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, avatarPresignResponse{
		UploadURL:      info.UploadURL,
		AvatarKey:      info.AvatarKey,
		ExpiresSeconds: int64(info.Expires.Seconds()),
		RequiredHeader: info.RequiredHeader,
	})
}

// AvatarConfirm — POST /users/me/avatar/confirm.
// Проверяет, что объект действительно загружен, и фиксирует его в профиле.
func (h *Handlers) AvatarConfirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, httperr.ErrNoToken)
		return
	}

	var in avatarConfirmRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errDecode())
		return
	}

	profile, err := h.svc.ConfirmAvatarUpload(r.Context(), userID, in.AvatarKey)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(*profile))
}
