// handlers содержит REST-хендлеры accounts-сервиса.
// Валидация входных данных живёт в сервисном слое; здесь только декодирование
// JSON, выбор identity из контекста и сериализация ответов.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/quitline-accounts/internal/models"
	"github.com/pribylovaa/quitline-accounts/internal/service"
)

// Handlers агрегирует зависимости (сервисный слой).
type Handlers struct {
	svc *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через httperr.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errDecode — локальная ошибка парсинга тела запроса -> 400/invalid_argument.
func errDecode() error {
	return &service.ValidationError{Field: "body", Reason: "malformed request body"}
}

// profileResponse — подобъект профиля в ответах.
type profileResponse struct {
	Username string `json:"username"`
	Filename string `json:"filename"`
	FileSrc  string `json:"fileSrc"`
}

// settingsResponse — подобъект настроек в ответах.
type settingsResponse struct {
	CigsPerDay int     `json:"cigsPerDay"`
	CigsInPack int     `json:"cigsInPack"`
	PackCost   float64 `json:"packCost"`
	QuitDate   string  `json:"quitDate"`
}

// userResponse — публичная проекция пользователя: id + подобъекты.
// Email и password_hash наружу не отдаются никогда; settings опускается,
// если пользователь его ещё не заполнил.
type userResponse struct {
	ID        uuid.UUID         `json:"id"`
	Profile   profileResponse   `json:"profile"`
	Settings  *settingsResponse `json:"settings,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func toProfileResponse(p models.Profile) profileResponse {
	return profileResponse{
		Username: p.Username,
		Filename: p.Filename,
		FileSrc:  p.FileSrc,
	}
}

func toSettingsResponse(s *models.Settings) *settingsResponse {
	if s == nil {
		return nil
	}

	return &settingsResponse{
		CigsPerDay: s.CigsPerDay,
		CigsInPack: s.CigsInPack,
		PackCost:   s.PackCost,
		QuitDate:   s.QuitDate,
	}
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Profile:   toProfileResponse(u.Profile),
		Settings:  toSettingsResponse(u.Settings),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
