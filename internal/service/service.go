// service содержит бизнес-логику accounts-сервиса:
// регистрацию/аутентификацию пользователей, выпуск/проверку токенов,
// валидацию входных данных и операции над профилем/настройками
// через интерфейсы из пакета storage.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданные хранилища потокобезопасны.
//   - Ошибки возвращаются наружу и далее маппятся HTTP-слоем
//     (см. transport/http/httperr и комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"github.com/pribylovaa/quitline-accounts/internal/config"
	"github.com/pribylovaa/quitline-accounts/internal/storage"
)

var (
	// ErrInvalidCredentials — пара email/пароль неверна или пользователь не найден.
	// Сообщение нарочно общее: «нет такого email» и «неверный пароль» неразличимы,
	// чтобы не допускать перебор аккаунтов. Транспорт: HTTP 400.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken — email уже занят другим пользователем. Транспорт: HTTP 400,
	// без уточнения, какое именно поле вызвало конфликт.
	ErrEmailTaken = errors.New("user already registered")

	// ErrInvalidToken — токен некорректен по формату/подписи/алгоритму.
	// Транспорт: HTTP 400.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Транспорт: HTTP 400
	// (для клиента неотличим от ErrInvalidToken).
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidArgument — входные данные нарушают схему валидации.
	// Конкретное поле несёт ValidationError (см. validate.go). Транспорт: HTTP 400.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound — сущность не найдена. Транспорт: HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrInternal — внутренняя ошибка сервиса. Транспорт: HTTP 500.
	ErrInternal = errors.New("internal")
)

// Service описывает бизнес-логику accounts-сервиса.
type Service struct {
	cfg     *config.Config
	users   storage.UsersStorage
	avatars storage.AvatarsStorage
}

// New создаёт новый экземпляр Service.
func New(users storage.UsersStorage, avatars storage.AvatarsStorage, cfg *config.Config) *Service {
	return &Service{
		users:   users,
		avatars: avatars,
		cfg:     cfg,
	}
}
