// storage содержит контракты слоя хранилищ accounts-сервиса.
//
// storage.go — работа с пользователями в БД (создание, поиск, частичное
// обновление профиля и замена настроек целиком).
// avatars.go — контракт для загрузки аватаров в S3/MinIO.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pribylovaa/quitline-accounts/internal/models"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email).
	ErrAlreadyExists = errors.New("already exists")
)

// ProfileUpdate — частичный апдейт профиля.
// Параметры задаются pointer-полями: только непустые указатели обновляются в БД.
type ProfileUpdate struct {
	Username *string
	Filename *string
	FileSrc  *string
}

// Users — контракт репозитория пользователей.
type Users interface {
	// SaveUser создаёт нового пользователя. Уникальность email обеспечивается
	// ограничением БД: при конфликте возвращается ErrAlreadyExists, так что из
	// двух конкурентных регистраций одного email успешной будет максимум одна.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpdateProfile выполняет частичное обновление полей профиля, указанных в update.
	// Реализация должна обновить updated_at.
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*models.Profile, error)
	// UpdateSettings заменяет подобъект настроек целиком.
	UpdateSettings(ctx context.Context, userID uuid.UUID, settings models.Settings) (*models.Settings, error)
	// ConfirmAvatarUpload фиксирует ключ объекта и публичную ссылку аватара в профиле.
	// Вызывается после успешного подтверждения загрузки в S3/MinIO.
	ConfirmAvatarUpload(ctx context.Context, userID uuid.UUID, key, publicURL string) (*models.Profile, error)
}

// UsersStorage — верхнеуровневый интерфейс хранилища пользователей.
type UsersStorage interface {
	Users
	Close()
}
