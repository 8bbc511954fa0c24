package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/quitline-accounts/internal/models"
	"github.com/pribylovaa/quitline-accounts/internal/storage"
	"github.com/pribylovaa/quitline-accounts/pkg/log"
)

// UserByID возвращает пользователя по идентификатору.
func (s *Service) UserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	const op = "service.users.UserByID"

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		log.From(ctx).Error("user_lookup_failed",
			"op", op,
			"err", err.Error(),
		)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return user, nil
}

// UpdateProfile частично обновляет профиль пользователя из токена.
//
// Семантика поштучная: nil-указатель во входе означает «не трогать поле»,
// непустое значение — заменить, пустая строка — явная очистка. Идентификатор
// берётся исключительно из токена, id в запросе не принимается.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.Profile, error) {
	const op = "service.users.UpdateProfile"

	lg := log.From(ctx).With("op", op)

	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, asValidationError(err))
	}

	upd := storage.ProfileUpdate{
		Filename: input.Filename,
		FileSrc:  input.FileSrc,
	}
	if input.Username != nil {
		trimmed := strings.TrimSpace(*input.Username)
		upd.Username = &trimmed
	}

	profile, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("update_profile_failed", "err", err.Error())

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return profile, nil
}

// UpdateSettings заменяет настройки пользователя целиком.
//
// В отличие от профиля, контракт строгий: все четыре поля обязательны,
// частичного слияния нет. Пришёл новый объект — старый полностью вытеснен.
func (s *Service) UpdateSettings(ctx context.Context, userID uuid.UUID, input SettingsInput) (*models.Settings, error) {
	const op = "service.users.UpdateSettings"

	lg := log.From(ctx).With("op", op)

	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, asValidationError(err))
	}

	settings, err := s.users.UpdateSettings(ctx, userID, *input.toModel())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("update_settings_failed", "err", err.Error())

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return settings, nil
}

// AvatarUploadURL выдаёт presigned PUT URL для загрузки аватара пользователя.
// Сам файл через сервис не проходит: клиент кладёт объект напрямую в S3
// и затем подтверждает загрузку через ConfirmAvatarUpload.
func (s *Service) AvatarUploadURL(ctx context.Context, userID uuid.UUID, contentType string, contentLength int64) (*storage.UploadInfo, error) {
	const op = "service.users.AvatarUploadURL"

	lg := log.From(ctx).With("op", op)

	info, err := s.avatars.AvatarUploadURL(ctx, userID, contentType, contentLength)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidArgument) {
			return nil, fmt.Errorf("%s: %w", op,
				&ValidationError{Field: "avatar", Reason: "unsupported content type or size"})
		}

		lg.Error("presign_failed", "err", err.Error())

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return info, nil
}

// ConfirmAvatarUpload подтверждает загрузку аватара по ключу:
// проверяет объект в S3 и записывает filename/fileSrc в профиль.
// filename — базовое имя объекта, fileSrc — публичный URL (если настроен).
func (s *Service) ConfirmAvatarUpload(ctx context.Context, userID uuid.UUID, avatarKey string) (*models.Profile, error) {
	const op = "service.users.ConfirmAvatarUpload"

	lg := log.From(ctx).With("op", op)

	publicURL, err := s.avatars.CheckAvatarUpload(ctx, userID, avatarKey)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFoundAvatar):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrInvalidArgument):
			return nil, fmt.Errorf("%s: %w", op,
				&ValidationError{Field: "avatarKey", Reason: "invalid avatar key"})
		}

		lg.Error("avatar_check_failed", "err", err.Error())

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	profile, err := s.users.ConfirmAvatarUpload(ctx, userID, path.Base(avatarKey), publicURL)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("avatar_confirm_failed", "err", err.Error())

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return profile, nil
}
