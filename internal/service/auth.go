package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/quitline-accounts/internal/models"
	"github.com/pribylovaa/quitline-accounts/internal/storage"
	"github.com/pribylovaa/quitline-accounts/pkg/log"
	"github.com/pribylovaa/quitline-accounts/pkg/redact"
)

// RegisterUser регистрирует нового пользователя.
//
// Порядок строго фиксирован: сначала схема валидации (при нарушении хранилище
// не затрагивается вовсе), затем проверка занятости email, затем хэширование
// пароля и вставка. Гонку двух конкурентных регистраций одного email закрывает
// уникальный индекс БД: storage.ErrAlreadyExists маппится в ErrEmailTaken.
// В запись попадают только поля из whitelist-модели; готовый password_hash
// со входа принят быть не может.
func (s *Service) RegisterUser(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	const op = "service.auth.RegisterUser"

	lg := log.From(ctx).With("op", op)

	if err := input.Validate(); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, asValidationError(err))
	}

	normEmail := normalizeEmail(input.Email)

	_, err := s.users.UserByEmail(ctx, normEmail)
	if err == nil {
		lg.Warn("email_taken", "email", redact.Email(normEmail))

		return nil, "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		lg.Error("user_lookup_failed", "err", err.Error())

		return nil, "", fmt.Errorf("%s: %w", op, ErrInternal)
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if input.Profile != nil {
		user.Profile = models.Profile{
			Username: strings.TrimSpace(input.Profile.Username),
			Filename: input.Profile.Filename,
			FileSrc:  input.Profile.FileSrc,
		}
	}

	if input.Settings != nil {
		user.Settings = input.Settings.toModel()
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			lg.Warn("email_taken_on_insert", "email", redact.Email(normEmail))

			return nil, "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		lg.Error("save_user_failed", "err", err.Error())

		return nil, "", fmt.Errorf("%s: %w", op, ErrInternal)
	}

	token, err := s.issueAuthToken(ctx, user.ID, now)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return user, token, nil
}

// LoginUser выполняет вход по email+пароль.
//
// «Нет такого email» и «неверный пароль» сведены к одному ErrInvalidCredentials:
// по ответу нельзя понять, зарегистрирован ли адрес. Lockout/backoff здесь
// сознательно не моделируется.
func (s *Service) LoginUser(ctx context.Context, input LoginInput) (*models.User, string, error) {
	const op = "service.auth.LoginUser"

	lg := log.From(ctx).With("op", op)

	if err := input.Validate(); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, asValidationError(err))
	}

	normEmail := normalizeEmail(input.Email)

	user, err := s.users.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("login_unknown_email", "email", redact.Email(normEmail))

			return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		lg.Error("user_lookup_failed", "err", err.Error())

		return nil, "", fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if !checkPassword(user.PasswordHash, input.Password) {
		lg.Warn("login_password_mismatch", "email", redact.Email(normEmail))

		return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.issueAuthToken(ctx, user.ID, time.Now().UTC())
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return user, token, nil
}

// AuthenticateToken проверяет токен и возвращает идентификатор пользователя.
// Используется auth-мидлваром на защищённых маршрутах.
func (s *Service) AuthenticateToken(token string) (uuid.UUID, error) {
	const op = "service.auth.AuthenticateToken"

	uid, err := s.validateAuthToken(token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return uid, nil
}

// hashPassword хэширует пароль с помощью bcrypt.
// Соль генерируется на каждый вызов и встроена в результат, поэтому два хэша
// одного пароля не совпадают.
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем. Повреждённый/чужой формат хэша
// даёт false, а не панику; сравнение дайджестов — константное по времени
// (гарантия bcrypt).
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// normalizeEmail обрезает пробелы снаружи и приводит адрес к нижнему регистру.
func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// toModel собирает доменный подобъект настроек из провалидированного входа.
func (in *SettingsInput) toModel() *models.Settings {
	return &models.Settings{
		CigsPerDay: *in.CigsPerDay,
		CigsInPack: *in.CigsInPack,
		PackCost:   *in.PackCost,
		QuitDate:   *in.QuitDate,
	}
}
