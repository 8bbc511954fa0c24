package service

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Границы схем валидации. Единственный источник истины для «текущей» политики:
// все ограничения полей заданы здесь, а не рассыпаны литералами по коду.
const (
	EmailMaxLen    = 255
	PasswordMinLen = 5
	PasswordMaxLen = 255

	UsernameMinLen = 3
	UsernameMaxLen = 10

	CigsPerDayMin = 1
	CigsPerDayMax = 100
	CigsInPackMin = 1
	CigsInPackMax = 100

	PackCostMin float64 = 0
	PackCostMax float64 = 10000
)

// ValidationError — ошибка схемы с указанием первого нарушенного поля.
// errors.Is(err, ErrInvalidArgument) для неё истинно.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}

// RegisterInput — входные данные регистрации.
// Поля profile и settings необязательны; если присутствуют — валидируются
// по собственным схемам.
type RegisterInput struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Profile  *ProfileInput  `json:"profile"`
	Settings *SettingsInput `json:"settings"`
}

// LoginInput — входные данные входа.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput — подобъект профиля при регистрации.
type ProfileInput struct {
	Username string `json:"username"`
	Filename string `json:"filename"`
	FileSrc  string `json:"fileSrc"`
}

// UpdateProfileInput — частичное обновление профиля.
// nil-указатель означает «поле не передано, не трогать»;
// пустая строка — явная очистка поля.
type UpdateProfileInput struct {
	Username *string `json:"username"`
	Filename *string `json:"filename"`
	FileSrc  *string `json:"fileSrc"`
}

// SettingsInput — подобъект настроек. Заполняется только целиком:
// все четыре поля обязательны (строгий вариант контракта).
type SettingsInput struct {
	CigsPerDay *int     `json:"cigsPerDay"`
	CigsInPack *int     `json:"cigsInPack"`
	PackCost   *float64 `json:"packCost"`
	QuitDate   *string  `json:"quitDate"`
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, validation.Length(1, EmailMaxLen), is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(PasswordMinLen, PasswordMaxLen)),
		validation.Field(&in.Profile),
		validation.Field(&in.Settings),
	)
}

func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, validation.Length(1, EmailMaxLen), is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(PasswordMinLen, PasswordMaxLen)),
	)
}

func (in ProfileInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Length(UsernameMinLen, UsernameMaxLen)),
	)
}

func (in UpdateProfileInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Length(UsernameMinLen, UsernameMaxLen)),
	)
}

func (in SettingsInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.CigsPerDay, validation.Required, validation.Min(CigsPerDayMin), validation.Max(CigsPerDayMax)),
		validation.Field(&in.CigsInPack, validation.Required, validation.Min(CigsInPackMin), validation.Max(CigsInPackMax)),
		validation.Field(&in.PackCost, validation.NotNil, validation.Min(PackCostMin), validation.Max(PackCostMax)),
		validation.Field(&in.QuitDate, validation.Required),
	)
}

// asValidationError конвертирует результат ozzo-валидации в *ValidationError
// с первым (в детерминированном порядке) нарушенным полем.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return &ValidationError{Field: "input", Reason: err.Error()}
	}

	field, ferr := firstFieldError(errs)

	return &ValidationError{Field: field, Reason: ferr.Error()}
}

// firstFieldError достаёт первое нарушенное поле; для вложенных подобъектов
// (profile/settings) возвращает имя внутреннего поля, как это делал бы клиентский
// контракт с плоскими сообщениями.
func firstFieldError(errs validation.Errors) (string, error) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	key := keys[0]
	err := errs[key]

	var nested validation.Errors
	if errors.As(err, &nested) && len(nested) > 0 {
		return firstFieldError(nested)
	}

	return key, err
}
