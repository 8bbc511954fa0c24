// models содержит доменные сущности accounts-сервиса.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile — подобъект профиля пользователя.
// Все поля независимо необязательны: пустая строка означает «не задано».
// Filename/FileSrc описывают загруженный аватар (ключ объекта и публичная ссылка).
type Profile struct {
	Username string
	Filename string
	FileSrc  string
}

// Settings — подобъект настроек привычки.
// Заполняется только целиком: либо заданы все четыре поля, либо ни одного
// (в User держим указатель — nil означает «настройки ещё не заданы»).
type Settings struct {
	CigsPerDay int
	CigsInPack int
	PackCost   float64
	QuitDate   string
}

// User — внутренняя доменная модель пользователя.
// PasswordHash заполняется только хэшером и никогда не отдаётся наружу.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Profile      Profile
	Settings     *Settings
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
