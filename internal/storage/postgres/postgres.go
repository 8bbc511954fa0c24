package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pribylovaa/quitline-accounts/internal/storage"
)

type UsersStorage struct {
	db *pgxpool.Pool
}

// New создает новое подключение к PostgreSQL.
func New(ctx context.Context, dbURL string) (*UsersStorage, error) {
	const op = "storage.postgres.New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &UsersStorage{db: db}, nil
}

// Close закрывает пул соединений.
func (s *UsersStorage) Close() {
	s.db.Close()
}

// Проверка на соответствие интерфейсу UsersStorage.
var _ storage.UsersStorage = (*UsersStorage)(nil)
