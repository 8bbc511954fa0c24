package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pribylovaa/quitline-accounts/migrations"
)

// Migrate применяет встроенные goose-миграции к базе.
// Использует отдельное database/sql-подключение через pgx stdlib:
// goose работает с *sql.DB, рабочий пул сервиса (pgxpool) не затрагивается.
func Migrate(ctx context.Context, databaseURL string) error {
	const op = "storage/postgres/Migrate"

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
