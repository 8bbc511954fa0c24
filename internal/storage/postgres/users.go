package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pribylovaa/quitline-accounts/internal/models"
	"github.com/pribylovaa/quitline-accounts/internal/storage"
)

// userColumns — единый список колонок таблицы users,
// используемый в SELECT/RETURNING, чтобы гарантировать одинаковый порядок сканирования.
const userColumns = `
id, email, password_hash, username, filename, file_src,
cigs_per_day, cigs_in_pack, pack_cost, quit_date, created_at, updated_at
`

// settingsColumns — колонки подобъекта настроек (для UPDATE ... RETURNING).
const settingsColumns = `cigs_per_day, cigs_in_pack, pack_cost, quit_date`

// profileColumns — колонки подобъекта профиля (для UPDATE ... RETURNING).
const profileColumns = `username, filename, file_src`

// scanUser сканирует одну строку пользователя в доменную модель.
// Настройки хранятся в nullable-колонках и пишутся только целиком,
// поэтому наличие cigs_per_day означает наличие всего подобъекта.
func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var cigsPerDay, cigsInPack *int32
	var packCost *float64
	var quitDate *string

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Profile.Username,
		&user.Profile.Filename,
		&user.Profile.FileSrc,
		&cigsPerDay,
		&cigsInPack,
		&packCost,
		&quitDate,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if cigsPerDay != nil && cigsInPack != nil && packCost != nil && quitDate != nil {
		user.Settings = &models.Settings{
			CigsPerDay: int(*cigsPerDay),
			CigsInPack: int(*cigsInPack),
			PackCost:   *packCost,
			QuitDate:   *quitDate,
		}
	}

	return &user, nil
}

// SaveUser создаёт нового пользователя.
// Ошибки: storage.ErrAlreadyExists при нарушении уникальности email, иные — как есть.
func (s *UsersStorage) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage/postgres/users/SaveUser"

	q := `
	INSERT INTO users (id, email, password_hash, username, filename, file_src,
	                   cigs_per_day, cigs_in_pack, pack_cost, quit_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var cigsPerDay, cigsInPack *int32
	var packCost *float64
	var quitDate *string
	if user.Settings != nil {
		perDay := int32(user.Settings.CigsPerDay)
		inPack := int32(user.Settings.CigsInPack)
		cost := user.Settings.PackCost
		date := user.Settings.QuitDate
		cigsPerDay, cigsInPack, packCost, quitDate = &perDay, &inPack, &cost, &date
	}

	_, err := s.db.Exec(ctx, q,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Profile.Username,
		user.Profile.Filename,
		user.Profile.FileSrc,
		cigsPerDay,
		cigsInPack,
		packCost,
		quitDate,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UserByEmail находит пользователя по email.
// Ошибки: storage.ErrNotFound, либо ошибка выполнения запроса.
func (s *UsersStorage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage/postgres/users/UserByEmail"

	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	result, err := scanUser(s.db.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UserByID находит пользователя по ID.
// Ошибки: storage.ErrNotFound, либо ошибка выполнения запроса.
func (s *UsersStorage) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage/postgres/users/UserByID"

	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	result, err := scanUser(s.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UpdateProfile выполняет частичный апдейт: обновляет только поля,
// указанные непустыми pointer-полями, и всегда сдвигает updated_at = now().
// Ошибки: storage.ErrNotFound при отсутствии записи.
func (s *UsersStorage) UpdateProfile(ctx context.Context, userID uuid.UUID, update storage.ProfileUpdate) (*models.Profile, error) {
	const op = "storage/postgres/users/UpdateProfile"

	sets := []string{"updated_at = now()"}
	args := make([]any, 0, 4)
	count := 1

	if update.Username != nil {
		count++
		sets = append(sets, fmt.Sprintf("username = $%d", count))
		args = append(args, *update.Username)
	}

	if update.Filename != nil {
		count++
		sets = append(sets, fmt.Sprintf("filename = $%d", count))
		args = append(args, *update.Filename)
	}

	if update.FileSrc != nil {
		count++
		sets = append(sets, fmt.Sprintf("file_src = $%d", count))
		args = append(args, *update.FileSrc)
	}

	args = append([]any{userID}, args...)

	q := fmt.Sprintf(`UPDATE users SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), profileColumns)

	var profile models.Profile
	err := s.db.QueryRow(ctx, q, args...).Scan(
		&profile.Username,
		&profile.Filename,
		&profile.FileSrc,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &profile, nil
}

// UpdateSettings заменяет подобъект настроек целиком и сдвигает updated_at.
// Ошибки: storage.ErrNotFound при отсутствии записи.
func (s *UsersStorage) UpdateSettings(ctx context.Context, userID uuid.UUID, settings models.Settings) (*models.Settings, error) {
	const op = "storage/postgres/users/UpdateSettings"

	q := `
	UPDATE users
	SET cigs_per_day = $2, cigs_in_pack = $3, pack_cost = $4, quit_date = $5, updated_at = now()
	WHERE id = $1
	RETURNING ` + settingsColumns

	var result models.Settings
	var cigsPerDay, cigsInPack int32

	err := s.db.QueryRow(ctx, q,
		userID,
		int32(settings.CigsPerDay),
		int32(settings.CigsInPack),
		settings.PackCost,
		settings.QuitDate,
	).Scan(&cigsPerDay, &cigsInPack, &result.PackCost, &result.QuitDate)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result.CigsPerDay = int(cigsPerDay)
	result.CigsInPack = int(cigsInPack)

	return &result, nil
}

// ConfirmAvatarUpload фиксирует ключ объекта и публичную ссылку аватара
// после успешной проверки объекта в S3/MinIO. Всегда обновляет updated_at.
// Ошибки: storage.ErrNotFound при отсутствии записи.
func (s *UsersStorage) ConfirmAvatarUpload(ctx context.Context, userID uuid.UUID, key, publicURL string) (*models.Profile, error) {
	const op = "storage/postgres/users/ConfirmAvatarUpload"

	q := `
	UPDATE users
	SET filename = $2, file_src = $3, updated_at = now()
	WHERE id = $1
	RETURNING ` + profileColumns

	var profile models.Profile
	err := s.db.QueryRow(ctx, q, userID, key, publicURL).Scan(
		&profile.Username,
		&profile.Filename,
		&profile.FileSrc,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &profile, nil
}
