package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/quitline-accounts/internal/models"
	"github.com/pribylovaa/quitline-accounts/internal/storage"
)

// Интеграционные тесты для пакета postgres (реализация пользователей в users.go):
// — поднимают реальный PostgreSQL через testcontainers-go (образ postgres:16-alpine);
// — применяют goose-миграции через Migrate;
// — проверяют:
//    SaveUser: успешную вставку и ErrAlreadyExists при повторе email;
//    UserByEmail/UserByID: успешный сценарий и ErrNotFound;
//    UpdateProfile: частичное обновление и инкремент updated_at;
//    UpdateSettings: замену подобъекта целиком, в том числе первую запись в NULL-колонки;
//    ConfirmAvatarUpload: фиксацию filename/file_src.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

// startPostgres — поднимает PostgreSQL через testcontainers-go,
// применяет миграции и возвращает инициализированное хранилище и функцию очистки.
// Если переменная окружения GO_TEST_INTEGRATION не установлена — тест пропускается.
func startPostgres(t *testing.T) (*UsersStorage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "docker.io/postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	t.Logf("starting postgres container with image=%q", req.Image)
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
		ProviderType:     tc.ProviderDocker,
	})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	require.NoError(t, Migrate(ctx, dsn))

	st, err := New(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
	return st, cleanup
}

func newUser(email string) *models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		Profile:      models.Profile{Username: "alice"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestIntegration_SaveUser_And_UserByEmail_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newUser("alice@example.com")
	u.Settings = &models.Settings{CigsPerDay: 20, CigsInPack: 20, PackCost: 4.5, QuitDate: "2026-01-01"}

	require.NoError(t, st.SaveUser(context.Background(), u))

	got, err := st.UserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "alice", got.Profile.Username)
	require.NotNil(t, got.Settings)
	require.Equal(t, *u.Settings, *got.Settings)
	require.WithinDuration(t, u.CreatedAt, got.CreatedAt, time.Second)
}

func TestIntegration_SaveUser_WithoutSettings_NilSubobject(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newUser("nosettings@example.com")
	require.NoError(t, st.SaveUser(context.Background(), u))

	got, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Nil(t, got.Settings)
}

func TestIntegration_SaveUser_DuplicateEmail(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u1 := newUser("dup@example.com")
	require.NoError(t, st.SaveUser(context.Background(), u1))

	u2 := newUser("dup@example.com")
	err := st.SaveUser(context.Background(), u2)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestIntegration_UserByEmail_And_ByID_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.UserByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_UpdateProfile_Partial_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newUser("upd@example.com")
	u.Profile.Filename = "old.png"
	require.NoError(t, st.SaveUser(context.Background(), u))

	orig, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	newName := "bob"
	got, err := st.UpdateProfile(context.Background(), u.ID, storage.ProfileUpdate{Username: &newName})
	require.NoError(t, err)
	require.Equal(t, "bob", got.Username)
	require.Equal(t, "old.png", got.Filename, "filename must remain unchanged")

	after, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.True(t, after.UpdatedAt.After(orig.UpdatedAt), "updated_at must increase")
}

func TestIntegration_UpdateProfile_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	name := "x"
	_, err := st.UpdateProfile(context.Background(), uuid.New(), storage.ProfileUpdate{Username: &name})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_UpdateSettings_ReplacesWhole(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	// Пользователь без настроек: первый UpdateSettings заполняет NULL-колонки.
	u := newUser("settings@example.com")
	require.NoError(t, st.SaveUser(context.Background(), u))

	first := models.Settings{CigsPerDay: 10, CigsInPack: 20, PackCost: 3.5, QuitDate: "2026-01-01"}
	got, err := st.UpdateSettings(context.Background(), u.ID, first)
	require.NoError(t, err)
	require.Equal(t, first, *got)

	// Повторная запись вытесняет предыдущий подобъект целиком.
	second := models.Settings{CigsPerDay: 5, CigsInPack: 25, PackCost: 0, QuitDate: "2026-06-01"}
	got, err = st.UpdateSettings(context.Background(), u.ID, second)
	require.NoError(t, err)
	require.Equal(t, second, *got)

	check, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, check.Settings)
	require.Equal(t, second, *check.Settings)
}

func TestIntegration_UpdateSettings_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.UpdateSettings(context.Background(), uuid.New(), models.Settings{
		CigsPerDay: 1, CigsInPack: 1, PackCost: 1, QuitDate: "2026-01-01",
	})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_ConfirmAvatarUpload_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newUser("avatar@example.com")
	require.NoError(t, st.SaveUser(context.Background(), u))

	got, err := st.ConfirmAvatarUpload(context.Background(), u.ID, "pic.png", "https://cdn.local/avatars/pic.png")
	require.NoError(t, err)
	require.Equal(t, "pic.png", got.Filename)
	require.Equal(t, "https://cdn.local/avatars/pic.png", got.FileSrc)
	require.Equal(t, "alice", got.Username, "username must remain unchanged")
}
