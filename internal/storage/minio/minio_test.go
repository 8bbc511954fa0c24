package minio

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/quitline-accounts/internal/config"
	"github.com/pribylovaa/quitline-accounts/internal/storage"
)

// Интеграционные тесты для пакета minio:
// — поднимают реальный MinIO через testcontainers-go;
// — проверяют выдачу presigned PUT URL, реальную загрузку объекта по нему
//   и подтверждение через CheckAvatarUpload (включая ошибочные сценарии).
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/minio -v -race -count=1

const (
	minioImage = "docker.io/minio/minio:latest"
	minioUser  = "quitline"
	minioPass  = "quitline-secret"
	bucketName = "avatars"
)

// startMinio — поднимает MinIO, при createBucket=true создаёт бакет
// и возвращает готовое хранилище. Без бакета конструктор New обязан упасть,
// поэтому в этом режиме хелпер только проверяет ошибку.
func startMinio(t *testing.T, createBucket bool) (*AvatarsStorage, func(), string) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image: minioImage,
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPass,
		},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	t.Logf("starting minio container with image=%q", minioImage)
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "9000/tcp")
	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())

	if createBucket {
		admin, err := mclient.New(host+":"+port.Port(), &mclient.Options{
			Creds:  credentials.NewStaticV4(minioUser, minioPass, ""),
			Secure: false,
		})
		require.NoError(t, err)
		require.NoError(t, admin.MakeBucket(ctx, bucketName, mclient.MakeBucketOptions{}))
	}

	st, newErr := New(ctx, testS3Config(endpoint), testAvatarConfig())
	if !createBucket {
		require.Error(t, newErr)
		_ = c.Terminate(context.Background())
		return nil, func() {}, ""
	}
	require.NoError(t, newErr)

	cleanup := func() {
		_ = c.Terminate(context.Background())
	}
	return st, cleanup, endpoint
}

func testS3Config(endpoint string) config.S3Config {
	return config.S3Config{
		Endpoint:      endpoint,
		RootUser:      minioUser,
		RootPassword:  minioPass,
		Bucket:        bucketName,
		PresignTTL:    2 * time.Minute,
		PublicBaseURL: "http://cdn.local",
	}
}

func testAvatarConfig() config.AvatarConfig {
	return config.AvatarConfig{
		MaxSizeBytes:        1 << 20,
		AllowedContentTypes: []string{"image/png", "image/jpeg", "image/webp"},
	}
}

// putObject — выполняет реальный PUT по presigned URL.
func putObject(t *testing.T, uploadURL, contentType string, body []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, uploadURL, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(body))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Less(t, resp.StatusCode, 300, "PUT must succeed")
}

// Юнит-тесты без контейнера: вывод расширения ключа и разбор endpoint.

func TestExtFor_FollowsContentType(t *testing.T) {
	t.Parallel()

	require.Equal(t, ".jpg", extFor("image/jpeg"))
	require.Equal(t, ".png", extFor("image/png"))
	require.Equal(t, ".webp", extFor("image/webp"))
	// Тип вне таблицы знакомых — расширение из подтипа,
	// allow-list в конфиге может расти без правок кода.
	require.Equal(t, ".avif", extFor("image/avif"))
	require.Equal(t, "", extFor("broken"))
}

func TestSplitEndpoint(t *testing.T) {
	t.Parallel()

	host, secure := splitEndpoint("https://minio.local:9000")
	require.Equal(t, "minio.local:9000", host)
	require.True(t, secure)

	host, secure = splitEndpoint("http://127.0.0.1:9000")
	require.Equal(t, "127.0.0.1:9000", host)
	require.False(t, secure)

	host, secure = splitEndpoint("localhost:9000")
	require.Equal(t, "localhost:9000", host)
	require.False(t, secure)
}

func TestIntegration_New_FailsWithoutBucket(t *testing.T) {
	_, _, _ = startMinio(t, false)
}

func TestIntegration_New_EndpointWithoutScheme(t *testing.T) {
	_, cleanup, endpoint := startMinio(t, true)
	defer cleanup()

	u, err := url.Parse(endpoint)
	require.NoError(t, err)

	// Endpoint вида "host:port" без схемы тоже принимается.
	st, err := New(context.Background(), testS3Config(u.Host), testAvatarConfig())
	require.NoError(t, err)
	require.NotNil(t, st)
}

func TestIntegration_PresignUploadConfirm_FullCycle(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	uid := uuid.New()
	body := bytes.Repeat([]byte{0x42}, 16)

	ui, err := st.AvatarUploadURL(context.Background(), uid, "image/png", int64(len(body)))
	require.NoError(t, err)
	require.NotEmpty(t, ui.UploadURL)
	require.Contains(t, ui.AvatarKey, "avatars/"+uid.String()+"/")
	require.GreaterOrEqual(t, int(ui.Expires.Seconds()), 60)
	require.Equal(t, "image/png", ui.RequiredHeader["Content-Type"])
	require.Equal(t, strconv.Itoa(len(body)), ui.RequiredHeader["Content-Length"])

	putObject(t, ui.UploadURL, "image/png", body)

	public, err := st.CheckAvatarUpload(context.Background(), uid, ui.AvatarKey)
	require.NoError(t, err)
	require.Equal(t, "http://cdn.local/"+ui.AvatarKey, public)
}

func TestIntegration_AvatarUploadURL_RejectsBadTypeAndSize(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	uid := uuid.New()

	_, err := st.AvatarUploadURL(context.Background(), uid, "image/gif", 10)
	require.ErrorIs(t, err, storage.ErrInvalidArgument)

	_, err = st.AvatarUploadURL(context.Background(), uid, "image/png", 0)
	require.ErrorIs(t, err, storage.ErrInvalidArgument)

	_, err = st.AvatarUploadURL(context.Background(), uid, "image/png", st.avatar.MaxSizeBytes+1)
	require.ErrorIs(t, err, storage.ErrInvalidArgument)
}

func TestIntegration_CheckAvatarUpload_ForeignKeyAndMissingObject(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	uid := uuid.New()
	other := uuid.New()

	// Ключ под чужим префиксом не принадлежит пользователю.
	_, err := st.CheckAvatarUpload(context.Background(), uid, "avatars/"+other.String()+"/x.png")
	require.ErrorIs(t, err, storage.ErrInvalidArgument)

	// Presign был, а загрузки не было.
	_, err = st.CheckAvatarUpload(context.Background(), uid, "avatars/"+uid.String()+"/missing.png")
	require.ErrorIs(t, err, storage.ErrNotFoundAvatar)
}

func TestIntegration_CheckAvatarUpload_TrailingSlashInPublicBase(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	uid := uuid.New()
	ui, err := st.AvatarUploadURL(context.Background(), uid, "image/png", 1)
	require.NoError(t, err)

	putObject(t, ui.UploadURL, "image/png", []byte{0x1})

	st.s3.PublicBaseURL = "http://cdn.local/"
	public, err := st.CheckAvatarUpload(context.Background(), uid, ui.AvatarKey)
	require.NoError(t, err)
	require.Equal(t, "http://cdn.local/"+ui.AvatarKey, public)
}

func TestIntegration_CheckAvatarUpload_OversizedObjectRejected(t *testing.T) {
	st, cleanup, _ := startMinio(t, true)
	defer cleanup()

	uid := uuid.New()
	body := bytes.Repeat([]byte{0xAB}, 8)

	ui, err := st.AvatarUploadURL(context.Background(), uid, "image/png", int64(len(body)))
	require.NoError(t, err)
	putObject(t, ui.UploadURL, "image/png", body)

	// Лимит ужимаем уже после загрузки: подтверждение обязано перепроверить размер.
	st.avatar.MaxSizeBytes = 4

	_, err = st.CheckAvatarUpload(context.Background(), uid, ui.AvatarKey)
	require.ErrorIs(t, err, storage.ErrInvalidArgument)
}
