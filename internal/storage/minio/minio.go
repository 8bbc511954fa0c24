// minio реализует storage.AvatarsStorage поверх MinIO/S3.
//
// Файл сам через сервис не проходит: клиент получает presigned PUT URL,
// кладёт объект напрямую в бакет и затем подтверждает загрузку. Подтверждение
// перепроверяет объект (принадлежность, наличие, размер, тип) — до этого
// ключ не считается доверенным.
package minio

import (
	"context"
	"fmt"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pribylovaa/quitline-accounts/internal/config"
	"github.com/pribylovaa/quitline-accounts/internal/storage"
)

// AvatarsStorage — S3-адаптер для аватаров. Держит только те секции
// конфигурации, которые реально использует: параметры бакета и ограничения
// на загружаемые файлы.
type AvatarsStorage struct {
	s3     config.S3Config
	avatar config.AvatarConfig
	client *mclient.Client
}

// New подключается к S3/MinIO и проверяет, что целевой бакет существует.
// Отсутствие бакета — ошибка старта: создавать его на лету адаптер не вправе,
// это зона ответственности деплоя.
func New(ctx context.Context, s3 config.S3Config, avatar config.AvatarConfig) (*AvatarsStorage, error) {
	const op = "storage/minio/New"

	host, secure := splitEndpoint(s3.Endpoint)

	client, err := mclient.New(host, &mclient.Options{
		Creds:  credentials.NewStaticV4(s3.RootUser, s3.RootPassword, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, s3.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, s3.Bucket)
	}

	return &AvatarsStorage{s3: s3, avatar: avatar, client: client}, nil
}

// splitEndpoint принимает endpoint как с URL-схемой, так и в виде host:port.
// Схема определяет только TLS-режим; minio-клиенту нужен голый host:port.
func splitEndpoint(endpoint string) (host string, secure bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), false
	default:
		return endpoint, false
	}
}

var _ storage.AvatarsStorage = (*AvatarsStorage)(nil)
