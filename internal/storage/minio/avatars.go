package minio

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"

	"github.com/pribylovaa/quitline-accounts/internal/storage"
)

// knownExt — расширения ключей для канонических типов аватаров.
// Типы вне этой таблицы получают расширение из MIME-подтипа (extFor),
// поэтому расширение allow-list в конфиге не требует правок здесь.
var knownExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AvatarUploadURL выдаёт presigned PUT URL для прямой загрузки аватара в бакет.
// Объект получает ключ "avatars/<userID>/<uuid><ext>"; RequiredHeader содержит
// заголовки, которые клиент обязан передать в PUT (они же перепроверяются
// при подтверждении).
func (s *AvatarsStorage) AvatarUploadURL(ctx context.Context, userID uuid.UUID, contentType string, contentLength int64) (*storage.UploadInfo, error) {
	const op = "storage/minio/avatars/AvatarUploadURL"

	if err := s.checkConstraints(contentType, contentLength); err != nil {
		return nil, err
	}

	key := path.Join("avatars", userID.String(), uuid.NewString()+extFor(contentType))

	signed, err := s.client.PresignedPutObject(ctx, s.s3.Bucket, key, s.s3.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &storage.UploadInfo{
		UploadURL: signed.String(),
		AvatarKey: key,
		Expires:   s.s3.PresignTTL,
		RequiredHeader: map[string]string{
			"Content-Type":   contentType,
			"Content-Length": strconv.FormatInt(contentLength, 10),
		},
	}, nil
}

// CheckAvatarUpload подтверждает, что по ключу действительно лежит пригодный
// объект: ключ принадлежит пользователю, объект существует, а его фактические
// размер и тип укладываются в ограничения (заявленным при presign значениям
// после загрузки не доверяем). Возвращает публичный URL объекта;
// без настроенного PublicBaseURL — пустую строку.
func (s *AvatarsStorage) CheckAvatarUpload(ctx context.Context, userID uuid.UUID, key string) (publicURL string, err error) {
	const op = "storage/minio/avatars/CheckAvatarUpload"

	if !strings.HasPrefix(key, "avatars/"+userID.String()+"/") {
		return "", storage.ErrInvalidArgument
	}

	info, err := s.client.StatObject(ctx, s.s3.Bucket, key, mclient.StatObjectOptions{})
	if err != nil {
		resp := mclient.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
			return "", storage.ErrNotFoundAvatar
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if info.Size <= 0 || info.Size > s.avatar.MaxSizeBytes {
		return "", storage.ErrInvalidArgument
	}
	if info.ContentType != "" && !s.allowedType(info.ContentType) {
		return "", storage.ErrInvalidArgument
	}

	if s.s3.PublicBaseURL == "" {
		return "", nil
	}

	return strings.TrimRight(s.s3.PublicBaseURL, "/") + "/" + key, nil
}

// checkConstraints валидирует заявленные клиентом параметры загрузки.
func (s *AvatarsStorage) checkConstraints(contentType string, contentLength int64) error {
	if contentLength <= 0 || contentLength > s.avatar.MaxSizeBytes {
		return storage.ErrInvalidArgument
	}
	if !s.allowedType(contentType) {
		return storage.ErrInvalidArgument
	}

	return nil
}

func (s *AvatarsStorage) allowedType(contentType string) bool {
	for _, a := range s.avatar.AllowedContentTypes {
		if a == contentType {
			return true
		}
	}

	return false
}

// extFor выводит расширение ключа из MIME-типа: сначала таблица знакомых
// типов, иначе — подтип как есть ("image/avif" -> ".avif").
func extFor(contentType string) string {
	if ext, ok := knownExt[contentType]; ok {
		return ext
	}

	if i := strings.IndexByte(contentType, '/'); i >= 0 && i+1 < len(contentType) {
		return "." + contentType[i+1:]
	}

	return ""
}
