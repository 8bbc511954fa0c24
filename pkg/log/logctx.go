// log хранит request-scoped slog-логгер в context.Context: нижние слои
// пишут логи с атрибутами запроса (request_id) без протаскивания логгера
// через сигнатуры.
package log

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// Into возвращает контекст с привязанным логгером.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// From возвращает логгер запроса; вне запроса — slog.Default().
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}

	return slog.Default()
}
