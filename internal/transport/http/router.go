// http собирает REST-роутер accounts-сервиса: chi + мидлвары + хендлеры.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/quitline-accounts/internal/service"
	"github.com/pribylovaa/quitline-accounts/internal/transport/http/handlers"
	"github.com/pribylovaa/quitline-accounts/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),            // считаем запросы по шаблону маршрута
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Зависимости хендлеров.
	h := handlers.New(svc)

	// Регистрация маршрутов.
	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, svc)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, svc)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
// Публичные маршруты: регистрация и вход. Всё под /users/me защищено
// токеном: личность пользователя берётся только из него.
func registerRoutes(r chi.Router, h *handlers.Handlers, verifier middleware.TokenVerifier) {
	// public
	r.Post("/users", h.RegisterUser)
	r.Post("/auth", h.LoginUser)

	// protected
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.AuthToken(verifier))

		pr.Get("/users/me", h.Me)
		pr.Put("/users/me/profile", h.UpdateProfile)
		pr.Put("/users/me/settings", h.UpdateSettings)
		pr.Post("/users/me/avatar/presign", h.AvatarPresign)
		pr.Post("/users/me/avatar/confirm", h.AvatarConfirm)
	})
}
