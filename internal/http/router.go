package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-threads/internal/http/handlers"
	"github.com/pribylovaa/go-threads/internal/http/middleware"
	"github.com/pribylovaa/go-threads/internal/loaders"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string              // например, "/api"; если пустой — роуты регистрируются на корне.
	Metrics  *middleware.Metrics // nil — без метрик.
	Loaders  loaders.Store       // nil — без request-scoped батчинга авторов/сообществ.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.AuthBearer(),         // вынимаем сессионный токен в контекст для identity
	)
	if opts.Metrics != nil {
		root.Use(opts.Metrics.Middleware())
	}
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}
	if opts.Loaders != nil {
		root.Use(loaders.Middleware(opts.Loaders))
	}

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// feed & threads
	r.Get("/feed", h.ListFeed)
	r.Post("/posts", h.CreatePost)
	r.Get("/posts/{id}", h.GetPostByID)
	r.Delete("/posts/{id}", h.DeletePost)
	r.Post("/posts/{id}/comments", h.AddComment)

	// users
	r.Get("/me", h.Me)
	r.Put("/me", h.UpdateMe)
	r.Get("/users/{id}/posts", h.ListUserPosts)
}
