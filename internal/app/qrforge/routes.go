// Package qrforge предоставляет маршруты для основного приложения.
package qrforge

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rjuered/qrforge/internal/http/handlers/auth/login"
	"github.com/rjuered/qrforge/internal/http/handlers/auth/register"
	"github.com/rjuered/qrforge/internal/http/handlers/history/clear"
	historylist "github.com/rjuered/qrforge/internal/http/handlers/history/list"
	"github.com/rjuered/qrforge/internal/http/handlers/history/remove"
	"github.com/rjuered/qrforge/internal/http/handlers/profile/language"
	"github.com/rjuered/qrforge/internal/http/handlers/profile/read"
	"github.com/rjuered/qrforge/internal/http/handlers/profile/tier"
	"github.com/rjuered/qrforge/internal/http/handlers/protected/unlock"
	"github.com/rjuered/qrforge/internal/http/handlers/qr/export"
	"github.com/rjuered/qrforge/internal/http/handlers/qr/generate"
	"github.com/rjuered/qrforge/internal/http/handlers/qr/preview"
	"github.com/rjuered/qrforge/internal/http/middlewarectx"
	authservice "github.com/rjuered/qrforge/internal/services/auth"
	entitlementservice "github.com/rjuered/qrforge/internal/services/entitlement"
	generatorservice "github.com/rjuered/qrforge/internal/services/generator"
	historyservice "github.com/rjuered/qrforge/internal/services/history"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.Service,
	entitlementService *entitlementservice.Service,
	historyService *historyservice.Service,
	generatorService *generatorservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/protected", unlock.New(logger).Describe)
		r.Post("/protected/unlock", unlock.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/qr", generate.New(logger, generatorService).ServeHTTP)
			r.Post("/qr/preview", preview.New(logger, generatorService).ServeHTTP)
			r.Get("/qr/export/{id}", export.New(logger, generatorService).ServeHTTP)
			r.Get("/history", historylist.New(logger, historyService).ServeHTTP)
			r.Delete("/history/{id}", remove.New(logger, historyService).ServeHTTP)
			r.Delete("/history", clear.New(logger, historyService).ServeHTTP)
			r.Get("/profile", read.New(logger, entitlementService).ServeHTTP)
			r.Post("/profile/tier", tier.New(logger, entitlementService).ServeHTTP)
			r.Post("/profile/language", language.New(logger, entitlementService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
