// Package qrforge собирает приложение целиком: хранилища, сервисы,
// маршруты и HTTP-сервер с корректной остановкой.
package qrforge

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/rjuered/qrforge/internal/config"
	"github.com/rjuered/qrforge/internal/lib/jwt"
	"github.com/rjuered/qrforge/internal/lib/rabbitmq"
	"github.com/rjuered/qrforge/internal/lib/sl"
	"github.com/rjuered/qrforge/internal/migrations"
	"github.com/rjuered/qrforge/internal/render"
	"github.com/rjuered/qrforge/internal/services/auth"
	"github.com/rjuered/qrforge/internal/services/entitlement"
	"github.com/rjuered/qrforge/internal/services/generator"
	"github.com/rjuered/qrforge/internal/services/history"
	"github.com/rjuered/qrforge/internal/storage/prefstore"
	"github.com/rjuered/qrforge/internal/storage/repository"
)

// App — собранное приложение с HTTP-сервером и подключениями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	prefs  *prefstore.Store
}

// New подключает хранилища, прогоняет миграции, собирает сервисы и
// маршруты. Публикация событий включается только при заданном адресе
// брокера: её отсутствие не мешает генерации QR-кодов.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	prefs, err := prefstore.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var publisher generator.EventPublisher
	if cfg.EventBus.AddressAMQP != "" {
		conn, err := rabbitmq.Connect(cfg.EventBus.AddressAMQP, cfg.EventBus.Retries, cfg.EventBus.RetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn)
		if err != nil {
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(ch)
	} else {
		logger.Info("event bus address is empty, events disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	authService := auth.New(db, jwtMaker)
	entitlementService := entitlement.New(prefs, logger)
	historyService := history.New(prefs, logger)
	generatorService := generator.New(entitlementService, historyService,
		render.NewEngine(), publisher, cfg.PublicOrigin, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, entitlementService, historyService, generatorService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		prefs:  prefs,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Error("failed to close database", sl.Err(cerr))
		}
		if cerr := a.prefs.Db.Close(); cerr != nil {
			a.logger.Error("failed to close redis", sl.Err(cerr))
		}
		return err
	}
}
