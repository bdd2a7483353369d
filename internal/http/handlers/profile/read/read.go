// Package read реализует HTTP-обработчик чтения профиля пользователя.
//
// Возвращает тариф, дату его окончания, счётчик генераций, остаток
// бесплатного лимита, язык интерфейса и доступные форматы экспорта.
package read

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rjuered/qrforge/internal/http/middlewarectx"
	"github.com/rjuered/qrforge/internal/http/response"
	"github.com/rjuered/qrforge/internal/lib/sl"
	"github.com/rjuered/qrforge/internal/models"
	"github.com/rjuered/qrforge/internal/services/entitlement"
)

// Service описывает интерфейс сервиса тарифов для чтения профиля.
type Service interface {
	Profile(ctx context.Context, uid string) (models.Prefs, error)
}

// Handler управляет HTTP-запросами на чтение профиля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить профиль пользователя
// @Description Возвращает тариф, счётчик генераций, остаток лимита и язык.
// @Tags Profile
// @Produce  json
// @Success 200 {object} map[string]any "Профиль пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении профиля"
// @Security BearerAuth
// @Router /profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	prefs, err := h.service.Profile(r.Context(), uid)
	if err != nil {
		log.Error("failed to read profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read profile"))
		return
	}

	remaining := entitlement.FreeTierLimit - prefs.QRCount
	if prefs.Tier.IsPaid() || remaining < 0 {
		remaining = 0
	}
	var expiresAt string
	if prefs.ExpiresAt != nil {
		expiresAt = prefs.ExpiresAt.Format(time.RFC3339)
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"tier":           prefs.Tier,
		"expires_at":     expiresAt,
		"qr_count":       prefs.QRCount,
		"remaining_free": remaining,
		"language":       prefs.Language,
		"export_formats": entitlement.ExportFormats(prefs.Tier),
	}))
}
