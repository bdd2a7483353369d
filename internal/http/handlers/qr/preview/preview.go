// Package preview реализует HTTP-обработчик живого предпросмотра payload.
//
// Предпросмотр не тратит лимит генераций и не пишет в журнал: слишком
// длинный payload усекается под вместимость вместо отказа. Доступен
// только платным тарифам.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/rjuered/qrforge/internal/http/middlewarectx"
	"github.com/rjuered/qrforge/internal/http/response"
	"github.com/rjuered/qrforge/internal/lib/sl"
	"github.com/rjuered/qrforge/internal/models"
	"github.com/rjuered/qrforge/internal/services/entitlement"
	"github.com/rjuered/qrforge/internal/services/generator"
)

// Service описывает интерфейс конвейера для предпросмотра.
type Service interface {
	MakePreview(ctx context.Context, uid string, req models.GenerateRequest) (generator.Preview, error)
}

// Handler управляет HTTP-запросами на предпросмотр.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Предпросмотр payload QR-кода
// @Description Возвращает итоговую строку payload, усечённую под вместимость.
// @Tags QR
// @Accept  json
// @Produce  json
// @Param request body models.GenerateRequest true "Параметры предпросмотра"
// @Success 200 {object} map[string]any "Payload для предпросмотра"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Предпросмотр недоступен на тарифе"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /qr/preview [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.qr.preview"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	preview, err := h.service.MakePreview(r.Context(), uid, req)
	if err != nil {
		if errors.Is(err, entitlement.ErrFeatureNotAvailable) {
			log.Error("preview not available on current tier")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("feature is not available on the current tier"))
			return
		}
		log.Error("failed to make preview", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not make preview"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"payload":   preview.Payload,
		"truncated": preview.Truncated,
	}))
}
