// Package generate реализует HTTP-обработчик генерации QR-кода.
//
// Handler принимает JSON-запрос с типом содержимого, полями payload и
// параметрами оформления, проводит его через конвейер генерации и
// возвращает PNG-изображение в base64 вместе с записью журнала.
package generate

import (
	"context"
	"encoding/base64"
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
	"github.com/rjuered/qrforge/internal/payload"
	"github.com/rjuered/qrforge/internal/services/entitlement"
	"github.com/rjuered/qrforge/internal/services/generator"
)

// Service описывает интерфейс конвейера генерации.
type Service interface {
	Generate(ctx context.Context, uid string, req models.GenerateRequest) (generator.Result, error)
}

// Handler управляет HTTP-запросами на генерацию QR-кодов.
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
// @Summary Сгенерировать QR-код
// @Description Собирает payload по типу содержимого, проверяет тариф и лимит,
// @Description отрисовывает PNG и добавляет запись в журнал.
// @Tags QR
// @Accept  json
// @Produce  json
// @Param request body models.GenerateRequest true "Параметры генерации"
// @Success 200 {object} map[string]any "Сгенерированный QR-код"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Лимит исчерпан или возможность недоступна"
// @Failure 413 {object} response.ErrorResponse "Payload не помещается в QR-код"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при генерации"
// @Security BearerAuth
// @Router /qr [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.qr.generate"
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

	res, err := h.service.Generate(r.Context(), uid, req)
	if err != nil {
		h.writeError(w, r, log, err)
		return
	}

	log.Info("qr code generated",
		slog.String("id", res.Entry.ID),
		slog.String("type", res.Entry.Type),
		slog.Int("count", res.Count))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"entry": res.Entry,
		"image": base64.StdEncoding.EncodeToString(res.Image),
		"count": res.Count,
	}))
}

// writeError переводит ошибки конвейера в HTTP-статусы.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, entitlement.ErrAuthRequired):
		log.Error("generation without authentication")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
	case errors.Is(err, entitlement.ErrQuotaExceeded):
		log.Error("free tier limit reached")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("free tier qr code limit reached"))
	case errors.Is(err, entitlement.ErrFeatureNotAvailable):
		log.Error("feature not available on current tier")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("feature is not available on the current tier"))
	case errors.Is(err, generator.ErrPayloadTooLarge):
		log.Error("payload exceeds qr capacity")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		render.JSON(w, r, response.Error("payload exceeds qr code capacity"))
	case errors.Is(err, generator.ErrMissingFields),
		errors.Is(err, payload.ErrUnknownEncryption),
		errors.Is(err, payload.ErrBadEventTime):
		log.Error("invalid payload fields", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("invalid payload fields"))
	default:
		log.Error("failed to generate qr code", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not generate qr code"))
	}
}
