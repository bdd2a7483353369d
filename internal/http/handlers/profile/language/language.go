// Package language реализует HTTP-обработчик смены языка интерфейса.
package language

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/rjuered/qrforge/internal/http/middlewarectx"
	"github.com/rjuered/qrforge/internal/http/response"
	"github.com/rjuered/qrforge/internal/lib/sl"
)

// Request — тело запроса на смену языка.
type Request struct {
	Language string `json:"language" validate:"required,oneof=en ar"`
}

// Service описывает интерфейс сервиса тарифов для смены языка.
type Service interface {
	SwitchLanguage(ctx context.Context, uid, lang string) error
}

// Handler управляет HTTP-запросами на смену языка.
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
// @Summary Сменить язык интерфейса
// @Description Сохраняет язык интерфейса пользователя: en или ar.
// @Tags Profile
// @Accept  json
// @Produce  json
// @Param request body Request true "Новый язык"
// @Success 200 {object} response.Response "Язык сохранён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при смене языка"
// @Security BearerAuth
// @Router /profile/language [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.language"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	if err := h.service.SwitchLanguage(r.Context(), uid, req.Language); err != nil {
		log.Error("failed to switch language", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not switch language"))
		return
	}

	log.Info("language switched", slog.String("uid", uid), slog.String("language", req.Language))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"language": req.Language,
	}))
}
