// Package tier реализует HTTP-обработчик смены тарифного плана.
//
// Переключение на платный тариф устанавливает дату окончания через
// тридцать дней, переключение на бесплатный снимает её. Счётчик
// генераций при смене тарифа не изменяется.
package tier

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/rjuered/qrforge/internal/http/middlewarectx"
	"github.com/rjuered/qrforge/internal/http/response"
	"github.com/rjuered/qrforge/internal/lib/sl"
	"github.com/rjuered/qrforge/internal/models"
)

// Request — тело запроса на смену тарифа.
type Request struct {
	Tier string `json:"tier" validate:"required,oneof=free pro business"`
}

// Service описывает интерфейс сервиса тарифов для смены плана.
type Service interface {
	ChangeTier(ctx context.Context, uid string, tier models.Tier) (*time.Time, error)
}

// Handler управляет HTTP-запросами на смену тарифа.
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
// @Summary Сменить тарифный план
// @Description Переключает тариф пользователя и возвращает дату его окончания.
// @Tags Profile
// @Accept  json
// @Produce  json
// @Param request body Request true "Новый тариф"
// @Success 200 {object} map[string]any "Тариф переключён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при смене тарифа"
// @Security BearerAuth
// @Router /profile/tier [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.tier"
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

	expiresAt, err := h.service.ChangeTier(r.Context(), uid, models.ParseTier(req.Tier))
	if err != nil {
		log.Error("failed to change tier", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not change tier"))
		return
	}

	var expires string
	if expiresAt != nil {
		expires = expiresAt.Format(time.RFC3339)
	}
	log.Info("tier changed", slog.String("uid", uid), slog.String("tier", req.Tier))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"tier":       req.Tier,
		"expires_at": expires,
	}))
}
