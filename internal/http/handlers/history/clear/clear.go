// Package clear реализует HTTP-обработчик полной очистки журнала.
package clear

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rjuered/qrforge/internal/http/response"
	"github.com/rjuered/qrforge/internal/lib/sl"
)

// Service описывает интерфейс сервиса журнала для очистки.
type Service interface {
	Clear(ctx context.Context) error
}

// Handler управляет HTTP-запросами на очистку журнала.
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
// @Summary Очистить журнал QR-кодов
// @Description Удаляет все записи журнала безвозвратно.
// @Tags History
// @Produce  json
// @Success 200 {object} response.Response "Журнал очищен"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при очистке"
// @Security BearerAuth
// @Router /history [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.history.clear"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.service.Clear(r.Context()); err != nil {
		log.Error("failed to clear history", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not clear history"))
		return
	}

	log.Info("history cleared")
	render.JSON(w, r, response.OKWithData(nil))
}
