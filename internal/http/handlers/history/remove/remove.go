// Package remove реализует HTTP-обработчик удаления записи журнала.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rjuered/qrforge/internal/http/response"
	"github.com/rjuered/qrforge/internal/lib/sl"
	"github.com/rjuered/qrforge/internal/services/history"
)

// Service описывает интерфейс сервиса журнала для удаления.
type Service interface {
	Remove(ctx context.Context, id string) error
}

// Handler управляет HTTP-запросами на удаление записи журнала.
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
// @Summary Удалить запись журнала
// @Description Удаляет одну запись журнала по идентификатору.
// @Tags History
// @Produce  json
// @Param id path string true "Идентификатор записи журнала"
// @Success 200 {object} response.Response "Запись удалена"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при удалении"
// @Security BearerAuth
// @Router /history/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.history.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	entryID := chi.URLParam(r, "id")

	if err := h.service.Remove(r.Context(), entryID); err != nil {
		if errors.Is(err, history.ErrEntryNotFound) {
			log.Error("history entry not found", slog.String("id", entryID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("history entry not found"))
			return
		}
		log.Error("failed to remove history entry", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove history entry"))
		return
	}

	log.Info("history entry removed", slog.String("id", entryID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"removed_id": entryID,
	}))
}
