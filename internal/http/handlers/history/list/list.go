// Package list реализует HTTP-обработчик чтения журнала QR-кодов.
//
// Журнал общий для всех пользователей и возвращается от новых записей
// к старым, не более пятидесяти.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rjuered/qrforge/internal/http/response"
	"github.com/rjuered/qrforge/internal/lib/sl"
	"github.com/rjuered/qrforge/internal/models"
)

// Service описывает интерфейс сервиса журнала для чтения.
type Service interface {
	List(ctx context.Context) ([]models.HistoryEntry, error)
}

// Handler управляет HTTP-запросами на чтение журнала.
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
// @Summary Получить журнал QR-кодов
// @Description Возвращает до пятидесяти последних записей журнала, новые первыми.
// @Tags History
// @Produce  json
// @Success 200 {object} map[string]any "Записи журнала"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении журнала"
// @Security BearerAuth
// @Router /history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.history.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	entries, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list history", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list history"))
		return
	}

	log.Info("history listed", slog.Int("count", len(entries)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"entries": entries,
	}))
}
