// Package export реализует HTTP-обработчик экспорта QR-кода из журнала.
//
// Handler отрисовывает сохранённую запись журнала в выбранном формате
// (png, jpeg, svg) и отдаёт изображение как бинарный ответ. Набор
// форматов ограничен тарифом пользователя.
package export

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rjuered/qrforge/internal/http/middlewarectx"
	"github.com/rjuered/qrforge/internal/http/response"
	"github.com/rjuered/qrforge/internal/lib/sl"
	rnd "github.com/rjuered/qrforge/internal/render"
	"github.com/rjuered/qrforge/internal/services/entitlement"
	"github.com/rjuered/qrforge/internal/services/history"
)

// Service описывает интерфейс конвейера для экспорта.
type Service interface {
	Export(ctx context.Context, uid, entryID, format string) ([]byte, string, error)
}

// Handler управляет HTTP-запросами на экспорт.
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
// @Summary Экспортировать QR-код из журнала
// @Description Отрисовывает запись журнала в формате png, jpeg или svg.
// @Tags QR
// @Produce  png
// @Param id path string true "Идентификатор записи журнала"
// @Param format query string false "Формат экспорта (png по умолчанию)"
// @Success 200 {file} binary "Изображение QR-кода"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Формат недоступен на тарифе"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при экспорте"
// @Security BearerAuth
// @Router /qr/export/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.qr.export"
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

	entryID := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = rnd.FormatPNG
	}

	img, mime, err := h.service.Export(r.Context(), uid, entryID, format)
	if err != nil {
		switch {
		case errors.Is(err, entitlement.ErrFeatureNotAvailable):
			log.Error("export format not available on current tier", slog.String("format", format))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("export format is not available on the current tier"))
		case errors.Is(err, history.ErrEntryNotFound):
			log.Error("history entry not found", slog.String("id", entryID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("history entry not found"))
		default:
			log.Error("failed to export qr code", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not export qr code"))
		}
		return
	}

	log.Info("qr code exported", slog.String("id", entryID), slog.String("format", format))
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}
