// Package unlock реализует HTTP-обработчик открытия защищённого QR-кода.
//
// Защищённый QR-код содержит ссылку с base64-конвертом {content, password}.
// Обработчик принимает конверт и введённый пароль, сверяет их и возвращает
// исходное содержимое. Эндпоинт открытый: сканирующий QR-код не имеет
// учётной записи.
package unlock

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/rjuered/qrforge/internal/http/response"
	"github.com/rjuered/qrforge/internal/lib/sl"
	"github.com/rjuered/qrforge/internal/payload"
)

// Request — тело запроса на открытие защищённого содержимого.
type Request struct {
	Data     string `json:"data" validate:"required"`
	Password string `json:"password"`
}

// Handler управляет HTTP-запросами на открытие защищённого содержимого.
// Сервис не нужен: конверт самодостаточен.
type Handler struct {
	log      *slog.Logger
	validate *validator.Validate
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{
		log:      log,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Открыть защищённый QR-код
// @Description Сверяет пароль с конвертом из ссылки и возвращает содержимое.
// @Tags Protected
// @Accept  json
// @Produce  json
// @Param request body Request true "Конверт и пароль"
// @Success 200 {object} map[string]any "Содержимое QR-кода"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или конверт"
// @Failure 403 {object} response.ErrorResponse "Неверный пароль"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /protected/unlock [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.protected.unlock"
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

	content, password, err := payload.DecodeProtected(req.Data)
	if err != nil {
		log.Error("failed to decode protected envelope", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid protected envelope"))
		return
	}

	if req.Password != password {
		log.Error("wrong password for protected qr code")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("wrong password"))
		return
	}

	log.Info("protected qr code unlocked")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"content": content,
	}))
}

// Describe godoc
// @Summary Проверить защищённую ссылку
// @Description Разбирает конверт из параметра data и сообщает, что содержимое
// @Description закрыто паролем. Само содержимое не раскрывается.
// @Tags Protected
// @Produce  json
// @Param data query string true "Base64-конверт из ссылки QR-кода"
// @Success 200 {object} map[string]any "Содержимое закрыто паролем"
// @Failure 400 {object} response.ErrorResponse "Некорректный конверт"
// @Router /protected [get]
func (h *Handler) Describe(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.protected.describe"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	data := r.URL.Query().Get("data")
	if data == "" {
		log.Error("missing data query parameter")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing data query parameter"))
		return
	}

	if _, _, err := payload.DecodeProtected(data); err != nil {
		log.Error("failed to decode protected envelope", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid protected envelope"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"protected": true,
	}))
}
