// Package generator реализует конвейер генерации QR-кода: сборка
// payload по типу содержимого, проверка прав тарифа, защита паролем,
// контроль вместимости, отрисовка и запись в журнал.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rjuered/qrforge/internal/lib/rabbitmq"
	"github.com/rjuered/qrforge/internal/lib/sl"
	"github.com/rjuered/qrforge/internal/models"
	"github.com/rjuered/qrforge/internal/payload"
	"github.com/rjuered/qrforge/internal/render"
	"github.com/rjuered/qrforge/internal/services/entitlement"
)

var (
	// ErrPayloadTooLarge возвращается, когда payload не помещается в QR-код
	// с выбранным уровнем коррекции. Генерация отклоняется целиком, счётчик
	// и журнал не затрагиваются.
	ErrPayloadTooLarge = errors.New("payload exceeds qr code capacity")
	// ErrMissingFields возвращается, когда для типа содержимого не переданы
	// соответствующие структурированные поля.
	ErrMissingFields = errors.New("missing fields for content type")
)

var (
	generatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrforge_generated_total",
		Help: "Number of successfully generated QR codes by content type.",
	}, []string{"type"})
	refusedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrforge_refused_total",
		Help: "Number of refused generation attempts by reason.",
	}, []string{"reason"})
)

// Entitlements определяет правила тарифов, нужные конвейеру.
type Entitlements interface {
	// Profile возвращает настройки пользователя.
	Profile(ctx context.Context, uid string) (models.Prefs, error)
	// AuthorizeGeneration авторизует одну генерацию и увеличивает счётчик.
	AuthorizeGeneration(ctx context.Context, uid string) (int, error)
}

// Historian определяет операции журнала, нужные конвейеру.
type Historian interface {
	// Append добавляет запись в журнал.
	Append(ctx context.Context, entry models.HistoryEntry) (models.HistoryEntry, error)
	// Get возвращает запись журнала по идентификатору.
	Get(ctx context.Context, id string) (*models.HistoryEntry, error)
}

// Renderer кодирует payload в изображение.
type Renderer interface {
	Encode(payload, format string, opts render.Options) ([]byte, string, error)
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// Result — итог успешной генерации.
type Result struct {
	Entry models.HistoryEntry // Запись, добавленная в журнал
	Image []byte              // PNG-изображение QR-кода
	Count int                 // Счётчик генераций после этой
}

// Preview — итог предпросмотра без генерации.
type Preview struct {
	Payload   string // Payload, возможно усечённый под вместимость
	Truncated bool   // Был ли payload усечён
}

// Service — конвейер генерации QR-кодов.
type Service struct {
	entitlements Entitlements
	historian    Historian
	renderer     Renderer
	events       EventPublisher
	origin       string
	log          *slog.Logger
	now          func() time.Time
}

// New создает новый Service. Публикация событий необязательна: при
// nil-издателе события молча пропускаются. Часы подменяются в тестах.
func New(entitlements Entitlements, historian Historian, renderer Renderer,
	events EventPublisher, origin string, log *slog.Logger) *Service {
	return &Service{
		entitlements: entitlements,
		historian:    historian,
		renderer:     renderer,
		events:       events,
		origin:       origin,
		log:          log,
		now:          time.Now,
	}
}

// Generate проводит запрос через весь конвейер. Порядок строгий:
// payload собирается и проверяется на вместимость до того, как
// увеличен счётчик генераций, чтобы отклонённая попытка не тратила
// лимит бесплатного тарифа.
func (s *Service) Generate(ctx context.Context, uid string, req models.GenerateRequest) (Result, error) {
	const op = "generator.Generate"

	if uid == "" {
		refusedTotal.WithLabelValues("auth").Inc()
		return Result{}, entitlement.ErrAuthRequired
	}

	prefs, err := s.entitlements.Profile(ctx, uid)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	if req.Styling.Logo != "" && !entitlement.CanAddLogo(prefs.Tier) {
		refusedTotal.WithLabelValues("feature").Inc()
		return Result{}, fmt.Errorf("%s: logo: %w", op, entitlement.ErrFeatureNotAvailable)
	}
	protected := req.Protection != nil && req.Protection.Enabled
	if protected && !entitlement.CanProtect(prefs.Tier) {
		refusedTotal.WithLabelValues("feature").Inc()
		return Result{}, fmt.Errorf("%s: protection: %w", op, entitlement.ErrFeatureNotAvailable)
	}

	data, err := s.buildPayload(req)
	if err != nil {
		refusedTotal.WithLabelValues("payload").Inc()
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if protected {
		data = payload.ProtectedURL(s.origin, data, req.Protection.Password)
	}

	if !payload.Validate(data, req.Styling.ErrorLevel) {
		refusedTotal.WithLabelValues("capacity").Inc()
		return Result{}, fmt.Errorf("%s: %w", op, ErrPayloadTooLarge)
	}

	count, err := s.entitlements.AuthorizeGeneration(ctx, uid)
	if err != nil {
		if errors.Is(err, entitlement.ErrQuotaExceeded) {
			refusedTotal.WithLabelValues("quota").Inc()
		}
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	img, _, err := s.renderer.Encode(data, render.FormatPNG, render.Options{
		Size:            render.DefaultSize,
		DotColor:        req.Styling.DotColor,
		BackgroundColor: req.Styling.BackgroundColor,
		ErrorLevel:      req.Styling.ErrorLevel,
		Logo:            req.Styling.Logo,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	entry, err := s.historian.Append(ctx, models.HistoryEntry{
		Type:            req.Type,
		Content:         contentSummary(req),
		RenderedPayload: data,
		DotColor:        req.Styling.DotColor,
		BackgroundColor: req.Styling.BackgroundColor,
		HasLogo:         req.Styling.Logo != "",
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	generatedTotal.WithLabelValues(req.Type).Inc()
	s.publish(rabbitmq.RoutingKeyGenerated, map[string]any{
		"uid":   uid,
		"type":  req.Type,
		"count": count,
	})
	return Result{Entry: entry, Image: img, Count: count}, nil
}

// MakePreview возвращает payload для живого предпросмотра: без
// увеличения счётчика и без записи в журнал, с усечением под
// вместимость вместо отказа. Доступен только платным тарифам.
func (s *Service) MakePreview(ctx context.Context, uid string, req models.GenerateRequest) (Preview, error) {
	const op = "generator.MakePreview"

	if uid == "" {
		return Preview{}, entitlement.ErrAuthRequired
	}
	prefs, err := s.entitlements.Profile(ctx, uid)
	if err != nil {
		return Preview{}, fmt.Errorf("%s: %w", op, err)
	}
	if !entitlement.AutoPreview(prefs.Tier) {
		return Preview{}, fmt.Errorf("%s: %w", op, entitlement.ErrFeatureNotAvailable)
	}

	data, err := s.buildPayload(req)
	if err != nil {
		return Preview{}, fmt.Errorf("%s: %w", op, err)
	}
	safe := payload.MakeSafe(data, req.Styling.ErrorLevel)
	return Preview{Payload: safe, Truncated: payload.IsTruncated(safe) && safe != data}, nil
}

// Export отрисовывает запись журнала в выбранном формате. Набор
// форматов зависит от тарифа пользователя.
func (s *Service) Export(ctx context.Context, uid, entryID, format string) ([]byte, string, error) {
	const op = "generator.Export"

	if uid == "" {
		return nil, "", entitlement.ErrAuthRequired
	}
	prefs, err := s.entitlements.Profile(ctx, uid)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if !entitlement.CanExport(prefs.Tier, format) {
		return nil, "", fmt.Errorf("%s: format %s: %w", op, format, entitlement.ErrFeatureNotAvailable)
	}

	entry, err := s.historian.Get(ctx, entryID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	// Запись могла быть сохранена под более вместительным уровнем коррекции
	// или другой инсталляцией: устаревший длинный payload усекается, отрисовка
	// сохранённой записи никогда не отказывает из-за длины.
	data := payload.MakeSafe(entry.RenderedPayload, "")

	img, mime, err := s.renderer.Encode(data, format, render.Options{
		Size:            render.DefaultSize,
		DotColor:        entry.DotColor,
		BackgroundColor: entry.BackgroundColor,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return img, mime, nil
}

// contentSummary выбирает человеко-читаемое содержимое для записи журнала.
// Структурированные типы не заполняют Content, поэтому берётся их главное
// поле: имя сети, имя контакта или название события.
func contentSummary(req models.GenerateRequest) string {
	if req.Content != "" {
		return req.Content
	}
	switch req.Type {
	case models.TypeWifi:
		if req.Wifi != nil {
			return req.Wifi.SSID
		}
	case models.TypeContact:
		if req.Contact != nil {
			return req.Contact.Name
		}
	case models.TypeEvent:
		if req.Event != nil {
			return req.Event.Title
		}
	}
	return ""
}

// buildPayload собирает итоговую строку payload по типу содержимого.
func (s *Service) buildPayload(req models.GenerateRequest) (string, error) {
	switch req.Type {
	case models.TypeURL, models.TypeText:
		return req.Content, nil
	case models.TypeWifi:
		if req.Wifi == nil {
			return "", ErrMissingFields
		}
		return payload.FormatWifi(*req.Wifi)
	case models.TypeContact:
		if req.Contact == nil {
			return "", ErrMissingFields
		}
		return payload.FormatContact(*req.Contact), nil
	case models.TypeEvent:
		if req.Event == nil {
			return "", ErrMissingFields
		}
		return payload.FormatEvent(*req.Event, s.now())
	default:
		return "", fmt.Errorf("unknown content type %q", req.Type)
	}
}

// publish отправляет событие, если издатель подключён. Ошибка публикации
// не прерывает генерацию.
func (s *Service) publish(routingKey string, message any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(routingKey, message); err != nil {
		s.log.Error("failed to publish event", slog.String("routing_key", routingKey), sl.Err(err))
	}
}
