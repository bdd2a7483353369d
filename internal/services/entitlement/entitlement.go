// Package entitlement реализует правила тарифных планов: лимит числа
// генераций, доступность логотипа, форматов экспорта, защиты паролем и
// автоматического предпросмотра, а также смену тарифа.
package entitlement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rjuered/qrforge/internal/models"
)

// FreeTierLimit — пожизненный лимит генераций на бесплатном тарифе.
// Счётчик никогда не сбрасывается: это лимит за всё время, не за период.
const FreeTierLimit = 5

// SubscriptionDays — срок действия платного тарифа после переключения.
const SubscriptionDays = 30

var (
	// ErrAuthRequired возвращается при генерации без входа в систему.
	ErrAuthRequired = errors.New("authentication required")
	// ErrQuotaExceeded возвращается при исчерпании лимита бесплатного тарифа.
	ErrQuotaExceeded = errors.New("free tier qr code limit reached")
	// ErrFeatureNotAvailable возвращается при попытке использовать
	// возможность, недоступную на текущем тарифе.
	ErrFeatureNotAvailable = errors.New("feature is not available on the current tier")
)

// PrefsRepository определяет методы для работы с настройками пользователя.
type PrefsRepository interface {
	// LoadPrefs возвращает настройки пользователя с дефолтами для отсутствующих записей.
	LoadPrefs(ctx context.Context, uid string) (models.Prefs, error)
	// IncrementCount атомарно увеличивает счётчик генераций.
	IncrementCount(ctx context.Context, uid string) (int, error)
	// SaveTier сохраняет тариф и дату его окончания.
	SaveTier(ctx context.Context, uid string, tier models.Tier, expiresAt *time.Time) error
	// SaveLanguage сохраняет язык интерфейса.
	SaveLanguage(ctx context.Context, uid, lang string) error
}

// Service применяет правила тарифов поверх хранилища настроек.
type Service struct {
	prefs PrefsRepository
	log   *slog.Logger
	now   func() time.Time
}

// New создает новый Service. Часы подменяются в тестах.
func New(prefs PrefsRepository, log *slog.Logger) *Service {
	return &Service{
		prefs: prefs,
		log:   log,
		now:   time.Now,
	}
}

// AuthorizeGeneration авторизует одну генерацию QR-кода: отклоняет
// неавторизованных и исчерпавших лимит, иначе увеличивает счётчик
// и возвращает его новое значение.
//
// Проверка лимита и инкремент не атомарны между параллельными запросами
// одного пользователя: два одновременных запроса могут оба пройти проверку
// на границе лимита. Сам счётчик при этом не теряет обновлений (INCR),
// но строгий лимит потребовал бы compare-and-swap.
func (s *Service) AuthorizeGeneration(ctx context.Context, uid string) (int, error) {
	if uid == "" {
		return 0, ErrAuthRequired
	}

	prefs, err := s.prefs.LoadPrefs(ctx, uid)
	if err != nil {
		return 0, err
	}
	if prefs.Tier == models.TierFree && prefs.QRCount >= FreeTierLimit {
		s.log.Info("generation refused, quota exceeded",
			slog.String("uid", uid), slog.Int("count", prefs.QRCount))
		return prefs.QRCount, ErrQuotaExceeded
	}

	count, err := s.prefs.IncrementCount(ctx, uid)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ChangeTier переключает тарифный план. Платный тариф действует 30 дней
// с момента переключения, возврат на free очищает дату окончания.
// Платёж не проверяется — это декларативная смена состояния.
func (s *Service) ChangeTier(ctx context.Context, uid string, tier models.Tier) (*time.Time, error) {
	if uid == "" {
		return nil, ErrAuthRequired
	}

	var expiresAt *time.Time
	if tier.IsPaid() {
		t := s.now().UTC().AddDate(0, 0, SubscriptionDays)
		expiresAt = &t
	}

	if err := s.prefs.SaveTier(ctx, uid, tier, expiresAt); err != nil {
		return nil, err
	}
	s.log.Info("tier changed", slog.String("uid", uid), slog.String("tier", string(tier)))
	return expiresAt, nil
}

// Profile возвращает текущие настройки пользователя.
func (s *Service) Profile(ctx context.Context, uid string) (models.Prefs, error) {
	if uid == "" {
		return models.Prefs{}, ErrAuthRequired
	}
	return s.prefs.LoadPrefs(ctx, uid)
}

// SwitchLanguage сохраняет язык интерфейса пользователя.
func (s *Service) SwitchLanguage(ctx context.Context, uid, lang string) error {
	if uid == "" {
		return ErrAuthRequired
	}
	if lang != models.LanguageEN && lang != models.LanguageAR {
		return ErrFeatureNotAvailable
	}
	return s.prefs.SaveLanguage(ctx, uid, lang)
}

// CanAddLogo сообщает, доступно ли встраивание логотипа на тарифе.
func CanAddLogo(tier models.Tier) bool {
	return tier.IsPaid()
}

// CanProtect сообщает, доступна ли защита QR-кода паролем на тарифе.
func CanProtect(tier models.Tier) bool {
	return tier.IsPaid()
}

// AutoPreview сообщает, доступен ли автоматический предпросмотр на тарифе.
// Бесплатный тариф генерирует только по явной кнопке.
func AutoPreview(tier models.Tier) bool {
	return tier.IsPaid()
}

// ExportFormats возвращает форматы экспорта, доступные на тарифе.
func ExportFormats(tier models.Tier) []string {
	if tier.IsPaid() {
		return []string{"png", "jpeg", "svg"}
	}
	return []string{"png"}
}

// CanExport сообщает, доступен ли формат экспорта на тарифе.
func CanExport(tier models.Tier, format string) bool {
	for _, f := range ExportFormats(tier) {
		if f == format {
			return true
		}
	}
	return false
}
