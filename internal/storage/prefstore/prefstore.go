// Package prefstore хранит настройки пользователей и журнал сгенерированных
// QR-кодов в Redis. Раскладка ключей повторяет существующие сохранённые
// данные и менять её нельзя:
//
//	qrCount_<uid>             — счётчик генераций, десятичная строка
//	subscription_<uid>        — тариф: free|pro|business
//	subscriptionEndDate_<uid> — дата окончания тарифа (ISO-8601), только для платных
//	language_<uid>            — язык интерфейса: en|ar
//	qr_history                — JSON-массив записей журнала, общий для всех
//
// Битые или отсутствующие значения заменяются значениями по умолчанию —
// испорченная запись не должна блокировать пользователя.
package prefstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rjuered/qrforge/internal/config"
	"github.com/rjuered/qrforge/internal/models"
)

const historyKey = "qr_history"

// Store инкапсулирует соединение с Redis.
type Store struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Store, error) {
	const op = "prefstore.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{Db: db}, nil
}

func countKey(uid string) string        { return "qrCount_" + uid }
func subscriptionKey(uid string) string { return "subscription_" + uid }
func endDateKey(uid string) string      { return "subscriptionEndDate_" + uid }
func languageKey(uid string) string     { return "language_" + uid }

// LoadPrefs возвращает настройки пользователя, подставляя значения
// по умолчанию для отсутствующих и нечитаемых записей.
func (s *Store) LoadPrefs(ctx context.Context, uid string) (models.Prefs, error) {
	const op = "prefstore.LoadPrefs"
	prefs := models.DefaultPrefs()

	raw, err := s.Db.Get(ctx, countKey(uid)).Result()
	switch {
	case err == redis.Nil:
	case err != nil:
		return prefs, fmt.Errorf("%s: %w", op, err)
	default:
		if n, convErr := strconv.Atoi(raw); convErr == nil && n >= 0 {
			prefs.QRCount = n
		}
	}

	raw, err = s.Db.Get(ctx, subscriptionKey(uid)).Result()
	if err != nil && err != redis.Nil {
		return prefs, fmt.Errorf("%s: %w", op, err)
	}
	prefs.Tier = models.ParseTier(raw)

	if prefs.Tier.IsPaid() {
		raw, err = s.Db.Get(ctx, endDateKey(uid)).Result()
		if err != nil && err != redis.Nil {
			return prefs, fmt.Errorf("%s: %w", op, err)
		}
		if t, parseErr := time.Parse(time.RFC3339, raw); parseErr == nil {
			prefs.ExpiresAt = &t
		}
	}

	raw, err = s.Db.Get(ctx, languageKey(uid)).Result()
	if err != nil && err != redis.Nil {
		return prefs, fmt.Errorf("%s: %w", op, err)
	}
	if raw == models.LanguageAR {
		prefs.Language = models.LanguageAR
	}

	return prefs, nil
}

// IncrementCount атомарно увеличивает счётчик генераций и возвращает новое
// значение. Нечитаемое старое значение сбрасывается: счётчик начинается
// заново с единицы, как если бы записи не было. Сброс допустим только для
// битого значения: любая другая ошибка возвращается как есть, иначе
// сетевой сбой после выполненного INCR обнулил бы настоящий счётчик.
func (s *Store) IncrementCount(ctx context.Context, uid string) (int, error) {
	const op = "prefstore.IncrementCount"
	n, err := s.Db.Incr(ctx, countKey(uid)).Result()
	if err == nil {
		return int(n), nil
	}
	if !isNotAnInteger(err) {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if setErr := s.Db.Set(ctx, countKey(uid), "1", 0).Err(); setErr != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return 1, nil
}

// isNotAnInteger распознает ответ Redis на INCR поверх нечислового значения.
func isNotAnInteger(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not an integer")
}

// SaveTier сохраняет тарифный план. Для платного тарифа записывается дата
// окончания, для free ключ даты удаляется.
func (s *Store) SaveTier(ctx context.Context, uid string, tier models.Tier, expiresAt *time.Time) error {
	const op = "prefstore.SaveTier"
	if err := s.Db.Set(ctx, subscriptionKey(uid), string(tier), 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if expiresAt != nil {
		if err := s.Db.Set(ctx, endDateKey(uid), expiresAt.Format(time.RFC3339), 0).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}
	if err := s.Db.Del(ctx, endDateKey(uid)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SaveLanguage сохраняет язык интерфейса пользователя.
func (s *Store) SaveLanguage(ctx context.Context, uid, lang string) error {
	const op = "prefstore.SaveLanguage"
	if err := s.Db.Set(ctx, languageKey(uid), lang, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LoadHistory возвращает журнал QR-кодов. Отсутствующий ключ и битый JSON
// дают пустой журнал без ошибки.
func (s *Store) LoadHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	const op = "prefstore.LoadHistory"
	raw, err := s.Db.Get(ctx, historyKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, nil
	}
	return entries, nil
}

// SaveHistory перезаписывает журнал целиком. Журнал ограничен 50 записями,
// поэтому полная перезапись дешевле инкрементальных обновлений.
func (s *Store) SaveHistory(ctx context.Context, entries []models.HistoryEntry) error {
	const op = "prefstore.SaveHistory"
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Db.Set(ctx, historyKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearHistory удаляет журнал.
func (s *Store) ClearHistory(ctx context.Context) error {
	const op = "prefstore.ClearHistory"
	if err := s.Db.Del(ctx, historyKey).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
