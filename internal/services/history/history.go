// Package history ведёт журнал сгенерированных QR-кодов: ограниченный
// список от новых к старым, общий для всех пользователей и не зависящий
// от входа в систему.
package history

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/rjuered/qrforge/internal/models"
)

// MaxEntries — предел журнала; при вставке старые записи сверх предела
// отбрасываются безвозвратно.
const MaxEntries = 50

// ErrEntryNotFound возвращается при удалении несуществующей записи.
var ErrEntryNotFound = errors.New("history entry not found")

// HistoryRepository определяет методы хранения журнала.
type HistoryRepository interface {
	// LoadHistory возвращает журнал, пустой для отсутствующей или битой записи.
	LoadHistory(ctx context.Context) ([]models.HistoryEntry, error)
	// SaveHistory перезаписывает журнал целиком.
	SaveHistory(ctx context.Context, entries []models.HistoryEntry) error
	// ClearHistory удаляет журнал.
	ClearHistory(ctx context.Context) error
}

// Service реализует операции журнала поверх хранилища.
type Service struct {
	repo HistoryRepository
	log  *slog.Logger
	now  func() time.Time
}

// New создает новый Service. Часы подменяются в тестах.
func New(repo HistoryRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Append присваивает записи идентификатор и время создания, ставит её
// в начало журнала и усекает журнал до MaxEntries.
func (s *Service) Append(ctx context.Context, entry models.HistoryEntry) (models.HistoryEntry, error) {
	entries, err := s.repo.LoadHistory(ctx)
	if err != nil {
		return models.HistoryEntry{}, err
	}

	now := s.now()
	entry.ID = strconv.FormatInt(now.UnixMilli(), 10)
	entry.CreatedAt = now.UTC().Format(time.RFC3339)

	entries = append([]models.HistoryEntry{entry}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	if err := s.repo.SaveHistory(ctx, entries); err != nil {
		return models.HistoryEntry{}, err
	}
	s.log.Info("history entry appended", slog.String("id", entry.ID), slog.String("type", entry.Type))
	return entry, nil
}

// List возвращает журнал от новых записей к старым.
func (s *Service) List(ctx context.Context) ([]models.HistoryEntry, error) {
	return s.repo.LoadHistory(ctx)
}

// Get возвращает запись журнала по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (*models.HistoryEntry, error) {
	entries, err := s.repo.LoadHistory(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, ErrEntryNotFound
}

// Remove удаляет запись по идентификатору и перезаписывает журнал.
func (s *Service) Remove(ctx context.Context, id string) error {
	entries, err := s.repo.LoadHistory(ctx)
	if err != nil {
		return err
	}

	filtered := entries[:0]
	found := false
	for _, e := range entries {
		if e.ID == id {
			found = true
			continue
		}
		filtered = append(filtered, e)
	}
	if !found {
		return ErrEntryNotFound
	}

	return s.repo.SaveHistory(ctx, filtered)
}

// Clear опустошает журнал.
func (s *Service) Clear(ctx context.Context) error {
	return s.repo.ClearHistory(ctx)
}
