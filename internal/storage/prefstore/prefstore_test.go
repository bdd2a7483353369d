package prefstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjuered/qrforge/internal/config"
	"github.com/rjuered/qrforge/internal/models"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}
	store, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return store, mr
}

func TestLoadPrefs_Defaults(t *testing.T) {
	store, _ := setupTestStore(t)

	prefs, err := store.LoadPrefs(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 0, prefs.QRCount)
	assert.Equal(t, models.TierFree, prefs.Tier)
	assert.Nil(t, prefs.ExpiresAt)
	assert.Equal(t, models.LanguageEN, prefs.Language)
}

func TestLoadPrefs_ExistingKeys(t *testing.T) {
	store, mr := setupTestStore(t)
	end := time.Now().UTC().AddDate(0, 0, 30).Truncate(time.Second)

	// раскладка ключей совпадает с уже сохранёнными данными
	mr.Set("qrCount_user-2", "7")
	mr.Set("subscription_user-2", "pro")
	mr.Set("subscriptionEndDate_user-2", end.Format(time.RFC3339))
	mr.Set("language_user-2", "ar")

	prefs, err := store.LoadPrefs(context.Background(), "user-2")
	require.NoError(t, err)

	assert.Equal(t, 7, prefs.QRCount)
	assert.Equal(t, models.TierPro, prefs.Tier)
	require.NotNil(t, prefs.ExpiresAt)
	assert.True(t, prefs.ExpiresAt.Equal(end))
	assert.Equal(t, models.LanguageAR, prefs.Language)
}

func TestLoadPrefs_CorruptedValues(t *testing.T) {
	store, mr := setupTestStore(t)

	mr.Set("qrCount_user-3", "not-a-number")
	mr.Set("subscription_user-3", "platinum")
	mr.Set("language_user-3", "fr")

	prefs, err := store.LoadPrefs(context.Background(), "user-3")
	require.NoError(t, err)

	// битые записи деградируют к значениям по умолчанию
	assert.Equal(t, 0, prefs.QRCount)
	assert.Equal(t, models.TierFree, prefs.Tier)
	assert.Equal(t, models.LanguageEN, prefs.Language)
}

func TestIncrementCount(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	n, err := store.IncrementCount(ctx, "user-4")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.IncrementCount(ctx, "user-4")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, _ := mr.Get("qrCount_user-4")
	assert.Equal(t, "2", got)
}

func TestIncrementCount_CorruptedCounter(t *testing.T) {
	store, mr := setupTestStore(t)
	mr.Set("qrCount_user-5", "garbage")

	n, err := store.IncrementCount(context.Background(), "user-5")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "corrupted counter restarts from one")
}

func TestIncrementCount_TransientErrorKeepsCounter(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("qrCount_user-9", "4"))

	// сбой соединения не должен приниматься за битое значение
	mr.SetError("read timeout")
	_, err := store.IncrementCount(ctx, "user-9")
	require.Error(t, err)

	mr.SetError("")
	got, _ := mr.Get("qrCount_user-9")
	assert.Equal(t, "4", got, "transient error must not reset the counter")

	n, err := store.IncrementCount(ctx, "user-9")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestSaveTier(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()
	end := time.Now().UTC().AddDate(0, 0, 30)

	require.NoError(t, store.SaveTier(ctx, "user-6", models.TierBusiness, &end))
	got, _ := mr.Get("subscription_user-6")
	assert.Equal(t, "business", got)
	stored, _ := mr.Get("subscriptionEndDate_user-6")
	assert.Equal(t, end.Format(time.RFC3339), stored)

	// возврат на free удаляет дату окончания
	require.NoError(t, store.SaveTier(ctx, "user-6", models.TierFree, nil))
	got, _ = mr.Get("subscription_user-6")
	assert.Equal(t, "free", got)
	assert.False(t, mr.Exists("subscriptionEndDate_user-6"))
}

func TestHistoryRoundTrip(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	entries := []models.HistoryEntry{
		{ID: "2", Type: "url", Content: "https://b", RenderedPayload: "https://b", CreatedAt: "2026-01-02T00:00:00Z"},
		{ID: "1", Type: "text", Content: "hello", RenderedPayload: "hello", CreatedAt: "2026-01-01T00:00:00Z"},
	}
	require.NoError(t, store.SaveHistory(ctx, entries))

	got, err := store.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	require.NoError(t, store.ClearHistory(ctx))
	got, err = store.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadHistory_CorruptedJSON(t *testing.T) {
	store, mr := setupTestStore(t)
	mr.Set("qr_history", "{broken json")

	got, err := store.LoadHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got, "corrupted history degrades to an empty list")
}
