package list_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rjuered/qrforge/internal/http/handlers/history/list"
	"github.com/rjuered/qrforge/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context) ([]models.HistoryEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]models.HistoryEntry)
	return entries, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		mockEntries    []models.HistoryEntry
		mockErr        error
		wantStatusCode int
		wantBody       string
	}{
		{
			name: "журнал с записями",
			mockEntries: []models.HistoryEntry{
				{ID: "2", Type: "url", RenderedPayload: "https://b.example"},
				{ID: "1", Type: "text", RenderedPayload: "hello"},
			},
			wantStatusCode: http.StatusOK,
			wantBody:       `"id":"2"`,
		},
		{
			name:           "пустой журнал",
			mockEntries:    nil,
			wantStatusCode: http.StatusOK,
			wantBody:       `"status":"OK"`,
		},
		{
			name:           "ошибка хранилища",
			mockErr:        errors.New("redis is down"),
			wantStatusCode: http.StatusInternalServerError,
			wantBody:       `"status":"Error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("List", mock.Anything).Return(tt.mockEntries, tt.mockErr).Once()

			handler := list.New(newNoopLogger(), svc)
			req := httptest.NewRequest(http.MethodGet, "/history", nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
