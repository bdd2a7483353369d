package unlock_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjuered/qrforge/internal/http/handlers/protected/unlock"
	"github.com/rjuered/qrforge/internal/payload"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// envelopeFromURL вырезает параметр data из защищённой ссылки.
func envelopeFromURL(t *testing.T, protectedURL string) string {
	t.Helper()
	_, raw, ok := strings.Cut(protectedURL, "data=")
	require.True(t, ok)
	data, err := url.QueryUnescape(raw)
	require.NoError(t, err)
	return data
}

func TestServeHTTP(t *testing.T) {
	protectedURL := payload.ProtectedURL("https://qrforge.app", "https://example.com", "secret")
	envelope := envelopeFromURL(t, protectedURL)

	tests := []struct {
		name           string
		body           map[string]string
		wantStatusCode int
		wantContent    string
	}{
		{
			name:           "правильный пароль открывает содержимое",
			body:           map[string]string{"data": envelope, "password": "secret"},
			wantStatusCode: http.StatusOK,
			wantContent:    "https://example.com",
		},
		{
			name:           "неверный пароль",
			body:           map[string]string{"data": envelope, "password": "wrong"},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "битый конверт",
			body:           map[string]string{"data": "%%%not-base64%%%", "password": "secret"},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "пустой конверт",
			body:           map[string]string{"password": "secret"},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := unlock.New(newNoopLogger())

			raw, err := json.Marshal(tt.body)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/protected/unlock", bytes.NewReader(raw))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			if tt.wantContent != "" {
				var resp struct {
					Data struct {
						Content string `json:"content"`
					} `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantContent, resp.Data.Content)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	protectedURL := payload.ProtectedURL("https://qrforge.app", "https://example.com", "secret")
	envelope := envelopeFromURL(t, protectedURL)

	tests := []struct {
		name           string
		query          string
		wantStatusCode int
	}{
		{
			name:           "валидный конверт",
			query:          "?data=" + url.QueryEscape(envelope),
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "без параметра data",
			query:          "",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "битый конверт",
			query:          "?data=broken",
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := unlock.New(newNoopLogger())

			req := httptest.NewRequest(http.MethodGet, "/protected"+tt.query, nil)
			rec := httptest.NewRecorder()

			handler.Describe(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			if tt.wantStatusCode == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"protected":true`)
			}
		})
	}
}
