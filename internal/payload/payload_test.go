package payload

import (
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjuered/qrforge/internal/models"
)

func TestFormatWifi(t *testing.T) {
	tests := []struct {
		name    string
		fields  models.WifiFields
		want    string
		wantErr error
	}{
		{
			name: "сеть WPA с паролем",
			fields: models.WifiFields{
				SSID:       "HomeNet",
				Encryption: "WPA",
				Password:   "secret123",
				Hidden:     false,
			},
			want: "WIFI:T:WPA;S:HomeNet;P:secret123;H:false;;",
		},
		{
			name: "открытая сеть без сегмента пароля",
			fields: models.WifiFields{
				SSID:       "CafeFree",
				Encryption: "nopass",
				Password:   "ignored",
				Hidden:     false,
			},
			want: "WIFI:T:nopass;S:CafeFree;H:false;;",
		},
		{
			name: "скрытая сеть WPA3",
			fields: models.WifiFields{
				SSID:       "Lab",
				Encryption: "WPA3",
				Password:   "p@ss",
				Hidden:     true,
			},
			want: "WIFI:T:WPA3;S:Lab;P:p@ss;H:true;;",
		},
		{
			name: "корпоративный WPA2-EAP",
			fields: models.WifiFields{
				SSID:       "Office",
				Encryption: "WPA2-EAP",
				Password:   "radius",
				Hidden:     false,
			},
			want: "WIFI:T:WPA2-EAP;S:Office;P:radius;H:false;;",
		},
		{
			name: "неизвестный тип шифрования отклоняется",
			fields: models.WifiFields{
				SSID:       "Evil",
				Encryption: "ROT13",
				Password:   "x",
			},
			wantErr: ErrUnknownEncryption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatWifi(tt.fields)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Форма WIFI-строки держится для любых ssid и паролей без спецсимволов:
// сегмент P: присутствует ровно тогда, когда шифрование не nopass.
func TestFormatWifiShape(t *testing.T) {
	re := regexp.MustCompile(`^WIFI:T:(nopass|WEP|WPA|WPA3|WPA2-EAP|WPA3-EAP);S:[^;]*;(P:[^;]*;)?H:(true|false);;$`)

	properties := gopter.NewProperties(nil)

	properties.Property("output matches the WIFI grammar", prop.ForAll(
		func(ssid, password string, enc string, hidden bool) bool {
			out, err := FormatWifi(models.WifiFields{
				SSID:       ssid,
				Encryption: enc,
				Password:   password,
				Hidden:     hidden,
			})
			if err != nil {
				return false
			}
			if !re.MatchString(out) {
				return false
			}
			hasPassword := strings.Contains(out, ";P:")
			return hasPassword == (enc != "nopass")
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.OneConstOf("nopass", "WEP", "WPA", "WPA3", "WPA2-EAP", "WPA3-EAP"),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestFormatContact(t *testing.T) {
	tests := []struct {
		name   string
		fields models.ContactFields
		want   string
	}{
		{
			name: "все поля заполнены",
			fields: models.ContactFields{
				Name:    "Ivan Petrov",
				Phone:   "+79990001122",
				Email:   "ivan@example.com",
				Address: "Moscow, Tverskaya 1",
			},
			want: "BEGIN:VCARD\n" +
				"VERSION:3.0\n" +
				"FN:Ivan Petrov\n" +
				"N:Petrov;Ivan;;;\n" +
				"TEL;TYPE=CELL:+79990001122\n" +
				"EMAIL:ivan@example.com\n" +
				"ADR:;;Moscow, Tverskaya 1;;;;\n" +
				"END:VCARD",
		},
		{
			name:   "имя без пробела уходит в компонент имени",
			fields: models.ContactFields{Name: "Madonna"},
			want: "BEGIN:VCARD\n" +
				"VERSION:3.0\n" +
				"FN:Madonna\n" +
				"N:;Madonna;;;\n" +
				"END:VCARD",
		},
		{
			name: "имя из трёх слов делится по первому пробелу",
			fields: models.ContactFields{
				Name: "Anna Maria Lopez",
			},
			want: "BEGIN:VCARD\n" +
				"VERSION:3.0\n" +
				"FN:Anna Maria Lopez\n" +
				"N:Maria Lopez;Anna;;;\n" +
				"END:VCARD",
		},
		{
			name:   "пустые поля не дают пустых строк",
			fields: models.ContactFields{Phone: "123"},
			want: "BEGIN:VCARD\n" +
				"VERSION:3.0\n" +
				"TEL;TYPE=CELL:123\n" +
				"END:VCARD",
		},
		{
			name:   "полностью пустой ввод даёт пустую визитку",
			fields: models.ContactFields{},
			want: "BEGIN:VCARD\n" +
				"VERSION:3.0\n" +
				"END:VCARD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatContact(tt.fields))
		})
	}
}

// Повторный разбор vCard восстанавливает ровно те непустые поля,
// которые были переданы, без пустых строк для опущенных.
func TestFormatContactRoundTrip(t *testing.T) {
	fields := models.ContactFields{
		Name:  "Jane Doe",
		Email: "jane@doe.io",
	}
	out := FormatContact(fields)
	lines := strings.Split(out, "\n")

	assert.Contains(t, lines, "FN:Jane Doe")
	assert.Contains(t, lines, "EMAIL:jane@doe.io")
	for _, l := range lines {
		assert.False(t, strings.HasPrefix(l, "TEL"), "phone was empty, no TEL line expected")
		assert.False(t, strings.HasPrefix(l, "ADR"), "address was empty, no ADR line expected")
		assert.NotEqual(t, "", l, "no empty lines in output")
	}
}

func TestFormatEvent(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	tests := []struct {
		name    string
		fields  models.EventFields
		want    string
		wantErr error
	}{
		{
			name: "полное событие",
			fields: models.EventFields{
				Title:       "Team sync",
				Start:       "2026-03-01T13:00:00+03:00",
				End:         "2026-03-01T14:00:00+03:00",
				Location:    "Room 4",
				Description: "Weekly status",
			},
			want: "BEGIN:VCALENDAR\n" +
				"VERSION:2.0\n" +
				"BEGIN:VEVENT\n" +
				"UID:event-1700000000000@qrforge.app\n" +
				"SUMMARY:Team sync\n" +
				"DTSTART:20260301T100000Z\n" +
				"DTEND:20260301T110000Z\n" +
				"LOCATION:Room 4\n" +
				"DESCRIPTION:Weekly status\n" +
				"END:VEVENT\n" +
				"END:VCALENDAR",
		},
		{
			name:   "пустые поля опускаются, UID остаётся",
			fields: models.EventFields{Title: "Ping"},
			want: "BEGIN:VCALENDAR\n" +
				"VERSION:2.0\n" +
				"BEGIN:VEVENT\n" +
				"UID:event-1700000000000@qrforge.app\n" +
				"SUMMARY:Ping\n" +
				"END:VEVENT\n" +
				"END:VCALENDAR",
		},
		{
			name:    "кривое время отклоняется",
			fields:  models.EventFields{Start: "tomorrow at noon"},
			wantErr: ErrBadEventTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatEvent(tt.fields, now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProtectedURLRoundTrip(t *testing.T) {
	u := ProtectedURL("https://qrforge.app", "https://secret.example.com", "hunter2")
	require.True(t, strings.HasPrefix(u, "https://qrforge.app/protected?data="))

	data := strings.TrimPrefix(u, "https://qrforge.app/protected?data=")
	unescaped, err := url.QueryUnescape(data)
	require.NoError(t, err)

	content, password, err := DecodeProtected(unescaped)
	require.NoError(t, err)
	assert.Equal(t, "https://secret.example.com", content)
	assert.Equal(t, "hunter2", password)
}

func TestDecodeProtectedGarbage(t *testing.T) {
	_, _, err := DecodeProtected("%%%not-base64%%%")
	require.Error(t, err)

	// валидный base64, но не JSON
	_, _, err = DecodeProtected("aGVsbG8=")
	require.Error(t, err)
}
