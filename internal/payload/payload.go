// Package payload собирает строку, которая кодируется в QR-код:
// конфигурацию WiFi, визитку vCard 3.0, событие iCalendar, а также
// обёртку для QR-кодов, защищённых паролем. Все функции детерминированы
// и не имеют побочных эффектов.
package payload

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rjuered/qrforge/internal/models"
)

// ErrUnknownEncryption возвращается для типа шифрования вне закрытого
// перечня. Произвольная строка в сегмент T: не подставляется.
var ErrUnknownEncryption = errors.New("unknown wifi encryption type")

// ErrBadEventTime возвращается, если дата события не разбирается как RFC3339.
var ErrBadEventTime = errors.New("event time is not a valid RFC3339 timestamp")

// допустимые значения сегмента T: в WIFI-строке
var wifiEncryptions = map[string]struct{}{
	"nopass":   {},
	"WEP":      {},
	"WPA":      {},
	"WPA3":     {},
	"WPA2-EAP": {},
	"WPA3-EAP": {},
}

// FormatWifi собирает строку конфигурации WiFi вида
// WIFI:T:<enc>;S:<ssid>;[P:<password>;]H:<true|false>;;
// Сегмент пароля присутствует только при шифровании, отличном от nopass.
func FormatWifi(f models.WifiFields) (string, error) {
	if _, ok := wifiEncryptions[f.Encryption]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEncryption, f.Encryption)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "WIFI:T:%s;S:%s;", f.Encryption, f.SSID)
	if f.Encryption != "nopass" {
		fmt.Fprintf(&b, "P:%s;", f.Password)
	}
	fmt.Fprintf(&b, "H:%t;;", f.Hidden)
	return b.String(), nil
}

// FormatContact собирает визитку vCard 3.0. Пустые поля не попадают
// в вывод — соответствующая строка не печатается вовсе.
func FormatContact(f models.ContactFields) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\n")
	b.WriteString("VERSION:3.0\n")

	if f.Name != "" {
		fmt.Fprintf(&b, "FN:%s\n", f.Name)
		// N: фамилия;имя;;; — имя делится по первому пробелу,
		// без пробела всё значение уходит в компонент имени.
		first, last, found := strings.Cut(f.Name, " ")
		if found {
			fmt.Fprintf(&b, "N:%s;%s;;;\n", last, first)
		} else {
			fmt.Fprintf(&b, "N:;%s;;;\n", f.Name)
		}
	}
	if f.Phone != "" {
		fmt.Fprintf(&b, "TEL;TYPE=CELL:%s\n", f.Phone)
	}
	if f.Email != "" {
		fmt.Fprintf(&b, "EMAIL:%s\n", f.Email)
	}
	if f.Address != "" {
		fmt.Fprintf(&b, "ADR:;;%s;;;;\n", f.Address)
	}

	b.WriteString("END:VCARD")
	return b.String()
}

// FormatEvent собирает блок VCALENDAR/VEVENT. UID генерируется из
// переданного момента времени (event-<epoch-ms>@qrforge.app), даты
// переводятся в базовый UTC-формат YYYYMMDDTHHMMSSZ, пустые поля опускаются.
func FormatEvent(f models.EventFields, now time.Time) (string, error) {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\n")
	b.WriteString("VERSION:2.0\n")
	b.WriteString("BEGIN:VEVENT\n")

	fmt.Fprintf(&b, "UID:event-%d@qrforge.app\n", now.UnixMilli())

	if f.Title != "" {
		fmt.Fprintf(&b, "SUMMARY:%s\n", f.Title)
	}
	if f.Start != "" {
		ts, err := parseEventTime(f.Start)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "DTSTART:%s\n", ts)
	}
	if f.End != "" {
		ts, err := parseEventTime(f.End)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "DTEND:%s\n", ts)
	}
	if f.Location != "" {
		fmt.Fprintf(&b, "LOCATION:%s\n", f.Location)
	}
	if f.Description != "" {
		fmt.Fprintf(&b, "DESCRIPTION:%s\n", f.Description)
	}

	b.WriteString("END:VEVENT\n")
	b.WriteString("END:VCALENDAR")
	return b.String(), nil
}

func parseEventTime(s string) (string, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadEventTime, s)
	}
	return t.UTC().Format("20060102T150405Z"), nil
}

// protectedEnvelope — содержимое параметра data у защищённого QR-кода.
// Пароль хранится открытым текстом внутри base64 — это осознанный перенос
// поведения существующих кодов, см. DESIGN.md.
type protectedEnvelope struct {
	Content  string `json:"content"`
	Password string `json:"password"`
}

// ProtectedURL оборачивает содержимое в ссылку на страницу разблокировки:
// <origin>/protected?data=<base64 JSON {content,password}>.
func ProtectedURL(origin, content, password string) string {
	raw, _ := json.Marshal(protectedEnvelope{Content: content, Password: password})
	data := base64.StdEncoding.EncodeToString(raw)
	return origin + "/protected?data=" + url.QueryEscape(data)
}

// DecodeProtected разбирает параметр data обратно в содержимое и пароль.
func DecodeProtected(data string) (content, password string, err error) {
	const op = "payload.DecodeProtected"
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	var env protectedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return env.Content, env.Password, nil
}
