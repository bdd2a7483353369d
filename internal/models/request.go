package models

// Типы содержимого QR-кода.
const (
	TypeURL     = "url"
	TypeText    = "text"
	TypeWifi    = "wifi"
	TypeContact = "contact"
	TypeEvent   = "event"
)

// WifiFields — данные точки доступа для QR-кода wifi.
type WifiFields struct {
	SSID       string `json:"ssid" validate:"required"`
	Encryption string `json:"encryption" validate:"required,oneof=nopass WEP WPA WPA3 WPA2-EAP WPA3-EAP"`
	Password   string `json:"password"`
	Hidden     bool   `json:"hidden"`
}

// ContactFields — поля визитки для QR-кода contact (vCard 3.0).
type ContactFields struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// EventFields — поля события для QR-кода event (iCalendar VEVENT).
// Даты приходят строками в формате RFC3339 и парсятся при форматировании.
type EventFields struct {
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Styling — параметры отрисовки QR-кода.
type Styling struct {
	DotColor        string `json:"dot_color" validate:"omitempty,hexcolor"`
	BackgroundColor string `json:"background_color" validate:"omitempty,hexcolor"`
	Logo            string `json:"logo,omitempty"` // base64 изображения логотипа, пусто если логотип не нужен
	DotSize         int    `json:"dot_size" validate:"omitempty,gte=1,lte=100"`
	CornerRadius    int    `json:"corner_radius" validate:"omitempty,gte=0,lte=50"`
	ErrorLevel      string `json:"error_level" validate:"omitempty,oneof=L M Q H"`
}

// Protection — настройки защиты QR-кода паролем.
type Protection struct {
	Enabled  bool   `json:"enabled"`
	Password string `json:"password"`
}

// GenerateRequest — запрос на генерацию QR-кода. Живёт только на время
// одного запроса, в журнал попадает лишь производная HistoryEntry.
type GenerateRequest struct {
	Type       string         `json:"type" validate:"required,oneof=url text wifi contact event"`
	Content    string         `json:"content"` // Для url и text; для остальных типов заполняются поля ниже
	Wifi       *WifiFields    `json:"wifi,omitempty"`
	Contact    *ContactFields `json:"contact,omitempty"`
	Event      *EventFields   `json:"event,omitempty"`
	Styling    Styling        `json:"styling"`
	Protection *Protection    `json:"protection,omitempty"`
}
