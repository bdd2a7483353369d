package models

import "time"

// Языки интерфейса, сохраняемые в настройках пользователя.
const (
	LanguageEN = "en"
	LanguageAR = "ar"
)

// Prefs — настройки пользователя, привязанные к его идентификатору
// во внешнем сервисе аутентификации. Хранятся как независимые записи,
// отсутствующая запись заменяется значением по умолчанию.
type Prefs struct {
	QRCount   int        // Сколько QR-кодов пользователь уже сгенерировал (счётчик не сбрасывается)
	Tier      Tier       // Текущий тарифный план
	ExpiresAt *time.Time // Дата окончания платного тарифа, nil для free
	Language  string     // Язык интерфейса, en или ar
}

// DefaultPrefs возвращает настройки нового пользователя.
func DefaultPrefs() Prefs {
	return Prefs{
		QRCount:  0,
		Tier:     TierFree,
		Language: LanguageEN,
	}
}

// User представляет учётную запись во встроенном сервисе аутентификации.
// Ядро использует только UID как ключ пространства настроек.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля
	CreatedAt    time.Time // Дата регистрации
}

// HistoryEntry — запись журнала сгенерированных QR-кодов.
// Журнал глобальный, не привязан к учётной записи, и усечён до 50 записей.
// JSON-теги повторяют раскладку, в которой записи уже сохранены у
// существующих инсталляций, поэтому менять их нельзя.
type HistoryEntry struct {
	ID              string `json:"id"`              // Идентификатор по времени создания (epoch-ms)
	Type            string `json:"type"`            // Тип содержимого: url, text, wifi, contact, event
	Content         string `json:"content"`         // Исходное содержимое, введённое пользователем
	RenderedPayload string `json:"url"`             // Итоговая строка, закодированная в QR
	CreatedAt       string `json:"createdAt"`       // Время создания в формате RFC3339
	DotColor        string `json:"dotColor"`        // Цвет точек
	BackgroundColor string `json:"backgroundColor"` // Цвет фона
	HasLogo         bool   `json:"hasLogo"`         // Был ли встроен логотип
}
