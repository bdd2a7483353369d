package payload

import "strings"

// Предельная длина данных для байтового режима QR по уровню коррекции ошибок.
const (
	maxLenL = 2953
	maxLenM = 2331
	maxLenQ = 1663
	maxLenH = 1273
)

// MaxDataLength возвращает предел длины данных для уровня коррекции.
// Неизвестный уровень трактуется как H — самый консервативный предел.
func MaxDataLength(level string) int {
	switch level {
	case "L":
		return maxLenL
	case "M":
		return maxLenM
	case "Q":
		return maxLenQ
	case "H":
		return maxLenH
	default:
		return maxLenH
	}
}

// Validate сообщает, помещаются ли данные в QR-код выбранного уровня.
func Validate(data, level string) bool {
	return len(data) <= MaxDataLength(level)
}

// MakeSafe возвращает данные без изменений, если они помещаются в предел,
// иначе усекает их до предела с маркером "..." на конце. Маркер обязателен:
// по нему интерфейс отличает усечённые записи. Функция идемпотентна.
// Используется только при отрисовке уже сохранённых записей журнала —
// активная генерация при превышении предела отклоняется целиком.
func MakeSafe(data, level string) string {
	max := MaxDataLength(level)
	if len(data) <= max {
		return data
	}
	return data[:max-3] + "..."
}

// IsTruncated сообщает, был ли текст усечён функцией MakeSafe.
func IsTruncated(data string) bool {
	return strings.HasSuffix(data, "...")
}
