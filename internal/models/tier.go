// Package models содержит доменные структуры сервиса генерации QR-кодов:
// тарифные планы, настройки пользователя, записи истории и параметры запросов.
package models

// Tier описывает тарифный план пользователя.
type Tier string

const (
	// TierFree — бесплатный тариф с лимитом на количество QR-кодов.
	TierFree Tier = "free"
	// TierPro — платный тариф без лимита генерации.
	TierPro Tier = "pro"
	// TierBusiness — платный тариф для команд, по возможностям совпадает с pro.
	TierBusiness Tier = "business"
)

// ParseTier возвращает тариф по строковому значению.
// Неизвестное значение трактуется как free — отсутствующая или битая
// запись в хранилище не должна блокировать пользователя.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierPro:
		return TierPro
	case TierBusiness:
		return TierBusiness
	default:
		return TierFree
	}
}

// IsPaid сообщает, является ли тариф платным.
func (t Tier) IsPaid() bool {
	return t == TierPro || t == TierBusiness
}
