package domain

import "time"

// HitEvent представляет одно открытие трекинг-пикселя получателем
type HitEvent struct {
	ID        int64  `gorm:"primaryKey;column:id" json:"id"`
	UTMID     string `gorm:"column:utm_id;size:36;not null;index" json:"utm_id"`
	IPAddress string `gorm:"column:ip_address;size:45" json:"ip_address"`
	UserAgent string `gorm:"column:user_agent;type:text;not null" json:"user_agent"`
	// AccessedOn хранится в текстовой форме record store (см. RecordTimeLayout)
	AccessedOn string `gorm:"column:accessed_on;size:40;not null" json:"accessed_on"`

	// Обогащение по User-Agent, заполняется при записи хита
	DeviceType *string `gorm:"column:device_type;size:10" json:"device_type,omitempty"`
	Browser    *string `gorm:"column:browser;size:50" json:"browser,omitempty"`
	OS         *string `gorm:"column:os;size:50" json:"os,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (HitEvent) TableName() string {
	return "hit_events"
}

// AccessedAt парсит AccessedOn; ошибка при отклонении от формата
func (h *HitEvent) AccessedAt() (time.Time, error) {
	return ParseRecordTime(h.AccessedOn)
}
