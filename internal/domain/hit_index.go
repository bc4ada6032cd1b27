package domain

import "time"

// HitIndexEntry представляет запись глобального индекса utm_id.
// Запись создается вместе со ссылкой; пиксельный endpoint проверяет
// валидность utm_id только по этому индексу, независимо от владельца.
type HitIndexEntry struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	UTMID     string    `gorm:"column:utm_id;size:36;uniqueIndex;not null" json:"utm_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName возвращает название таблицы для GORM
func (HitIndexEntry) TableName() string {
	return "hit_index"
}
