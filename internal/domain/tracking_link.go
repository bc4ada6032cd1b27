package domain

import "time"

// TrackingLink представляет сгенерированную пиксельную ссылку
type TrackingLink struct {
	ID          int64  `gorm:"primaryKey;column:id" json:"id"`
	UTMID       string `gorm:"column:utm_id;size:36;uniqueIndex;not null" json:"utm_id"`
	UserID      int64  `gorm:"column:user_id;not null;index" json:"user_id"`
	MailTitle   string `gorm:"column:mail_title;type:text;not null" json:"mail_title"`
	MailAddress string `gorm:"column:mail_address;type:text;not null" json:"mail_address"`
	// GeneratedOn хранится в текстовой форме record store
	// (см. RecordTimeLayout), immutable после создания
	GeneratedOn string `gorm:"column:generated_on;size:40;not null" json:"generated_on"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (TrackingLink) TableName() string {
	return "tracking_links"
}

// GeneratedAt парсит GeneratedOn; ошибка при отклонении от формата
func (l *TrackingLink) GeneratedAt() (time.Time, error) {
	return ParseRecordTime(l.GeneratedOn)
}
