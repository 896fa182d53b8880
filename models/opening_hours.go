package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpeningHours is one trading session. A day may have several (lunch and
// dinner) or none at all.
type OpeningHours struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	DayOfWeek int       `gorm:"not null;index" json:"day_of_week"` // 0=Sunday, 6=Saturday
	OpenTime  string    `gorm:"type:varchar(5);not null" json:"open_time"`
	CloseTime string    `gorm:"type:varchar(5);not null" json:"close_time"` // before OpenTime when the session runs past midnight
	IsClosed  bool      `json:"is_closed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OpeningHours) TableName() string {
	return "opening_hours"
}

func (o *OpeningHours) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
