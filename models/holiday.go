package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Holiday closes the store between StartTime and EndTime on Date. Leaving both
// times empty closes the whole day.
type Holiday struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Date      string    `gorm:"type:varchar(10);not null;index" json:"date"`
	StartTime string    `gorm:"type:varchar(5)" json:"start_time"`
	EndTime   string    `gorm:"type:varchar(5)" json:"end_time"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Holiday) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
