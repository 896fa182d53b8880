package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MenuItem struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CategoryID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"category_id"`
	Category     *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name         string         `gorm:"not null" json:"name"`
	Description  string         `json:"description"`
	PricePence   int64          `gorm:"not null" json:"price_pence"`
	ImageURL     string         `json:"image_url"`
	IsAvailable  bool           `gorm:"index" json:"is_available"`
	IsVegetarian bool           `json:"is_vegetarian"`
	IsVegan      bool           `json:"is_vegan"`
	SortOrder    int            `json:"sort_order"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
