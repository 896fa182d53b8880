// Package configstore loads the store configuration, opening hours and
// holidays that the quoting and availability engines read on every call.
package configstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"takeaway-backend/models"
)

var ErrNotFound = errors.New("store configuration not found")

// GormStore reads from the application database.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) GetStoreConfig(ctx context.Context, id uuid.UUID) (*models.StoreConfig, error) {
	var cfg models.StoreConfig
	if err := s.DB.WithContext(ctx).First(&cfg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load store config %s: %w", id, err)
	}
	return &cfg, nil
}

// FirstStoreConfig returns the oldest store configuration. Only one store is
// served at a time.
func (s *GormStore) FirstStoreConfig(ctx context.Context) (*models.StoreConfig, error) {
	var cfg models.StoreConfig
	if err := s.DB.WithContext(ctx).Order("created_at ASC").First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load store config: %w", err)
	}
	return &cfg, nil
}

func (s *GormStore) GetOpeningHours(ctx context.Context, dayOfWeek int) ([]models.OpeningHours, error) {
	var hours []models.OpeningHours
	if err := s.DB.WithContext(ctx).
		Where("day_of_week = ?", dayOfWeek).
		Order("open_time ASC").
		Find(&hours).Error; err != nil {
		return nil, fmt.Errorf("failed to load opening hours for day %d: %w", dayOfWeek, err)
	}
	return hours, nil
}

func (s *GormStore) GetHolidays(ctx context.Context, date string) ([]models.Holiday, error) {
	var holidays []models.Holiday
	if err := s.DB.WithContext(ctx).
		Where("date = ?", date).
		Order("start_time ASC").
		Find(&holidays).Error; err != nil {
		return nil, fmt.Errorf("failed to load holidays for %s: %w", date, err)
	}
	return holidays, nil
}
