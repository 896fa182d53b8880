package configstore

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"takeaway-backend/models"
)

type fileDocument struct {
	Store struct {
		ID                        string               `yaml:"id"`
		Name                      string               `yaml:"name"`
		ActiveRuleType            models.RuleType      `yaml:"active_rule_type"`
		PostcodeRules             models.PostcodeRules `yaml:"postcode_rules"`
		DistanceRules             models.DistanceRules `yaml:"distance_rules"`
		Latitude                  float64              `yaml:"latitude"`
		Longitude                 float64              `yaml:"longitude"`
		CollectionLeadTimeMinutes int                  `yaml:"collection_lead_time_minutes"`
		CollectionBufferMinutes   int                  `yaml:"collection_buffer_minutes"`
		DeliveryLeadTimeMinutes   int                  `yaml:"delivery_lead_time_minutes"`
		DeliveryBufferMinutes     int                  `yaml:"delivery_buffer_minutes"`
	} `yaml:"store"`
	OpeningHours []struct {
		DayOfWeek int    `yaml:"day_of_week"`
		OpenTime  string `yaml:"open_time"`
		CloseTime string `yaml:"close_time"`
		IsClosed  bool   `yaml:"is_closed"`
	} `yaml:"opening_hours"`
	Holidays []struct {
		Date      string `yaml:"date"`
		StartTime string `yaml:"start_time"`
		EndTime   string `yaml:"end_time"`
		Reason    string `yaml:"reason"`
	} `yaml:"holidays"`
}

// FileStore serves a store definition read once from a YAML file. It is
// read-only; admin changes need the database store.
type FileStore struct {
	config   models.StoreConfig
	hours    []models.OpeningHours
	holidays []models.Holiday
}

func LoadFile(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read store config file: %w", err)
	}
	return ParseFile(data)
}

func ParseFile(data []byte) (*FileStore, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse store config file: %w", err)
	}

	id := uuid.Nil
	if doc.Store.ID != "" {
		parsed, err := uuid.Parse(doc.Store.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid store id %q: %w", doc.Store.ID, err)
		}
		id = parsed
	}
	if id == uuid.Nil {
		id = uuid.NewSHA1(uuid.NameSpaceURL, []byte("store:"+doc.Store.Name))
	}

	if !doc.Store.ActiveRuleType.IsValid() {
		return nil, fmt.Errorf("invalid active_rule_type %q", doc.Store.ActiveRuleType)
	}
	if err := doc.Store.PostcodeRules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid postcode_rules: %w", err)
	}
	if err := doc.Store.DistanceRules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid distance_rules: %w", err)
	}

	fs := &FileStore{
		config: models.StoreConfig{
			ID:                        id,
			Name:                      doc.Store.Name,
			ActiveRuleType:            doc.Store.ActiveRuleType,
			PostcodeRules:             doc.Store.PostcodeRules,
			DistanceRules:             doc.Store.DistanceRules,
			Latitude:                  doc.Store.Latitude,
			Longitude:                 doc.Store.Longitude,
			CollectionLeadTimeMinutes: doc.Store.CollectionLeadTimeMinutes,
			CollectionBufferMinutes:   doc.Store.CollectionBufferMinutes,
			DeliveryLeadTimeMinutes:   doc.Store.DeliveryLeadTimeMinutes,
			DeliveryBufferMinutes:     doc.Store.DeliveryBufferMinutes,
		},
	}
	if fs.config.DistanceRules.Unit == "" {
		fs.config.DistanceRules.Unit = "miles"
	}

	for _, h := range doc.OpeningHours {
		fs.hours = append(fs.hours, models.OpeningHours{
			ID:        uuid.New(),
			DayOfWeek: h.DayOfWeek,
			OpenTime:  h.OpenTime,
			CloseTime: h.CloseTime,
			IsClosed:  h.IsClosed,
		})
	}
	for _, h := range doc.Holidays {
		fs.holidays = append(fs.holidays, models.Holiday{
			ID:        uuid.New(),
			Date:      h.Date,
			StartTime: h.StartTime,
			EndTime:   h.EndTime,
			Reason:    h.Reason,
		})
	}
	return fs, nil
}

// StoreID is the id configured in the file, or one derived from the store
// name when the file leaves it out.
func (s *FileStore) StoreID() uuid.UUID {
	return s.config.ID
}

func (s *FileStore) GetStoreConfig(_ context.Context, id uuid.UUID) (*models.StoreConfig, error) {
	if id != s.config.ID {
		return nil, ErrNotFound
	}
	cfg := s.config
	cfg.PostcodeRules.Areas = slices.Clone(s.config.PostcodeRules.Areas)
	cfg.DistanceRules.Bands = slices.Clone(s.config.DistanceRules.Bands)
	return &cfg, nil
}

func (s *FileStore) GetOpeningHours(_ context.Context, dayOfWeek int) ([]models.OpeningHours, error) {
	var rows []models.OpeningHours
	for _, h := range s.hours {
		if h.DayOfWeek == dayOfWeek {
			rows = append(rows, h)
		}
	}
	return rows, nil
}

func (s *FileStore) GetHolidays(_ context.Context, date string) ([]models.Holiday, error) {
	var rows []models.Holiday
	for _, h := range s.holidays {
		if h.Date == date {
			rows = append(rows, h)
		}
	}
	return rows, nil
}
