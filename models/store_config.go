package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RuleType string

const (
	RuleTypePostcode RuleType = "postcode"
	RuleTypeDistance RuleType = "distance"
)

func (r RuleType) IsValid() bool {
	return r == RuleTypePostcode || r == RuleTypeDistance
}

// PostcodeArea charges Fee for every postcode starting with Pattern.
type PostcodeArea struct {
	Pattern string          `json:"pattern" yaml:"pattern"`
	Fee     decimal.Decimal `json:"fee" yaml:"fee"`
}

type PostcodeRules struct {
	NormalizeUKPostcode             bool            `json:"normalize_uk_postcode" yaml:"normalize_uk_postcode"`
	DefaultMinOrderThreshold        decimal.Decimal `json:"default_min_order_threshold" yaml:"default_min_order_threshold"`
	DefaultExtraFeeIfBelowThreshold decimal.Decimal `json:"default_extra_fee_if_below_threshold" yaml:"default_extra_fee_if_below_threshold"`
	Areas                           []PostcodeArea  `json:"areas" yaml:"areas"`
}

type DistanceBand struct {
	MaxDistance      float64         `json:"max_distance" yaml:"max_distance"`
	FeeIfSubtotalGte decimal.Decimal `json:"fee_if_subtotal_gte" yaml:"fee_if_subtotal_gte"`
	FeeIfSubtotalLt  decimal.Decimal `json:"fee_if_subtotal_lt" yaml:"fee_if_subtotal_lt"`
}

// DistanceRules prices delivery by driving distance. Bands are ordered by
// MaxDistance ascending.
type DistanceRules struct {
	Unit            string         `json:"unit" yaml:"unit"`
	Bands           []DistanceBand `json:"bands" yaml:"bands"`
	NoServiceBeyond float64        `json:"no_service_beyond" yaml:"no_service_beyond"`
}

func (r PostcodeRules) Validate() error {
	if r.DefaultMinOrderThreshold.IsNegative() {
		return fmt.Errorf("default_min_order_threshold must not be negative")
	}
	if r.DefaultExtraFeeIfBelowThreshold.IsNegative() {
		return fmt.Errorf("default_extra_fee_if_below_threshold must not be negative")
	}
	for i, a := range r.Areas {
		if strings.TrimSpace(a.Pattern) == "" {
			return fmt.Errorf("areas[%d]: pattern is required", i)
		}
		if a.Fee.IsNegative() {
			return fmt.Errorf("areas[%d]: fee must not be negative", i)
		}
	}
	return nil
}

func (r DistanceRules) Validate() error {
	if r.Unit != "" && r.Unit != "miles" {
		return fmt.Errorf("unit must be miles")
	}
	if r.NoServiceBeyond < 0 {
		return fmt.Errorf("no_service_beyond must not be negative")
	}
	for i, b := range r.Bands {
		if b.MaxDistance <= 0 {
			return fmt.Errorf("bands[%d]: max_distance must be positive", i)
		}
		if b.FeeIfSubtotalGte.IsNegative() || b.FeeIfSubtotalLt.IsNegative() {
			return fmt.Errorf("bands[%d]: fees must not be negative", i)
		}
	}
	return nil
}

// StoreConfig holds both delivery rule sets; only ActiveRuleType is consulted.
type StoreConfig struct {
	ID                        uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	Name                      string        `gorm:"not null" json:"name"`
	ActiveRuleType            RuleType      `gorm:"type:varchar(16);not null" json:"active_rule_type"`
	PostcodeRules             PostcodeRules `gorm:"type:text;serializer:json" json:"postcode_rules"`
	DistanceRules             DistanceRules `gorm:"type:text;serializer:json" json:"distance_rules"`
	Latitude                  float64       `json:"latitude"`
	Longitude                 float64       `json:"longitude"`
	CollectionLeadTimeMinutes int           `json:"collection_lead_time_minutes"`
	CollectionBufferMinutes   int           `json:"collection_buffer_minutes"`
	DeliveryLeadTimeMinutes   int           `json:"delivery_lead_time_minutes"`
	DeliveryBufferMinutes     int           `json:"delivery_buffer_minutes"`
	CreatedAt                 time.Time     `json:"created_at"`
	UpdatedAt                 time.Time     `json:"updated_at"`
}

func (s *StoreConfig) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
