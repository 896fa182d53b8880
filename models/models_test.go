package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&User{},
		&Category{},
		&MenuItem{},
		&StoreConfig{},
		&OpeningHours{},
		&Holiday{},
		&Order{},
		&OrderItem{},
	); err != nil {
		t.Fatal(err)
	}
	return db
}

// ==================== BeforeCreate Hook Tests ====================

func TestUserBeforeCreateGeneratesUUID(t *testing.T) {
	db := setupTestDB(t)
	user := User{Email: "test@test.com", Password: "hash", Name: "Test"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	if user.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
	if user.Role != RoleCustomer {
		t.Errorf("expected default role %q, got %q", RoleCustomer, user.Role)
	}
}

func TestUserBeforeCreatePreservesUUID(t *testing.T) {
	db := setupTestDB(t)
	existingID := uuid.New()
	user := User{ID: existingID, Email: "preserve@test.com", Password: "hash", Name: "Test", Role: RoleAdmin}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	if user.ID != existingID {
		t.Error("UUID should have been preserved")
	}
	if user.Role != RoleAdmin {
		t.Errorf("expected role to be preserved, got %q", user.Role)
	}
}

func TestCategoryAndMenuItemBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	cat := Category{Name: "Starters"}
	db.Create(&cat)
	if cat.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}

	item := MenuItem{CategoryID: cat.ID, Name: "Onion Bhaji", PricePence: 395, IsAvailable: true}
	db.Create(&item)
	if item.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
}

func TestOpeningHoursAndHolidayBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	oh := OpeningHours{DayOfWeek: 5, OpenTime: "16:00", CloseTime: "00:00"}
	db.Create(&oh)
	if oh.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}

	h := Holiday{Date: "2026-12-25", Reason: "Christmas"}
	db.Create(&h)
	if h.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
}

func TestOrderBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	order := Order{
		Mode:          ModeCollection,
		CustomerName:  "Guest",
		CustomerEmail: "guest@test.com",
		SubtotalPence: 1000,
		TotalPence:    1000,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatal(err)
	}
	if order.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
	if order.OrderNumber == "" {
		t.Error("OrderNumber should have been generated")
	}
	if order.Status != OrderStatusPending {
		t.Errorf("expected status pending, got %q", order.Status)
	}
	if order.UserID != nil {
		t.Error("guest order should not have a user")
	}
}

// ==================== StoreConfig Tests ====================

func TestStoreConfigRulesPersistAsJSON(t *testing.T) {
	db := setupTestDB(t)
	cfg := StoreConfig{
		Name:           "Test Kitchen",
		ActiveRuleType: RuleTypePostcode,
		PostcodeRules: PostcodeRules{
			NormalizeUKPostcode:             true,
			DefaultMinOrderThreshold:        decimal.NewFromInt(10),
			DefaultExtraFeeIfBelowThreshold: decimal.NewFromInt(1),
			Areas: []PostcodeArea{
				{Pattern: "WF9 4", Fee: decimal.RequireFromString("2.30")},
				{Pattern: "WF9", Fee: decimal.RequireFromString("5.00")},
			},
		},
		DistanceRules: DistanceRules{
			Unit:            "miles",
			NoServiceBeyond: 3,
			Bands: []DistanceBand{
				{MaxDistance: 1, FeeIfSubtotalGte: decimal.RequireFromString("1.50"), FeeIfSubtotalLt: decimal.RequireFromString("2.50")},
			},
		},
		DeliveryLeadTimeMinutes: 45,
	}
	if err := db.Create(&cfg).Error; err != nil {
		t.Fatal(err)
	}

	var loaded StoreConfig
	if err := db.First(&loaded, "id = ?", cfg.ID).Error; err != nil {
		t.Fatal(err)
	}
	if len(loaded.PostcodeRules.Areas) != 2 {
		t.Fatalf("expected 2 areas, got %d", len(loaded.PostcodeRules.Areas))
	}
	if loaded.PostcodeRules.Areas[0].Pattern != "WF9 4" {
		t.Errorf("expected area order to be preserved, got %q first", loaded.PostcodeRules.Areas[0].Pattern)
	}
	if !loaded.PostcodeRules.Areas[0].Fee.Equal(decimal.RequireFromString("2.3")) {
		t.Errorf("expected fee 2.30, got %s", loaded.PostcodeRules.Areas[0].Fee)
	}
	if loaded.DistanceRules.NoServiceBeyond != 3 || len(loaded.DistanceRules.Bands) != 1 {
		t.Errorf("distance rules not restored: %+v", loaded.DistanceRules)
	}
	if loaded.DeliveryLeadTimeMinutes != 45 {
		t.Errorf("expected lead time 45, got %d", loaded.DeliveryLeadTimeMinutes)
	}
}

func TestRuleTypeIsValid(t *testing.T) {
	if !RuleTypePostcode.IsValid() || !RuleTypeDistance.IsValid() {
		t.Error("postcode and distance should be valid rule types")
	}
	if RuleType("radius").IsValid() {
		t.Error("unknown rule type should be invalid")
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled} {
		if !IsValidStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if IsValidStatus("lost") {
		t.Error("expected unknown status to be invalid")
	}
}
