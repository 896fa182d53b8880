package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FulfilmentMode string

const (
	ModeDelivery   FulfilmentMode = "delivery"
	ModeCollection FulfilmentMode = "collection"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var orderStatuses = map[OrderStatus]bool{
	OrderStatusPending:        true,
	OrderStatusConfirmed:      true,
	OrderStatusPreparing:      true,
	OrderStatusReady:          true,
	OrderStatusOutForDelivery: true,
	OrderStatusCompleted:      true,
	OrderStatusCancelled:      true,
}

// IsValidStatus reports whether s is a known status. Any known status may be
// set from any other; there is no transition graph.
func IsValidStatus(s OrderStatus) bool {
	return orderStatuses[s]
}

type Order struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID           *uuid.UUID     `gorm:"type:uuid;index" json:"user_id,omitempty"` // nil for guest checkout
	OrderNumber      string         `gorm:"uniqueIndex;not null" json:"order_number"`
	Status           OrderStatus    `gorm:"type:varchar(32);not null" json:"status"`
	Mode             FulfilmentMode `gorm:"type:varchar(16);not null" json:"mode"`
	CustomerName     string         `gorm:"not null" json:"customer_name"`
	CustomerEmail    string         `gorm:"not null;index" json:"customer_email"`
	CustomerPhone    string         `json:"customer_phone"`
	Postcode         string         `json:"postcode"`
	Address          string         `json:"address"`
	ScheduledDate    string         `gorm:"type:varchar(10)" json:"scheduled_date"`
	ScheduledTime    string         `gorm:"type:varchar(5)" json:"scheduled_time"` // empty means as soon as possible
	DeliveryZone     string         `json:"delivery_zone,omitempty"`
	SubtotalPence    int64          `gorm:"not null" json:"subtotal_pence"`
	DeliveryFeePence int64          `gorm:"not null" json:"delivery_fee_pence"`
	TotalPence       int64          `gorm:"not null" json:"total_pence"`
	Notes            string         `json:"notes"`
	Items            []OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

type OrderItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	MenuItemID     uuid.UUID `gorm:"type:uuid;not null;index" json:"menu_item_id"`
	Name           string    `gorm:"not null" json:"name"` // snapshot at time of order
	UnitPricePence int64     `gorm:"not null" json:"unit_price_pence"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	LineTotalPence int64     `gorm:"not null" json:"line_total_pence"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = "ORD" + time.Now().Format("20060102150405") + o.ID.String()[:8]
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
