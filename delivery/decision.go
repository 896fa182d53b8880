// Package delivery prices delivery requests against the store's active rule
// set and returns a uniform Decision whichever rules produced it.
package delivery

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"takeaway-backend/models"
)

const (
	ReasonInvalidPostcode    = "Invalid postcode"
	ReasonOutOfArea          = "Out of delivery area"
	ReasonGeocodeFailed      = "Unable to geocode address"
	ReasonRouteFailed        = "Unable to calculate route"
	ReasonOutOfRange         = "Out of delivery range"
	ReasonStoreNotFound      = "Store configuration not found"
	ReasonInvalidRuleType    = "Invalid delivery rule type"
	ReasonCalculationFailure = "Error calculating delivery fee"
)

type Request struct {
	Mode          models.FulfilmentMode `json:"mode"`
	Postcode      string                `json:"postcode"`
	Address       string                `json:"address"`
	SubtotalPence int64                 `json:"subtotal_pence"`
	StoreID       uuid.UUID             `json:"store_id"`
}

// Decision is the priced outcome of a quote. Debug is diagnostic only and its
// shape may change between engines.
type Decision struct {
	IsDeliverable bool           `json:"is_deliverable"`
	FeePence      int64          `json:"fee_pence"`
	MinOrderPence int64          `json:"min_order_pence"`
	Zone          *string        `json:"zone"`
	Reason        *string        `json:"reason"`
	Debug         map[string]any `json:"debug,omitempty"`
}

func rejected(reason string, debug map[string]any) Decision {
	return Decision{IsDeliverable: false, Reason: &reason, Debug: debug}
}

func toPence(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromPence(pence int64) decimal.Decimal {
	return decimal.New(pence, -2)
}
