package handlers

import (
	"net/http"
	"strings"

	"takeaway-backend/availability"
	"takeaway-backend/delivery"
	"takeaway-backend/models"
	"takeaway-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DeliveryHandler struct {
	Quoter  *delivery.Quoter
	StoreID uuid.UUID
}

type quoteRequest struct {
	Mode          models.FulfilmentMode `json:"mode" binding:"required,oneof=delivery collection"`
	Postcode      string                `json:"postcode" binding:"max=16"`
	Address       string                `json:"address" binding:"max=300"`
	SubtotalPence int64                 `json:"subtotal_pence" binding:"gte=0"`
}

// Quote prices a delivery. An undeliverable address is still a 200; the
// decision carries the reason.
func (h *DeliveryHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	decision := h.Quoter.QuoteDelivery(c.Request.Context(), delivery.Request{
		Mode:          req.Mode,
		Postcode:      req.Postcode,
		Address:       req.Address,
		SubtotalPence: req.SubtotalPence,
		StoreID:       h.StoreID,
	})
	if !isAdmin(c) {
		decision.Debug = nil
	}

	c.JSON(http.StatusOK, decision)
}

type StoreHandler struct {
	Availability *availability.Service
	Quoter       *delivery.Quoter
	StoreID      uuid.UUID
}

func (h *StoreHandler) Status(c *gin.Context) {
	status := h.Availability.IsOpen(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"is_open": status.IsOpen,
		"reason":  status.Reason,
		"now":     h.Availability.Now().Format("2006-01-02T15:04"),
	})
}

// requestedDate returns ?date= or today's date at the store.
func (h *StoreHandler) requestedDate(c *gin.Context) string {
	if date := strings.TrimSpace(c.Query("date")); date != "" {
		return date
	}
	return availability.DateKey(h.Availability.Now())
}

func (h *StoreHandler) CollectionTimes(c *gin.Context) {
	date := h.requestedDate(c)
	slots := h.Availability.CollectionTimes(c.Request.Context(), date)
	c.JSON(http.StatusOK, gin.H{
		"date":   date,
		"times":  slots.Times,
		"reason": slots.Reason,
	})
}

// DeliveryTimes lists delivery slots for a date, or none with the quote's
// reason when the postcode is outside the delivery area.
func (h *StoreHandler) DeliveryTimes(c *gin.Context) {
	date := h.requestedDate(c)
	postcode := strings.TrimSpace(c.Query("postcode"))
	if postcode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postcode is required"})
		return
	}

	decision := h.Quoter.QuoteDelivery(c.Request.Context(), delivery.Request{
		Mode:     models.ModeDelivery,
		Postcode: postcode,
		StoreID:  h.StoreID,
	})
	if !decision.IsDeliverable {
		reason := ""
		if decision.Reason != nil {
			reason = *decision.Reason
		}
		c.JSON(http.StatusOK, gin.H{
			"date":   date,
			"times":  []string{},
			"reason": reason,
		})
		return
	}

	slots := h.Availability.DeliveryTimes(c.Request.Context(), date)
	c.JSON(http.StatusOK, gin.H{
		"date":   date,
		"times":  slots.Times,
		"reason": slots.Reason,
		"zone":   decision.Zone,
	})
}
