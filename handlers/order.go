package handlers

import (
	"net/http"
	"strconv"

	"takeaway-backend/models"
	"takeaway-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxOrdersPerPage = 100

type OrderHandler struct {
	DB *gorm.DB
}

func paginate(c *gin.Context, query *gorm.DB) *gorm.DB {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > maxOrdersPerPage {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}

// GetOrders returns the caller's own orders, newest first.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var orders []models.Order
	query := h.DB.Preload("Items").Where("user_id = ?", userID).Order("created_at DESC")
	if err := paginate(c, query).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// ListAllOrders is the admin view, optionally filtered by status, mode or date.
func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	query := h.DB.Preload("Items").Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		if !models.IsValidStatus(models.OrderStatus(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		query = query.Where("status = ?", status)
	}
	if mode := c.Query("mode"); mode != "" {
		query = query.Where("mode = ?", mode)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("scheduled_date = ?", date)
	}

	var orders []models.Order
	if err := paginate(c, query).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	query := h.DB.Preload("Items").Where("id = ?", id)
	if !isAdmin(c) {
		userID, _ := currentUserID(c)
		query = query.Where("user_id = ?", userID)
	}

	var order models.Order
	if err := query.First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus sets any known status; there is no transition workflow.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if !models.IsValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var order models.Order
	if err := h.DB.Where("id = ?", id).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if err := h.DB.Model(&order).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	h.DB.Preload("Items").First(&order, "id = ?", order.ID)
	c.JSON(http.StatusOK, order)
}
