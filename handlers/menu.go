package handlers

import (
	"net/http"

	"takeaway-backend/models"
	"takeaway-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MenuHandler struct {
	DB *gorm.DB
}

type menuItemRequest struct {
	CategoryID   uuid.UUID `json:"category_id" binding:"required"`
	Name         string    `json:"name" binding:"required,max=200"`
	Description  string    `json:"description" binding:"max=1000"`
	PricePence   int64     `json:"price_pence" binding:"gt=0"`
	ImageURL     string    `json:"image_url" binding:"omitempty,url"`
	IsAvailable  *bool     `json:"is_available"`
	IsVegetarian bool      `json:"is_vegetarian"`
	IsVegan      bool      `json:"is_vegan"`
	SortOrder    int       `json:"sort_order"`
}

func (r menuItemRequest) apply(item *models.MenuItem) {
	item.CategoryID = r.CategoryID
	item.Name = r.Name
	item.Description = r.Description
	item.PricePence = r.PricePence
	item.ImageURL = r.ImageURL
	item.IsVegetarian = r.IsVegetarian
	item.IsVegan = r.IsVegan
	item.SortOrder = r.SortOrder
	if r.IsAvailable != nil {
		item.IsAvailable = *r.IsAvailable
	}
}

// GetMenu lists categories with their available items. Empty categories are
// left out.
func (h *MenuHandler) GetMenu(c *gin.Context) {
	var categories []models.Category
	err := h.DB.
		Preload("MenuItems", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_available = ?", true).Order("sort_order ASC, name ASC")
		}).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch menu"})
		return
	}

	menu := make([]models.Category, 0, len(categories))
	for _, cat := range categories {
		if len(cat.MenuItems) > 0 {
			menu = append(menu, cat)
		}
	}

	c.JSON(http.StatusOK, menu)
}

func (h *MenuHandler) GetMenuItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var item models.MenuItem
	if err := h.DB.Preload("Category").Where("id = ?", id).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *MenuHandler) categoryExists(id uuid.UUID) bool {
	var count int64
	h.DB.Model(&models.Category{}).Where("id = ?", id).Count(&count)
	return count > 0
}

func (h *MenuHandler) CreateMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if !h.categoryExists(req.CategoryID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		return
	}

	item := models.MenuItem{IsAvailable: true}
	req.apply(&item)

	if err := h.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu item"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *MenuHandler) UpdateMenuItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var item models.MenuItem
	if err := h.DB.Where("id = ?", id).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if !h.categoryExists(req.CategoryID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		return
	}

	req.apply(&item)
	if err := h.DB.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *MenuHandler) DeleteMenuItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	result := h.DB.Delete(&models.MenuItem{}, "id = ?", id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu item"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}
