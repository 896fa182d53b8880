package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"takeaway-backend/cart"
	"takeaway-backend/models"
	"takeaway-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartHandler struct {
	DB    *gorm.DB
	Carts *cart.Store
}

type cartLine struct {
	MenuItemID     uuid.UUID `json:"menu_item_id"`
	Name           string    `json:"name"`
	UnitPricePence int64     `json:"unit_price_pence"`
	Quantity       int       `json:"quantity"`
	LineTotalPence int64     `json:"line_total_pence"`
	IsAvailable    bool      `json:"is_available"`
}

// pricedCart is a cart with current menu prices applied. Lines for items that
// are no longer on sale stay visible but do not count towards the subtotal.
type pricedCart struct {
	ID            uuid.UUID  `json:"id"`
	Items         []cartLine `json:"items"`
	ItemCount     int        `json:"item_count"`
	SubtotalPence int64      `json:"subtotal_pence"`
}

func (p pricedCart) hasUnavailable() bool {
	for _, l := range p.Items {
		if !l.IsAvailable {
			return true
		}
	}
	return false
}

func priceCart(db *gorm.DB, ct cart.Cart) (pricedCart, error) {
	priced := pricedCart{ID: ct.ID, Items: make([]cartLine, 0, len(ct.Items))}
	if len(ct.Items) == 0 {
		return priced, nil
	}

	ids := make([]uuid.UUID, len(ct.Items))
	for i, l := range ct.Items {
		ids[i] = l.MenuItemID
	}
	var items []models.MenuItem
	if err := db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return pricedCart{}, err
	}
	byID := make(map[uuid.UUID]models.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	for _, l := range ct.Items {
		item, found := byID[l.MenuItemID]
		line := cartLine{
			MenuItemID:  l.MenuItemID,
			Quantity:    l.Quantity,
			IsAvailable: found && item.IsAvailable,
		}
		if found {
			line.Name = item.Name
			line.UnitPricePence = item.PricePence
			line.LineTotalPence = item.PricePence * int64(l.Quantity)
		}
		if line.IsAvailable {
			priced.SubtotalPence += line.LineTotalPence
			priced.ItemCount += l.Quantity
		}
		priced.Items = append(priced.Items, line)
	}
	return priced, nil
}

func (h *CartHandler) respond(c *gin.Context, status int, ct cart.Cart) {
	priced, err := priceCart(h.DB, ct)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to price cart"})
		return
	}
	c.JSON(status, priced)
}

func (h *CartHandler) cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
	case errors.Is(err, cart.ErrItemNotInCart):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
	case errors.Is(err, cart.ErrQuantityLimit):
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("At most %d of each item per order", cart.MaxQuantity)})
	case errors.Is(err, cart.ErrCheckoutInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "Cart is being checked out"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
	}
}

func (h *CartHandler) CreateCart(c *gin.Context) {
	h.respond(c, http.StatusCreated, h.Carts.Create())
}

func (h *CartHandler) GetCart(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	ct, found := h.Carts.Get(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
		return
	}
	h.respond(c, http.StatusOK, ct)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		MenuItemID uuid.UUID `json:"menu_item_id" binding:"required"`
		Quantity   int       `json:"quantity" binding:"required,gte=1,lte=99"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var item models.MenuItem
	if err := h.DB.Where("id = ? AND is_available = ?", req.MenuItemID, true).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	ct, err := h.Carts.AddItem(id, item.ID, req.Quantity)
	if err != nil {
		h.cartError(c, err)
		return
	}
	h.respond(c, http.StatusOK, ct)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}

	var req struct {
		Quantity *int `json:"quantity" binding:"required,gte=0,lte=99"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	ct, err := h.Carts.SetQuantity(id, itemID, *req.Quantity)
	if err != nil {
		h.cartError(c, err)
		return
	}
	h.respond(c, http.StatusOK, ct)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "itemId")
	if !ok {
		return
	}

	ct, err := h.Carts.RemoveItem(id, itemID)
	if err != nil {
		h.cartError(c, err)
		return
	}
	h.respond(c, http.StatusOK, ct)
}

func (h *CartHandler) DeleteCart(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if _, found := h.Carts.Get(id); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
		return
	}
	h.Carts.Delete(id)
	c.JSON(http.StatusOK, gin.H{"message": "Cart deleted"})
}
