package handlers

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"takeaway-backend/availability"
	"takeaway-backend/cart"
	"takeaway-backend/delivery"
	"takeaway-backend/models"
	"takeaway-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	AccountGuest    = "guest"
	AccountLogin    = "login"
	AccountRegister = "register"
)

type CheckoutHandler struct {
	DB           *gorm.DB
	Carts        *cart.Store
	Quoter       *delivery.Quoter
	Availability *availability.Service
	StoreID      uuid.UUID
	Logger       *zap.Logger
}

type checkoutRequest struct {
	CartID        uuid.UUID             `json:"cart_id" binding:"required"`
	Mode          models.FulfilmentMode `json:"mode" binding:"required,oneof=delivery collection"`
	Account       string                `json:"account" binding:"omitempty,oneof=guest login register"`
	Name          string                `json:"name" binding:"max=100"`
	Email         string                `json:"email" binding:"omitempty,email"`
	Phone         string                `json:"phone" binding:"max=30"`
	Password      string                `json:"password"`
	Postcode      string                `json:"postcode" binding:"max=16"`
	Address       string                `json:"address" binding:"max=300"`
	ScheduledDate string                `json:"scheduled_date" binding:"omitempty,ymd"`
	ScheduledTime string                `json:"scheduled_time" binding:"omitempty,hhmm"`
	Notes         string                `json:"notes" binding:"max=500"`
}

type checkoutError struct {
	status  int
	message string
}

func (e *checkoutError) Error() string { return e.message }

func fail(status int, message string) error {
	return &checkoutError{status: status, message: message}
}

// customer is who the order is for. user is nil for guests and for accounts
// that still have to be created inside the order transaction.
type customer struct {
	user     *models.User
	register bool
	name     string
	email    string
	phone    string
	password string
}

func (h *CheckoutHandler) resolveCustomer(c *gin.Context, req checkoutRequest) (*customer, error) {
	if userID, ok := currentUserID(c); ok {
		var user models.User
		if err := h.DB.Where("id = ?", userID).First(&user).Error; err != nil {
			return nil, fail(http.StatusUnauthorized, "User not found")
		}
		return &customer{
			user:  &user,
			name:  firstNonEmpty(req.Name, user.Name),
			email: user.Email,
			phone: firstNonEmpty(req.Phone, user.Phone),
		}, nil
	}

	switch req.Account {
	case AccountGuest:
		if req.Name == "" || req.Email == "" || req.Phone == "" {
			return nil, fail(http.StatusBadRequest, "name, email and phone are required for guest checkout")
		}
		return &customer{name: req.Name, email: strings.ToLower(req.Email), phone: req.Phone}, nil

	case AccountLogin:
		if req.Email == "" || req.Password == "" {
			return nil, fail(http.StatusBadRequest, "email and password are required")
		}
		user, err := authenticate(h.DB, req.Email, req.Password)
		if errors.Is(err, errInvalidCredentials) {
			return nil, fail(http.StatusUnauthorized, "Invalid credentials")
		}
		if err != nil {
			return nil, err
		}
		return &customer{
			user:  user,
			name:  firstNonEmpty(req.Name, user.Name),
			email: user.Email,
			phone: firstNonEmpty(req.Phone, user.Phone),
		}, nil

	case AccountRegister:
		if req.Name == "" || req.Email == "" || req.Phone == "" {
			return nil, fail(http.StatusBadRequest, "name, email and phone are required to register")
		}
		if len(req.Password) < 8 {
			return nil, fail(http.StatusBadRequest, "password must be at least 8 characters")
		}
		return &customer{register: true, name: req.Name, email: strings.ToLower(req.Email), phone: req.Phone, password: req.Password}, nil
	}

	return nil, fail(http.StatusBadRequest, "account must be one of: guest login register")
}

func (h *CheckoutHandler) slotsFor(c *gin.Context, mode models.FulfilmentMode, date string) availability.Slots {
	if mode == models.ModeDelivery {
		return h.Availability.DeliveryTimes(c.Request.Context(), date)
	}
	return h.Availability.CollectionTimes(c.Request.Context(), date)
}

// checkSchedule makes sure the order can be fulfilled when asked. An empty
// time means as soon as possible, which needs the store to be open now and
// at least one slot left today for the mode.
func (h *CheckoutHandler) checkSchedule(c *gin.Context, mode models.FulfilmentMode, date, clock string) (string, error) {
	today := availability.DateKey(h.Availability.Now())
	if date == "" {
		date = today
	}

	if clock == "" {
		if date != today {
			return "", fail(http.StatusBadRequest, "scheduled_time is required for future dates")
		}
		if status := h.Availability.IsOpen(c.Request.Context()); !status.IsOpen {
			return "", fail(http.StatusBadRequest, "Store is closed: "+status.Reason)
		}
		if slots := h.slotsFor(c, mode, today); len(slots.Times) == 0 {
			return "", fail(http.StatusBadRequest, "No "+string(mode)+" times left today")
		}
		return date, nil
	}

	slots := h.slotsFor(c, mode, date)
	if !slices.Contains(slots.Times, clock) {
		return "", fail(http.StatusBadRequest, "Requested time is not available")
	}
	return date, nil
}

func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	order, token, err := h.checkout(c, req)
	if err != nil {
		var ce *checkoutError
		if errors.As(err, &ce) {
			c.JSON(ce.status, gin.H{"error": ce.message})
			return
		}
		h.Logger.Error("checkout failed", zap.Stringer("cart_id", req.CartID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	response := gin.H{"order": order}
	if token != "" {
		response["token"] = token
	}
	c.JSON(http.StatusCreated, response)
}

func (h *CheckoutHandler) checkout(c *gin.Context, req checkoutRequest) (*models.Order, string, error) {
	ct, err := h.Carts.Claim(req.CartID)
	switch {
	case errors.Is(err, cart.ErrNotFound):
		return nil, "", fail(http.StatusNotFound, "Cart not found")
	case errors.Is(err, cart.ErrCheckoutInProgress):
		return nil, "", fail(http.StatusConflict, "Checkout already in progress for this cart")
	case err != nil:
		return nil, "", err
	}
	placed := false
	defer func() {
		if !placed {
			h.Carts.Release(ct.ID)
		}
	}()

	priced, err := priceCart(h.DB, ct)
	if err != nil {
		return nil, "", err
	}
	if len(priced.Items) == 0 {
		return nil, "", fail(http.StatusBadRequest, "Cart is empty")
	}
	if priced.hasUnavailable() {
		return nil, "", fail(http.StatusBadRequest, "Some items in your cart are no longer available")
	}

	cust, err := h.resolveCustomer(c, req)
	if err != nil {
		return nil, "", err
	}

	if req.Mode == models.ModeDelivery && strings.TrimSpace(req.Postcode) == "" {
		return nil, "", fail(http.StatusBadRequest, "postcode is required for delivery")
	}
	decision := h.Quoter.QuoteDelivery(c.Request.Context(), delivery.Request{
		Mode:          req.Mode,
		Postcode:      req.Postcode,
		Address:       req.Address,
		SubtotalPence: priced.SubtotalPence,
		StoreID:       h.StoreID,
	})
	if !decision.IsDeliverable {
		reason := delivery.ReasonCalculationFailure
		if decision.Reason != nil {
			reason = *decision.Reason
		}
		return nil, "", fail(http.StatusBadRequest, reason)
	}

	date, err := h.checkSchedule(c, req.Mode, req.ScheduledDate, req.ScheduledTime)
	if err != nil {
		return nil, "", err
	}

	order := models.Order{
		Mode:             req.Mode,
		CustomerName:     cust.name,
		CustomerEmail:    cust.email,
		CustomerPhone:    cust.phone,
		ScheduledDate:    date,
		ScheduledTime:    req.ScheduledTime,
		SubtotalPence:    priced.SubtotalPence,
		DeliveryFeePence: decision.FeePence,
		TotalPence:       priced.SubtotalPence + decision.FeePence,
		Notes:            req.Notes,
	}
	if req.Mode == models.ModeDelivery {
		order.Postcode = req.Postcode
		order.Address = req.Address
		if decision.Zone != nil {
			order.DeliveryZone = *decision.Zone
		}
	}
	for _, line := range priced.Items {
		order.Items = append(order.Items, models.OrderItem{
			MenuItemID:     line.MenuItemID,
			Name:           line.Name,
			UnitPricePence: line.UnitPricePence,
			Quantity:       line.Quantity,
			LineTotalPence: line.LineTotalPence,
		})
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if cust.register {
			user, err := createCustomer(tx, cust.email, cust.password, cust.name, cust.phone)
			if errors.Is(err, errEmailTaken) {
				return fail(http.StatusConflict, "Email already registered")
			}
			if err != nil {
				return err
			}
			cust.user = user
		}
		if cust.user != nil {
			order.UserID = &cust.user.ID
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, "", err
	}

	placed = true
	h.Carts.Delete(ct.ID)
	h.Logger.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("mode", string(order.Mode)),
		zap.Int64("total_pence", order.TotalPence),
	)

	var token string
	if cust.user != nil && (cust.register || req.Account == AccountLogin) {
		token, err = utils.GenerateToken(cust.user.ID, cust.user.Email, cust.user.Role)
		if err != nil {
			h.Logger.Warn("failed to issue token after checkout", zap.Error(err))
			token = ""
		}
	}
	return &order, token, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
