package handlers

import (
	"context"
	"errors"
	"net/http"

	"takeaway-backend/availability"
	"takeaway-backend/configstore"
	"takeaway-backend/models"
	"takeaway-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type storeConfigReader interface {
	GetStoreConfig(ctx context.Context, id uuid.UUID) (*models.StoreConfig, error)
}

// StoreAdminHandler edits the store configuration, opening hours and
// holidays. With ReadOnly set (file-backed configuration) every write is
// refused.
type StoreAdminHandler struct {
	DB       *gorm.DB
	Configs  storeConfigReader
	StoreID  uuid.UUID
	ReadOnly bool
	Logger   *zap.Logger
}

func (h *StoreAdminHandler) writable(c *gin.Context) bool {
	if h.ReadOnly {
		c.JSON(http.StatusConflict, gin.H{"error": "Store configuration is read-only"})
		return false
	}
	return true
}

func (h *StoreAdminHandler) loadConfig(c *gin.Context) (*models.StoreConfig, bool) {
	var cfg models.StoreConfig
	if err := h.DB.Where("id = ?", h.StoreID).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Store configuration not found"})
			return nil, false
		}
		h.Logger.Error("failed to load store config", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load store configuration"})
		return nil, false
	}
	return &cfg, true
}

func (h *StoreAdminHandler) save(c *gin.Context, cfg *models.StoreConfig, fields ...string) {
	if err := h.DB.Model(cfg).Select(fields).Updates(cfg).Error; err != nil {
		h.Logger.Error("failed to update store config", zap.Strings("fields", fields), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update store configuration"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *StoreAdminHandler) GetStoreConfig(c *gin.Context) {
	cfg, err := h.Configs.GetStoreConfig(c.Request.Context(), h.StoreID)
	if err != nil {
		if errors.Is(err, configstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Store configuration not found"})
			return
		}
		h.Logger.Error("failed to load store config", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load store configuration"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": cfg, "read_only": h.ReadOnly})
}

func (h *StoreAdminHandler) UpdateRuleType(c *gin.Context) {
	if !h.writable(c) {
		return
	}

	var req struct {
		ActiveRuleType models.RuleType `json:"active_rule_type" binding:"required,oneof=postcode distance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	cfg, ok := h.loadConfig(c)
	if !ok {
		return
	}
	cfg.ActiveRuleType = req.ActiveRuleType
	h.save(c, cfg, "ActiveRuleType")
}

func (h *StoreAdminHandler) UpdateTimes(c *gin.Context) {
	if !h.writable(c) {
		return
	}

	var req struct {
		CollectionLeadTimeMinutes *int `json:"collection_lead_time_minutes" binding:"omitempty,gte=0,lte=720"`
		CollectionBufferMinutes   *int `json:"collection_buffer_minutes" binding:"omitempty,gte=0,lte=720"`
		DeliveryLeadTimeMinutes   *int `json:"delivery_lead_time_minutes" binding:"omitempty,gte=0,lte=720"`
		DeliveryBufferMinutes     *int `json:"delivery_buffer_minutes" binding:"omitempty,gte=0,lte=720"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	cfg, ok := h.loadConfig(c)
	if !ok {
		return
	}
	if req.CollectionLeadTimeMinutes != nil {
		cfg.CollectionLeadTimeMinutes = *req.CollectionLeadTimeMinutes
	}
	if req.CollectionBufferMinutes != nil {
		cfg.CollectionBufferMinutes = *req.CollectionBufferMinutes
	}
	if req.DeliveryLeadTimeMinutes != nil {
		cfg.DeliveryLeadTimeMinutes = *req.DeliveryLeadTimeMinutes
	}
	if req.DeliveryBufferMinutes != nil {
		cfg.DeliveryBufferMinutes = *req.DeliveryBufferMinutes
	}
	h.save(c, cfg,
		"CollectionLeadTimeMinutes", "CollectionBufferMinutes",
		"DeliveryLeadTimeMinutes", "DeliveryBufferMinutes",
	)
}

func (h *StoreAdminHandler) UpdatePostcodeRules(c *gin.Context) {
	if !h.writable(c) {
		return
	}

	var rules models.PostcodeRules
	if err := c.ShouldBindJSON(&rules); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if err := rules.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, ok := h.loadConfig(c)
	if !ok {
		return
	}
	cfg.PostcodeRules = rules
	h.save(c, cfg, "PostcodeRules")
}

func (h *StoreAdminHandler) UpdateDistanceRules(c *gin.Context) {
	if !h.writable(c) {
		return
	}

	var rules models.DistanceRules
	if err := c.ShouldBindJSON(&rules); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if err := rules.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rules.Unit = "miles"

	cfg, ok := h.loadConfig(c)
	if !ok {
		return
	}
	cfg.DistanceRules = rules
	h.save(c, cfg, "DistanceRules")
}

func (h *StoreAdminHandler) GetHours(c *gin.Context) {
	var hours []models.OpeningHours
	if err := h.DB.Order("day_of_week ASC, open_time ASC").Find(&hours).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch opening hours"})
		return
	}
	c.JSON(http.StatusOK, hours)
}

type hoursEntry struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required,gte=0,lte=6"`
	OpenTime  string `json:"open_time" binding:"required,hhmm"`
	CloseTime string `json:"close_time" binding:"required,hhmm"`
	IsClosed  bool   `json:"is_closed"`
}

// ReplaceHours swaps the whole weekly timetable in one transaction.
func (h *StoreAdminHandler) ReplaceHours(c *gin.Context) {
	if !h.writable(c) {
		return
	}

	var req struct {
		Hours []hoursEntry `json:"hours" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	// Equal open and close times mean open all day.
	hours := make([]models.OpeningHours, 0, len(req.Hours))
	for _, e := range req.Hours {
		hours = append(hours, models.OpeningHours{
			DayOfWeek: *e.DayOfWeek,
			OpenTime:  e.OpenTime,
			CloseTime: e.CloseTime,
			IsClosed:  e.IsClosed,
		})
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.OpeningHours{}).Error; err != nil {
			return err
		}
		if len(hours) == 0 {
			return nil
		}
		return tx.Create(&hours).Error
	})
	if err != nil {
		h.Logger.Error("failed to replace opening hours", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update opening hours"})
		return
	}

	c.JSON(http.StatusOK, hours)
}

func (h *StoreAdminHandler) GetHolidays(c *gin.Context) {
	query := h.DB.Order("date ASC, start_time ASC")
	if from := c.Query("from"); from != "" {
		query = query.Where("date >= ?", from)
	}

	var holidays []models.Holiday
	if err := query.Find(&holidays).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch holidays"})
		return
	}
	c.JSON(http.StatusOK, holidays)
}

func (h *StoreAdminHandler) CreateHoliday(c *gin.Context) {
	if !h.writable(c) {
		return
	}

	var req struct {
		Date      string `json:"date" binding:"required,ymd"`
		StartTime string `json:"start_time" binding:"omitempty,hhmm"`
		EndTime   string `json:"end_time" binding:"omitempty,hhmm"`
		Reason    string `json:"reason" binding:"max=200"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.StartTime != "" && req.EndTime != "" {
		start, _ := availability.ParseClock(req.StartTime)
		end, _ := availability.ParseClock(req.EndTime)
		if end < start {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must not be before start_time"})
			return
		}
	}

	holiday := models.Holiday{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	}
	if err := h.DB.Create(&holiday).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create holiday"})
		return
	}

	c.JSON(http.StatusCreated, holiday)
}

func (h *StoreAdminHandler) DeleteHoliday(c *gin.Context) {
	if !h.writable(c) {
		return
	}

	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	result := h.DB.Delete(&models.Holiday{}, "id = ?", id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete holiday"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Holiday not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Holiday deleted successfully"})
}
