package routes

import (
	"context"
	"net/http"

	"takeaway-backend/availability"
	"takeaway-backend/cart"
	"takeaway-backend/delivery"
	"takeaway-backend/handlers"
	"takeaway-backend/middleware"
	"takeaway-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StoreConfigReader interface {
	GetStoreConfig(ctx context.Context, id uuid.UUID) (*models.StoreConfig, error)
}

// Dependencies is everything the HTTP surface needs. QuoteLimiter may be nil
// to leave the quote endpoint unthrottled.
type Dependencies struct {
	DB             *gorm.DB
	Carts          *cart.Store
	Quoter         *delivery.Quoter
	Availability   *availability.Service
	Configs        StoreConfigReader
	StoreID        uuid.UUID
	ReadOnlyConfig bool
	QuoteLimiter   *middleware.RateLimiter
	Logger         *zap.Logger
}

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: deps.DB, Logger: deps.Logger}
	menuHandler := &handlers.MenuHandler{DB: deps.DB}
	categoryHandler := &handlers.CategoryHandler{DB: deps.DB}
	cartHandler := &handlers.CartHandler{DB: deps.DB, Carts: deps.Carts}
	deliveryHandler := &handlers.DeliveryHandler{Quoter: deps.Quoter, StoreID: deps.StoreID}
	storeHandler := &handlers.StoreHandler{
		Availability: deps.Availability,
		Quoter:       deps.Quoter,
		StoreID:      deps.StoreID,
	}
	checkoutHandler := &handlers.CheckoutHandler{
		DB:           deps.DB,
		Carts:        deps.Carts,
		Quoter:       deps.Quoter,
		Availability: deps.Availability,
		StoreID:      deps.StoreID,
		Logger:       deps.Logger,
	}
	orderHandler := &handlers.OrderHandler{DB: deps.DB}
	storeAdminHandler := &handlers.StoreAdminHandler{
		DB:       deps.DB,
		Configs:  deps.Configs,
		StoreID:  deps.StoreID,
		ReadOnly: deps.ReadOnlyConfig,
		Logger:   deps.Logger,
	}

	quoteHandlers := []gin.HandlerFunc{middleware.OptionalAuthMiddleware()}
	if deps.QuoteLimiter != nil {
		quoteHandlers = append([]gin.HandlerFunc{deps.QuoteLimiter.Middleware()}, quoteHandlers...)
	}
	quoteHandlers = append(quoteHandlers, deliveryHandler.Quote)

	// Public routes
	api := r.Group("/api")
	{
		// Auth routes
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// Menu
		api.GET("/menu", menuHandler.GetMenu)
		api.GET("/menu/items/:id", menuHandler.GetMenuItem)

		// Cart sessions
		api.POST("/cart", cartHandler.CreateCart)
		api.GET("/cart/:id", cartHandler.GetCart)
		api.POST("/cart/:id/items", cartHandler.AddItem)
		api.PUT("/cart/:id/items/:itemId", cartHandler.UpdateItem)
		api.DELETE("/cart/:id/items/:itemId", cartHandler.RemoveItem)
		api.DELETE("/cart/:id", cartHandler.DeleteCart)

		// Delivery and store availability
		api.POST("/delivery/quote", quoteHandlers...)
		api.GET("/store/status", storeHandler.Status)
		api.GET("/store/collection-times", storeHandler.CollectionTimes)
		api.GET("/store/delivery-times", storeHandler.DeliveryTimes)

		// Checkout works for guests and signed-in customers alike
		api.POST("/checkout", middleware.OptionalAuthMiddleware(), checkoutHandler.Checkout)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)

		protected.GET("/orders", orderHandler.GetOrders)
		protected.GET("/orders/:id", orderHandler.GetOrder)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// Store configuration
		admin.GET("/store-config", storeAdminHandler.GetStoreConfig)
		admin.PUT("/store-config/rule-type", storeAdminHandler.UpdateRuleType)
		admin.PUT("/store-config/times", storeAdminHandler.UpdateTimes)
		admin.PUT("/store-config/postcode-rules", storeAdminHandler.UpdatePostcodeRules)
		admin.PUT("/store-config/distance-rules", storeAdminHandler.UpdateDistanceRules)

		// Opening hours and holidays
		admin.GET("/hours", storeAdminHandler.GetHours)
		admin.PUT("/hours", storeAdminHandler.ReplaceHours)
		admin.GET("/holidays", storeAdminHandler.GetHolidays)
		admin.POST("/holidays", storeAdminHandler.CreateHoliday)
		admin.DELETE("/holidays/:id", storeAdminHandler.DeleteHoliday)

		// Menu management
		admin.GET("/categories", categoryHandler.GetCategories)
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)
		admin.POST("/menu-items", menuHandler.CreateMenuItem)
		admin.PUT("/menu-items/:id", menuHandler.UpdateMenuItem)
		admin.DELETE("/menu-items/:id", menuHandler.DeleteMenuItem)

		// Order management
		admin.GET("/orders", orderHandler.ListAllOrders)
		admin.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
