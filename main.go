package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"takeaway-backend/availability"
	"takeaway-backend/cart"
	"takeaway-backend/config"
	"takeaway-backend/configstore"
	"takeaway-backend/database"
	"takeaway-backend/delivery"
	"takeaway-backend/geo"
	"takeaway-backend/logging"
	"takeaway-backend/middleware"
	"takeaway-backend/models"
	"takeaway-backend/routes"
	"takeaway-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// storeSource is the store configuration plus its timetable, from the
// database or from a YAML file.
type storeSource interface {
	GetStoreConfig(ctx context.Context, id uuid.UUID) (*models.StoreConfig, error)
	GetOpeningHours(ctx context.Context, dayOfWeek int) ([]models.OpeningHours, error)
	GetHolidays(ctx context.Context, date string) ([]models.Holiday, error)
}

func main() {
	// Load environment variables
	_ = config.LoadEnv()

	logger, err := logging.New(config.GetEnv("APP_ENV", "development"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	// Validate critical environment variables
	if err := config.ValidateEnv(logger); err != nil {
		logger.Fatal("environment validation failed", zap.Error(err))
	}

	loc, err := config.StoreLocation()
	if err != nil {
		logger.Fatal("invalid store time zone", zap.Error(err))
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Create default admin user if not exists
	if err := database.CreateDefaultAdmin(db, logger); err != nil {
		logger.Warn("could not create default admin", zap.Error(err))
	}

	source, storeID, readOnly, err := openStoreSource(db, logger)
	if err != nil {
		logger.Fatal("failed to load store configuration", zap.Error(err))
	}

	geoClient := geo.NewClient(
		os.Getenv("GEOCODER_URL"),
		os.Getenv("ROUTER_URL"),
		config.GetEnvDuration("GEO_TIMEOUT", geo.DefaultTimeout),
		nil,
		logger.Named("geo"),
	)
	quoter := delivery.NewQuoter(source, map[models.RuleType]delivery.Provider{
		models.RuleTypePostcode: delivery.PostcodeProvider{},
		models.RuleTypeDistance: delivery.NewDistanceProvider(geoClient, logger.Named("distance")),
	}, logger.Named("quote"))
	avail := availability.NewService(source, source, storeID, loc, logger.Named("availability"))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	carts := cart.NewStore(config.GetEnvDuration("CART_TTL", cart.DefaultTTL))
	go carts.RunJanitor(ctx, 5*time.Minute, func(removed int) {
		if removed > 0 {
			logger.Debug("expired carts removed", zap.Int("count", removed))
		}
	})

	quoteLimiter := middleware.NewRateLimiter(config.GetEnvInt("QUOTE_RATE_LIMIT", 30), time.Minute)
	defer quoteLimiter.Stop()

	if err := utils.RegisterBindingValidators(); err != nil {
		logger.Fatal("failed to register validators", zap.Error(err))
	}

	if config.GetEnv("APP_ENV", "development") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logging.Middleware(logger), gin.Recovery())

	// CORS configuration - filter out empty strings from AllowOrigins
	origins := []string{os.Getenv("FRONTEND_URL"), os.Getenv("ADMIN_URL")}
	var filteredOrigins []string
	for _, o := range origins {
		if o != "" {
			filteredOrigins = append(filteredOrigins, o)
		}
	}
	if len(filteredOrigins) == 0 {
		filteredOrigins = []string{"http://localhost:3000"}
		logger.Warn("no CORS origins configured, defaulting to http://localhost:3000")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     filteredOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Setup routes
	routes.SetupRoutes(r, routes.Dependencies{
		DB:             db,
		Carts:          carts,
		Quoter:         quoter,
		Availability:   avail,
		Configs:        source,
		StoreID:        storeID,
		ReadOnlyConfig: readOnly,
		QuoteLimiter:   quoteLimiter,
		Logger:         logger,
	})

	// Start server with graceful shutdown
	port := config.GetEnv("PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Run server in a goroutine
	go func() {
		logger.Info("server starting",
			zap.String("port", port),
			zap.Stringer("store_id", storeID),
			zap.String("time_zone", loc.String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")
	stop()

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Close database connection
	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("error closing database connection", zap.Error(err))
		} else {
			logger.Info("database connection closed")
		}
	}

	logger.Info("server exited gracefully")
}

// openStoreSource picks where the store configuration lives. A file source
// is read-only through the admin API.
func openStoreSource(db *gorm.DB, logger *zap.Logger) (storeSource, uuid.UUID, bool, error) {
	if config.GetEnv("CONFIG_SOURCE", "database") == "file" {
		path := os.Getenv("STORE_CONFIG_FILE")
		fs, err := configstore.LoadFile(path)
		if err != nil {
			return nil, uuid.Nil, false, err
		}
		logger.Info("store configuration loaded from file", zap.String("path", path))
		return fs, fs.StoreID(), true, nil
	}

	storeID, err := database.EnsureStoreConfig(context.Background(), db, logger)
	if err != nil {
		return nil, uuid.Nil, false, err
	}
	return configstore.NewGormStore(db), storeID, false, nil
}
