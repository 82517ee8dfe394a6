package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/schooltransit/transport-planner-backend/internal/config"
	"github.com/schooltransit/transport-planner-backend/internal/database"
	"github.com/schooltransit/transport-planner-backend/internal/handlers"
	"github.com/schooltransit/transport-planner-backend/internal/services"
	"github.com/schooltransit/transport-planner-backend/pkg/geo"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting SchoolTransit Trip Planner Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize repositories
	tripRepo := database.NewTransportTripRepository(db)
	stopRepo := database.NewTripStopRepository(db)
	rosterRepo := database.NewStudentRosterRepository(db)
	profileRepo := database.NewRouteProfileRepository(db)
	settingRepo := database.NewSystemSettingRepository(db)

	// Initialize geo gateway
	var geoGateway geo.Gateway
	if cfg.Geo.Mode == "production" {
		logger.Info("Initializing routing provider gateway in production mode...")
		geoGateway = geo.NewClient(geo.ClientConfig{
			BaseURL: cfg.Geo.BaseURL,
			APIKey:  cfg.Geo.APIKey,
			Timeout: cfg.Geo.Timeout,
		})
		logger.Info("Routing provider gateway initialized")
	} else if cfg.Geo.BaseURL != "" {
		logger.Info("Routing provider gateway in development mode")
		geoGateway = geo.NewClient(geo.ClientConfig{
			BaseURL: cfg.Geo.BaseURL,
			APIKey:  cfg.Geo.APIKey,
			Timeout: cfg.Geo.Timeout,
		})
	} else {
		logger.Info("No routing provider configured, trip suggestions will carry no distance estimates")
	}

	// Initialize services
	logger.Info("Initializing services...")
	conflictService := services.NewConflictService(tripRepo, cfg.Planner.ConflictFailOpen, logger)
	plannerService := services.NewTripPlannerService(
		db,
		tripRepo,
		stopRepo,
		rosterRepo,
		profileRepo,
		settingRepo,
		geoGateway,
		cfg.Planner.DefaultVehicleCapacity,
		cfg.Planner.StopIntervalMinutes,
		logger,
	)

	// Initialize and start the nightly maintenance jobs
	maintenanceService := services.NewMaintenanceService(stopRepo)
	if err := maintenanceService.Start(); err != nil {
		logger.Fatalf("Failed to start maintenance service: %v", err)
	}
	logger.Info("✓ Maintenance service started - nightly status refresh enabled")

	logger.Info("Services initialized")

	// Initialize handlers
	tripHandler := handlers.NewTripHandler(tripRepo, stopRepo, conflictService)
	plannerHandler := handlers.NewPlannerHandler(plannerService)
	stopHandler := handlers.NewStopHandler(stopRepo, tripRepo)
	settingHandler := handlers.NewSettingHandler(settingRepo)
	adminHandler := handlers.NewAdminHandler(maintenanceService)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		trips := v1.Group("/trips")
		{
			trips.POST("", tripHandler.CreateTrip)
			trips.GET("", tripHandler.ListTrips)
			trips.POST("/check-conflicts", tripHandler.CheckConflicts)
			trips.POST("/auto-generate", plannerHandler.AutoGenerate)
			trips.POST("/from-suggestions", plannerHandler.CreateFromSuggestions)
			trips.GET("/:id", tripHandler.GetTrip)
			trips.PUT("/:id", tripHandler.UpdateTrip)
			trips.DELETE("/:id", tripHandler.DeactivateTrip)
			trips.GET("/:id/stops", stopHandler.ListTripStops)
		}

		stops := v1.Group("/stops")
		{
			stops.PUT("/:id/assignment", stopHandler.UpdateAssignment)
		}

		settings := v1.Group("/settings")
		{
			settings.GET("", settingHandler.ListSettings)
			settings.PUT("/:key", settingHandler.UpdateSetting)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/refresh-stop-statuses", adminHandler.RefreshStopStatuses)
		}

		if geoGateway != nil {
			geoHandler := handlers.NewGeoHandler(geoGateway)
			geoGroup := v1.Group("/geo")
			{
				geoGroup.POST("/geocode", geoHandler.Geocode)
				geoGroup.POST("/distance", geoHandler.CalculateDistance)
			}
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop maintenance jobs
	maintenanceService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Error("Request failed with errors")
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
