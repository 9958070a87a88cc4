package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/scentdesk/usage-backend/internal/config"
	"github.com/scentdesk/usage-backend/internal/database"
	"github.com/scentdesk/usage-backend/internal/handlers"
	"github.com/scentdesk/usage-backend/internal/middleware"
	"github.com/scentdesk/usage-backend/internal/services"
	"github.com/scentdesk/usage-backend/pkg/jwt"
	"github.com/scentdesk/usage-backend/web"
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

	logger.Info("Starting perfume usage log server")
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
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	location, err := cfg.Location()
	if err != nil {
		logger.Fatalf("Failed to load time zone: %v", err)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := database.CreateSchema(db); err != nil {
			logger.Fatalf("Failed to create schema: %v", err)
		}
		logger.Info("Database schema is up to date")
	}

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	sessionRepository := database.NewSessionRepository(db)
	staffRepository := database.NewStaffRepository(db)
	perfumeRepository := database.NewPerfumeRepository(db)
	usageLogRepository := database.NewUsageLogRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	metrics := middleware.NewMetrics()
	jwtService := jwt.NewService(cfg.Session.Secret, cfg.Session.TTL)
	authService := services.NewAuthService(
		userRepository,
		sessionRepository,
		staffRepository,
		jwtService,
		cfg.Security.BcryptCost,
		logger,
	)
	catalogService := services.NewCatalogService(perfumeRepository, logger)
	usageService := services.NewUsageService(
		usageLogRepository,
		perfumeRepository,
		authService,
		metrics,
		location,
		logger,
	)

	// Initialize and start cron service
	var cronService *services.CronService
	if cfg.Cron.Enabled {
		cronService = services.NewCronService(
			sessionRepository,
			cfg.Cron.SessionPurgeSpec,
			cfg.Cron.SessionRetentionAge,
			location,
			logger,
		)
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
		logger.Info("✓ Cron service started - expired session purge enabled")
	}

	loginLimiter := middleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst, logger)
	stopCleanup := make(chan struct{})
	loginLimiter.StartCleanup(5*time.Minute, stopCleanup)

	templates, err := web.Templates(location)
	if err != nil {
		logger.Fatalf("Failed to parse templates: %v", err)
	}

	sessionCookie := middleware.SessionCookie{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.Secure,
	}

	// Initialize Gin router
	router := gin.New()
	router.SetHTMLTemplate(templates)

	// Middleware
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}
	router.Use(metrics.Instrument())

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

	// Health check and metrics endpoints
	router.GET("/health", healthCheckHandler(db))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.Use(middleware.LoadSession(authService, sessionCookie, logger))

	handlers.Routes{
		Auth:       handlers.NewAuthHandler(authService, sessionCookie, logger),
		Usage:      handlers.NewUsageHandler(usageService, catalogService, authService, logger),
		Perfumes:   handlers.NewPerfumeHandler(catalogService, logger),
		LoginLimit: loginLimiter.LimitPOST(),
	}.RegisterRoutes(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
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

	close(stopCleanup)
	if cronService != nil {
		logger.Info("Stopping cron service...")
		cronService.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// healthCheckHandler reports database reachability
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
			"timestamp": time.Now().UTC(),
		})
	}
}
