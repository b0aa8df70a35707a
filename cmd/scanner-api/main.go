package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sign-scan/scanner-backend/internal/auth"
	"sign-scan/scanner-backend/internal/config"
	"sign-scan/scanner-backend/internal/history"
	"sign-scan/scanner-backend/internal/imaging"
	"sign-scan/scanner-backend/internal/progress"
	"sign-scan/scanner-backend/internal/verification"
	"sign-scan/scanner-backend/pkg/gemini"
	applog "sign-scan/scanner-backend/pkg/logger"
	"sign-scan/scanner-backend/pkg/pdf"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		bootLogger, _ := zap.NewProduction()
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize logger
	logger, err := applog.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		bootLogger, _ := zap.NewProduction()
		bootLogger.Fatal("Failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	// Connect to database
	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("db_name", cfg.Database.DBName))

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get database handle", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := history.Migrate(db); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// History Module
	historyRepo := history.NewRepository(db)
	historyService := history.NewService(historyRepo, logger)
	historyHandler := history.NewHandler(historyService, logger)

	// Progress feed
	progressManager := progress.NewManager(logger)
	defer progressManager.Close()
	progressHandler := progress.NewHandler(progressManager, logger)

	// Verification Module
	retryClient := gemini.NewRetryClient(logger,
		gemini.WithHTTPClient(&http.Client{Timeout: cfg.Model.HTTPTimeout}),
		gemini.WithMaxRetries(cfg.Model.MaxRetries),
	)
	modelClient := gemini.NewClient(cfg.Model.GenerateContentURL(), retryClient, logger)
	validator := imaging.NewValidator(imaging.Thresholds{
		MinWidth:  cfg.Quality.MinWidth,
		MinHeight: cfg.Quality.MinHeight,
		MinBytes:  cfg.Quality.MinBytes,
	})
	verificationService := verification.NewService(modelClient, validator, historyService, progressManager, logger)
	verificationHandler := verification.NewHandler(verificationService, pdf.NewGenerator(pdf.DefaultOptions()), cfg.Server.MaxUploadBytes, logger)

	authHandler := auth.NewHandler()
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	// Setup Router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Register Routes
	api := router.Group("/api/v1")
	api.Use(auth.Middleware(verifier, logger))
	{
		auth.RegisterRoutes(api, authHandler)
		verificationHandler.RegisterRoutes(api)
		historyHandler.RegisterRoutes(api)
		progressHandler.RegisterRoutes(api)
	}

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("addr", srv.Addr),
		zap.String("model", cfg.Model.Name))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
