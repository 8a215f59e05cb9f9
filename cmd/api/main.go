package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guardian-vault-api/internal/cache"
	"guardian-vault-api/internal/config"
	"guardian-vault-api/internal/handler"
	"guardian-vault-api/internal/middleware"
	"guardian-vault-api/internal/repository"
	"guardian-vault-api/internal/router"
	"guardian-vault-api/internal/service"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Guardian Vault API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize profile repository based on config
	var profileRepo repository.ProfileRepository
	switch cfg.ProfileDB.Type {
	case "mysql":
		mysqlRepo, err := repository.NewMySQLProfileRepository(cfg.ProfileDB.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to initialize MySQL profile store: %v", err)
		}
		defer mysqlRepo.Close()
		profileRepo = mysqlRepo
		log.Println("MySQL profile repository initialized")
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteProfileRepository(cfg.ProfileDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite profile store: %v", err)
		}
		defer sqliteRepo.Close()
		profileRepo = sqliteRepo
		log.Println("SQLite profile repository initialized")
	}

	// Initialize MySQL connection for registered apps (optional)
	var err error
	var appsDB *sql.DB
	var appRepo *repository.MySQLAppRepository

	appsDSN := cfg.Database.DSN()
	appsDB, err = sql.Open("mysql", appsDSN)
	if err != nil {
		log.Printf("Warning: MySQL connection failed: %v", err)
	} else {
		appsDB.SetMaxOpenConns(10)
		appsDB.SetMaxIdleConns(5)
		appsDB.SetConnMaxLifetime(5 * time.Minute)

		if err := appsDB.Ping(); err != nil {
			log.Printf("Warning: MySQL ping failed: %v", err)
			appsDB.Close()
			appsDB = nil
		} else {
			appRepo = repository.NewMySQLAppRepository(appsDB)
			log.Println("MySQL app repository initialized")
		}
	}
	if appsDB != nil {
		defer appsDB.Close()
	}

	// Initialize Redis client
	redisAddr := cfg.Cache.RedisAddress()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		redisClient = nil
	} else {
		log.Println("Redis client initialized")
	}
	cancel()

	// Initialize export cache
	var exportCache cache.Cache
	if cfg.Cache.Type == "redis" && redisClient != nil {
		exportCache = cache.NewRedisCache(redisClient, "")
		log.Println("Redis export cache initialized")
	} else {
		memCache := cache.NewMemoryCache()
		defer memCache.Close()
		exportCache = memCache
		log.Println("Memory export cache initialized")
	}

	// Initialize services
	importService := service.NewImportService(profileRepo, exportCache)
	exportService := service.NewExportService(profileRepo, exportCache, cfg.Cache.TTL)

	var tokenService *service.TokenService
	if redisClient != nil {
		tokenService = service.NewTokenService(redisClient)
	}

	// Initialize handlers
	healthHandler := handler.New()
	profileHandler := handler.NewProfileHandler(importService, exportService, cfg.Server.MaxImportBytes)
	adminHandler := handler.NewAdminHandler(profileRepo, cfg.ProfileDB.Type, cfg.App.LoginKey)
	logHandler := handler.NewLogHandler(profileRepo, cfg.App.LoginKey)

	var authHandler *handler.AuthHandler
	if tokenService != nil && appRepo != nil {
		authHandler = handler.NewAuthHandler(tokenService, appRepo)
	}

	// Create auth middleware with injected dependencies (NO GLOBALS!)
	authMiddleware := middleware.NewAuthMiddleware(middleware.AuthConfig{
		TokenService: tokenService,
	})

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		ProfileHandler: profileHandler,
		AdminHandler:   adminHandler,
		AuthHandler:    authHandler,
		LogHandler:     logHandler,
		AuthMiddleware: authMiddleware,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
