package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/shopflows/shopflows-api/internal/config"
	"github.com/shopflows/shopflows-api/internal/database"
	"github.com/shopflows/shopflows-api/internal/events"
	"github.com/shopflows/shopflows-api/internal/handlers"
	authmw "github.com/shopflows/shopflows-api/internal/middleware"
	"github.com/shopflows/shopflows-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	tokenService := services.NewTokenService(db)
	directoryService := services.NewDirectoryService(db)
	deviceService := services.NewDeviceService(db, cfg.Kiosk)
	featureService := services.NewFeatureService(db)

	hub := events.NewHub()
	go hub.Run()

	authHandler := handlers.NewAuthHandler(directoryService, deviceService, tokenService, jwtService, hub)
	sessionHandler := handlers.NewSessionHandler(jwtService, tokenService, hub)
	featureHandler := handlers.NewFeatureHandler(featureService)
	eventsHandler := handlers.NewEventsHandler(hub)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/pin", authHandler.LoginPIN)
	auth.Post("/admin", authHandler.LoginAdmin)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)
	protected.Get("/auth/events", eventsHandler.Connect)

	protected.Get("/session", sessionHandler.Get)
	protected.Post("/session/org", sessionHandler.ManageOrg)

	protected.Get("/orgs/:orgId/features", featureHandler.Get)
	protected.Post("/orgs/:orgId/features/:name", featureHandler.Set)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			_ = tokenService.CleanupExpired(context.Background())
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
