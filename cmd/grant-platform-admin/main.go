package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/shopflows/shopflows-api/internal/config"
	"github.com/shopflows/shopflows-api/internal/database"
	"github.com/shopflows/shopflows-api/internal/models"
	"github.com/shopflows/shopflows-api/internal/services"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: grant-platform-admin <email>")
		os.Exit(1)
	}

	email := os.Args[1]

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

	directoryService := services.NewDirectoryService(db)

	rowsAffected, err := directoryService.SetRole(ctx, email, models.RolePlatformAdmin)
	if err != nil {
		log.Fatalf("Failed to update profile: %v", err)
	}

	if rowsAffected == 0 {
		log.Fatalf("No profile found with email: %s", email)
	}

	fmt.Printf("Successfully granted platform admin to %s\n", email)
}
