package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"

	"github.com/caiots/vorp-friends/internal/router"
	"github.com/caiots/vorp-friends/pkg/config"
	"github.com/caiots/vorp-friends/pkg/firebase"
	"github.com/caiots/vorp-friends/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Initialize Firebase. Without credentials the server falls back to
	// locally signed dev tokens (AUTH_DEV_SECRET).
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Printf("Firebase not configured (%v), falling back to dev tokens", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, firebaseApp.GetAuthClient())

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
