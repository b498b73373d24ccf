package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/caiots/vorp-friends/internal/handlers"
	"github.com/caiots/vorp-friends/internal/identity"
	"github.com/caiots/vorp-friends/internal/imaging"
	"github.com/caiots/vorp-friends/internal/location"
	"github.com/caiots/vorp-friends/internal/middleware"
	"github.com/caiots/vorp-friends/internal/models"
	"github.com/caiots/vorp-friends/internal/repositories"
	"github.com/caiots/vorp-friends/pkg/config"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client) {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(&models.UserProfile{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize repositories and services ---
	mongoDB := mgClient.Database(cfg.MongoDatabase)
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	commentRepo := repositories.NewMongoCommentRepository(mongoDB)
	friendshipRepo := repositories.NewMongoFriendshipRepository(mongoDB)
	pokeRepo := repositories.NewMongoPokeRepository(mongoDB)

	identitySvc := identity.NewService(userRepo, firebaseAuthClient)
	imageClient := imaging.NewClient(cfg.VorpngBaseURL, cfg.VorpngAPIToken, cfg.VorpngUploadFields)
	locationClient := location.NewClient(cfg.NominatimURL, "VorpFriends/1.0 (contato@vorp-friends.com)")

	// --- Protected routes ---
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware(firebaseAuthClient))
	api.Use(middleware.NewRateLimiter(20, 40).Middleware())
	log.Println("Auth and rate-limit middleware applied to /api group.")

	userHandler := handlers.NewUserHandler(userRepo, firebaseAuthClient)
	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	friendshipHandler := handlers.NewFriendshipHandler(friendshipRepo, identitySvc)
	friendshipHandler.RegisterFriendshipRoutes(api)
	log.Println("Friendship routes configured.")

	postHandler := handlers.NewPostHandler(postRepo, commentRepo, identitySvc, imageClient)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, identitySvc)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	pokeHandler := handlers.NewPokeHandler(pokeRepo, identitySvc)
	pokeHandler.RegisterPokeRoutes(api)
	log.Println("Poke routes configured.")

	imageHandler := handlers.NewImageHandler(imageClient)
	imageHandler.RegisterImageRoutes(api)
	log.Println("Image routes configured.")

	locationHandler := handlers.NewLocationHandler(locationClient)
	locationHandler.RegisterLocationRoutes(api)
	log.Println("Location routes configured.")

	log.Println("All routes configured.")
}
