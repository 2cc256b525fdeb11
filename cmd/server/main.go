package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"internship_portal/internal/config"
	"internship_portal/internal/handler"
	"internship_portal/internal/middleware"
	"internship_portal/internal/repository"
	"internship_portal/internal/service"
	"internship_portal/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("Failed to load DB config: %v", err)
	}
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("Failed to load app config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	if err := config.AutoMigrate(ctx, dbPool); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Session Store ---
	redisClient, err := config.ConnectRedis(ctx, appCfg)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(appCfg.JWTSecret, appCfg.JWTExpiration)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool, dbCfg.QueryTimeout)
	postingRepo := repository.NewPostingRepository(dbPool, dbCfg.QueryTimeout)
	applicationRepo := repository.NewApplicationRepository(dbPool, dbCfg.QueryTimeout)
	sessionRepo := repository.NewSessionRepository(redisClient, dbCfg.QueryTimeout)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, sessionRepo, jwtUtil)
	postingService := service.NewPostingService(postingRepo)
	applicationService := service.NewApplicationService(applicationRepo, postingRepo)
	userService := service.NewUserService(userRepo)
	statsService := service.NewStatsService(postingRepo, applicationRepo)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	postingHandler := handler.NewPostingHandler(postingService)
	applicationHandler := handler.NewApplicationHandler(applicationService)
	userHandler := handler.NewUserHandler(userService)
	adminHandler := handler.NewAdminHandler(userService, statsService)

	// --- Setup Gin Router ---
	router := gin.Default()
	router.Use(cors.New(corsConfig(appCfg.CORSAllowedOrigins)))

	// --- Initialize Middlewares ---
	sessionMW := middleware.SessionMiddleware(authService)
	adminMW := middleware.AdminMiddleware()
	studentMW := middleware.StudentMiddleware()
	loginLimitMW := middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(appCfg.LoginRatePerMinute))

	// --- Register Routes ---
	apiGroup := router.Group("/api/v1")
	authHandler.RegisterAuthRoutes(apiGroup, sessionMW, loginLimitMW)
	postingHandler.RegisterPostingRoutes(apiGroup, sessionMW, adminMW)
	applicationHandler.RegisterApplicationRoutes(apiGroup, sessionMW, studentMW, adminMW)
	userHandler.RegisterUserRoutes(apiGroup, sessionMW)
	adminHandler.RegisterAdminRoutes(apiGroup, sessionMW, adminMW)

	router.GET("/health", healthHandler(dbPool, redisClient))

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + appCfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", appCfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func healthHandler(dbPool *pgxpool.Pool, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "db": "healthy", "redis": "healthy"}
		code := http.StatusOK
		if err := dbPool.Ping(ctx); err != nil {
			log.Printf("ERROR: health check db: %v", err)
			status["status"], status["db"] = "error", "unhealthy"
			code = http.StatusServiceUnavailable
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("ERROR: health check redis: %v", err)
			status["status"], status["redis"] = "error", "unhealthy"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}
