// ===========================================
// linkgate - Main Entry Point
// ===========================================
// Wires everything together:
// 1. Load configuration
// 2. Initialize dependencies (Postgres, Redis)
// 3. Set up the HTTP server and middleware chain
// 4. Start the expiry sweep
// 5. Handle graceful shutdown
//
// DESIGN PRINCIPLE: "Fail Fast at Startup"
// If a critical dependency is down, crash immediately. Better to fail
// during deployment than serve broken requests.
// ===========================================

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/linkgate/internal/config"
	"github.com/user/linkgate/internal/database"
	"github.com/user/linkgate/internal/handler"
	"github.com/user/linkgate/internal/middleware"
	"github.com/user/linkgate/internal/repository"
	"github.com/user/linkgate/internal/service"
)

// Version is set at build time using ldflags.
// go build -ldflags "-X main.Version=1.0.0"
var Version = "dev"

func main() {
	// .env is optional; missing files are fine in production.
	_ = godotenv.Load()

	cfg := config.Load()
	log.Printf("Starting linkgate v%s on port %s", Version, cfg.Server.Port)

	// Startup gets a bounded window; a dependency that cannot answer
	// within it is treated as down.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Connecting to PostgreSQL...")
	postgres, err := database.NewPostgresDB(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer postgres.Close()
	log.Println("PostgreSQL connected")

	log.Println("Connecting to Redis...")
	redis, err := database.NewRedisDB(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()
	log.Println("Redis connected")

	// Manual dependency injection, layer by layer:
	// store -> services -> handlers.
	store := repository.NewStore(postgres.Pool)
	resolveService := service.NewResolveService(store)
	linkService := service.NewLinkService(store)

	resolveHandler := handler.NewResolveHandler(resolveService)
	linkHandler := handler.NewLinkHandler(linkService)
	healthHandler := handler.NewHealthHandler(postgres, redis, Version)
	indexHandler := handler.NewIndexHandler(Version)

	rateLimiter := middleware.NewRateLimiter(redis, cfg.RateLimit.RequestsPerMinute)
	jwtAuth := middleware.NewJWTAuth(cfg.Auth.JWTSecret)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Global middleware; order matters.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	// Operational routes: no auth, no rate limit.
	router.GET("/", indexHandler.Index)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/live", healthHandler.Live)

	// Unauthenticated resolution path.
	public := router.Group("/public")
	public.Use(rateLimiter.Middleware())
	{
		public.GET("/resolve/:slug", resolveHandler.ResolvePublic)
		public.POST("/verify-password", resolveHandler.VerifyPasswordPublic)
	}

	// Authenticated resolution and analytics path.
	private := router.Group("/private")
	private.Use(jwtAuth.RequireUser())
	private.Use(rateLimiter.Middleware())
	{
		private.GET("/resolve/:slug", resolveHandler.ResolvePrivate)
		private.POST("/verify-password", resolveHandler.VerifyPasswordPrivate)
		private.GET("/analytics/:linkId", linkHandler.Analytics)
	}

	// Owner-scoped link management.
	links := router.Group("/links")
	links.Use(jwtAuth.RequireUser())
	links.Use(rateLimiter.Middleware())
	{
		links.POST("", linkHandler.Create)
		links.GET("", linkHandler.List)
		links.GET("/:id", linkHandler.Get)
		links.PUT("/:id", linkHandler.Update)
		links.DELETE("/:id", linkHandler.Delete)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Background jobs get their own lifecycle.
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	go runExpirySweep(bgCtx, store, cfg.Links.ExpirySweepInterval)

	go func() {
		log.Printf("Server listening on http://localhost:%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown: stop accepting requests, drain in-flight ones.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	bgCancel()

	log.Println("Server stopped")
}

// runExpirySweep periodically deactivates expired links.
// Links are flipped inactive, never deleted: owners keep their
// analytics, and the resolution path answers EXPIRED either way -
// the sweep just makes the stored state match reality.
func runExpirySweep(ctx context.Context, store *repository.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Expiry sweep stopped")
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			count, err := store.DeactivateExpired(sweepCtx)
			cancel()

			if err != nil {
				log.Printf("Expiry sweep error: %v", err)
			} else if count > 0 {
				log.Printf("Deactivated %d expired links", count)
			}
		}
	}
}
