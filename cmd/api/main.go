package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"karaoke/internal/config"
	"karaoke/internal/database"
	"karaoke/internal/events"
	"karaoke/internal/metadata"
	"karaoke/internal/middleware"
	"karaoke/internal/modules/admin"
	"karaoke/internal/modules/catalog"
	"karaoke/internal/modules/guest"
	"karaoke/internal/modules/ledger"
	"karaoke/internal/modules/queue"
	"karaoke/internal/modules/table"
	"karaoke/internal/pkg/clock"
	jwtsvc "karaoke/internal/pkg/jwt"
	"karaoke/internal/repository"
	"karaoke/internal/scorer"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	clk := clock.New()
	settings := config.NewSettings()
	hub := events.NewHub()
	jwtService := jwtsvc.New(cfg.JWTSecret, cfg.GuestJWTTTL)

	songRepo := repository.NewSongRepository(db)
	guestRepo := repository.NewGuestRepository(db)
	tableRepo := repository.NewTableRepository(db)
	productRepo := repository.NewProductRepository(db)

	ledgerSvc := ledger.NewService(db, hub, clk)

	var performanceScorer queue.Scorer
	var recordings queue.RecordingLocator
	if cfg.ScorerURL != "" {
		performanceScorer = scorer.NewClient(cfg.ScorerURL, cfg.ScorerTimeout)
		recordings = scorer.NewDirLocator(cfg.RecordingsDir)
	}

	queueSvc := queue.NewService(songRepo, guestRepo, ledgerSvc, hub, performanceScorer, recordings, clk, settings)
	tableSvc := table.NewService(tableRepo, guestRepo, jwtService, clk)
	guestSvc := guest.NewService(guestRepo, songRepo)
	catalogSvc := catalog.NewService(productRepo, hub)
	adminSvc := admin.NewService(db, settings, hub)
	youtube := metadata.NewYouTubeClient(cfg.YouTubeAPIKey)

	queueHandler := queue.NewHandler(queueSvc)
	tableHandler := table.NewHandler(tableSvc)
	guestHandler := guest.NewHandler(guestSvc)
	catalogHandler := catalog.NewHandler(catalogSvc)
	ledgerHandler := ledger.NewHandler(ledgerSvc)
	adminHandler := admin.NewHandler(adminSvc)
	metadataHandler := metadata.NewHandler(youtube)
	eventsHandler := events.NewHandler(hub)

	router := gin.Default()
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ws_connections": hub.ConnCount()})
	})
	router.GET("/ws/queue", eventsHandler.Serve)

	api := router.Group("/api/v1")
	tableHandler.RegisterPublicRoutes(api)

	guestAPI := api.Group("", middleware.GuestAuth(jwtService))
	queueHandler.RegisterGuestRoutes(guestAPI)
	ledgerHandler.RegisterGuestRoutes(guestAPI)
	guestHandler.RegisterGuestRoutes(guestAPI)
	catalogHandler.RegisterGuestRoutes(guestAPI)
	metadataHandler.RegisterGuestRoutes(guestAPI)

	adminAPI := api.Group("/admin", middleware.AdminKey(cfg.AdminKeyHash))
	queueHandler.RegisterAdminRoutes(adminAPI)
	ledgerHandler.RegisterAdminRoutes(adminAPI)
	tableHandler.RegisterAdminRoutes(adminAPI)
	guestHandler.RegisterAdminRoutes(adminAPI)
	catalogHandler.RegisterAdminRoutes(adminAPI)
	adminHandler.RegisterAdminRoutes(adminAPI)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := queue.NewWorker(queueSvc, cfg.WorkerPeriod)
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}
	go func() {
		log.Printf("Server starting on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
