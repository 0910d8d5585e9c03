package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spelling-service/config"
	"spelling-service/internal/client"
	"spelling-service/internal/handlers"
	"spelling-service/internal/repository"
	"spelling-service/internal/selector"
	ws "spelling-service/internal/websocket"
	"spelling-service/pkg/cache"
	"spelling-service/pkg/database"
	"spelling-service/pkg/messaging"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	log.Println("Configuration loaded")

	pgClient, err := database.NewPostgresClient(&cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	log.Println("Connected to PostgreSQL")
	defer pgClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := pgClient.InitSchema(ctx); err != nil {
		log.Printf("Warning: Failed to initialize PostgreSQL schema: %v", err)
	} else {
		log.Println("PostgreSQL schema initialized")
	}
	cancel()

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		redisClient = nil
	} else {
		log.Println("Connected to Redis")
		defer redisClient.Close()
	}

	rabbitClient, err := messaging.NewRabbitMQClient(&cfg.RabbitMQ)
	if err != nil {
		log.Printf("Warning: Failed to connect to RabbitMQ: %v", err)
		rabbitClient = nil
	} else {
		log.Println("Connected to RabbitMQ")
		defer rabbitClient.Close()
	}

	wordClient := client.NewWordClient(cfg.Words.BaseURL)
	resultRepo := repository.NewResultRepository(pgClient.GetDB())

	hub := ws.NewHub(wordClient, resultRepo, redisClient, rabbitClient,
		selector.NewShuffled(), cfg.Game, cfg.RabbitMQ.Queue)
	go hub.Run()
	log.Println("WebSocket hub started")

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "spelling-service",
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		if pgClient == nil || redisClient == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
		})
	})

	wsHandler := handlers.NewWebSocketHandler(hub, cfg)
	router.GET("/ws", wsHandler.HandleWebSocket)

	sessionHandler := handlers.NewSessionHandler(hub.Broadcaster())
	router.GET("/session/:classId", sessionHandler.GetSession)

	leaderboardHandler := handlers.NewLeaderboardHandler(resultRepo)
	router.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
	router.GET("/leaderboard/class/:classId", leaderboardHandler.GetClassLeaderboard)
	router.GET("/leaderboard/school/:schoolId", leaderboardHandler.GetSchoolLeaderboard)

	httpAddr := ":" + cfg.Server.HTTPPort
	log.Printf("Spelling Service HTTP server starting on port %s...", cfg.Server.HTTPPort)

	go func() {
		if err := router.Run(httpAddr); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Spelling service stopped")
}
