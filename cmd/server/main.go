package main

import (
	"context"
	"log"
	"strconv"
	"time"

	"podium/config"
	"podium/db"
	"podium/internal/stream"
	"podium/routes"
	"podium/services"
	"podium/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load the configuration from the specified YAML file
	cfg, err := config.LoadConfig("./config/config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to MongoDB using the URI from the configuration
	store, err := db.ConnectMongo(cfg.Database.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")
	defer store.Close(context.Background())

	// Redis is optional; without it, spectator fanout stays in-process.
	if cfg.Redis.Addr != "" {
		if err := stream.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			log.Printf("Redis unavailable, falling back to in-process fanout: %v", err)
		} else {
			log.Println("Connected to Redis")
		}
	}

	// Gemini powers the verdict generator and the message analyst. Without a
	// key, debates still terminate with the fallback verdict.
	var verdicts services.VerdictGenerator
	var analyst services.Analyst
	if cfg.Gemini.ApiKey != "" {
		if err := services.InitGemini(cfg.Gemini.ApiKey, cfg.Gemini.Model); err != nil {
			log.Printf("Gemini unavailable, using fallback verdicts: %v", err)
		} else {
			verdicts = services.GeminiVerdict{}
			if cfg.Debate.EnableMessageAnalysis {
				analyst = services.GeminiAnalyst{}
			}
		}
	}

	hub := websocket.NewHub()
	coordinator := services.NewCoordinator(store, verdicts, services.CoordinatorOptions{
		Analyst:             analyst,
		Broadcaster:         hub,
		VerdictTimeout:      time.Duration(cfg.Debate.VerdictTimeoutSecs) * time.Second,
		HeartbeatWindow:     time.Duration(cfg.Debate.HeartbeatWindowSecs) * time.Second,
		DefaultStageSeconds: cfg.Debate.StageSeconds,
	})
	defer coordinator.Shutdown()

	router := setupRouter(coordinator, store, hub)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(coordinator *services.Coordinator, store db.Store, hub *websocket.Hub) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	// CORS for the polling frontend (e.g. localhost:5173 for Vite)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Session-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	routes.SetupRoomRoutes(router, coordinator, store)

	// WebSocket spectator feed
	router.GET("/rooms/:id/ws", hub.FeedHandler)

	return router
}
