package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"campusguide/internal/config"
	"campusguide/internal/handler"
	"campusguide/internal/ingest"
	"campusguide/internal/repository"
	"campusguide/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Smart Campus Guide")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize OpenAI client
	openaiClient := service.NewOpenAIClient(&cfg.OpenAI)
	if cfg.OpenAI.Enabled {
		log.Printf("✅ OpenAI client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
		log.Printf("   - Embedding model: %s", cfg.OpenAI.EmbeddingModel)
		log.Printf("   - Chat Temperature: %.2f", cfg.OpenAI.ChatTemperature)
		log.Printf("   - Chat MaxTokens: %d", cfg.OpenAI.ChatMaxTokens)
	} else {
		log.Println("⚠️  OpenAI is disabled - query analysis and semantic search will not work")
		log.Println("   Set OPENAI_API_KEY environment variable to enable AI features")
	}

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
		openaiClient,
		cfg.OpenAI.EmbeddingDimensions,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	log.Println("✅ Connected to PostgreSQL database")

	// Index the college dataset at startup
	if cfg.OpenAI.Enabled {
		if _, err := os.Stat(cfg.Retrieval.CSVPath); err == nil {
			added, err := ingest.IndexCSV(context.Background(), cfg.Retrieval.CSVPath, repo, openaiClient)
			if err != nil {
				log.Printf("Warning: dataset indexing failed: %v", err)
			} else if added > 0 {
				log.Printf("✅ Indexed %d new colleges from %s", added, cfg.Retrieval.CSVPath)
			}
		} else {
			log.Printf("⚠️  Dataset %s not found, skipping indexing", cfg.Retrieval.CSVPath)
		}
	}

	// Initialize services
	extractor := service.NewFilterExtractor(openaiClient)
	ranker := service.NewRanker(cfg.Retrieval.MaxResults)
	recommendService := service.NewRecommendService(repo, extractor, ranker, cfg.Retrieval)

	log.Println("✅ Services initialized")

	// Initialize handlers
	recommendHandler := handler.NewRecommendHandler(recommendService)
	adminHandler := handler.NewAdminHandler(recommendService)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		count, err := repo.Count(c.Request.Context())
		status := "healthy"
		if err != nil {
			status = "degraded"
		}
		c.JSON(200, gin.H{
			"status":          status,
			"service":         "campus-guide",
			"version":         Version,
			"indexed_records": count,
			"ai_enabled":      cfg.OpenAI.Enabled,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/recommend", recommendHandler.Recommend)
		apiV1.POST("/recommend/batch", recommendHandler.RecommendBatch)
		apiV1.DELETE("/data", adminHandler.ClearData)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API base: http://localhost:%d/api/v1", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
