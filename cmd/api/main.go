package main

import (
	"fmt"
	"log"

	"docqa-api/internal/adapter/openai"
	"docqa-api/internal/adapter/repository/postgres"
	"docqa-api/internal/delivery/http/handler"
	"docqa-api/internal/usecase/rag"
	"docqa-api/pkg/config"
	"docqa-api/pkg/database"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("connected to database")

	// initialize openai clients
	embeddingClient := openai.NewEmbeddingClient(cfg.OpenAIKey, cfg.OpenAIEmbeddingModel)
	chatClient := openai.NewChatClient(cfg.OpenAIKey, cfg.OpenAIChatModel)

	// initialize repository
	chunkRepo := postgres.NewChunkRepository(db)

	// initialize usecase
	ragUsecase := rag.NewRAGUsecase(
		chunkRepo,
		embeddingClient,
		chatClient,
		rag.NewPDFExtractor(),
		cfg.ChunkSize,
		cfg.ChunkOverlap,
		cfg.TopKResults,
		cfg.SimilarityThreshold,
	)

	// initialize handler
	ragHandler := handler.NewRAGHandler(ragUsecase)

	// initialize fiber app
	app := fiber.New()

	// middleware for log request and response in terminal
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to the document QA API"})
	})

	api := app.Group("/api")
	api.Post("/upload", ragHandler.Upload)
	api.Post("/chat", ragHandler.Chat)
	api.Get("/documents", ragHandler.ListSources)

	// Start server
	log.Printf("🚀 Server starting on port %d", cfg.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
