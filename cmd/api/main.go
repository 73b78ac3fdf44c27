package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"cv-formatter/internal/config"
	"cv-formatter/internal/export"
	"cv-formatter/internal/handlers"
	"cv-formatter/internal/repositories"
	"cv-formatter/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repository
	cvRepo := repositories.NewCVRepository(db)
	log.Println("✅ Repository initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	extractor := services.NewExtractorService()
	normalizer := services.NewNormalizerService(cfg.Normalizer)
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant
	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	indexer := services.NewIndexerService(geminiService, qdrantService)

	// Initialize formatter pipeline
	formatterService := services.NewFormatterService(
		cvRepo,
		extractor,
		geminiService,
		normalizer,
		indexer,
		3,
	)
	log.Println("✅ Formatter pipeline initialized")

	// Initialize exporter
	rasterizer := export.NewChromeRasterizer(cfg.Renderer.ChromePath)
	exporter := export.NewExporter(rasterizer)

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(
		storageService,
		formatterService,
		cfg.Storage.MaxFileSize,
	)
	cvHandler := handlers.NewCVHandler(cvRepo)
	exportHandler := handlers.NewExportHandler(cvRepo, exporter)
	searchHandler := handlers.NewSearchHandler(cvRepo, indexer)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CV Formatter API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/cv/upload", uploadHandler.HandleUpload)
	api.Get("/cv", cvHandler.HandleList)
	api.Get("/cv/search", searchHandler.HandleSearch)
	api.Get("/cv/:id", cvHandler.HandleGet)
	api.Get("/cv/:id/export/:format", exportHandler.HandleExport)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "CV Formatter API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/cv/upload",
				"GET /api/v1/cv",
				"GET /api/v1/cv/search",
				"GET /api/v1/cv/:id",
				"GET /api/v1/cv/:id/export/:format",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
