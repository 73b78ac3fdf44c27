// Rebuilds the Qdrant search index from the CV records already stored in
// Postgres. Useful after wiping the vector collection or changing the
// embedding model.
package main

import (
	"context"
	"encoding/json"
	"log"

	"cv-formatter/internal/config"
	"cv-formatter/internal/models"
	"cv-formatter/internal/repositories"
	"cv-formatter/internal/services"
)

func main() {
	log.Println("🚀 Starting CV reindex...")

	cfg := config.Load()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	cvRepo := repositories.NewCVRepository(db)

	geminiService, err := services.NewGeminiService(cfg.Gemini)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	indexer := services.NewIndexerService(geminiService, qdrantService)

	records, err := cvRepo.FindAll()
	if err != nil {
		log.Fatalf("❌ Failed to list cv records: %v", err)
	}

	ctx := context.Background()
	reindexed := 0

	for i := range records {
		record := &records[i]

		var cv models.CanonicalCV
		if err := json.Unmarshal([]byte(record.FormattedCV), &cv); err != nil {
			log.Printf("⚠️  Skipping %s: stored cv is not valid canonical JSON: %v\n", record.ID, err)
			continue
		}

		if err := qdrantService.DeleteRecord(ctx, record.ID.String()); err != nil {
			log.Printf("⚠️  Failed to clear old chunks for %s: %v\n", record.ID, err)
		}

		if err := indexer.IndexRecord(ctx, record, &cv); err != nil {
			log.Printf("⚠️  Failed to index %s: %v\n", record.ID, err)
			continue
		}
		reindexed++
	}

	log.Printf("✅ Reindexed %d of %d records\n", reindexed, len(records))
}
