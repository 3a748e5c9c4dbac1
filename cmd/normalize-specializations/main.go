package main

import (
	"context"
	"log"

	"lawsuit_tracker_go/config"
	"lawsuit_tracker_go/db"
	"lawsuit_tracker_go/logger"
	"lawsuit_tracker_go/models"
	"lawsuit_tracker_go/repository"
	"lawsuit_tracker_go/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	conn, err := db.Open(db.Options{
		Path:        cfg.DBPath,
		RemoteURL:   cfg.TursoDatabaseURL,
		AuthToken:   cfg.TursoAuthToken,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close(conn)

	log.Println("Starting specialization migration for existing lawyers...")

	lawyers, err := repository.New[models.Lawyer](conn, "Lawyer")
	if err != nil {
		log.Fatalf("Failed to build lawyer repository: %v", err)
	}

	changed, err := services.NormalizeStoredSpecializations(context.Background(),
		lawyers, logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}))
	if err != nil {
		log.Fatalf("Failed to fetch lawyers: %v", err)
	}

	if changed == 0 {
		log.Println("No lawyers need migration. All specializations are already normalized.")
		return
	}
	log.Printf("Specialization migration completed successfully! (%d updated)\n", changed)
}
