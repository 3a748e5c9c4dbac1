package main

import (
	"context"
	"os"

	"lawsuit_tracker_go/config"
	"lawsuit_tracker_go/container"
	"lawsuit_tracker_go/db"
	"lawsuit_tracker_go/logger"
	"lawsuit_tracker_go/services"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	conn, err := db.Open(db.Options{
		Path:        cfg.DBPath,
		RemoteURL:   cfg.TursoDatabaseURL,
		AuthToken:   cfg.TursoAuthToken,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Error("Failed to initialize database", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close(conn)

	if err := db.AutoMigrate(conn); err != nil {
		log.Error("Failed to run migrations", "error", err.Error())
		os.Exit(1)
	}

	app := container.NewApp(conn, log, services.PolicyFromConfig(cfg))
	lawyers, err := app.Lawyers()
	if err != nil {
		log.Error("Failed to build lawyer service", "error", err.Error())
		os.Exit(1)
	}
	lawsuits, err := app.Lawsuits()
	if err != nil {
		log.Error("Failed to build lawsuit service", "error", err.Error())
		os.Exit(1)
	}

	if _, err := services.SeedDemoData(context.Background(), lawyers, lawsuits, log); err != nil {
		log.Error("Seeding failed", "error", err.Error())
		os.Exit(1)
	}
}
