package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"lawsuit_tracker_go/config"
	"lawsuit_tracker_go/container"
	"lawsuit_tracker_go/db"
	"lawsuit_tracker_go/logger"
	"lawsuit_tracker_go/models"
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

	// Run migrations
	if err := db.AutoMigrate(conn); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	app := container.NewApp(conn, logger.Discard(), services.PolicyFromConfig(cfg))
	lawyers, err := app.Lawyers()
	if err != nil {
		log.Fatalf("Failed to build lawyer service: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	// Get lawyer details
	fmt.Println("=== Create New Lawyer ===")
	fmt.Println()

	name := prompt(reader, "Name: ")
	email := strings.ToLower(prompt(reader, "Email: "))
	phone := prompt(reader, "Phone: ")
	specialization := prompt(reader, "Specialization: ")

	// Validate inputs
	if name == "" || email == "" || phone == "" || specialization == "" {
		log.Fatal("Name, email, phone, and specialization are required")
	}

	lawyer, err := lawyers.Create(context.Background(), &models.Lawyer{
		Name:           name,
		Email:          email,
		Phone:          phone,
		Specialization: specialization,
	})
	if err != nil {
		log.Fatalf("Failed to create lawyer: %v", err)
	}

	fmt.Println()
	fmt.Println("✓ Lawyer created successfully!")
	fmt.Printf("  ID: %s\n", lawyer.ID)
	fmt.Printf("  Name: %s\n", lawyer.Name)
	fmt.Printf("  Email: %s\n", lawyer.Email)
	fmt.Printf("  Specialization: %s\n", lawyer.Specialization)
	fmt.Println()
	fmt.Println("The lawyer is active and can receive lawsuit assignments.")
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	value, _ := reader.ReadString('\n')
	return strings.TrimSpace(value)
}
