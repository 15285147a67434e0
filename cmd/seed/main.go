package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"karaoke/internal/config"
	"karaoke/internal/database"
	"karaoke/internal/domain"
)

// Seeds a dev database with a handful of tables and a basic drinks menu.
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

	for i := 1; i <= 10; i++ {
		t := domain.Table{
			Name:     fmt.Sprintf("Mesa %d", i),
			JoinCode: uuid.NewString(),
			Active:   true,
		}
		if err := db.Where("name = ?", t.Name).FirstOrCreate(&t).Error; err != nil {
			log.Fatalf("Failed to seed table %q: %v", t.Name, err)
		}
		log.Printf("table %q join code: %s", t.Name, t.JoinCode)
	}

	products := []domain.Product{
		{Name: "Cerveza", Price: 60, Stock: 200, Active: true},
		{Name: "Cubeta de cerveza", Price: 300, Stock: 40, Active: true},
		{Name: "Margarita", Price: 120, Stock: 80, Active: true},
		{Name: "Refresco", Price: 35, Stock: 150, Active: true},
		{Name: "Botana mixta", Price: 90, Stock: 60, Active: true},
	}
	for _, p := range products {
		if err := db.Where("name = ?", p.Name).FirstOrCreate(&p).Error; err != nil {
			log.Fatalf("Failed to seed product %q: %v", p.Name, err)
		}
	}

	log.Println("Seed complete")
}
