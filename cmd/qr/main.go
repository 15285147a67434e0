package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	qrcode "github.com/skip2/go-qrcode"

	"karaoke/internal/config"
	"karaoke/internal/database"
	"karaoke/internal/domain"
)

// Renders one QR PNG per active table. Each code encodes the join URL
// guests scan to open a session at that table.
func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "public base URL of the venue app")
	outDir := flag.String("out", "qr", "output directory for the PNG files")
	size := flag.Int("size", 512, "PNG size in pixels")
	flag.Parse()

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

	var tables []domain.Table
	if err := db.Where("active = ?", true).Order("id ASC").Find(&tables).Error; err != nil {
		log.Fatalf("Failed to load tables: %v", err)
	}
	if len(tables) == 0 {
		log.Fatal("No active tables; run cmd/seed first")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	for _, t := range tables {
		joinURL := fmt.Sprintf("%s/join?code=%s", *baseURL, t.JoinCode)
		path := filepath.Join(*outDir, fmt.Sprintf("table_%d.png", t.ID))
		if err := qrcode.WriteFile(joinURL, qrcode.Medium, *size, path); err != nil {
			log.Fatalf("Failed to write QR for table %d: %v", t.ID, err)
		}
		log.Printf("%s -> %s", t.Name, path)
	}
}
