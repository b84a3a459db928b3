package main

import (
	"context"
	"database/sql"
	"delivery-sim-service/internal/adapters/repositories"
	"delivery-sim-service/internal/config"
	"delivery-sim-service/internal/platform/db"
	"flag"
	"log"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(config.Get("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal(err)
	}

	seedDir := flag.String("seed-dir", cfg.SeedDir, "directory holding drivers.csv, routes.csv and orders.csv")
	schemaOnly := flag.Bool("schema-only", false, "create tables without seeding")
	flag.Parse()

	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	dialect, err := repositories.DialectFor(cfg.DBDriver)
	if err != nil {
		log.Fatal(err)
	}

	if err := initAndSeed(context.Background(), conn, dialect, *seedDir, *schemaOnly); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect repositories.Dialect, seedDir string, schemaOnly bool) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return err
	}
	log.Println("Schema ready.")

	if schemaOnly {
		return nil
	}

	log.Printf("Seeding database from dir=%s ...", seedDir)
	if err := repositories.SeedFromCSV(ctx, conn, dialect, seedDir); err != nil {
		return err
	}
	log.Println("Seeding complete.")

	return nil
}
