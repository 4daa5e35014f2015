package main

import (
	"context"
	"database/sql"
	"log"

	"shop-bot/internal/config"
	"shop-bot/internal/models"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// Seeds a development database with a small stock list so the shop
// has something to sell locally.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}

	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL: %v", err)
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, pgdialect.New())
	ctx := context.Background()

	items := []models.StockItem{
		{ID: uuid.NewString(), Set: "Knight", Name: "Sword", Price: 30, Quantity: 5},
		{ID: uuid.NewString(), Set: "Knight", Name: "Helm", Price: 10, Quantity: 5},
		{ID: uuid.NewString(), Set: "Knight", Name: "Shield", Price: 20, Quantity: 5},
		{ID: uuid.NewString(), Set: "", Name: "Potion", Price: 5, Quantity: 25},
		{ID: uuid.NewString(), Set: "", Name: "Mystery Box", Price: 50, Quantity: 3},
	}

	for _, item := range items {
		if _, err := db.NewInsert().Model(&item).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
			log.Fatalf("Failed to seed %s: %v", item.DisplayName(), err)
		}
		log.Printf("Seeded %s ($%d x%d)", item.DisplayName(), item.Price, item.Quantity)
	}

	log.Printf("Seeded %d stock items", len(items))
}
