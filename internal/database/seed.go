package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Seed inserts baseline catalog data. It is invoked explicitly from main
// before the server accepts traffic and is a no-op when categories already
// exist, so restarts never duplicate rows.
func Seed(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("failed to check existing categories: %w", err)
	}
	if count > 0 {
		logger.Debug("Catalog already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	categories := map[string]uuid.UUID{
		"Electronics": uuid.New(),
		"Clothing":    uuid.New(),
		"Books":       uuid.New(),
	}

	for name, id := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, name, created_at) VALUES ($1, $2, NOW())`,
			id, name,
		); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", name, err)
		}
	}

	products := []struct {
		name        string
		description string
		price       string
		sku         string
		stock       int
		category    string
	}{
		{"Smartphone X", "Latest model with 128GB storage", "699.99", "ELEC-0001", 25, "Electronics"},
		{"Wireless Headphones", "Noise-cancelling over-ear headphones", "149.50", "ELEC-0002", 40, "Electronics"},
		{"Denim Jacket", "Classic fit denim jacket", "59.90", "CLTH-0001", 15, "Clothing"},
		{"Programming Pearls", "Essays on programming craft", "24.95", "BOOK-0001", 30, "Books"},
	}

	for _, p := range products {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, name, description, price, sku, stock, image_url, category_id, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
			uuid.New(), p.name, p.description, p.price, p.sku, p.stock,
			"https://placehold.co/300x300", categories[p.category],
		); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	logger.Info("Catalog seeded",
		zap.Int("categories", len(categories)),
		zap.Int("products", len(products)),
	)
	return nil
}
