package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecommerce-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this name already exists")
	ErrInsufficientStock    = errors.New("insufficient stock")
)

// Postgres error codes surfaced by constraint violations. Uniqueness and
// foreign-key checks ride on the insert/update itself, so there is no
// check-then-act window between concurrent writers.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	ListPage(ctx context.Context, limit, offset int) ([]*domain.Product, error)
	Count(ctx context.Context) (int, error)
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error)
	Search(ctx context.Context, term string) ([]*domain.Product, error)
	PurchaseByName(ctx context.Context, name string, quantity int) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, price, sku, stock, image_url, image_local_path, category_id, created_at, updated_at`

// Create inserts a new product. Name uniqueness and category existence are
// enforced by the insert's own constraints inside one atomic statement.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, sku, stock, image_url, image_local_path, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.SKU,
		product.Stock,
		product.ImageURL,
		product.ImageLocalPath,
		product.CategoryID,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return ErrProductAlreadyExists
			case pgForeignKeyViolation:
				return ErrCategoryNotFound
			}
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update replaces all mutable fields of an existing product. Stock is taken
// as an absolute value here; purchases go through PurchaseByName instead.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, sku = $5, stock = $6,
		    image_url = $7, image_local_path = $8, category_id = $9, updated_at = $10
		WHERE id = $1
	`

	now := time.Now()
	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.SKU,
		product.Stock,
		product.ImageURL,
		product.ImageLocalPath,
		product.CategoryID,
		now,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return ErrProductAlreadyExists
			case pgForeignKeyViolation:
				return ErrCategoryNotFound
			}
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	product.UpdatedAt = &now
	return nil
}

// Delete removes a product from the database
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product snapshot by ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindByName retrieves a product snapshot by its unique name
func (r *productRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

// List retrieves all products in stable order
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// ListPage retrieves one page of products. The ordering matches List, so
// concatenated pages reproduce the full listing without gaps or duplicates.
func (r *productRepository) ListPage(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products page: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// Count returns the total number of products
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// FindByCategory retrieves all products belonging to a category
func (r *productRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by category: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// Search matches the term case-insensitively against product name and
// description.
func (r *productRepository) Search(ctx context.Context, term string) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, "%"+term+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return r.scanMany(rows)
}

// PurchaseByName decrements stock by quantity in a single conditional update.
// The sufficiency check and the decrement execute as one row-locked
// read-modify-write, so concurrent purchases serialize and stock can never go
// negative. Returns the remaining stock on success.
func (r *productRepository) PurchaseByName(ctx context.Context, name string, quantity int) (int, error) {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = $3
		WHERE name = $1 AND stock >= $2
		RETURNING stock
	`

	var remaining int
	err := r.db.QueryRowContext(ctx, query, name, quantity, time.Now()).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to purchase product: %w", err)
	}

	// No row matched: either the product does not exist or stock was short.
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE name = $1)`, name,
	).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check product existence: %w", err)
	}
	if !exists {
		return 0, ErrProductNotFound
	}
	return 0, ErrInsufficientStock
}

func (r *productRepository) scanOne(row *sql.Row) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.SKU,
		&product.Stock,
		&product.ImageURL,
		&product.ImageLocalPath,
		&product.CategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	return product, nil
}

func (r *productRepository) scanMany(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.SKU,
			&product.Stock,
			&product.ImageURL,
			&product.ImageLocalPath,
			&product.CategoryID,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
