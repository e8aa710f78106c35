package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog. Stock is authoritative in the
// store only; instances handed to callers are snapshots.
type Product struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Description    string          `json:"description" db:"description"`
	Price          decimal.Decimal `json:"price" db:"price"`
	SKU            string          `json:"sku" db:"sku"`
	Stock          int             `json:"stock" db:"stock"`
	ImageURL       string          `json:"image_url" db:"image_url"`
	ImageLocalPath string          `json:"image_local_path,omitempty" db:"image_local_path"`
	CategoryID     uuid.UUID       `json:"category_id" db:"category_id"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty" db:"updated_at"`
}

// Category represents a product category
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
