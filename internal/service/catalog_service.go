package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecommerce-api/internal/assets"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceholderImageURL is used when a product is created without an image
const PlaceholderImageURL = "https://placehold.co/300x300"

var (
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrInvalidProductName = errors.New("product name must not be empty")
	ErrInvalidProduct     = errors.New("product fields are invalid")
	ErrInvalidCategory    = errors.New("category name must not be empty")
	ErrInvalidPageRequest = errors.New("page number and page size must be greater than zero")
	ErrPageOutOfRange     = errors.New("requested page is beyond the end of the catalog")
	ErrNoProductsFound    = errors.New("no products found")
)

// ImagePayload carries an uploaded product image
type ImagePayload struct {
	Data        []byte
	ContentType string
}

// ProductInput holds the caller-supplied fields for product creation and
// update. Stock is an absolute value; only Purchase applies a delta.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	SKU         string
	Stock       int
	CategoryID  uuid.UUID
	Image       *ImagePayload
}

// ProductPage is the envelope returned by PageProducts
type ProductPage struct {
	Items      []*domain.Product `json:"items"`
	PageNumber int               `json:"page_number"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// CatalogService composes the catalog store, the inventory operations and the
// read-side queries into the operation set the transport layer consumes. It
// performs no invariant logic of its own beyond ordering the calls; the
// store enforces uniqueness, referential integrity and stock bounds
// atomically.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	PageProducts(ctx context.Context, pageNumber, pageSize int) (*ProductPage, error)
	ProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error)
	SearchProducts(ctx context.Context, term string) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Purchase(ctx context.Context, name string, quantity int) (int, error)

	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name string) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	assets     assets.Store
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	assetStore assets.Store,
) CatalogService {
	return &catalogService{
		products:   products,
		categories: categories,
		assets:     assetStore,
	}
}

// ListProducts returns a snapshot of the full catalog in stable order
func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct returns a single product snapshot
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

// PageProducts returns one page of the catalog. Ordering is stable, so for an
// unchanged catalog the concatenation of pages 1..totalPages reproduces the
// full listing exactly.
func (s *catalogService) PageProducts(ctx context.Context, pageNumber, pageSize int) (*ProductPage, error) {
	if pageNumber <= 0 || pageSize <= 0 {
		return nil, ErrInvalidPageRequest
	}

	total, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages > 0 && pageNumber > totalPages {
		return nil, ErrPageOutOfRange
	}

	items := []*domain.Product{}
	if total > 0 {
		items, err = s.products.ListPage(ctx, pageSize, (pageNumber-1)*pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch products page: %w", err)
		}
	}

	return &ProductPage{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ProductsByCategory returns all products in a category. An empty result is
// reported as ErrNoProductsFound so the boundary can answer not-found.
func (s *catalogService) ProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error) {
	products, err := s.products.FindByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by category: %w", err)
	}
	if len(products) == 0 {
		return nil, ErrNoProductsFound
	}
	return products, nil
}

// SearchProducts matches the term case-insensitively against product name and
// description.
func (s *catalogService) SearchProducts(ctx context.Context, term string) ([]*domain.Product, error) {
	products, err := s.products.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	if len(products) == 0 {
		return nil, ErrNoProductsFound
	}
	return products, nil
}

// CreateProduct stores a new product, uploading the image payload first when
// one is supplied. The store rejects duplicate names and unknown categories
// inside the write itself.
func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		SKU:         input.SKU,
		Stock:       input.Stock,
		ImageURL:    PlaceholderImageURL,
		CategoryID:  input.CategoryID,
		CreatedAt:   time.Now(),
	}

	var assetKey string
	if input.Image != nil {
		assetKey = assets.ObjectKey(product.ID, input.Image.ContentType)
		obj, err := s.assets.Save(ctx, assetKey, input.Image.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to store product image: %w", err)
		}
		product.ImageURL = obj.URL
		product.ImageLocalPath = obj.LocalPath
	}

	if err := s.products.Create(ctx, product); err != nil {
		if assetKey != "" {
			_ = s.assets.Delete(ctx, assetKey)
		}
		return nil, err
	}

	return product, nil
}

// UpdateProduct replaces a product's fields. When no image payload is
// supplied the current image references are carried forward, re-read from the
// store rather than trusted from the caller.
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) error {
	if err := validateProductInput(input); err != nil {
		return err
	}

	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}

	product := &domain.Product{
		ID:             id,
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		SKU:            input.SKU,
		Stock:          input.Stock,
		ImageURL:       existing.ImageURL,
		ImageLocalPath: existing.ImageLocalPath,
		CategoryID:     input.CategoryID,
	}

	var assetKey string
	if input.Image != nil {
		assetKey = assets.ObjectKey(id, input.Image.ContentType)
		obj, err := s.assets.Save(ctx, assetKey, input.Image.Data)
		if err != nil {
			return fmt.Errorf("failed to store product image: %w", err)
		}
		product.ImageURL = obj.URL
		product.ImageLocalPath = obj.LocalPath
	}

	if err := s.products.Update(ctx, product); err != nil {
		if assetKey != "" {
			_ = s.assets.Delete(ctx, assetKey)
		}
		return err
	}

	return nil
}

// DeleteProduct removes a product; its category is unaffected
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.products.Delete(ctx, id)
}

// Purchase decrements stock by quantity through the store's atomic
// conditional update and returns the remaining stock. Validation happens
// before any mutation is attempted.
func (s *catalogService) Purchase(ctx context.Context, name string, quantity int) (int, error) {
	if name == "" {
		return 0, ErrInvalidProductName
	}
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}

	return s.products.PurchaseByName(ctx, name, quantity)
}

// ListCategories returns all categories
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns a single category
func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categories.FindByID(ctx, id)
}

// CreateCategory stores a new category with a unique, non-empty name
func (s *catalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	if name == "" {
		return nil, ErrInvalidCategory
	}

	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// UpdateCategory renames a category
func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name string) error {
	if name == "" {
		return ErrInvalidCategory
	}

	return s.categories.Update(ctx, &domain.Category{ID: id, Name: name})
}

// DeleteCategory removes a category; the store rejects the delete while any
// product still references it.
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categories.Delete(ctx, id)
}

func validateProductInput(input ProductInput) error {
	if input.Name == "" {
		return ErrInvalidProductName
	}
	if input.Stock < 0 || input.Price.IsNegative() {
		return ErrInvalidProduct
	}
	if input.CategoryID == uuid.Nil {
		return repository.ErrCategoryNotFound
	}
	return nil
}
