package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/repository"
	"ecommerce-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// catalogStub implements service.CatalogService with overridable behavior
type catalogStub struct {
	listProducts       func(ctx context.Context) ([]*domain.Product, error)
	getProduct         func(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	pageProducts       func(ctx context.Context, pageNumber, pageSize int) (*service.ProductPage, error)
	productsByCategory func(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error)
	searchProducts     func(ctx context.Context, term string) ([]*domain.Product, error)
	createProduct      func(ctx context.Context, input service.ProductInput) (*domain.Product, error)
	updateProduct      func(ctx context.Context, id uuid.UUID, input service.ProductInput) error
	deleteProduct      func(ctx context.Context, id uuid.UUID) error
	purchase           func(ctx context.Context, name string, quantity int) (int, error)
	listCategories     func(ctx context.Context) ([]*domain.Category, error)
	getCategory        func(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	createCategory     func(ctx context.Context, name string) (*domain.Category, error)
	updateCategory     func(ctx context.Context, id uuid.UUID, name string) error
	deleteCategory     func(ctx context.Context, id uuid.UUID) error
}

func (s *catalogStub) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.listProducts(ctx)
}

func (s *catalogStub) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.getProduct(ctx, id)
}

func (s *catalogStub) PageProducts(ctx context.Context, pageNumber, pageSize int) (*service.ProductPage, error) {
	return s.pageProducts(ctx, pageNumber, pageSize)
}

func (s *catalogStub) ProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error) {
	return s.productsByCategory(ctx, categoryID)
}

func (s *catalogStub) SearchProducts(ctx context.Context, term string) ([]*domain.Product, error) {
	return s.searchProducts(ctx, term)
}

func (s *catalogStub) CreateProduct(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
	return s.createProduct(ctx, input)
}

func (s *catalogStub) UpdateProduct(ctx context.Context, id uuid.UUID, input service.ProductInput) error {
	return s.updateProduct(ctx, id, input)
}

func (s *catalogStub) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.deleteProduct(ctx, id)
}

func (s *catalogStub) Purchase(ctx context.Context, name string, quantity int) (int, error) {
	return s.purchase(ctx, name, quantity)
}

func (s *catalogStub) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.listCategories(ctx)
}

func (s *catalogStub) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.getCategory(ctx, id)
}

func (s *catalogStub) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	return s.createCategory(ctx, name)
}

func (s *catalogStub) UpdateCategory(ctx context.Context, id uuid.UUID, name string) error {
	return s.updateCategory(ctx, id, name)
}

func (s *catalogStub) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.deleteCategory(ctx, id)
}

func passThrough(next http.Handler) http.Handler { return next }

func newProductRouter(stub *catalogStub) *chi.Mux {
	router := chi.NewRouter()
	handler := NewProductHandler(stub, zap.NewNop(), nil)
	handler.RegisterRoutes(router, passThrough, passThrough, nil)
	return router
}

func sampleProduct(name string) *domain.Product {
	return &domain.Product{
		ID:         uuid.New(),
		Name:       name,
		Price:      decimal.NewFromFloat(2.50),
		Stock:      5,
		CategoryID: uuid.New(),
		CreatedAt:  time.Now(),
	}
}

func TestProductHandler_Purchase(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		purchase   func(ctx context.Context, name string, quantity int) (int, error)
		wantStatus int
	}{
		{
			name: "successful purchase",
			url:  "/api/products/buy/soda/3",
			purchase: func(ctx context.Context, name string, quantity int) (int, error) {
				if name != "soda" || quantity != 3 {
					t.Errorf("unexpected call: %q %d", name, quantity)
				}
				return 7, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "insufficient stock",
			url:  "/api/products/buy/soda/30",
			purchase: func(ctx context.Context, name string, quantity int) (int, error) {
				return 0, repository.ErrInsufficientStock
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "unknown product",
			url:  "/api/products/buy/ghost/1",
			purchase: func(ctx context.Context, name string, quantity int) (int, error) {
				return 0, repository.ErrProductNotFound
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "zero quantity",
			url:  "/api/products/buy/soda/0",
			purchase: func(ctx context.Context, name string, quantity int) (int, error) {
				return 0, service.ErrInvalidQuantity
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "non-numeric quantity",
			url:        "/api/products/buy/soda/lots",
			purchase:   nil,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newProductRouter(&catalogStub{purchase: tt.purchase})

			req := httptest.NewRequest(http.MethodPatch, tt.url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.wantStatus, rec.Code, rec.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var response PurchaseResponse
				if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if response.RemainingStock != 7 || response.Quantity != 3 {
					t.Errorf("unexpected response: %+v", response)
				}
			}
		})
	}
}

func TestProductHandler_Get(t *testing.T) {
	product := sampleProduct("soda")
	stub := &catalogStub{
		getProduct: func(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
			if id == product.ID {
				return product, nil
			}
			return nil, repository.ErrProductNotFound
		},
	}
	router := newProductRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/"+product.ID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Errorf("existing product: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/"+uuid.New().String(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing product: expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed ID: expected 400, got %d", rec.Code)
	}
}

func TestProductHandler_Page(t *testing.T) {
	stub := &catalogStub{
		pageProducts: func(ctx context.Context, pageNumber, pageSize int) (*service.ProductPage, error) {
			if pageNumber > 2 {
				return nil, service.ErrPageOutOfRange
			}
			return &service.ProductPage{
				Items:      []*domain.Product{sampleProduct("soda")},
				PageNumber: pageNumber,
				PageSize:   pageSize,
				TotalPages: 2,
			}, nil
		},
	}
	router := newProductRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/page?page=1&size=5", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("valid page: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/page?page=9&size=5", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("page out of range: expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/page?page=abc&size=5", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric page: expected 400, got %d", rec.Code)
	}
}

func TestProductHandler_Search(t *testing.T) {
	stub := &catalogStub{
		searchProducts: func(ctx context.Context, term string) ([]*domain.Product, error) {
			if term == "soda" {
				return []*domain.Product{sampleProduct("soda")}, nil
			}
			return nil, service.ErrNoProductsFound
		},
	}
	router := newProductRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/search/soda", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("matching search: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/search/nothing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("empty search: expected 404, got %d", rec.Code)
	}
}

func TestProductHandler_Create(t *testing.T) {
	categoryID := uuid.New()

	tests := []struct {
		name       string
		body       string
		create     func(ctx context.Context, input service.ProductInput) (*domain.Product, error)
		wantStatus int
	}{
		{
			name: "created",
			body: `{"name":"soda","price":"2.50","stock":5,"category_id":"` + categoryID.String() + `"}`,
			create: func(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
				if input.Name != "soda" || input.CategoryID != categoryID {
					t.Errorf("unexpected input: %+v", input)
				}
				return sampleProduct("soda"), nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "duplicate name",
			body: `{"name":"soda","price":"2.50","stock":5,"category_id":"` + categoryID.String() + `"}`,
			create: func(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
				return nil, repository.ErrProductAlreadyExists
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "unknown category",
			body: `{"name":"soda","price":"2.50","stock":5,"category_id":"` + categoryID.String() + `"}`,
			create: func(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
				return nil, repository.ErrCategoryNotFound
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing name",
			body:       `{"price":"2.50","stock":5,"category_id":"` + categoryID.String() + `"}`,
			create:     nil,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{"name":`,
			create:     nil,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newProductRouter(&catalogStub{createProduct: tt.create})

			req := httptest.NewRequest(http.MethodPost, "/api/products/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestProductHandler_Delete(t *testing.T) {
	stub := &catalogStub{
		deleteProduct: func(ctx context.Context, id uuid.UUID) error {
			return repository.ErrProductNotFound
		},
	}
	router := newProductRouter(stub)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/products/"+uuid.New().String(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
