package transport

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"ecommerce-api/internal/middleware"
	"ecommerce-api/internal/repository"
	"ecommerce-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxImageSize caps uploaded product images at 5 MiB
const maxImageSize = 5 << 20

// ProductRequest represents the product create/update payload
type ProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	SKU         string          `json:"sku"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CategoryID  uuid.UUID       `json:"category_id" validate:"required"`
}

// PurchaseResponse represents the outcome of a purchase
type PurchaseResponse struct {
	Product        string `json:"product"`
	Quantity       int    `json:"quantity"`
	RemainingStock int    `json:"remaining_stock"`
}

// ProductHandler handles HTTP requests for catalog products
type ProductHandler struct {
	catalog    service.CatalogService
	logger     *zap.Logger
	invalidate func()
}

// NewProductHandler creates a new ProductHandler. The invalidate callback is
// invoked after every successful write so cached reads do not serve stale
// catalog state; it may be nil.
func NewProductHandler(catalog service.CatalogService, logger *zap.Logger, invalidate func()) *ProductHandler {
	return &ProductHandler{
		catalog:    catalog,
		logger:     logger,
		invalidate: invalidate,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler, cacheMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		// Public read routes
		r.Group(func(r chi.Router) {
			if cacheMiddleware != nil {
				r.Use(cacheMiddleware)
			}
			r.Get("/", h.List)
			r.Get("/page", h.Page)
			r.Get("/search/{term}", h.Search)
			r.Get("/category/{categoryID}", h.ByCategory)
			r.Get("/{id}", h.Get)
		})

		// Purchases require an authenticated user
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Patch("/buy/{name}/{quantity}", h.Purchase)
		})

		// Catalog writes require an admin
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List handles listing all products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get handles fetching a single product by ID
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to get product", zap.Error(err), zap.String("product_id", id.String()))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Page handles paginated product listing. Page numbers start at 1.
func (h *ProductHandler) Page(w http.ResponseWriter, r *http.Request) {
	pageNumber, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}

	pageSize, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "size must be a positive integer")
		return
	}

	page, err := h.catalog.PageProducts(r.Context(), pageNumber, pageSize)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPageRequest):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPageOutOfRange):
			middleware.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			h.logger.Error("Failed to page products", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to page products")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// Search handles product search over name and description
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := chi.URLParam(r, "term")

	products, err := h.catalog.SearchProducts(r.Context(), term)
	if err != nil {
		if errors.Is(err, service.ErrNoProductsFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "no products found")
			return
		}

		h.logger.Error("Failed to search products", zap.Error(err), zap.String("term", term))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to search products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// ByCategory handles listing products within a category
func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "categoryID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	products, err := h.catalog.ProductsByCategory(r.Context(), categoryID)
	if err != nil {
		if errors.Is(err, service.ErrNoProductsFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "no products found in this category")
			return
		}

		h.logger.Error("Failed to list products by category", zap.Error(err), zap.String("category_id", categoryID.String()))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products by category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Create handles product creation. The payload is either JSON or a
// multipart form with an optional image file under the "image" field.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProductInput(w, r)
	if !ok {
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), input)
	if err != nil {
		h.respondProductWriteError(w, err, "failed to create product")
		return
	}

	if h.invalidate != nil {
		h.invalidate()
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update handles full product replacement
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	input, ok := h.decodeProductInput(w, r)
	if !ok {
		return
	}

	if err := h.catalog.UpdateProduct(r.Context(), id, input); err != nil {
		h.respondProductWriteError(w, err, "failed to update product")
		return
	}

	if h.invalidate != nil {
		h.invalidate()
	}

	h.logger.Info("Product updated", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product updated"})
}

// Delete handles product removal
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to delete product", zap.Error(err), zap.String("product_id", id.String()))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	if h.invalidate != nil {
		h.invalidate()
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// Purchase handles buying a quantity of a product by name. Stock is
// decremented atomically; concurrent purchases never oversell.
func (h *ProductHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	quantity, err := strconv.Atoi(chi.URLParam(r, "quantity"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be an integer")
		return
	}

	remaining, err := h.catalog.Purchase(r.Context(), name, quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuantity), errors.Is(err, service.ErrInvalidProductName):
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, repository.ErrInsufficientStock):
			middleware.RespondWithError(w, http.StatusConflict, "insufficient stock")
		default:
			h.logger.Error("Failed to purchase product", zap.Error(err), zap.String("name", name))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to purchase product")
		}
		return
	}

	if h.invalidate != nil {
		h.invalidate()
	}

	h.logger.Info("Product purchased",
		zap.String("name", name),
		zap.Int("quantity", quantity),
		zap.Int("remaining_stock", remaining),
	)
	middleware.RespondWithJSON(w, http.StatusOK, PurchaseResponse{
		Product:        name,
		Quantity:       quantity,
		RemainingStock: remaining,
	})
}

// decodeProductInput reads a product payload from either a JSON body or a
// multipart form. On failure it writes the error response and returns false.
func (h *ProductHandler) decodeProductInput(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return h.decodeMultipartInput(w, r)
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return service.ProductInput{}, false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return service.ProductInput{}, false
	}

	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		SKU:         req.SKU,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}, true
}

func (h *ProductHandler) decodeMultipartInput(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return service.ProductInput{}, false
	}

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "price must be a decimal number")
		return service.ProductInput{}, false
	}

	stock, err := strconv.Atoi(r.FormValue("stock"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "stock must be an integer")
		return service.ProductInput{}, false
	}

	categoryID, err := uuid.Parse(r.FormValue("category_id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category ID")
		return service.ProductInput{}, false
	}

	input := service.ProductInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		SKU:         r.FormValue("sku"),
		Stock:       stock,
		CategoryID:  categoryID,
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "failed to read image")
			return service.ProductInput{}, false
		}

		input.Image = &service.ImagePayload{
			Data:        data,
			ContentType: header.Header.Get("Content-Type"),
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image upload")
		return service.ProductInput{}, false
	}

	return input, true
}

func (h *ProductHandler) respondProductWriteError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidProductName),
		errors.Is(err, service.ErrInvalidProduct):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusBadRequest, "category does not exist")
	case errors.Is(err, repository.ErrProductAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, "product with this name already exists")
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	default:
		h.logger.Error("Product write failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
