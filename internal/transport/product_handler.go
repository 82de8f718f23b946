package transport

import (
	"net/http"
	"strings"

	"stock-ledger/internal/domain"
	"stock-ledger/internal/middleware"
	"stock-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the add-product payload
type CreateProductRequest struct {
	Name         string          `json:"name" validate:"required"`
	Price        decimal.Decimal `json:"price" validate:"gte=0"`
	Category     string          `json:"category" validate:"required"`
	Description  string          `json:"description"`
	InitialStock int             `json:"initial_stock" validate:"gte=0"`
}

// UpdateProductRequest changes any subset of price, category, description and stock
type UpdateProductRequest struct {
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
}

// ProductHandler handles HTTP requests for the product catalog
type ProductHandler struct {
	ledger *service.Ledger
	logger *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(ledger *service.Ledger, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		ledger: ledger,
		logger: logger,
	}
}

// RegisterRoutes registers all product and category routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.AddCategory)
	})
}

// List returns the catalog, optionally filtered with ?category=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.ledger.Catalog.List(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		filtered := make([]domain.Product, 0, len(products))
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Create adds a product and records its initial stock
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create product validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err)
		return
	}

	product, err := h.ledger.AddProduct(r.Context(), domain.ProductInput{
		Name:         req.Name,
		Price:        req.Price,
		Category:     req.Category,
		Description:  req.Description,
		InitialStock: req.InitialStock,
	})
	if err != nil && product != nil {
		middleware.RespondWithPartialFailure(w, err, map[string]interface{}{
			"product_created": true,
			"product_id":      product.ID,
			"stock_recorded":  false,
		}, h.logger)
		return
	}
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	product, found, err := h.ledger.Catalog.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	if !found {
		middleware.RespondWithDomainError(w, domain.ErrProductNotFound, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Update applies a partial update and returns the stored product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	update := domain.ProductUpdate{
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
	}
	found, err := h.ledger.UpdateProduct(r.Context(), id, update, req.Stock)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	if !found {
		middleware.RespondWithDomainError(w, domain.ErrProductNotFound, h.logger)
		return
	}

	product, _, err := h.ledger.Catalog.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes the product and its stock entry; sales history is kept
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	removed, err := h.ledger.DeleteProduct(r.Context(), id)
	if err != nil && removed {
		middleware.RespondWithPartialFailure(w, err, map[string]interface{}{
			"product_removed": true,
			"product_id":      id,
			"stock_removed":   false,
		}, h.logger)
		return
	}
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	if !removed {
		middleware.RespondWithDomainError(w, domain.ErrProductNotFound, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddCategoryRequest represents the add-category payload
type AddCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.ledger.Catalog.Categories(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// AddCategory responds 201 for a new label and 200 when it already existed
func (h *ProductHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req AddCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	label := strings.TrimSpace(req.Name)
	if label == "" {
		middleware.RespondWithDomainError(w, domain.NewValidationError("name", "must not be empty"), h.logger)
		return
	}

	added, err := h.ledger.Catalog.AddCategory(r.Context(), label)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	middleware.RespondWithJSON(w, status, map[string]interface{}{
		"category": label,
		"added":    added,
	})
}
