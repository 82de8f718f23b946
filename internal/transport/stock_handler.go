package transport

import (
	"net/http"

	"stock-ledger/internal/domain"
	"stock-ledger/internal/middleware"
	"stock-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SetStockRequest overwrites a stock level
type SetStockRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// AdjustStockRequest adds to (or subtracts from) a stock level
type AdjustStockRequest struct {
	Delta *int `json:"delta" validate:"required"`
}

// StockLevelResponse is the stock state of one product.
// LastUpdated is null when the product never had an entry.
type StockLevelResponse struct {
	ProductID   int               `json:"product_id"`
	Quantity    int               `json:"quantity"`
	LastUpdated *domain.Timestamp `json:"last_updated"`
}

// StockHandler handles HTTP requests for stock levels
type StockHandler struct {
	ledger *service.Ledger
	logger *zap.Logger
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(ledger *service.Ledger, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		ledger: ledger,
		logger: logger,
	}
}

// RegisterRoutes registers all stock routes
func (h *StockHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/stock", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Set)
		r.Post("/{id}/adjust", h.Adjust)
	})
}

// List returns every stock entry keyed by product id
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	stock, err := h.ledger.Stock.All(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stock)
}

func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	entry, ok, err := h.ledger.Stock.Entry(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	resp := StockLevelResponse{ProductID: id, Quantity: entry.Quantity}
	if ok {
		resp.LastUpdated = &entry.LastUpdated
	}
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// Set overwrites the level of an existing product
func (h *StockHandler) Set(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req SetStockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	if err := h.ledger.Stock.Set(r.Context(), id, *req.Quantity); err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	h.respondWithLevel(w, r, id)
}

// Adjust applies a signed delta; the level never drops below zero
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req AdjustStockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	if _, err := h.ledger.Stock.Adjust(r.Context(), id, *req.Delta); err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	h.respondWithLevel(w, r, id)
}

// productID resolves the {id} parameter to an existing product
func (h *StockHandler) productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return 0, false
	}

	_, found, err := h.ledger.Catalog.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return 0, false
	}
	if !found {
		middleware.RespondWithDomainError(w, domain.ErrProductNotFound, h.logger)
		return 0, false
	}
	return id, true
}

func (h *StockHandler) respondWithLevel(w http.ResponseWriter, r *http.Request, id int) {
	entry, _, err := h.ledger.Stock.Entry(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, StockLevelResponse{
		ProductID:   id,
		Quantity:    entry.Quantity,
		LastUpdated: &entry.LastUpdated,
	})
}
