package transport

import (
	"net/http"
	"time"

	"stock-ledger/internal/domain"
	"stock-ledger/internal/middleware"
	"stock-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AddItemRequest adds quantity units of a product to a pending sale
type AddItemRequest struct {
	ProductID int `json:"product_id" validate:"required,gte=1"`
	Quantity  int `json:"quantity" validate:"required,gte=1"`
}

// PendingSaleResponse is the current state of a pending sale
type PendingSaleResponse struct {
	ID         string            `json:"id"`
	Items      []domain.LineItem `json:"items"`
	Total      decimal.Decimal   `json:"total"`
	ItemsCount int               `json:"items_count"`
}

func newPendingSaleResponse(id uuid.UUID, sale *domain.PendingSale) PendingSaleResponse {
	return PendingSaleResponse{
		ID:         id.String(),
		Items:      sale.Items(),
		Total:      sale.Total(),
		ItemsCount: sale.ItemsCount(),
	}
}

// SaleHandler handles HTTP requests for pending and completed sales
type SaleHandler struct {
	sales   service.SalesLog
	pending *pendingRegistry
	loc     *time.Location
	logger  *zap.Logger
}

// NewSaleHandler creates a new SaleHandler. Query dates without a zone are
// read in loc.
func NewSaleHandler(sales service.SalesLog, loc *time.Location, logger *zap.Logger) *SaleHandler {
	if loc == nil {
		loc = time.Local
	}
	return &SaleHandler{
		sales:   sales,
		pending: newPendingRegistry(nil),
		loc:     loc,
		logger:  logger,
	}
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sales", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Route("/pending", func(r chi.Router) {
			r.Post("/", h.Begin)
			r.Get("/{pid}", h.GetPending)
			r.Delete("/{pid}", h.Cancel)
			r.Post("/{pid}/items", h.AddItem)
			r.Delete("/{pid}/items/{productID}", h.RemoveItem)
			r.Post("/{pid}/finalize", h.Finalize)
		})
	})
}

// Begin opens an empty pending sale
func (h *SaleHandler) Begin(w http.ResponseWriter, r *http.Request) {
	sale := h.sales.Begin()
	id := h.pending.open(sale)

	h.logger.Debug("Pending sale opened", zap.String("pending_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, newPendingSaleResponse(id, sale))
}

func (h *SaleHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pendingID(w, r)
	if !ok {
		return
	}

	var resp PendingSaleResponse
	if !h.pending.with(id, func(sale *domain.PendingSale) {
		resp = newPendingSaleResponse(id, sale)
	}) {
		middleware.RespondWithError(w, http.StatusNotFound, "pending sale not found")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// Cancel discards a pending sale without touching stock
func (h *SaleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pendingID(w, r)
	if !ok {
		return
	}
	if !h.pending.discard(id) {
		middleware.RespondWithError(w, http.StatusNotFound, "pending sale not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SaleHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pendingID(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	var (
		resp PendingSaleResponse
		err  error
	)
	found := h.pending.with(id, func(sale *domain.PendingSale) {
		if _, err = h.sales.AddItem(r.Context(), sale, req.ProductID, req.Quantity); err == nil {
			resp = newPendingSaleResponse(id, sale)
		}
	})
	if !found {
		middleware.RespondWithError(w, http.StatusNotFound, "pending sale not found")
		return
	}
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *SaleHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pendingID(w, r)
	if !ok {
		return
	}
	productID, err := pathID(r, "productID")
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	var (
		resp    PendingSaleResponse
		removed bool
	)
	found := h.pending.with(id, func(sale *domain.PendingSale) {
		removed = h.sales.RemoveItem(sale, productID)
		resp = newPendingSaleResponse(id, sale)
	})
	if !found {
		middleware.RespondWithError(w, http.StatusNotFound, "pending sale not found")
		return
	}
	if !removed {
		middleware.RespondWithError(w, http.StatusNotFound, "product is not in the pending sale")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// Finalize records the sale. The pending sale survives a failed finalize so
// the operator can retry.
func (h *SaleHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pendingID(w, r)
	if !ok {
		return
	}

	var (
		sale *domain.Sale
		err  error
	)
	found := h.pending.with(id, func(pending *domain.PendingSale) {
		sale, err = h.sales.Finalize(r.Context(), pending)
	})
	if !found {
		middleware.RespondWithError(w, http.StatusNotFound, "pending sale not found")
		return
	}
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.pending.discard(id)

	fields := []zap.Field{zap.Int("sale_id", sale.ID), zap.String("pending_id", id.String())}
	if operator, ok := middleware.GetOperator(r.Context()); ok {
		fields = append(fields, zap.String("operator", operator))
	}
	h.logger.Info("Sale recorded", fields...)

	middleware.RespondWithJSON(w, http.StatusCreated, sale)
}

// List returns completed sales. Filters, by precedence:
// ?day=, ?year=&month=, ?from=&to= (inclusive, either bound optional).
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	sales, err := h.query(r)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, sales)
}

func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	sale, found, err := h.sales.ByID(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	if !found {
		middleware.RespondWithDomainError(w, domain.ErrSaleNotFound, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) query(r *http.Request) ([]domain.Sale, error) {
	ctx := r.Context()

	day, hasDay, err := queryTime(r, "day", h.loc, false)
	if err != nil {
		return nil, err
	}
	if hasDay {
		return h.sales.ForDay(ctx, day)
	}

	year, hasYear, err := queryInt(r, "year")
	if err != nil {
		return nil, err
	}
	month, hasMonth, err := queryInt(r, "month")
	if err != nil {
		return nil, err
	}
	if hasYear || hasMonth {
		if !hasYear || !hasMonth {
			return nil, domain.NewValidationError("month", "year and month go together")
		}
		if month < 1 || month > 12 {
			return nil, domain.NewValidationError("month", "must be between 1 and 12")
		}
		return h.sales.ForMonth(ctx, year, time.Month(month))
	}

	from, to, ok, err := queryRange(r, h.loc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return h.sales.All(ctx)
	}
	return h.sales.InRange(ctx, from, to)
}

func (h *SaleHandler) pendingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "pid"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid pending sale id")
		return uuid.Nil, false
	}
	return id, true
}
