package transport

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"stock-ledger/internal/domain"
	"stock-ledger/internal/middleware"
	"stock-ledger/internal/report"
	"stock-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// defaultTopProducts is the best sellers length when ?top= is absent
const defaultTopProducts = 10

// DashboardResponse bundles the summary figures with the chart series
type DashboardResponse struct {
	report.Summary
	DailySales         []report.DailyTotal    `json:"daily_sales"`
	TopProducts        []report.ProductSales  `json:"top_products"`
	StockByCategory    []report.CategoryStock `json:"stock_by_category"`
	ProductsByCategory []report.CategoryCount `json:"products_by_category"`
}

// ReportHandler serves read-only reports and exports
type ReportHandler struct {
	ledger *service.Ledger
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(ledger *service.Ledger, loc *time.Location, logger *zap.Logger) *ReportHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReportHandler{
		ledger: ledger,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// RegisterRoutes registers all report routes
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/reports", func(r chi.Router) {
		r.Get("/summary", h.Summary)
		r.Get("/stock", h.Stock)
		r.Get("/categories", h.Categories)
		r.Get("/export.csv", h.ExportCSV)
		r.Get("/export.xlsx", h.ExportWorkbook)
	})
}

type snapshot struct {
	products []domain.Product
	stock    domain.StockMap
	sales    []domain.Sale
}

// load reads the three documents. Sales are narrowed to ?from=&to= when
// either is given; products and stock are always complete.
func (h *ReportHandler) load(r *http.Request) (snapshot, error) {
	ctx := r.Context()

	from, to, ranged, err := queryRange(r, h.loc)
	if err != nil {
		return snapshot{}, err
	}

	products, err := h.ledger.Catalog.List(ctx)
	if err != nil {
		return snapshot{}, err
	}
	stock, err := h.ledger.Stock.All(ctx)
	if err != nil {
		return snapshot{}, err
	}
	var sales []domain.Sale
	if ranged {
		sales, err = h.ledger.Sales.InRange(ctx, from, to)
	} else {
		sales, err = h.ledger.Sales.All(ctx)
	}
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{products: products, stock: stock, sales: sales}, nil
}

// Summary serves the dashboard; ?from=&to= narrow the sale figures and
// ?top= sets the best sellers length
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	top, hasTop, err := queryInt(r, "top")
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	if !hasTop {
		top = defaultTopProducts
	}

	snap, err := h.load(r)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, DashboardResponse{
		Summary:            report.BuildSummary(snap.products, snap.sales, snap.stock),
		DailySales:         report.DailyTotals(snap.sales, h.loc),
		TopProducts:        report.TopProducts(snap.sales, top),
		StockByCategory:    report.StockByCategory(snap.products, snap.stock),
		ProductsByCategory: report.CategoryCounts(snap.products),
	})
}

// Categories counts products per category
func (h *ReportHandler) Categories(w http.ResponseWriter, r *http.Request) {
	products, err := h.ledger.Catalog.List(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, report.CategoryCounts(products))
}

func (h *ReportHandler) Stock(w http.ResponseWriter, r *http.Request) {
	snap, err := h.load(r)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, report.StockReport(snap.products, snap.stock))
}

// ExportCSV writes ?kind=stock (default) or ?kind=sales as CSV; the sales
// export honours ?from=&to=
func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "stock"
	}
	if kind != "stock" && kind != "sales" {
		middleware.RespondWithDomainError(w, domain.NewValidationError("kind", "must be stock or sales"), h.logger)
		return
	}

	snap, err := h.load(r)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	var buf bytes.Buffer
	if kind == "sales" {
		err = report.WriteSalesCSV(&buf, snap.sales)
	} else {
		err = report.WriteStockCSV(&buf, report.StockReport(snap.products, snap.stock))
	}
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.attach(w, "text/csv; charset=utf-8", kind, "csv", buf.Bytes())
}

func (h *ReportHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	snap, err := h.load(r)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, report.StockReport(snap.products, snap.stock), snap.sales); err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.attach(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "ledger", "xlsx", buf.Bytes())
}

func (h *ReportHandler) attach(w http.ResponseWriter, contentType, name, ext string, body []byte) {
	filename := fmt.Sprintf("%s-%s.%s", name, h.now().In(h.loc).Format("20060102"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
