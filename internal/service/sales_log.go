package service

import (
	"context"
	"sort"
	"time"

	"stock-ledger/internal/domain"
	"stock-ledger/internal/repository"

	"go.uber.org/zap"
)

// SalesLog builds pending sales and keeps the append-only sale history
type SalesLog interface {
	Begin() *domain.PendingSale
	AddItem(ctx context.Context, pending *domain.PendingSale, productID, quantity int) (domain.LineItem, error)
	RemoveItem(pending *domain.PendingSale, productID int) bool
	Finalize(ctx context.Context, pending *domain.PendingSale) (*domain.Sale, error)

	ByID(ctx context.Context, id int) (domain.Sale, bool, error)
	All(ctx context.Context) ([]domain.Sale, error)
	InRange(ctx context.Context, start, end time.Time) ([]domain.Sale, error)
	ForMonth(ctx context.Context, year int, month time.Month) ([]domain.Sale, error)
	ForDay(ctx context.Context, day time.Time) ([]domain.Sale, error)
}

type salesLog struct {
	products repository.ProductRepository
	stock    repository.StockRepository
	sales    repository.SaleRepository
	opts     options
}

// NewSalesLog creates a new instance of SalesLog
func NewSalesLog(
	products repository.ProductRepository,
	stock repository.StockRepository,
	sales repository.SaleRepository,
	opts ...Option,
) SalesLog {
	return &salesLog{
		products: products,
		stock:    stock,
		sales:    sales,
		opts:     newOptions(opts),
	}
}

func (s *salesLog) Begin() *domain.PendingSale {
	return domain.NewPendingSale()
}

// AddItem snapshots the product into the pending sale.
// Only the requested quantity is checked against the current level;
// quantities already pending for the same product are not counted.
func (s *salesLog) AddItem(ctx context.Context, pending *domain.PendingSale, productID, quantity int) (domain.LineItem, error) {
	if quantity < 1 {
		return domain.LineItem{}, domain.NewValidationError("quantity", "must be at least 1")
	}

	products, err := s.products.LoadProducts(ctx)
	if err != nil {
		return domain.LineItem{}, err
	}
	idx := indexOfProduct(products, productID)
	if idx < 0 {
		return domain.LineItem{}, domain.ErrProductNotFound
	}

	stock, err := s.stock.LoadStock(ctx)
	if err != nil {
		return domain.LineItem{}, err
	}
	if available := stock.Level(productID); quantity > available {
		return domain.LineItem{}, &domain.StockError{
			ProductID: productID,
			Available: available,
			Requested: quantity,
		}
	}

	return pending.Add(products[idx], quantity), nil
}

func (s *salesLog) RemoveItem(pending *domain.PendingSale, productID int) bool {
	return pending.Remove(productID)
}

// Finalize records the pending sale and decrements stock for each line.
// Stock is written before the sale; when the sale write fails the previous
// stock document is restored and the pending sale is left intact for retry.
func (s *salesLog) Finalize(ctx context.Context, pending *domain.PendingSale) (*domain.Sale, error) {
	if pending == nil || pending.IsEmpty() {
		return nil, domain.ErrNothingToSell
	}
	items := pending.Items()

	stock, err := s.stock.LoadStock(ctx)
	if err != nil {
		return nil, err
	}
	previous := stock.Clone()

	if s.opts.policy == RejectOversell {
		for _, item := range items {
			if available := stock.Level(item.ProductID); item.Quantity > available {
				return nil, &domain.StockError{
					ProductID: item.ProductID,
					Available: available,
					Requested: item.Quantity,
				}
			}
		}
	}

	sales, err := s.sales.LoadSales(ctx)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	for _, item := range items {
		current := stock.Level(item.ProductID)
		if item.Quantity > current {
			s.opts.logger.Warn("Sale exceeds stock on hand, level clamped at zero",
				zap.Int("product_id", item.ProductID),
				zap.Int("requested", item.Quantity),
				zap.Int("available", current),
			)
		}
		stock.Put(item.ProductID, domain.ClampedLevel(current, -item.Quantity), now)
	}

	sale := domain.NewSale(len(sales)+1, now, items)
	sales = append(sales, sale)

	if err := s.stock.SaveStock(ctx, stock); err != nil {
		return nil, err
	}
	if err := s.sales.SaveSales(ctx, sales); err != nil {
		if restoreErr := s.stock.SaveStock(ctx, previous); restoreErr != nil {
			s.opts.logger.Error("Failed to restore stock after sale was not recorded",
				zap.Int("sale_id", sale.ID),
				zap.Error(restoreErr),
			)
		}
		return nil, err
	}

	pending.Clear()

	s.opts.logger.Info("Sale finalized",
		zap.Int("sale_id", sale.ID),
		zap.Int("items_count", sale.ItemsCount),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	return &sale, nil
}

func (s *salesLog) ByID(ctx context.Context, id int) (domain.Sale, bool, error) {
	sales, err := s.sales.LoadSales(ctx)
	if err != nil {
		return domain.Sale{}, false, err
	}
	for _, sale := range sales {
		if sale.ID == id {
			return sale, true, nil
		}
	}
	return domain.Sale{}, false, nil
}

// All returns every sale ordered by id
func (s *salesLog) All(ctx context.Context) ([]domain.Sale, error) {
	sales, err := s.sales.LoadSales(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sales, func(i, j int) bool { return sales[i].ID < sales[j].ID })
	return sales, nil
}

// InRange returns sales with start <= date <= end
func (s *salesLog) InRange(ctx context.Context, start, end time.Time) ([]domain.Sale, error) {
	return s.filter(ctx, func(at time.Time) bool {
		return !at.Before(start) && !at.After(end)
	})
}

func (s *salesLog) ForMonth(ctx context.Context, year int, month time.Month) ([]domain.Sale, error) {
	return s.filter(ctx, func(at time.Time) bool {
		at = at.In(s.opts.loc)
		return at.Year() == year && at.Month() == month
	})
}

// ForDay returns sales on the calendar day of day, in the configured zone
func (s *salesLog) ForDay(ctx context.Context, day time.Time) ([]domain.Sale, error) {
	y, m, d := day.In(s.opts.loc).Date()
	return s.filter(ctx, func(at time.Time) bool {
		ay, am, ad := at.In(s.opts.loc).Date()
		return ay == y && am == m && ad == d
	})
}

func (s *salesLog) filter(ctx context.Context, keep func(time.Time) bool) ([]domain.Sale, error) {
	sales, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Sale, 0, len(sales))
	for _, sale := range sales {
		if keep(sale.Date.Time) {
			out = append(out, sale)
		}
	}
	return out, nil
}
