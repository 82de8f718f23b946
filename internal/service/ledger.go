package service

import (
	"context"
	"fmt"

	"stock-ledger/internal/domain"

	"go.uber.org/zap"
)

// Ledger coordinates operations that touch more than one store
type Ledger struct {
	Catalog ProductCatalog
	Stock   StockLedger
	Sales   SalesLog
	logger  *zap.Logger
}

// NewLedger creates a new Ledger
func NewLedger(catalog ProductCatalog, stock StockLedger, sales SalesLog, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		Catalog: catalog,
		Stock:   stock,
		Sales:   sales,
		logger:  logger,
	}
}

// AddProduct adds the product and records its initial stock level.
// When only the stock write fails the created product is returned with the error.
func (l *Ledger) AddProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	product, err := l.Catalog.Add(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := l.Stock.SetInitial(ctx, product.ID, in.InitialStock); err != nil {
		l.logger.Error("Product added without initial stock",
			zap.Int("product_id", product.ID),
			zap.Error(err),
		)
		return product, fmt.Errorf("product %d added but initial stock was not recorded: %w", product.ID, err)
	}
	return product, nil
}

// DeleteProduct removes the product and its stock entry.
// Sales history keeps its snapshots.
func (l *Ledger) DeleteProduct(ctx context.Context, id int) (bool, error) {
	removed, err := l.Catalog.Remove(ctx, id)
	if err != nil || !removed {
		return false, err
	}

	if _, err := l.Stock.RemoveEntry(ctx, id); err != nil {
		l.logger.Error("Product removed but stock entry remains",
			zap.Int("product_id", id),
			zap.Error(err),
		)
		return true, fmt.Errorf("product %d removed but stock entry was not: %w", id, err)
	}
	return true, nil
}

// UpdateProduct applies a catalog update and, when quantity is set,
// overwrites the stock level. It returns false when id is unknown.
func (l *Ledger) UpdateProduct(ctx context.Context, id int, update domain.ProductUpdate, quantity *int) (bool, error) {
	if quantity != nil {
		if err := domain.ValidateQuantity("quantity", *quantity); err != nil {
			return false, err
		}
	}

	found, err := l.Catalog.Update(ctx, id, update)
	if err != nil || !found {
		return false, err
	}

	if quantity != nil {
		if err := l.Stock.Set(ctx, id, *quantity); err != nil {
			return true, err
		}
	}
	return true, nil
}
