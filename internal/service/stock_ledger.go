package service

import (
	"context"

	"stock-ledger/internal/domain"
	"stock-ledger/internal/repository"

	"go.uber.org/zap"
)

// StockLedger tracks on-hand quantity per product id
type StockLedger interface {
	SetInitial(ctx context.Context, productID, quantity int) error
	Adjust(ctx context.Context, productID, delta int) (int, error)
	Set(ctx context.Context, productID, quantity int) error
	LevelOf(ctx context.Context, productID int) (int, error)
	Entry(ctx context.Context, productID int) (domain.StockEntry, bool, error)
	All(ctx context.Context) (domain.StockMap, error)
	RemoveEntry(ctx context.Context, productID int) (bool, error)
}

type stockLedger struct {
	stock repository.StockRepository
	opts  options
}

// NewStockLedger creates a new instance of StockLedger
func NewStockLedger(stock repository.StockRepository, opts ...Option) StockLedger {
	return &stockLedger{
		stock: stock,
		opts:  newOptions(opts),
	}
}

// SetInitial writes the opening level for a freshly added product
func (l *stockLedger) SetInitial(ctx context.Context, productID, quantity int) error {
	if err := domain.ValidateQuantity("initial_stock", quantity); err != nil {
		return err
	}
	return l.write(ctx, productID, quantity)
}

// Adjust applies delta and returns the new level, floored at zero
func (l *stockLedger) Adjust(ctx context.Context, productID, delta int) (int, error) {
	stock, err := l.stock.LoadStock(ctx)
	if err != nil {
		return 0, err
	}

	current := stock.Level(productID)
	level := domain.ClampedLevel(current, delta)
	if shortfall := -(current + delta); shortfall > 0 {
		l.opts.logger.Warn("Stock adjustment clamped at zero",
			zap.Int("product_id", productID),
			zap.Int("delta", delta),
			zap.Int("shortfall", shortfall),
		)
	}

	stock.Put(productID, level, l.opts.now())
	if err := l.stock.SaveStock(ctx, stock); err != nil {
		return 0, err
	}
	return level, nil
}

// Set overwrites the level for productID
func (l *stockLedger) Set(ctx context.Context, productID, quantity int) error {
	if err := domain.ValidateQuantity("quantity", quantity); err != nil {
		return err
	}
	return l.write(ctx, productID, quantity)
}

// LevelOf returns the current level, 0 when no entry exists
func (l *stockLedger) LevelOf(ctx context.Context, productID int) (int, error) {
	stock, err := l.stock.LoadStock(ctx)
	if err != nil {
		return 0, err
	}
	return stock.Level(productID), nil
}

func (l *stockLedger) Entry(ctx context.Context, productID int) (domain.StockEntry, bool, error) {
	stock, err := l.stock.LoadStock(ctx)
	if err != nil {
		return domain.StockEntry{}, false, err
	}
	entry, ok := stock[productID]
	return entry, ok, nil
}

func (l *stockLedger) All(ctx context.Context) (domain.StockMap, error) {
	return l.stock.LoadStock(ctx)
}

// RemoveEntry deletes the entry for productID, leaving all others untouched
func (l *stockLedger) RemoveEntry(ctx context.Context, productID int) (bool, error) {
	stock, err := l.stock.LoadStock(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := stock[productID]; !ok {
		return false, nil
	}

	delete(stock, productID)
	if err := l.stock.SaveStock(ctx, stock); err != nil {
		return false, err
	}
	return true, nil
}

func (l *stockLedger) write(ctx context.Context, productID, quantity int) error {
	stock, err := l.stock.LoadStock(ctx)
	if err != nil {
		return err
	}

	stock.Put(productID, quantity, l.opts.now())
	if err := l.stock.SaveStock(ctx, stock); err != nil {
		return err
	}

	l.opts.logger.Debug("Stock level set",
		zap.Int("product_id", productID),
		zap.Int("quantity", quantity),
	)
	return nil
}
