package repository

import (
	"bytes"
	"context"
	"errors"

	"stock-ledger/internal/domain"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// ProductRepository defines the interface for the products document
type ProductRepository interface {
	LoadProducts(ctx context.Context) ([]domain.Product, error)
	SaveProducts(ctx context.Context, products []domain.Product) error
}

// StockRepository defines the interface for the stock document
type StockRepository interface {
	LoadStock(ctx context.Context) (domain.StockMap, error)
	SaveStock(ctx context.Context, stock domain.StockMap) error
}

// CategoryRepository defines the interface for the categories document
type CategoryRepository interface {
	LoadCategories(ctx context.Context) (domain.Categories, error)
	SaveCategories(ctx context.Context, categories domain.Categories) error
}

// SaleRepository defines the interface for the sales document
type SaleRepository interface {
	LoadSales(ctx context.Context) ([]domain.Sale, error)
	SaveSales(ctx context.Context, sales []domain.Sale) error
}

// DocumentStore encodes the four ledger documents as JSON over a Backend.
// A missing or unparsable document loads as an empty store.
type DocumentStore struct {
	backend Backend
	logger  *zap.Logger
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(backend Backend, logger *zap.Logger) *DocumentStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentStore{backend: backend, logger: logger}
}

func (s *DocumentStore) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := loadDocument(ctx, s, ProductsDocument, []domain.Product{})
	if products == nil {
		products = []domain.Product{}
	}
	return products, err
}

func (s *DocumentStore) SaveProducts(ctx context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	return s.save(ctx, ProductsDocument, products)
}

func (s *DocumentStore) LoadStock(ctx context.Context) (domain.StockMap, error) {
	stock, err := loadDocument(ctx, s, StockDocument, domain.StockMap{})
	if stock == nil {
		stock = domain.StockMap{}
	}
	return stock, err
}

func (s *DocumentStore) SaveStock(ctx context.Context, stock domain.StockMap) error {
	if stock == nil {
		stock = domain.StockMap{}
	}
	return s.save(ctx, StockDocument, stock)
}

func (s *DocumentStore) LoadCategories(ctx context.Context) (domain.Categories, error) {
	categories, err := loadDocument(ctx, s, CategoriesDocument, domain.Categories{})
	if categories == nil {
		categories = domain.Categories{}
	}
	return categories, err
}

func (s *DocumentStore) SaveCategories(ctx context.Context, categories domain.Categories) error {
	if categories == nil {
		categories = domain.Categories{}
	}
	return s.save(ctx, CategoriesDocument, categories)
}

func (s *DocumentStore) LoadSales(ctx context.Context) ([]domain.Sale, error) {
	sales, err := loadDocument(ctx, s, SalesDocument, []domain.Sale{})
	if sales == nil {
		sales = []domain.Sale{}
	}
	return sales, err
}

func (s *DocumentStore) SaveSales(ctx context.Context, sales []domain.Sale) error {
	if sales == nil {
		sales = []domain.Sale{}
	}
	return s.save(ctx, SalesDocument, sales)
}

// Close releases the underlying backend
func (s *DocumentStore) Close() error {
	return s.backend.Close()
}

func (s *DocumentStore) save(ctx context.Context, name string, doc interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Store: name, Op: "encode", Err: err}
	}

	if err := s.backend.Write(ctx, name, data); err != nil {
		s.logger.Error("Failed to save document", zap.String("document", name), zap.Error(err))
		return &domain.PersistenceError{Store: name, Op: "save", Err: err}
	}

	return nil
}

func loadDocument[T any](ctx context.Context, s *DocumentStore, name string, empty T) (T, error) {
	data, err := s.backend.Read(ctx, name)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return empty, nil
		}
		s.logger.Error("Failed to read document", zap.String("document", name), zap.Error(err))
		return empty, &domain.PersistenceError{Store: name, Op: "load", Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return empty, nil
	}

	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("Unparsable document treated as empty",
			zap.String("document", name),
			zap.Error(err),
		)
		return empty, nil
	}

	return doc, nil
}
