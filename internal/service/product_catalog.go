package service

import (
	"context"
	"fmt"
	"sync"

	"stock-ledger/internal/domain"
	"stock-ledger/internal/repository"

	"go.uber.org/zap"
)

// ProductCatalog owns product records and the category set
type ProductCatalog interface {
	Add(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int, update domain.ProductUpdate) (bool, error)
	Remove(ctx context.Context, id int) (bool, error)
	Get(ctx context.Context, id int) (domain.Product, bool, error)
	List(ctx context.Context) ([]domain.Product, error)
	AddCategory(ctx context.Context, label string) (bool, error)
	Categories(ctx context.Context) (domain.Categories, error)
}

type productCatalog struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	sales      repository.SaleRepository
	opts       options

	// highest id handed out by this process, so a deleted top id is not reused
	mu     sync.Mutex
	lastID int
}

// NewProductCatalog creates a new instance of ProductCatalog.
// The sales repository is read to keep ids that appear in sales history
// from being reassigned after their product was deleted.
func NewProductCatalog(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	sales repository.SaleRepository,
	opts ...Option,
) ProductCatalog {
	return &productCatalog{
		products:   products,
		categories: categories,
		sales:      sales,
		opts:       newOptions(opts),
	}
}

// Add validates the input, assigns the next id and records a new category
func (c *productCatalog) Add(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	products, err := c.products.LoadProducts(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.nextID(ctx, products)
	if err != nil {
		return nil, err
	}

	product := domain.Product{
		ID:          id,
		Name:        in.Name,
		Price:       in.Price,
		Category:    in.Category,
		Description: in.Description,
		CreatedAt:   domain.NewTimestamp(c.opts.now()),
	}

	if _, err := c.AddCategory(ctx, product.Category); err != nil {
		return nil, err
	}

	products = append(products, product)
	if err := c.products.SaveProducts(ctx, products); err != nil {
		return nil, err
	}
	c.lastID = id

	c.opts.logger.Info("Product added",
		zap.Int("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("category", product.Category),
	)
	return &product, nil
}

// Update applies a partial update; it returns false when id is unknown
func (c *productCatalog) Update(ctx context.Context, id int, update domain.ProductUpdate) (bool, error) {
	if err := update.Validate(); err != nil {
		return false, err
	}

	products, err := c.products.LoadProducts(ctx)
	if err != nil {
		return false, err
	}

	idx := indexOfProduct(products, id)
	if idx < 0 {
		return false, nil
	}
	if update.IsEmpty() {
		return true, nil
	}

	if update.Price != nil {
		products[idx].Price = *update.Price
	}
	if update.Description != nil {
		products[idx].Description = *update.Description
	}
	if update.Category != nil {
		if _, err := c.AddCategory(ctx, *update.Category); err != nil {
			return false, err
		}
		products[idx].Category = *update.Category
	}

	if err := c.products.SaveProducts(ctx, products); err != nil {
		return false, err
	}

	c.opts.logger.Info("Product updated", zap.Int("product_id", id))
	return true, nil
}

// Remove deletes the product record only. Callers that need the stock entry
// removed too go through Ledger.DeleteProduct.
func (c *productCatalog) Remove(ctx context.Context, id int) (bool, error) {
	products, err := c.products.LoadProducts(ctx)
	if err != nil {
		return false, err
	}

	idx := indexOfProduct(products, id)
	if idx < 0 {
		return false, nil
	}

	c.mu.Lock()
	if id > c.lastID {
		c.lastID = id
	}
	c.mu.Unlock()

	products = append(products[:idx], products[idx+1:]...)
	if err := c.products.SaveProducts(ctx, products); err != nil {
		return false, err
	}

	c.opts.logger.Info("Product removed", zap.Int("product_id", id))
	return true, nil
}

func (c *productCatalog) Get(ctx context.Context, id int) (domain.Product, bool, error) {
	products, err := c.products.LoadProducts(ctx)
	if err != nil {
		return domain.Product{}, false, err
	}

	idx := indexOfProduct(products, id)
	if idx < 0 {
		return domain.Product{}, false, nil
	}
	return products[idx], true, nil
}

// List returns products in insertion order
func (c *productCatalog) List(ctx context.Context) ([]domain.Product, error) {
	return c.products.LoadProducts(ctx)
}

// AddCategory appends label to the category set; re-adding is a no-op
func (c *productCatalog) AddCategory(ctx context.Context, label string) (bool, error) {
	categories, err := c.categories.LoadCategories(ctx)
	if err != nil {
		return false, err
	}

	if !categories.Add(label) {
		return false, nil
	}

	if err := c.categories.SaveCategories(ctx, categories); err != nil {
		return false, err
	}

	c.opts.logger.Info("Category added", zap.String("category", label))
	return true, nil
}

func (c *productCatalog) Categories(ctx context.Context) (domain.Categories, error) {
	return c.categories.LoadCategories(ctx)
}

// nextID is one past the highest id among live products, ids handed out by
// this catalog and ids named in sales history. Across restarts only the
// products and sales documents are consulted.
func (c *productCatalog) nextID(ctx context.Context, products []domain.Product) (int, error) {
	next := domain.NextProductID(products)
	if c.lastID >= next {
		next = c.lastID + 1
	}

	if c.sales == nil {
		return next, nil
	}

	sales, err := c.sales.LoadSales(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read sales history: %w", err)
	}
	for _, sale := range sales {
		for _, item := range sale.Items {
			if item.ProductID >= next {
				next = item.ProductID + 1
			}
		}
	}
	return next, nil
}

func indexOfProduct(products []domain.Product, id int) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
