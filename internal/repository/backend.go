package repository

import (
	"context"
	"errors"
)

// Document names, one per store
const (
	ProductsDocument   = "products"
	StockDocument      = "stock"
	CategoriesDocument = "categories"
	SalesDocument      = "sales"
)

// DocumentNames lists every store in a stable order
var DocumentNames = []string{ProductsDocument, StockDocument, CategoriesDocument, SalesDocument}

var (
	ErrDocumentNotFound = errors.New("document not found")
)

// Backend stores whole documents by name. Every Write replaces the
// previous document completely; the last writer wins.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}
