package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a snapshot of one product sold, decoupled from the live catalog
type LineItem struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Sale is an immutable completed transaction
type Sale struct {
	ID         int             `json:"id"`
	Date       Timestamp       `json:"date"`
	Items      []LineItem      `json:"products"`
	Total      decimal.Decimal `json:"total"`
	ItemsCount int             `json:"items_count"`
}

// NewSale builds a sale from line items, computing total and item count
func NewSale(id int, at time.Time, items []LineItem) Sale {
	snapshot := make([]LineItem, len(items))
	copy(snapshot, items)

	total := decimal.Zero
	count := 0
	for _, item := range snapshot {
		total = total.Add(item.Subtotal)
		count += item.Quantity
	}

	return Sale{
		ID:         id,
		Date:       NewTimestamp(at),
		Items:      snapshot,
		Total:      total,
		ItemsCount: count,
	}
}

// PendingSale accumulates line items until it is finalized.
// It is a plain value owned by the caller; nothing is persisted until finalize.
type PendingSale struct {
	items []LineItem
}

// NewPendingSale creates an empty pending sale
func NewPendingSale() *PendingSale {
	return &PendingSale{}
}

// Add appends a line for product, or merges quantity into its existing line
func (p *PendingSale) Add(product Product, quantity int) LineItem {
	for i := range p.items {
		if p.items[i].ProductID == product.ID {
			p.items[i].Quantity += quantity
			p.items[i].Subtotal = p.items[i].Price.Mul(decimal.NewFromInt(int64(p.items[i].Quantity)))
			return p.items[i]
		}
	}

	item := LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  quantity,
		Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
	p.items = append(p.items, item)
	return item
}

// Remove drops the line for productID and reports whether one existed
func (p *PendingSale) Remove(productID int) bool {
	for i := range p.items {
		if p.items[i].ProductID == productID {
			return p.RemoveAt(i)
		}
	}
	return false
}

// RemoveAt drops the line at index
func (p *PendingSale) RemoveAt(index int) bool {
	if index < 0 || index >= len(p.items) {
		return false
	}
	p.items = append(p.items[:index], p.items[index+1:]...)
	return true
}

// Items returns a copy of the pending lines in insertion order
func (p *PendingSale) Items() []LineItem {
	out := make([]LineItem, len(p.items))
	copy(out, p.items)
	return out
}

// Quantity returns the pending quantity for productID
func (p *PendingSale) Quantity(productID int) int {
	for _, item := range p.items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

func (p *PendingSale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.items {
		total = total.Add(item.Subtotal)
	}
	return total
}

func (p *PendingSale) ItemsCount() int {
	count := 0
	for _, item := range p.items {
		count += item.Quantity
	}
	return count
}

func (p *PendingSale) Len() int {
	return len(p.items)
}

func (p *PendingSale) IsEmpty() bool {
	return len(p.items) == 0
}

// Clear empties the pending sale
func (p *PendingSale) Clear() {
	p.items = nil
}
