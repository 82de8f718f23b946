package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices and totals are stored as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the catalog
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	CreatedAt   Timestamp       `json:"created_at"`
}

// ProductInput carries the caller-supplied fields of a new product
type ProductInput struct {
	Name         string
	Price        decimal.Decimal
	Category     string
	Description  string
	InitialStock int
}

// ProductUpdate is a partial update; nil fields are left untouched.
// Name, ID and CreatedAt are immutable and have no counterpart here.
type ProductUpdate struct {
	Price       *decimal.Decimal
	Category    *string
	Description *string
}

// IsEmpty reports whether the update changes nothing
func (u ProductUpdate) IsEmpty() bool {
	return u.Price == nil && u.Category == nil && u.Description == nil
}

// Validate checks and normalizes the input in place
func (in *ProductInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)

	if in.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if err := ValidatePrice(in.Price); err != nil {
		return err
	}
	if in.Category == "" {
		return NewValidationError("category", "must not be empty")
	}
	if in.InitialStock < 0 {
		return NewValidationError("initial_stock", "must not be negative")
	}
	return nil
}

// Validate checks and normalizes the update in place
func (u *ProductUpdate) Validate() error {
	if u.Price != nil {
		if err := ValidatePrice(*u.Price); err != nil {
			return err
		}
	}
	if u.Category != nil {
		category := strings.TrimSpace(*u.Category)
		if category == "" {
			return NewValidationError("category", "must not be empty")
		}
		u.Category = &category
	}
	return nil
}

// ValidatePrice rejects negative prices
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return NewValidationError("price", "must not be negative")
	}
	return nil
}

// NextProductID returns max(existing ids) + 1
func NextProductID(products []Product) int {
	maxID := 0
	for _, p := range products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}

// Categories is the de-duplicated, first-appearance ordered set of labels
type Categories []string

// Contains reports whether label is already in the set
func (c Categories) Contains(label string) bool {
	for _, existing := range c {
		if existing == label {
			return true
		}
	}
	return false
}

// Add appends label when it is new and reports whether it was added
func (c *Categories) Add(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" || c.Contains(label) {
		return false
	}
	*c = append(*c, label)
	return true
}
