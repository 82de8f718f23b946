package domain

import "time"

// StockEntry is the quantity on hand for a single product
type StockEntry struct {
	Quantity    int       `json:"quantity"`
	LastUpdated Timestamp `json:"last_updated"`
}

// StockMap maps product ids to their stock entry.
// Keys are stringified ids in the persisted document.
type StockMap map[int]StockEntry

// Level returns the quantity for id, or 0 when there is no entry
func (m StockMap) Level(id int) int {
	return m[id].Quantity
}

// Put overwrites the entry for id and refreshes its timestamp
func (m StockMap) Put(id, quantity int, now time.Time) StockEntry {
	entry := StockEntry{Quantity: quantity, LastUpdated: NewTimestamp(now)}
	m[id] = entry
	return entry
}

// Clone returns a shallow copy of the map
func (m StockMap) Clone() StockMap {
	out := make(StockMap, len(m))
	for id, entry := range m {
		out[id] = entry
	}
	return out
}

// ClampedLevel applies delta to current and floors the result at zero
func ClampedLevel(current, delta int) int {
	next := current + delta
	if next < 0 {
		return 0
	}
	return next
}

// ValidateQuantity rejects negative quantities
func ValidateQuantity(field string, quantity int) error {
	if quantity < 0 {
		return NewValidationError(field, "must not be negative")
	}
	return nil
}
