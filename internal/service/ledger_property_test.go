package service

import (
	"context"
	"fmt"
	"testing"

	"stock-ledger/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// Feature: stock-ledger, Property 1: Product ids are never reused
func TestProperty_ProductIDsAreNeverReused(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("each new id is above every id handed out before, even after deletions", prop.ForAll(
		func(ops []bool) bool {
			f := newFixture(t)
			ctx := context.Background()

			highest := 0
			var live []int
			for i, add := range ops {
				if add || len(live) == 0 {
					product, err := f.ledger.AddProduct(ctx, domain.ProductInput{
						Name:     fmt.Sprintf("item-%d", i),
						Price:    decimal.NewFromInt(1),
						Category: "General",
					})
					if err != nil {
						t.Logf("FAIL: add returned %v", err)
						return false
					}
					if product.ID <= highest {
						t.Logf("FAIL: id %d reused, highest so far %d", product.ID, highest)
						return false
					}
					highest = product.ID
					live = append(live, product.ID)
					continue
				}

				// delete the newest product so the top id is the one freed
				last := live[len(live)-1]
				live = live[:len(live)-1]
				if removed, err := f.ledger.DeleteProduct(ctx, last); err != nil || !removed {
					t.Logf("FAIL: delete %d returned %v, %v", last, removed, err)
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

// Feature: stock-ledger, Property 2: Adjusted levels never go below zero
func TestProperty_AdjustNeverGoesNegative(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("adjust yields max(0, level+delta)", prop.ForAll(
		func(initial, delta int) bool {
			f := newFixture(t)
			ctx := context.Background()

			if err := f.ledger.Stock.Set(ctx, 1, initial); err != nil {
				return false
			}
			level, err := f.ledger.Stock.Adjust(ctx, 1, delta)
			if err != nil {
				return false
			}

			expected := initial + delta
			if expected < 0 {
				expected = 0
			}
			stored, err := f.ledger.Stock.LevelOf(ctx, 1)
			return err == nil && level == expected && stored == expected
		},
		gen.IntRange(0, 1000),
		gen.IntRange(-2000, 2000),
	))

	properties.TestingRun(t)
}

// Feature: stock-ledger, Property 3: Deleting a product leaves other stock entries untouched
func TestProperty_DeleteLeavesOtherStockUntouched(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("only the deleted product's entry disappears", prop.ForAll(
		func(levels []int, pick int) bool {
			if len(levels) == 0 {
				return true
			}
			f := newFixture(t)
			ctx := context.Background()

			ids := make([]int, 0, len(levels))
			for i, level := range levels {
				product, err := f.ledger.AddProduct(ctx, domain.ProductInput{
					Name:         fmt.Sprintf("item-%d", i),
					Price:        decimal.NewFromInt(2),
					Category:     "General",
					InitialStock: level,
				})
				if err != nil {
					return false
				}
				ids = append(ids, product.ID)
			}

			before, err := f.ledger.Stock.All(ctx)
			if err != nil {
				return false
			}

			target := ids[pick%len(ids)]
			if _, err := f.ledger.DeleteProduct(ctx, target); err != nil {
				return false
			}

			after, err := f.ledger.Stock.All(ctx)
			if err != nil {
				return false
			}
			if _, ok := after[target]; ok || len(after) != len(before)-1 {
				return false
			}
			for id, entry := range after {
				if before[id].Quantity != entry.Quantity {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 500)),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

// Feature: stock-ledger, Property 4: Finalized totals equal the sum of line subtotals
func TestProperty_FinalizedSaleMatchesPending(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("sale total and items_count match the pending sale", prop.ForAll(
		func(cents []int64, quantity int) bool {
			if len(cents) == 0 {
				return true
			}
			f := newFixture(t)
			ctx := context.Background()
			pending := f.ledger.Sales.Begin()

			for i, c := range cents {
				product, err := f.ledger.AddProduct(ctx, domain.ProductInput{
					Name:         fmt.Sprintf("item-%d", i),
					Price:        decimal.New(c, -2),
					Category:     "General",
					InitialStock: quantity,
				})
				if err != nil {
					return false
				}
				if _, err := f.ledger.Sales.AddItem(ctx, pending, product.ID, quantity); err != nil {
					return false
				}
			}

			total := pending.Total()
			count := pending.ItemsCount()
			sale, err := f.ledger.Sales.Finalize(ctx, pending)
			if err != nil {
				return false
			}

			stock, err := f.ledger.Stock.All(ctx)
			if err != nil {
				return false
			}
			for _, item := range sale.Items {
				if stock.Level(item.ProductID) != 0 {
					return false
				}
			}
			return sale.Total.Equal(total) && sale.ItemsCount == count && sale.ItemsCount == quantity*len(cents)
		},
		gen.SliceOf(gen.Int64Range(0, 100000)),
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}
