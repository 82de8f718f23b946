// Package report derives read-only views over products, stock and sales.
package report

import (
	"sort"
	"time"

	"stock-ledger/internal/domain"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// Uncategorized labels products whose category is blank
const Uncategorized = "Uncategorized"

// StockRow joins a product with its stock entry
type StockRow struct {
	ProductID   int               `json:"id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Price       decimal.Decimal   `json:"price"`
	Quantity    int               `json:"quantity"`
	LastUpdated *domain.Timestamp `json:"last_updated"`
}

// Summary holds the dashboard figures
type Summary struct {
	TotalProducts int             `json:"total_products"`
	Categories    int             `json:"categories"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	TotalStock    int             `json:"total_stock"`
	OutOfStock    int             `json:"out_of_stock"`
	TotalSales    int             `json:"total_sales"`
	UnitsSold     int             `json:"units_sold"`
	Revenue       decimal.Decimal `json:"revenue"`
	AverageSale   decimal.Decimal `json:"average_sale"`
	MedianSale    decimal.Decimal `json:"median_sale"`
}

type DailyTotal struct {
	Day   string          `json:"day"`
	Sales int             `json:"sales"`
	Total decimal.Decimal `json:"total"`
}

type CategoryStock struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Products int    `json:"products"`
}

// ProductSales is one row of the best sellers table
type ProductSales struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// StockReport lists every product with its level; LastUpdated is nil when
// the product has no stock entry.
func StockReport(products []domain.Product, stock domain.StockMap) []StockRow {
	rows := make([]StockRow, 0, len(products))
	for _, p := range products {
		row := StockRow{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Price:     p.Price,
		}
		if entry, ok := stock[p.ID]; ok {
			updated := entry.LastUpdated
			row.Quantity = entry.Quantity
			row.LastUpdated = &updated
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildSummary computes the dashboard figures. A product without a stock
// entry counts as out of stock. Sale figures cover exactly the sales given.
func BuildSummary(products []domain.Product, sales []domain.Sale, stock domain.StockMap) Summary {
	summary := Summary{
		TotalProducts: len(products),
		Categories:    len(ProductsByCategory(products)),
		AveragePrice:  decimal.Zero,
		TotalSales:    len(sales),
		Revenue:       decimal.Zero,
		AverageSale:   decimal.Zero,
		MedianSale:    decimal.Zero,
	}

	priceSum := decimal.Zero
	for _, p := range products {
		priceSum = priceSum.Add(p.Price)
		level := stock.Level(p.ID)
		summary.TotalStock += level
		if level == 0 {
			summary.OutOfStock++
		}
	}

	if len(products) > 0 {
		summary.AveragePrice = priceSum.Div(decimal.NewFromInt(int64(len(products)))).Round(2)
	}

	totals := make(stats.Float64Data, 0, len(sales))
	for _, sale := range sales {
		summary.Revenue = summary.Revenue.Add(sale.Total)
		summary.UnitsSold += sale.ItemsCount
		totals = append(totals, sale.Total.InexactFloat64())
	}

	if mean, err := stats.Mean(totals); err == nil {
		summary.AverageSale = decimal.NewFromFloat(mean).Round(2)
	}
	if median, err := stats.Median(totals); err == nil {
		summary.MedianSale = decimal.NewFromFloat(median).Round(2)
	}
	return summary
}

// DailyTotals groups sales by calendar day in loc, oldest first
func DailyTotals(sales []domain.Sale, loc *time.Location) []DailyTotal {
	byDay := make(map[string]*DailyTotal)
	for _, sale := range sales {
		day := sale.Date.In(loc).Format(time.DateOnly)
		total, ok := byDay[day]
		if !ok {
			total = &DailyTotal{Day: day, Total: decimal.Zero}
			byDay[day] = total
		}
		total.Sales++
		total.Total = total.Total.Add(sale.Total)
	}

	out := make([]DailyTotal, 0, len(byDay))
	for _, total := range byDay {
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// StockByCategory sums stock levels per category, sorted by category
func StockByCategory(products []domain.Product, stock domain.StockMap) []CategoryStock {
	sums := make(map[string]int)
	for _, p := range products {
		sums[categoryOf(p)] += stock.Level(p.ID)
	}

	out := make([]CategoryStock, 0, len(sums))
	for category, quantity := range sums {
		out = append(out, CategoryStock{Category: category, Quantity: quantity})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// ProductsByCategory groups products by category keeping catalog order
func ProductsByCategory(products []domain.Product) map[string][]domain.Product {
	out := make(map[string][]domain.Product)
	for _, p := range products {
		category := categoryOf(p)
		out[category] = append(out[category], p)
	}
	return out
}

// CategoryCounts counts products per category, sorted by category
func CategoryCounts(products []domain.Product) []CategoryCount {
	grouped := ProductsByCategory(products)
	out := make([]CategoryCount, 0, len(grouped))
	for category, members := range grouped {
		out = append(out, CategoryCount{Category: category, Products: len(members)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// TopProducts ranks products by units sold, most first, keeping at most n
// rows; n <= 0 keeps them all. Ties go to the lower product id. Names come
// from the most recent sale of each product.
func TopProducts(sales []domain.Sale, n int) []ProductSales {
	byProduct := make(map[int]*ProductSales)
	for _, sale := range sales {
		for _, item := range sale.Items {
			row, ok := byProduct[item.ProductID]
			if !ok {
				row = &ProductSales{ProductID: item.ProductID, Revenue: decimal.Zero}
				byProduct[item.ProductID] = row
			}
			row.Name = item.Name
			row.Quantity += item.Quantity
			row.Revenue = row.Revenue.Add(item.Subtotal)
		}
	}

	out := make([]ProductSales, 0, len(byProduct))
	for _, row := range byProduct {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].ProductID < out[j].ProductID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func categoryOf(p domain.Product) string {
	if p.Category == "" {
		return Uncategorized
	}
	return p.Category
}
