package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"stock-ledger/internal/domain"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
)

// Never is written in place of a timestamp for products with no stock entry
const Never = "never"

const (
	stockSheet = "Stock"
	salesSheet = "Sales"
)

type stockRecord struct {
	ID          int    `csv:"id"`
	Name        string `csv:"name"`
	Category    string `csv:"category"`
	Price       string `csv:"price"`
	Quantity    int    `csv:"quantity"`
	LastUpdated string `csv:"last_updated"`
}

// saleRecord is one line item of one sale
type saleRecord struct {
	SaleID    int    `csv:"sale_id"`
	Date      string `csv:"date"`
	ProductID int    `csv:"product_id"`
	Name      string `csv:"name"`
	Price     string `csv:"price"`
	Quantity  int    `csv:"quantity"`
	Subtotal  string `csv:"subtotal"`
	SaleTotal string `csv:"sale_total"`
}

var (
	stockHeader = []string{"id", "name", "category", "price", "quantity", "last_updated"}
	salesHeader = []string{"sale_id", "date", "product_id", "name", "price", "quantity", "subtotal", "sale_total"}
)

func stockRecords(rows []StockRow) []*stockRecord {
	out := make([]*stockRecord, 0, len(rows))
	for _, row := range rows {
		updated := Never
		if row.LastUpdated != nil && !row.LastUpdated.IsZero() {
			updated = row.LastUpdated.Format(time.RFC3339)
		}
		out = append(out, &stockRecord{
			ID:          row.ProductID,
			Name:        row.Name,
			Category:    row.Category,
			Price:       row.Price.StringFixed(2),
			Quantity:    row.Quantity,
			LastUpdated: updated,
		})
	}
	return out
}

func saleRecords(sales []domain.Sale) []*saleRecord {
	var out []*saleRecord
	for _, sale := range sales {
		for _, item := range sale.Items {
			out = append(out, &saleRecord{
				SaleID:    sale.ID,
				Date:      sale.Date.Format(time.RFC3339),
				ProductID: item.ProductID,
				Name:      item.Name,
				Price:     item.Price.StringFixed(2),
				Quantity:  item.Quantity,
				Subtotal:  item.Subtotal.StringFixed(2),
				SaleTotal: sale.Total.StringFixed(2),
			})
		}
	}
	return out
}

// WriteStockCSV writes the stock report as CSV with a header row
func WriteStockCSV(w io.Writer, rows []StockRow) error {
	records := stockRecords(rows)
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, strings.Join(stockHeader, ","))
		return err
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("failed to write stock csv: %w", err)
	}
	return nil
}

// WriteSalesCSV writes one CSV row per sold line item
func WriteSalesCSV(w io.Writer, sales []domain.Sale) error {
	records := saleRecords(sales)
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, strings.Join(salesHeader, ","))
		return err
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("failed to write sales csv: %w", err)
	}
	return nil
}

// WriteWorkbook writes an xlsx workbook with a Stock and a Sales sheet
func WriteWorkbook(w io.Writer, rows []StockRow, sales []domain.Sale) error {
	book := excelize.NewFile()
	book.SetSheetName("Sheet1", stockSheet)
	book.NewSheet(salesSheet)

	writeSheetRow(book, stockSheet, 1, toCells(stockHeader))
	for i, r := range stockRecords(rows) {
		writeSheetRow(book, stockSheet, i+2, []interface{}{
			r.ID, r.Name, r.Category, r.Price, r.Quantity, r.LastUpdated,
		})
	}

	writeSheetRow(book, salesSheet, 1, toCells(salesHeader))
	for i, r := range saleRecords(sales) {
		writeSheetRow(book, salesSheet, i+2, []interface{}{
			r.SaleID, r.Date, r.ProductID, r.Name, r.Price, r.Quantity, r.Subtotal, r.SaleTotal,
		})
	}

	if err := book.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheetRow(book *excelize.File, sheet string, row int, cells []interface{}) {
	for col, value := range cells {
		book.SetCellValue(sheet, fmt.Sprintf("%c%d", 'A'+col, row), value)
	}
}

func toCells(header []string) []interface{} {
	out := make([]interface{}, len(header))
	for i, h := range header {
		out[i] = h
	}
	return out
}
