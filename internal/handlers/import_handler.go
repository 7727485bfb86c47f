package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go-erp-agent/internal/ledger"
	"go-erp-agent/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ImportResult summarises a bulk product import.
type ImportResult struct {
	TotalRows    int      `json:"total_rows"`
	SuccessCount int      `json:"success_count"`
	FailedCount  int      `json:"failed_count"`
	Errors       []string `json:"errors"`
}

type importRow struct {
	Name          string
	Category      string
	Price         decimal.Decimal
	CostPrice     decimal.Decimal
	Stock         int
	MinStockLevel int
	Unit          string
}

// --- POST: /api/products/import ---
// Bulk product import from .xlsx or .csv. Expected header:
// name, category, price, cost, stock, min_stock, unit.
func (h *Handlers) ImportProducts(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	var rows []importRow
	fileName := strings.ToLower(header.Filename)
	switch {
	case strings.HasSuffix(fileName, ".xlsx") || strings.HasSuffix(fileName, ".xls"):
		rows, err = parseExcel(file)
	case strings.HasSuffix(fileName, ".csv"):
		rows, err = parseCSV(file)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file format. Please upload .xlsx or .csv"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to parse file: %v", err)})
		return
	}

	result := ImportResult{TotalRows: len(rows), Errors: []string{}}
	for i, row := range rows {
		if row.Name == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Product name is required", i+2))
			result.FailedCount++
			continue
		}
		_, err := h.Mgr.Dispatch(ledger.AddProductCmd{Product: models.Product{
			Name:          row.Name,
			Category:      row.Category,
			Price:         row.Price,
			CostPrice:     row.CostPrice,
			Stock:         row.Stock,
			MinStockLevel: row.MinStockLevel,
			Unit:          row.Unit,
		}})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Failed to create %s - %v", i+2, row.Name, err))
			result.FailedCount++
			continue
		}
		result.SuccessCount++
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    result,
		"message": fmt.Sprintf("Import completed: %d success, %d failed", result.SuccessCount, result.FailedCount),
	})
}

func parseExcel(file io.Reader) ([]importRow, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in file")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have header row and at least one data row")
	}
	return parseRows(rows)
}

func parseCSV(file io.Reader) ([]importRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have header row and at least one data row")
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) ([]importRow, error) {
	colMap := make(map[string]int)
	for i, cell := range rows[0] {
		colMap[strings.ToLower(strings.TrimSpace(cell))] = i
	}
	if _, ok := colMap["name"]; !ok {
		return nil, fmt.Errorf("header row must contain a 'name' column")
	}

	cell := func(row []string, col string) string {
		idx, ok := colMap[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var result []importRow
	for _, row := range rows[1:] {
		r := importRow{
			Name:     cell(row, "name"),
			Category: cell(row, "category"),
			Unit:     cell(row, "unit"),
		}
		if v := cell(row, "price"); v != "" {
			if d, err := decimal.NewFromString(v); err == nil {
				r.Price = d
			}
		}
		if v := cell(row, "cost"); v != "" {
			if d, err := decimal.NewFromString(v); err == nil {
				r.CostPrice = d
			}
		}
		if v := cell(row, "stock"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				r.Stock = n
			}
		}
		if v := cell(row, "min_stock"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				r.MinStockLevel = n
			}
		}
		result = append(result, r)
	}
	return result, nil
}
