package handlers

import (
	"net/http"
	"sort"
	"time"

	"go-erp-agent/internal/ledger"
	"go-erp-agent/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ReportData is the all-time sales summary for the dashboard.
type ReportData struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalOrders  int             `json:"total_orders"`
	TopSelling   []TopSeller     `json:"top_selling"`
	RecentSales  []models.Sale   `json:"recent_sales"`
}

type TopSeller struct {
	ProductName string          `json:"product_name"`
	Sold        int             `json:"sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// --- GET: /api/reports/summary ---
func (h *Handlers) GetSalesReport(c *gin.Context) {
	snap := h.Mgr.Snapshot()

	var data ReportData
	data.TotalRevenue = decimal.Zero
	data.TotalOrders = len(snap.Sales)

	sellers := map[string]*TopSeller{}
	for _, sale := range snap.Sales {
		data.TotalRevenue = data.TotalRevenue.Add(sale.TotalAmount)
		for _, item := range sale.Items {
			s, ok := sellers[item.Name]
			if !ok {
				s = &TopSeller{ProductName: item.Name, Revenue: decimal.Zero}
				sellers[item.Name] = s
			}
			s.Sold += item.Quantity
			s.Revenue = s.Revenue.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	top := make([]TopSeller, 0, len(sellers))
	for _, s := range sellers {
		top = append(top, *s)
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Sold > top[j].Sold })
	if len(top) > 5 {
		top = top[:5]
	}
	data.TopSelling = top

	recent := snap.Sales
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	// Newest first
	data.RecentSales = make([]models.Sale, len(recent))
	for i, sale := range recent {
		data.RecentSales[len(recent)-1-i] = sale
	}

	c.JSON(http.StatusOK, data)
}

// --- GET: /api/reports/financials?start_date=2024-01-01&end_date=2024-01-31 ---
// Period P&L. Defaults to the current month when no range is given.
func (h *Handlers) GetPeriodFinancials(c *gin.Context) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := now

	if v := c.Query("start_date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		start = parsed
	}
	if v := c.Query("end_date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
			return
		}
		end = parsed
	}

	fin := ledger.ComputePeriodFinancials(h.Mgr.Snapshot(), start, end)
	c.JSON(http.StatusOK, gin.H{
		"start_date": start.Format("2006-01-02"),
		"end_date":   end.Format("2006-01-02"),
		"financials": fin,
	})
}

// ValuationItem is a single row in the stock valuation table.
type ValuationItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	CostPrice decimal.Decimal `json:"cost_price"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// CategoryGroup is one category section of the valuation report.
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// ValuationResponse is the final payload.
type ValuationResponse struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// --- GET: /api/reports/valuation ---
// GetStockValuation totals the cost value of all physical inventory, grouped
// by category.
func (h *Handlers) GetStockValuation(c *gin.Context) {
	snap := h.Mgr.Snapshot()

	grandTotal := decimal.Zero
	groupedMap := map[string]*CategoryGroup{}
	var order []string

	for _, p := range snap.Products {
		catName := p.Category
		if catName == "" {
			catName = "Uncategorized"
		}
		group, exists := groupedMap[catName]
		if !exists {
			group = &CategoryGroup{CategoryName: catName, Items: []ValuationItem{}, Subtotal: decimal.Zero}
			groupedMap[catName] = group
			order = append(order, catName)
		}

		itemTotal := p.CostPrice.Mul(decimal.NewFromInt(int64(p.Stock)))
		group.Items = append(group.Items, ValuationItem{
			Name:      p.Name,
			Quantity:  p.Stock,
			CostPrice: p.CostPrice,
			TotalCost: itemTotal,
		})
		group.Subtotal = group.Subtotal.Add(itemTotal)
		grandTotal = grandTotal.Add(itemTotal)
	}

	response := ValuationResponse{GrandTotal: grandTotal, Categories: []CategoryGroup{}}
	for _, catName := range order {
		response.Categories = append(response.Categories, *groupedMap[catName])
	}
	c.JSON(http.StatusOK, response)
}
