package store

import (
	"time"

	"go-erp-agent/internal/models"

	"github.com/shopspring/decimal"
)

// Seed returns the default aggregate used on first boot and whenever a saved
// snapshot cannot be trusted.
func Seed() *models.AppState {
	now := time.Now()
	return &models.AppState{
		Products: []models.Product{
			{
				ID:            "1",
				Name:          "Premium Coffee Beans",
				Category:      "Beverages",
				Price:         decimal.RequireFromString("45.000"),
				CostPrice:     decimal.RequireFromString("28.500"),
				Stock:         15,
				MinStockLevel: 20,
				Unit:          "kg",
				ImageURLs: []string{
					"https://images.unsplash.com/photo-1559056199-641a0ac8b55e?auto=format&fit=crop&q=80&w=400",
				},
				PrimaryImageIndex: 0,
				Supplier: &models.Supplier{
					Name:     "Oman Trading Co.",
					Contact:  "+968 2400 0000",
					Email:    "info@omantrading.om",
					LeadTime: "3-5 days",
				},
				StockHistory: []models.StockLog{
					{Timestamp: now.Add(-48 * time.Hour), Change: 15, Type: models.StockLogRestock, Note: "Initial stock"},
				},
			},
		},
		Sales:        []models.Sale{},
		Transactions: []models.Transaction{},
		Staff: []models.Staff{
			{
				ID:          "s1",
				Name:        "Ahmed Al-Said",
				Position:    "Manager",
				Salary:      decimal.NewFromInt(1200),
				Status:      models.StaffActive,
				JoiningDate: now.AddDate(-1, 0, 0),
			},
		},
		BankAccounts: []models.BankAccount{
			{
				ID:            "b1",
				BankName:      "Bank Muscat",
				AccountNumber: "xxxx-xxxx-1234",
				Balance:       decimal.NewFromInt(5000),
				Type:          models.BankCurrent,
			},
		},
		CashBalance: decimal.NewFromInt(2500),
		Settings: models.AppSettings{
			CompanyName: "MarufEdge Oman",
			UserName:    "Admin",
			UserEmail:   "admin@marufedge.om",
			Currency:    "OMR",
			Language:    "en",
			TaxRate:     decimal.RequireFromString("5.0"), // VAT in Oman is 5%
			LastBackup:  now.Add(-time.Hour),
		},
	}
}
