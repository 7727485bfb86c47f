package store

import (
	"fmt"

	"go-erp-agent/internal/models"
)

// validate checks a freshly decoded aggregate against the schema before it is
// allowed anywhere near the engine. Fail closed: the caller reverts to the
// seed state on any violation.
func validate(state *models.AppState) error {
	for _, p := range state.Products {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("product missing id or name")
		}
		if p.Stock < 0 {
			return fmt.Errorf("product %s has negative stock %d", p.ID, p.Stock)
		}
		if p.Price.IsNegative() || p.CostPrice.IsNegative() {
			return fmt.Errorf("product %s has a negative price", p.ID)
		}
		if len(p.ImageURLs) == 0 {
			if p.PrimaryImageIndex != 0 {
				return fmt.Errorf("product %s has primaryImageIndex %d with no images", p.ID, p.PrimaryImageIndex)
			}
		} else if p.PrimaryImageIndex < 0 || p.PrimaryImageIndex >= len(p.ImageURLs) {
			return fmt.Errorf("product %s has primaryImageIndex %d out of range", p.ID, p.PrimaryImageIndex)
		}
		for _, l := range p.StockHistory {
			switch l.Type {
			case models.StockLogSale, models.StockLogRestock, models.StockLogAdjustment:
			default:
				return fmt.Errorf("product %s has stock log type %q", p.ID, l.Type)
			}
		}
	}

	for _, s := range state.Sales {
		if s.ID == "" {
			return fmt.Errorf("sale missing id")
		}
		switch s.PaymentMethod {
		case models.PaymentCash, models.PaymentCard, models.PaymentOnline:
		default:
			return fmt.Errorf("sale %s has payment method %q", s.ID, s.PaymentMethod)
		}
		for _, item := range s.Items {
			if item.Quantity <= 0 {
				return fmt.Errorf("sale %s has non-positive quantity", s.ID)
			}
		}
	}

	for _, tx := range state.Transactions {
		if tx.Type != models.TxIncome && tx.Type != models.TxExpense {
			return fmt.Errorf("transaction %s has type %q", tx.ID, tx.Type)
		}
		if tx.Amount.IsNegative() {
			return fmt.Errorf("transaction %s has negative amount", tx.ID)
		}
		if !knownCategory(tx.Category) {
			return fmt.Errorf("transaction %s has category %q", tx.ID, tx.Category)
		}
	}

	for _, st := range state.Staff {
		switch st.Status {
		case models.StaffActive, models.StaffOnLeave, models.StaffTerminated:
		default:
			return fmt.Errorf("staff %s has status %q", st.ID, st.Status)
		}
		if st.Salary.IsNegative() {
			return fmt.Errorf("staff %s has negative salary", st.ID)
		}
	}

	for _, acc := range state.BankAccounts {
		switch acc.Type {
		case models.BankCurrent, models.BankSavings, models.BankCompanyCredit:
		default:
			return fmt.Errorf("bank account %s has type %q", acc.ID, acc.Type)
		}
	}

	if state.Settings.Language != "en" && state.Settings.Language != "ar" {
		return fmt.Errorf("settings language %q", state.Settings.Language)
	}
	if state.Settings.TaxRate.IsNegative() {
		return fmt.Errorf("settings tax rate is negative")
	}
	return nil
}

func knownCategory(cat string) bool {
	for _, c := range models.TransactionCategories {
		if c == cat {
			return true
		}
	}
	return false
}
