package ledger

import (
	"fmt"
	"math"
	"time"

	"go-erp-agent/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyPrecision is the fixed decimal precision for every stored monetary value.
// Three places matches the OMR minor unit used by the seed data; applying it at
// every computation step keeps stored and displayed totals from drifting.
const MoneyPrecision = 3

// costFallbackRatio estimates COGS for items whose product has no cost price
// recorded: cost = selling price * 0.7.
var costFallbackRatio = decimal.NewFromFloat(0.7)

var hundred = decimal.NewFromInt(100)

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPrecision)
}

// SaleTotals is the arithmetic result of pricing a cart.
type SaleTotals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// ComputeSaleTotals prices an ordered set of cart lines.
// subtotal = sum(price*qty); tax = subtotal*rate/100; total = subtotal+tax.
// Tax is rounded before the final addition so total == subtotal + tax holds
// exactly at MoneyPrecision.
func ComputeSaleTotals(items []models.SaleItem, taxRatePercent decimal.Decimal) (SaleTotals, error) {
	if len(items) == 0 {
		return SaleTotals{}, fmt.Errorf("%w: sale has no items", ErrInvalidInput)
	}
	if taxRatePercent.IsNegative() {
		return SaleTotals{}, fmt.Errorf("%w: tax rate must not be negative", ErrInvalidInput)
	}

	subtotal := decimal.Zero
	for i, item := range items {
		if item.Quantity <= 0 {
			return SaleTotals{}, fmt.Errorf("%w: item %d has non-positive quantity %d", ErrInvalidInput, i, item.Quantity)
		}
		if item.Price.IsNegative() {
			return SaleTotals{}, fmt.Errorf("%w: item %d has negative price", ErrInvalidInput, i)
		}
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	subtotal = round(subtotal)
	tax := round(subtotal.Mul(taxRatePercent).Div(hundred))
	return SaleTotals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: subtotal.Add(tax),
	}, nil
}

// NewSale builds a complete, priced Sale from a cart. The item name and price
// snapshots are taken from the current product records.
func NewSale(state *models.AppState, items []models.SaleItem, paymentMethod, customerName string) (models.Sale, error) {
	switch paymentMethod {
	case models.PaymentCash, models.PaymentCard, models.PaymentOnline:
	default:
		return models.Sale{}, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, paymentMethod)
	}

	snapshot := make([]models.SaleItem, len(items))
	for i, item := range items {
		p := state.FindProduct(item.ProductID)
		if p == nil {
			return models.Sale{}, fmt.Errorf("%w: product %s", ErrNotFound, item.ProductID)
		}
		snapshot[i] = models.SaleItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  item.Quantity,
			Price:     p.Price,
		}
	}

	totals, err := ComputeSaleTotals(snapshot, state.Settings.TaxRate)
	if err != nil {
		return models.Sale{}, err
	}

	return models.Sale{
		ID:            uuid.NewString(),
		Timestamp:     time.Now(),
		Items:         snapshot,
		Subtotal:      totals.Subtotal,
		TaxAmount:     totals.TaxAmount,
		TotalAmount:   totals.TotalAmount,
		PaymentMethod: paymentMethod,
		CustomerName:  customerName,
	}, nil
}

// CommitSale applies a priced sale to the aggregate: stock down, sale appended,
// cash up, income transaction synthesized. All-or-nothing: every precondition
// is checked before the first mutation, and the input state is never touched.
// All payment methods settle to the cash balance (no bank routing).
func CommitSale(state *models.AppState, sale models.Sale) (*models.AppState, error) {
	if len(sale.Items) == 0 {
		return nil, fmt.Errorf("%w: sale has no items", ErrInvalidInput)
	}
	for _, item := range sale.Items {
		p := state.FindProduct(item.ProductID)
		if p == nil {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, item.ProductID)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: non-positive quantity for %s", ErrInvalidInput, p.Name)
		}
		if p.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: %s has %d in stock, sale needs %d", ErrInsufficientStock, p.Name, p.Stock, item.Quantity)
		}
	}

	next := state.Clone()
	for _, item := range sale.Items {
		p := next.FindProduct(item.ProductID)
		p.Stock -= item.Quantity
		p.StockHistory = append(p.StockHistory, models.StockLog{
			Timestamp: sale.Timestamp,
			Change:    -item.Quantity,
			Type:      models.StockLogSale,
		})
	}

	next.Sales = append(next.Sales, sale)
	next.CashBalance = next.CashBalance.Add(sale.TotalAmount)
	next.Transactions = append(next.Transactions, models.Transaction{
		ID:          "sale-" + sale.ID,
		Timestamp:   sale.Timestamp,
		Type:        models.TxIncome,
		Category:    models.CategorySales,
		Amount:      sale.TotalAmount,
		Description: fmt.Sprintf("Sale #%s", shortID(sale.ID)),
	})
	return next, nil
}

// AdjustStock applies a manual stock correction. Stock is clamped at zero;
// over-removal is absorbed, not an error. The log entry records the applied
// delta so the stock history always reconciles with the current quantity.
func AdjustStock(state *models.AppState, productID string, delta int, reason string) (*models.AppState, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: adjustment delta must not be zero", ErrInvalidInput)
	}
	if state.FindProduct(productID) == nil {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
	}
	if reason == "" {
		reason = "Manual adjustment"
	}

	next := state.Clone()
	p := next.FindProduct(productID)
	newStock := p.Stock + delta
	if newStock < 0 {
		newStock = 0
	}
	applied := newStock - p.Stock
	p.Stock = newStock
	p.StockHistory = append(p.StockHistory, models.StockLog{
		Timestamp: time.Now(),
		Change:    applied,
		Type:      models.StockLogAdjustment,
		Note:      reason,
	})
	return next, nil
}

// AddProduct appends a new product. The opening stock is seeded into the
// stock history as a restock entry so the sum of logged changes always equals
// the on-hand quantity.
func AddProduct(state *models.AppState, p models.Product) (*models.AppState, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if p.Price.IsNegative() || p.CostPrice.IsNegative() {
		return nil, fmt.Errorf("%w: prices must not be negative", ErrInvalidInput)
	}
	if p.Stock < 0 || p.MinStockLevel < 0 {
		return nil, fmt.Errorf("%w: stock levels must not be negative", ErrInvalidInput)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PrimaryImageIndex < 0 || p.PrimaryImageIndex >= len(p.ImageURLs) {
		p.PrimaryImageIndex = 0
	}
	p.Price = round(p.Price)
	p.CostPrice = round(p.CostPrice)
	p.StockHistory = nil
	if p.Stock > 0 {
		p.StockHistory = []models.StockLog{{
			Timestamp: time.Now(),
			Change:    p.Stock,
			Type:      models.StockLogRestock,
			Note:      "Initial Stock",
		}}
	}

	next := state.Clone()
	next.Products = append(next.Products, p)
	return next, nil
}

// UpdateProduct replaces a product's descriptive fields. Stock and stock
// history are deliberately untouched; quantity changes go through AdjustStock.
func UpdateProduct(state *models.AppState, updated models.Product) (*models.AppState, error) {
	if state.FindProduct(updated.ID) == nil {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, updated.ID)
	}
	if updated.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if updated.Price.IsNegative() || updated.CostPrice.IsNegative() {
		return nil, fmt.Errorf("%w: prices must not be negative", ErrInvalidInput)
	}

	next := state.Clone()
	p := next.FindProduct(updated.ID)
	p.Name = updated.Name
	p.Category = updated.Category
	p.Price = round(updated.Price)
	p.CostPrice = round(updated.CostPrice)
	p.MinStockLevel = updated.MinStockLevel
	p.Unit = updated.Unit
	p.ImageURLs = append([]string(nil), updated.ImageURLs...)
	p.PrimaryImageIndex = updated.PrimaryImageIndex
	if p.PrimaryImageIndex < 0 || p.PrimaryImageIndex >= len(p.ImageURLs) {
		p.PrimaryImageIndex = 0
	}
	if updated.Supplier != nil {
		sup := *updated.Supplier
		p.Supplier = &sup
	} else {
		p.Supplier = nil
	}
	return next, nil
}

// RecordTransaction appends a manual ledger entry and moves the cash balance.
// Income adds, expense subtracts. Cash may go negative - unlike stock there is
// no floor here.
func RecordTransaction(state *models.AppState, tx models.Transaction) (*models.AppState, error) {
	if tx.Type != models.TxIncome && tx.Type != models.TxExpense {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, tx.Type)
	}
	if !validCategory(tx.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, tx.Category)
	}
	if tx.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	if tx.BankAccountID != "" && state.FindBankAccount(tx.BankAccountID) == nil {
		return nil, fmt.Errorf("%w: bank account %s", ErrNotFound, tx.BankAccountID)
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now()
	}
	tx.Amount = round(tx.Amount)

	next := state.Clone()
	if tx.Type == models.TxIncome {
		next.CashBalance = next.CashBalance.Add(tx.Amount)
	} else {
		next.CashBalance = next.CashBalance.Sub(tx.Amount)
	}
	next.Transactions = append(next.Transactions, tx)
	return next, nil
}

// ProcessSalary pays one monthly salary out of the cash balance and records
// the expense. Operator-triggered; there is no payroll scheduler. The staff
// member must be active.
func ProcessSalary(state *models.AppState, staffID string) (*models.AppState, error) {
	staff := state.FindStaff(staffID)
	if staff == nil {
		return nil, fmt.Errorf("%w: staff %s", ErrNotFound, staffID)
	}
	if staff.Status != models.StaffActive {
		return nil, fmt.Errorf("%w: staff %s is %s, not active", ErrInvalidInput, staff.Name, staff.Status)
	}

	now := time.Now()
	next := state.Clone()
	next.CashBalance = next.CashBalance.Sub(staff.Salary)
	next.Transactions = append(next.Transactions, models.Transaction{
		ID:          fmt.Sprintf("salary-%s-%d", staff.ID, now.UnixMilli()),
		Timestamp:   now,
		Type:        models.TxExpense,
		Category:    models.CategorySalary,
		Amount:      staff.Salary,
		Description: fmt.Sprintf("Salary payout for %s - %s", staff.Name, now.Month().String()),
	})
	return next, nil
}

// AddStaff appends a new employee record.
func AddStaff(state *models.AppState, st models.Staff) (*models.AppState, error) {
	if st.Name == "" {
		return nil, fmt.Errorf("%w: staff name is required", ErrInvalidInput)
	}
	if st.Salary.IsNegative() {
		return nil, fmt.Errorf("%w: salary must not be negative", ErrInvalidInput)
	}
	switch st.Status {
	case "":
		st.Status = models.StaffActive
	case models.StaffActive, models.StaffOnLeave, models.StaffTerminated:
	default:
		return nil, fmt.Errorf("%w: unknown staff status %q", ErrInvalidInput, st.Status)
	}
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.JoiningDate.IsZero() {
		st.JoiningDate = time.Now()
	}
	st.Salary = round(st.Salary)

	next := state.Clone()
	next.Staff = append(next.Staff, st)
	return next, nil
}

// UpdateStaffStatus moves a staff member between active / on-leave / terminated.
func UpdateStaffStatus(state *models.AppState, staffID, status string) (*models.AppState, error) {
	switch status {
	case models.StaffActive, models.StaffOnLeave, models.StaffTerminated:
	default:
		return nil, fmt.Errorf("%w: unknown staff status %q", ErrInvalidInput, status)
	}
	if state.FindStaff(staffID) == nil {
		return nil, fmt.Errorf("%w: staff %s", ErrNotFound, staffID)
	}
	next := state.Clone()
	next.FindStaff(staffID).Status = status
	return next, nil
}

// AddBankAccount appends a new bank account.
func AddBankAccount(state *models.AppState, acc models.BankAccount) (*models.AppState, error) {
	if acc.BankName == "" {
		return nil, fmt.Errorf("%w: bank name is required", ErrInvalidInput)
	}
	switch acc.Type {
	case "":
		acc.Type = models.BankCurrent
	case models.BankCurrent, models.BankSavings, models.BankCompanyCredit:
	default:
		return nil, fmt.Errorf("%w: unknown account type %q", ErrInvalidInput, acc.Type)
	}
	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	acc.Balance = round(acc.Balance)

	next := state.Clone()
	next.BankAccounts = append(next.BankAccounts, acc)
	return next, nil
}

// UpdateSettings replaces the settings block.
func UpdateSettings(state *models.AppState, settings models.AppSettings) (*models.AppState, error) {
	if settings.Language != "en" && settings.Language != "ar" {
		return nil, fmt.Errorf("%w: unsupported language %q", ErrInvalidInput, settings.Language)
	}
	if settings.TaxRate.IsNegative() {
		return nil, fmt.Errorf("%w: tax rate must not be negative", ErrInvalidInput)
	}
	next := state.Clone()
	next.Settings = settings
	return next, nil
}

// PeriodFinancials is the P&L roll-up for one date range.
type PeriodFinancials struct {
	Revenue      decimal.Decimal `json:"revenue"`      // sum of sale subtotals, tax excluded
	CollectedTax decimal.Decimal `json:"collectedTax"` // VAT pass-through, not income
	COGS         decimal.Decimal `json:"cogs"`
	Expenses     decimal.Decimal `json:"expenses"` // non-salary expenses in range
	Salaries     decimal.Decimal `json:"salaries"` // daily-apportioned estimate, see below
	GrossProfit  decimal.Decimal `json:"grossProfit"`
	NetProfit    decimal.Decimal `json:"netProfit"`
	Days         int             `json:"days"`
}

// ComputePeriodFinancials derives the P&L for [start, end-of-day(end)].
// Pure and deterministic; never mutates state.
//
// Salaries are an estimate: the monthly total of all active staff apportioned
// at 1/30 per day over the range, regardless of actual salary payouts in the
// period. COGS falls back to price*0.7 for items whose product is gone or has
// no cost price recorded.
func ComputePeriodFinancials(state *models.AppState, start, end time.Time) PeriodFinancials {
	days := int(math.Ceil(math.Abs(end.Sub(start).Hours()) / 24))
	if days == 0 {
		days = 1
	}
	cutoff := endOfDay(end)

	revenue := decimal.Zero
	collectedTax := decimal.Zero
	cogs := decimal.Zero
	for _, sale := range state.Sales {
		if sale.Timestamp.Before(start) || sale.Timestamp.After(cutoff) {
			continue
		}
		revenue = revenue.Add(sale.Subtotal)
		collectedTax = collectedTax.Add(sale.TaxAmount)
		for _, item := range sale.Items {
			cost := item.Price.Mul(costFallbackRatio)
			if p := state.FindProduct(item.ProductID); p != nil && !p.CostPrice.IsZero() {
				cost = p.CostPrice
			}
			cogs = cogs.Add(cost.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	expenses := decimal.Zero
	for _, tx := range state.Transactions {
		if tx.Type != models.TxExpense || tx.Category == models.CategorySalary {
			continue
		}
		if tx.Timestamp.Before(start) || tx.Timestamp.After(cutoff) {
			continue
		}
		expenses = expenses.Add(tx.Amount)
	}

	monthly := decimal.Zero
	for _, st := range state.Staff {
		if st.Status == models.StaffActive {
			monthly = monthly.Add(st.Salary)
		}
	}
	salaries := round(monthly.Div(decimal.NewFromInt(30)).Mul(decimal.NewFromInt(int64(days))))

	revenue = round(revenue)
	cogs = round(cogs)
	gross := revenue.Sub(cogs)
	return PeriodFinancials{
		Revenue:      revenue,
		CollectedTax: round(collectedTax),
		COGS:         cogs,
		Expenses:     round(expenses),
		Salaries:     salaries,
		GrossProfit:  gross,
		NetProfit:    gross.Sub(expenses).Sub(salaries),
		Days:         days,
	}
}

// LowStockAlerts returns every product at or below its reorder threshold,
// in product list order.
func LowStockAlerts(state *models.AppState) []models.Product {
	var out []models.Product
	for _, p := range state.Products {
		if p.Stock <= p.MinStockLevel {
			out = append(out, p)
		}
	}
	return out
}

func validCategory(cat string) bool {
	for _, c := range models.TransactionCategories {
		if c == cat {
			return true
		}
	}
	return false
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
