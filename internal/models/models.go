package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User - The person logging into the system (auth only, not part of the aggregate)
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'staff'
	CreatedAt    time.Time `json:"created_at"`
}

// StockLog - Append-only audit entry for every change to a product's on-hand quantity
type StockLog struct {
	Timestamp time.Time `json:"timestamp"`
	Change    int       `json:"change"` // signed: positive = in, negative = out
	Type      string    `json:"type"`   // 'sale', 'restock', 'adjustment'
	Note      string    `json:"note,omitempty"`
}

// Stock log types
const (
	StockLogSale       = "sale"
	StockLogRestock    = "restock"
	StockLogAdjustment = "adjustment"
)

// Supplier - Optional supplier details attached to a product
type Supplier struct {
	Name     string `json:"name"`
	Contact  string `json:"contact"`
	Email    string `json:"email"`
	LeadTime string `json:"leadTime"`
}

// Product - The Inventory
type Product struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	CostPrice         decimal.Decimal `json:"costPrice"`
	Stock             int             `json:"stock"` // never persisted negative
	MinStockLevel     int             `json:"minStockLevel"`
	Unit              string          `json:"unit"`
	ImageURLs         []string        `json:"imageUrls"`
	PrimaryImageIndex int             `json:"primaryImageIndex"`
	Supplier          *Supplier       `json:"supplier,omitempty"`
	StockHistory      []StockLog      `json:"stockHistory"`
}

// SaleItem - One cart line, with name and price snapshotted at sale time
type SaleItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Payment methods
const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentOnline = "online"
)

// Sale - Immutable once created (append-only sales log, no edits or voids)
type Sale struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	Items         []SaleItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod string          `json:"paymentMethod"` // 'cash', 'card', 'online'
	CustomerName  string          `json:"customerName,omitempty"`
}

// Transaction types
const (
	TxIncome  = "income"
	TxExpense = "expense"
)

// Transaction categories (closed set)
const (
	CategoryGeneral     = "General"
	CategoryRent        = "Rent"
	CategorySalary      = "Salary"
	CategoryUtilities   = "Utilities"
	CategoryTax         = "Tax"
	CategoryStock       = "Stock"
	CategoryMarketing   = "Marketing"
	CategoryBankDeposit = "Bank Deposit"
	CategorySales       = "Sales"
)

// TransactionCategories lists every valid category, in the order the UI shows them.
var TransactionCategories = []string{
	CategoryGeneral, CategoryRent, CategorySalary, CategoryUtilities,
	CategoryTax, CategoryStock, CategoryMarketing, CategoryBankDeposit, CategorySales,
}

// Transaction - One entry of the append-only cash ledger
type Transaction struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	Type          string          `json:"type"`     // 'income', 'expense'
	Category      string          `json:"category"` // one of TransactionCategories
	Amount        decimal.Decimal `json:"amount"`   // non-negative magnitude, sign implied by Type
	Description   string          `json:"description"`
	BankAccountID string          `json:"bankAccountId,omitempty"`
}

// Staff statuses
const (
	StaffActive     = "active"
	StaffOnLeave    = "on-leave"
	StaffTerminated = "terminated"
)

// Staff - Employee record; salary is monthly, payouts are operator-triggered
type Staff struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Position    string          `json:"position"`
	Salary      decimal.Decimal `json:"salary"`
	Status      string          `json:"status"` // 'active', 'on-leave', 'terminated'
	JoiningDate time.Time       `json:"joiningDate"`
}

// Bank account types
const (
	BankCurrent       = "current"
	BankSavings       = "savings"
	BankCompanyCredit = "company-credit"
)

// BankAccount - Company bank account, tracked for total liquidity
type BankAccount struct {
	ID            string          `json:"id"`
	BankName      string          `json:"bankName"`
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
	Type          string          `json:"type"` // 'current', 'savings', 'company-credit'
}

// AppSettings - Company profile and localisation
type AppSettings struct {
	CompanyName string          `json:"companyName"`
	UserName    string          `json:"userName"`
	UserEmail   string          `json:"userEmail"`
	Currency    string          `json:"currency"` // ISO-like code, e.g. "OMR"
	Language    string          `json:"language"` // 'en', 'ar'
	TaxRate     decimal.Decimal `json:"taxRate"`  // default sales tax, percent
	LastBackup  time.Time       `json:"lastBackup"`
}

// AppState - The root aggregate. Every ledger operation is AppState -> AppState;
// the whole thing is persisted as a single JSON snapshot.
type AppState struct {
	Products     []Product       `json:"products"`
	Sales        []Sale          `json:"sales"`
	Transactions []Transaction   `json:"transactions"`
	Staff        []Staff         `json:"staff"`
	BankAccounts []BankAccount   `json:"bankAccounts"`
	CashBalance  decimal.Decimal `json:"cashBalance"`
	Settings     AppSettings     `json:"settings"`
}

// FindProduct returns a pointer into Products, or nil if the id is unknown.
func (s *AppState) FindProduct(id string) *Product {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return &s.Products[i]
		}
	}
	return nil
}

// FindStaff returns a pointer into Staff, or nil if the id is unknown.
func (s *AppState) FindStaff(id string) *Staff {
	for i := range s.Staff {
		if s.Staff[i].ID == id {
			return &s.Staff[i]
		}
	}
	return nil
}

// FindBankAccount returns a pointer into BankAccounts, or nil if the id is unknown.
func (s *AppState) FindBankAccount(id string) *BankAccount {
	for i := range s.BankAccounts {
		if s.BankAccounts[i].ID == id {
			return &s.BankAccounts[i]
		}
	}
	return nil
}

// Clone deep-copies the aggregate so engine operations can build a new state
// without aliasing slices of the old one.
func (s *AppState) Clone() *AppState {
	out := &AppState{
		Products:     make([]Product, len(s.Products)),
		Sales:        make([]Sale, len(s.Sales)),
		Transactions: append([]Transaction(nil), s.Transactions...),
		Staff:        append([]Staff(nil), s.Staff...),
		BankAccounts: append([]BankAccount(nil), s.BankAccounts...),
		CashBalance:  s.CashBalance,
		Settings:     s.Settings,
	}
	for i, p := range s.Products {
		cp := p
		cp.ImageURLs = append([]string(nil), p.ImageURLs...)
		cp.StockHistory = append([]StockLog(nil), p.StockHistory...)
		if p.Supplier != nil {
			sup := *p.Supplier
			cp.Supplier = &sup
		}
		out.Products[i] = cp
	}
	for i, sale := range s.Sales {
		cs := sale
		cs.Items = append([]SaleItem(nil), sale.Items...)
		out.Sales[i] = cs
	}
	return out
}
