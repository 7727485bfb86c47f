package ledger

import (
	"errors"
	"testing"
	"time"

	"go-erp-agent/internal/models"

	"github.com/shopspring/decimal"
)

type bogusCmd struct{}

func (bogusCmd) isCommand() {}

func commandState() *models.AppState {
	return &models.AppState{
		Products: []models.Product{
			{ID: "p1", Name: "Tea", Price: decimal.NewFromInt(2), Stock: 10},
		},
		Staff: []models.Staff{
			{ID: "s1", Name: "Fatma", Salary: decimal.NewFromInt(800), Status: models.StaffActive},
		},
		BankAccounts: []models.BankAccount{
			{ID: "b1", BankName: "NBO", Type: models.BankCurrent},
		},
		CashBalance: decimal.NewFromInt(100),
		Settings:    models.AppSettings{Language: "en", TaxRate: decimal.NewFromInt(5)},
	}
}

func TestApplyRoutesCommands(t *testing.T) {
	state := commandState()

	tests := []struct {
		name  string
		cmd   Command
		check func(t *testing.T, next *models.AppState)
	}{
		{
			name: "commit sale",
			cmd: CommitSaleCmd{Sale: models.Sale{
				ID:          "sale1",
				Timestamp:   time.Now(),
				Items:       []models.SaleItem{{ProductID: "p1", Quantity: 1, Price: decimal.NewFromInt(2)}},
				TotalAmount: decimal.NewFromInt(2),
			}},
			check: func(t *testing.T, next *models.AppState) {
				if next.FindProduct("p1").Stock != 9 {
					t.Errorf("stock = %d", next.FindProduct("p1").Stock)
				}
			},
		},
		{
			name: "adjust stock",
			cmd:  AdjustStockCmd{ProductID: "p1", Delta: 5, Reason: "restock"},
			check: func(t *testing.T, next *models.AppState) {
				if next.FindProduct("p1").Stock != 15 {
					t.Errorf("stock = %d", next.FindProduct("p1").Stock)
				}
			},
		},
		{
			name: "record transaction",
			cmd: RecordTransactionCmd{Tx: models.Transaction{
				Type: models.TxExpense, Category: models.CategoryGeneral, Amount: decimal.NewFromInt(30),
			}},
			check: func(t *testing.T, next *models.AppState) {
				if !next.CashBalance.Equal(decimal.NewFromInt(70)) {
					t.Errorf("cash = %s", next.CashBalance)
				}
			},
		},
		{
			name: "process salary",
			cmd:  ProcessSalaryCmd{StaffID: "s1"},
			check: func(t *testing.T, next *models.AppState) {
				if !next.CashBalance.Equal(decimal.NewFromInt(-700)) {
					t.Errorf("cash = %s", next.CashBalance)
				}
			},
		},
		{
			name: "update settings",
			cmd:  UpdateSettingsCmd{Settings: models.AppSettings{Language: "ar", TaxRate: decimal.NewFromInt(0)}},
			check: func(t *testing.T, next *models.AppState) {
				if next.Settings.Language != "ar" {
					t.Errorf("language = %s", next.Settings.Language)
				}
			},
		},
		{
			name: "add product",
			cmd:  AddProductCmd{Product: models.Product{Name: "Sugar", Price: decimal.NewFromInt(1)}},
			check: func(t *testing.T, next *models.AppState) {
				if len(next.Products) != 2 {
					t.Errorf("products = %d", len(next.Products))
				}
			},
		},
		{
			name: "update product",
			cmd:  UpdateProductCmd{Product: models.Product{ID: "p1", Name: "Green Tea", Price: decimal.NewFromInt(3)}},
			check: func(t *testing.T, next *models.AppState) {
				if next.FindProduct("p1").Name != "Green Tea" {
					t.Errorf("name = %s", next.FindProduct("p1").Name)
				}
			},
		},
		{
			name: "add staff",
			cmd:  AddStaffCmd{Staff: models.Staff{Name: "Said", Salary: decimal.NewFromInt(900)}},
			check: func(t *testing.T, next *models.AppState) {
				if len(next.Staff) != 2 {
					t.Errorf("staff = %d", len(next.Staff))
				}
			},
		},
		{
			name: "update staff status",
			cmd:  UpdateStaffStatusCmd{StaffID: "s1", Status: models.StaffOnLeave},
			check: func(t *testing.T, next *models.AppState) {
				if next.FindStaff("s1").Status != models.StaffOnLeave {
					t.Errorf("status = %s", next.FindStaff("s1").Status)
				}
			},
		},
		{
			name: "add bank account",
			cmd:  AddBankAccountCmd{Account: models.BankAccount{BankName: "HSBC Oman"}},
			check: func(t *testing.T, next *models.AppState) {
				if len(next.BankAccounts) != 2 {
					t.Errorf("accounts = %d", len(next.BankAccounts))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Apply(state, tt.cmd)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			tt.check(t, next)
		})
	}
}

func TestApplyUnknownCommand(t *testing.T) {
	if _, err := Apply(commandState(), bogusCmd{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestApplyErrorLeavesStateAlone(t *testing.T) {
	state := commandState()
	_, err := Apply(state, AdjustStockCmd{ProductID: "ghost", Delta: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if state.FindProduct("p1").Stock != 10 {
		t.Errorf("state mutated on failed command")
	}
}
