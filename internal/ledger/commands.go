package ledger

import (
	"fmt"

	"go-erp-agent/internal/models"
)

// Command is a tagged state-transition request. The engine stays pure:
// Apply(state, cmd) produces the next state, and the caller decides what to
// do about persistence.
type Command interface {
	isCommand()
}

type CommitSaleCmd struct{ Sale models.Sale }

type AdjustStockCmd struct {
	ProductID string
	Delta     int
	Reason    string
}

type RecordTransactionCmd struct{ Tx models.Transaction }

type ProcessSalaryCmd struct{ StaffID string }

type UpdateSettingsCmd struct{ Settings models.AppSettings }

type AddProductCmd struct{ Product models.Product }

type UpdateProductCmd struct{ Product models.Product }

type AddStaffCmd struct{ Staff models.Staff }

type UpdateStaffStatusCmd struct {
	StaffID string
	Status  string
}

type AddBankAccountCmd struct{ Account models.BankAccount }

func (CommitSaleCmd) isCommand()        {}
func (AdjustStockCmd) isCommand()       {}
func (RecordTransactionCmd) isCommand() {}
func (ProcessSalaryCmd) isCommand()     {}
func (UpdateSettingsCmd) isCommand()    {}
func (AddProductCmd) isCommand()        {}
func (UpdateProductCmd) isCommand()     {}
func (AddStaffCmd) isCommand()          {}
func (UpdateStaffStatusCmd) isCommand() {}
func (AddBankAccountCmd) isCommand()    {}

// Apply dispatches a command to the matching engine operation. Either the
// full transition happens and the new state is returned, or the old state is
// left untouched and an error comes back - there is no partial application.
func Apply(state *models.AppState, cmd Command) (*models.AppState, error) {
	switch c := cmd.(type) {
	case CommitSaleCmd:
		return CommitSale(state, c.Sale)
	case AdjustStockCmd:
		return AdjustStock(state, c.ProductID, c.Delta, c.Reason)
	case RecordTransactionCmd:
		return RecordTransaction(state, c.Tx)
	case ProcessSalaryCmd:
		return ProcessSalary(state, c.StaffID)
	case UpdateSettingsCmd:
		return UpdateSettings(state, c.Settings)
	case AddProductCmd:
		return AddProduct(state, c.Product)
	case UpdateProductCmd:
		return UpdateProduct(state, c.Product)
	case AddStaffCmd:
		return AddStaff(state, c.Staff)
	case UpdateStaffStatusCmd:
		return UpdateStaffStatus(state, c.StaffID, c.Status)
	case AddBankAccountCmd:
		return AddBankAccount(state, c.Account)
	default:
		return nil, fmt.Errorf("%w: unknown command %T", ErrInvalidInput, cmd)
	}
}
