package state_test

import (
	"errors"
	"testing"

	"go-erp-agent/internal/ledger"
	"go-erp-agent/internal/models"
	"go-erp-agent/internal/state"

	"github.com/shopspring/decimal"
)

// memStore keeps the snapshot in memory and can be told to fail saves.
type memStore struct {
	state    *models.AppState
	saves    int
	failSave bool
}

func (m *memStore) Load() (*models.AppState, error) {
	return m.state.Clone(), nil
}

func (m *memStore) Save(s *models.AppState) error {
	m.saves++
	if m.failSave {
		return errors.New("disk on fire")
	}
	m.state = s.Clone()
	return nil
}

func seedStore() *memStore {
	return &memStore{state: &models.AppState{
		Products: []models.Product{
			{ID: "p1", Name: "Halwa", Price: decimal.NewFromInt(5), Stock: 8},
		},
		CashBalance: decimal.NewFromInt(50),
		Settings:    models.AppSettings{Language: "en", TaxRate: decimal.NewFromInt(5)},
	}}
}

func TestDispatchPersistsAfterMutation(t *testing.T) {
	st := seedStore()
	mgr, err := state.NewManager(st)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	next, err := mgr.Dispatch(ledger.AdjustStockCmd{ProductID: "p1", Delta: 4, Reason: "delivery"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if next.FindProduct("p1").Stock != 12 {
		t.Errorf("stock = %d, want 12", next.FindProduct("p1").Stock)
	}
	if st.saves != 1 {
		t.Errorf("saves = %d, want 1", st.saves)
	}
	if st.state.FindProduct("p1").Stock != 12 {
		t.Errorf("persisted stock = %d, want 12", st.state.FindProduct("p1").Stock)
	}
}

func TestDispatchLedgerErrorDoesNotPersist(t *testing.T) {
	st := seedStore()
	mgr, err := state.NewManager(st)
	if err != nil {
		t.Fatal(err)
	}

	_, err = mgr.Dispatch(ledger.AdjustStockCmd{ProductID: "ghost", Delta: 1})
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if st.saves != 0 {
		t.Errorf("rejected command reached the store (%d saves)", st.saves)
	}
	if got := mgr.Snapshot().FindProduct("p1").Stock; got != 8 {
		t.Errorf("stock = %d, want 8", got)
	}
}

func TestDispatchSaveFailureKeepsMutation(t *testing.T) {
	st := seedStore()
	mgr, err := state.NewManager(st)
	if err != nil {
		t.Fatal(err)
	}
	st.failSave = true

	next, err := mgr.Dispatch(ledger.AdjustStockCmd{ProductID: "p1", Delta: 2, Reason: "found in back room"})
	if !errors.Is(err, state.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	// The mutation still applied in memory, and the caller gets the new state.
	if next == nil || next.FindProduct("p1").Stock != 10 {
		t.Errorf("returned state does not carry the applied mutation")
	}
	if got := mgr.Snapshot().FindProduct("p1").Stock; got != 10 {
		t.Errorf("snapshot stock = %d, want 10", got)
	}

	// Next successful save rewrites the full snapshot, catching up.
	st.failSave = false
	if _, err := mgr.Dispatch(ledger.AdjustStockCmd{ProductID: "p1", Delta: 1, Reason: "recount"}); err != nil {
		t.Fatalf("dispatch after recovery: %v", err)
	}
	if st.state.FindProduct("p1").Stock != 11 {
		t.Errorf("persisted stock = %d, want 11", st.state.FindProduct("p1").Stock)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	mgr, err := state.NewManager(seedStore())
	if err != nil {
		t.Fatal(err)
	}

	snap := mgr.Snapshot()
	snap.FindProduct("p1").Stock = 0
	snap.CashBalance = decimal.NewFromInt(-999)

	fresh := mgr.Snapshot()
	if fresh.FindProduct("p1").Stock != 8 {
		t.Errorf("manager state leaked through snapshot: stock = %d", fresh.FindProduct("p1").Stock)
	}
	if !fresh.CashBalance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("manager state leaked through snapshot: cash = %s", fresh.CashBalance)
	}
}
