package state

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"go-erp-agent/internal/ledger"
	"go-erp-agent/internal/models"
	"go-erp-agent/internal/store"
)

// ErrPersistence marks a mutation that applied in memory but could not be
// written to the snapshot store. The operation itself succeeded; durability
// is what failed, and the operator needs to know.
var ErrPersistence = errors.New("persistence failed")

// Manager is the single logical writer over the aggregate. Every mutation
// goes through Dispatch: lock, apply the command through the pure engine,
// persist the new snapshot, unlock. Readers get deep copies and can never
// observe a half-applied transition.
type Manager struct {
	mu    sync.Mutex
	state *models.AppState
	store store.Store
}

// NewManager loads the saved aggregate (or the seed fallback) and wraps it.
func NewManager(st store.Store) (*Manager, error) {
	loaded, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return &Manager{state: loaded, store: st}, nil
}

// Dispatch applies one command and persists the result. A ledger error leaves
// the aggregate untouched. A store error keeps the mutation in memory and
// reports ErrPersistence - the write is retried implicitly on the next
// successful mutation, since every save rewrites the full snapshot.
func (m *Manager) Dispatch(cmd ledger.Command) (*models.AppState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := ledger.Apply(m.state, cmd)
	if err != nil {
		return nil, err
	}
	m.state = next

	if err := m.store.Save(next); err != nil {
		log.Printf("⚠️ State mutation applied but not persisted: %v", err)
		return next.Clone(), fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return next.Clone(), nil
}

// Snapshot returns a deep copy of the current aggregate for readers and the
// insight service.
func (m *Manager) Snapshot() *models.AppState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}
