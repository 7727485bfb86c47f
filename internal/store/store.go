package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"go-erp-agent/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// StateKey is the single key the whole aggregate lives under. The snapshot is
// read once at startup and rewritten in full after every mutation - no partial
// updates, no migrations.
const StateKey = "erp_state_v1"

// Snapshot is one persisted key -> JSON blob row.
type Snapshot struct {
	Key       string `gorm:"primaryKey;size:64"`
	Data      []byte
	UpdatedAt time.Time
}

// Store loads and saves the aggregate.
type Store interface {
	Load() (*models.AppState, error)
	Save(state *models.AppState) error
}

// Connect opens the backing database. DB_DRIVER picks sqlite (default) or
// mysql; DB_DSN overrides the DSN. Waits for the DB to be ready, like any
// fresh docker-compose boot needs.
func Connect() (*gorm.DB, error) {
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	dsn := os.Getenv("DB_DSN")

	var open gorm.Dialector
	switch driver {
	case "sqlite":
		if dsn == "" {
			dsn = "erp.db"
		}
		open = sqlite.Open(dsn)
	case "mysql":
		if dsn == "" {
			return nil, fmt.Errorf("DB_DSN is required when DB_DRIVER=mysql")
		}
		open = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}

	var db *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(open, &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect after 5 attempts: %w", err)
	}

	if err := db.AutoMigrate(&Snapshot{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("✅ Connected to %s, schema synced", driver)
	return db, nil
}

// DBStore persists the aggregate as a single snapshot row.
type DBStore struct {
	db *gorm.DB
}

func New(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

// Load reads the snapshot. A missing, unparseable, or structurally invalid
// payload falls back to the seed state - the app must always boot with a
// usable aggregate, never with malformed records.
func (s *DBStore) Load() (*models.AppState, error) {
	var snap Snapshot
	err := s.db.First(&snap, "key = ?", StateKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Println("No saved state found, starting from seed data")
		return Seed(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var state models.AppState
	if err := json.Unmarshal(snap.Data, &state); err != nil {
		log.Printf("⚠️ Saved state is unparseable (%v), reverting to seed data", err)
		return Seed(), nil
	}
	if err := validate(&state); err != nil {
		log.Printf("⚠️ Saved state failed validation (%v), reverting to seed data", err)
		return Seed(), nil
	}
	return &state, nil
}

// Save rewrites the whole snapshot.
func (s *DBStore) Save(state *models.AppState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	snap := Snapshot{Key: StateKey, Data: data, UpdatedAt: time.Now()}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&snap).Error; err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
