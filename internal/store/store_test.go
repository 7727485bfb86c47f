package store_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"go-erp-agent/internal/models"
	"go-erp-agent/internal/store"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&store.Snapshot{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestLoadMissingSnapshotReturnsSeed(t *testing.T) {
	s := store.New(testDB(t))

	state, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.Settings.CompanyName != "MarufEdge Oman" {
		t.Errorf("company = %q, want seed data", state.Settings.CompanyName)
	}
	if !state.CashBalance.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("cash = %s, want 2500", state.CashBalance)
	}
	if len(state.Products) != 1 || state.Products[0].Name != "Premium Coffee Beans" {
		t.Errorf("products = %+v, want seed catalogue", state.Products)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := store.New(testDB(t))

	state := store.Seed()
	state.CashBalance = decimal.RequireFromString("123.456")
	state.Sales = append(state.Sales, models.Sale{
		ID:            "sale-rt",
		Timestamp:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Items:         []models.SaleItem{{ProductID: "1", Name: "Premium Coffee Beans", Quantity: 1, Price: decimal.RequireFromString("45.000")}},
		Subtotal:      decimal.RequireFromString("45.000"),
		TaxAmount:     decimal.RequireFromString("2.250"),
		TotalAmount:   decimal.RequireFromString("47.250"),
		PaymentMethod: models.PaymentCard,
	})

	if err := s.Save(state); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want, _ := json.Marshal(state)
	got, _ := json.Marshal(loaded)
	if string(want) != string(got) {
		t.Errorf("round trip lost data:\nsaved:  %s\nloaded: %s", want, got)
	}
}

func TestSaveOverwritesSingleRow(t *testing.T) {
	db := testDB(t)
	s := store.New(db)

	first := store.Seed()
	if err := s.Save(first); err != nil {
		t.Fatal(err)
	}
	second := store.Seed()
	second.CashBalance = decimal.NewFromInt(9000)
	if err := s.Save(second); err != nil {
		t.Fatal(err)
	}

	var count int64
	db.Model(&store.Snapshot{}).Count(&count)
	if count != 1 {
		t.Errorf("snapshot rows = %d, want 1", count)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.CashBalance.Equal(decimal.NewFromInt(9000)) {
		t.Errorf("cash = %s, want latest save", loaded.CashBalance)
	}
}

func TestLoadCorruptPayloadRevertsToSeed(t *testing.T) {
	db := testDB(t)
	s := store.New(db)

	db.Create(&store.Snapshot{Key: store.StateKey, Data: []byte("{definitely not json"), UpdatedAt: time.Now()})

	state, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.Settings.CompanyName != "MarufEdge Oman" {
		t.Errorf("corrupt payload did not revert to seed")
	}
}

func TestLoadInvalidStateRevertsToSeed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.AppState)
	}{
		{"negative stock", func(s *models.AppState) { s.Products[0].Stock = -3 }},
		{"unknown staff status", func(s *models.AppState) { s.Staff[0].Status = "retired" }},
		{"unknown language", func(s *models.AppState) { s.Settings.Language = "fr" }},
		{"negative tax rate", func(s *models.AppState) { s.Settings.TaxRate = decimal.NewFromInt(-5) }},
		{"image index out of range", func(s *models.AppState) { s.Products[0].PrimaryImageIndex = 9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testDB(t)
			s := store.New(db)

			bad := store.Seed()
			bad.CashBalance = decimal.NewFromInt(7777) // marker: must NOT survive
			tt.mutate(bad)
			data, _ := json.Marshal(bad)
			db.Create(&store.Snapshot{Key: store.StateKey, Data: data, UpdatedAt: time.Now()})

			state, err := s.Load()
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if state.CashBalance.Equal(decimal.NewFromInt(7777)) {
				t.Errorf("invalid state was accepted")
			}
		})
	}
}
