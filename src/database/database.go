package database

import (
	"database/sql"
	"encoding/json"
	stdlog "log"
	"time"

	"github.com/username/pitfolio/backend/src/logger"
	"github.com/username/pitfolio/backend/src/models"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

// InitDB opens the sqlite database and creates the rate-cache schema. The
// database holds only fetched provider rate tables; statement data is never
// persisted.
func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS currency_rates (
		currency TEXT NOT NULL,
		year TEXT NOT NULL,
		payload TEXT NOT NULL,
		fetched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (currency, year)
	);`

	if _, err := DB.Exec(createTableStatement); err != nil {
		stdlog.Fatalf("failed to create currency_rates table: %v", err)
	}

	if logger.L != nil {
		logger.L.Info("Database initialized", "databasePath", databasePath)
	}
}

// RateStore persists fetched NBP rate tables in sqlite so repeated
// uploads for the same year skip the provider.
type RateStore struct {
	db *sql.DB
}

// NewRateStore returns a store backed by the global DB. InitDB must have
// been called first.
func NewRateStore() *RateStore {
	return &RateStore{db: DB}
}

func (s *RateStore) Get(currency, year string) (models.CurrencyData, bool) {
	var payload string
	err := s.db.QueryRow(
		`SELECT payload FROM currency_rates WHERE currency = ? AND year = ?`,
		currency, year,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return models.CurrencyData{}, false
	}
	if err != nil {
		logger.L.Error("Failed to read cached rate table", "currency", currency, "year", year, "error", err)
		return models.CurrencyData{}, false
	}

	var data models.CurrencyData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		logger.L.Error("Corrupt cached rate table, ignoring", "currency", currency, "year", year, "error", err)
		return models.CurrencyData{}, false
	}
	return data, true
}

func (s *RateStore) Put(currency, year string, data models.CurrencyData) {
	payload, err := json.Marshal(data)
	if err != nil {
		logger.L.Error("Failed to marshal rate table for caching", "currency", currency, "year", year, "error", err)
		return
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO currency_rates (currency, year, payload, fetched_at) VALUES (?, ?, ?, ?)`,
		currency, year, string(payload), time.Now().UTC(),
	)
	if err != nil {
		logger.L.Error("Failed to cache rate table", "currency", currency, "year", year, "error", err)
	}
}
