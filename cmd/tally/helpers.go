package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/tally-ho/internal/allocation"
	"github.com/Veraticus/tally-ho/internal/common"
	"github.com/Veraticus/tally-ho/internal/config"
	"github.com/Veraticus/tally-ho/internal/model"
	"github.com/Veraticus/tally-ho/internal/service"
	"github.com/Veraticus/tally-ho/internal/storage"
	"github.com/Veraticus/tally-ho/internal/tax"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initTaxEngine builds the tax engine from the configured year and state rate.
func initTaxEngine() (*tax.Engine, error) {
	stateRate, err := decimal.NewFromString(viper.GetString("tax.state_rate"))
	if err != nil {
		return nil, fmt.Errorf("invalid tax.state_rate: %w", err)
	}
	cfg, err := tax.ForYear(viper.GetInt("tax.year"), stateRate)
	if err != nil {
		return nil, err
	}
	return tax.New(cfg), nil
}

// initService wires storage, tax engine, and allocation model together.
func initService(ctx context.Context) (*allocation.Service, service.Storage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	engine, err := initTaxEngine()
	if err != nil {
		if closeErr := store.Close(); closeErr != nil {
			common.LogError(closeErr, "failed to close storage", common.Fields{"cause": err.Error()})
		}
		return nil, nil, err
	}
	return allocation.NewService(store, allocation.NewModel(engine)), store, nil
}

// parseAmount parses a user-entered dollar amount.
func parseAmount(value, flag string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: expected a decimal amount", flag, value)
	}
	return d, nil
}

// parsePeriod parses a monthly/annual flag value.
func parsePeriod(value string) (model.Period, error) {
	p := model.Period(value)
	if !p.Valid() {
		return "", fmt.Errorf("invalid period %q: expected monthly or annual", value)
	}
	return p, nil
}

// parseFilingStatus parses a filing status flag value.
func parseFilingStatus(value string) (model.FilingStatus, error) {
	f := model.FilingStatus(value)
	if !f.Valid() {
		return "", fmt.Errorf("invalid filing status %q: expected single, married-jointly, married-separately, or head-of-household", value)
	}
	return f, nil
}
