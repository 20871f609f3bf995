package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: budgets, categories, sub-items",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS budgets (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					income TEXT NOT NULL DEFAULT '0',
					income_period TEXT NOT NULL DEFAULT 'monthly',
					filing_status TEXT NOT NULL DEFAULT 'single',
					deductions TEXT NOT NULL DEFAULT '0',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					budget_id INTEGER NOT NULL REFERENCES budgets(id),
					name TEXT NOT NULL,
					category_type TEXT NOT NULL,
					allocated_amount TEXT NOT NULL DEFAULT '0',
					period TEXT NOT NULL DEFAULT 'monthly',
					color TEXT NOT NULL DEFAULT '',
					accumulated_total TEXT NOT NULL DEFAULT '0',
					expected_merchant TEXT NOT NULL DEFAULT '',
					hide_from_transactions INTEGER NOT NULL DEFAULT 0,
					move_target_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
					auto_move_surplus INTEGER NOT NULL DEFAULT 0,
					auto_move_deficit INTEGER NOT NULL DEFAULT 0,
					is_tax_deductible INTEGER NOT NULL DEFAULT 0,
					is_subject_to_fica INTEGER NOT NULL DEFAULT 0,
					is_unconnected_account INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_categories_budget ON categories(budget_id)`,
				`CREATE INDEX idx_categories_type ON categories(category_type)`,

				`CREATE TABLE IF NOT EXISTS sub_items (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
					name TEXT NOT NULL,
					amount TEXT NOT NULL DEFAULT '0',
					period TEXT NOT NULL DEFAULT 'monthly'
				)`,
				`CREATE INDEX idx_sub_items_category ON sub_items(category_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Transactions and committed split assignments",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					date DATETIME NOT NULL,
					name TEXT NOT NULL,
					merchant_name TEXT NOT NULL DEFAULT '',
					amount TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,

				`CREATE TABLE IF NOT EXISTS transaction_categories (
					transaction_id TEXT NOT NULL REFERENCES transactions(id),
					category_id INTEGER NOT NULL REFERENCES categories(id),
					amount TEXT NOT NULL,
					PRIMARY KEY (transaction_id, category_id)
				)`,
				`CREATE INDEX idx_transaction_categories_category ON transaction_categories(category_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Keep category updated_at current",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TRIGGER IF NOT EXISTS update_categories_updated_at
				AFTER UPDATE ON categories
				FOR EACH ROW
				BEGIN
					UPDATE categories SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
				END
			`)
			return err
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
