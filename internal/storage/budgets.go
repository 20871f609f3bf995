package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally-ho/internal/model"
)

// parseDecimal converts a stored TEXT column back to a decimal.
func parseDecimal(s, column string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse %s value %q: %w", column, s, err)
	}
	return d, nil
}

// GetBudget returns the single active budget, or nil when none exists.
func (s *SQLiteStorage) GetBudget(ctx context.Context) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getBudget(ctx, s.db)
}

// CreateBudget saves a new budget. Exactly one budget may exist.
func (s *SQLiteStorage) CreateBudget(ctx context.Context, budget *model.Budget) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateBudget(budget); err != nil {
		return nil, err
	}
	return createBudget(ctx, s.db, budget)
}

// UpdateBudget saves changes to the budget.
func (s *SQLiteStorage) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}
	return updateBudget(ctx, s.db, budget)
}

func getBudget(ctx context.Context, q querier) (*model.Budget, error) {
	query := `
		SELECT id, income, income_period, filing_status, deductions, created_at, updated_at
		FROM budgets
		ORDER BY id
		LIMIT 1`

	var (
		b          model.Budget
		income     string
		deductions string
	)
	err := q.QueryRowContext(ctx, query).Scan(
		&b.ID, &income, &b.IncomePeriod, &b.FilingStatus, &deductions, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}

	if b.Income, err = parseDecimal(income, "income"); err != nil {
		return nil, err
	}
	if b.Deductions, err = parseDecimal(deductions, "deductions"); err != nil {
		return nil, err
	}
	return &b, nil
}

func createBudget(ctx context.Context, q querier, budget *model.Budget) (*model.Budget, error) {
	existing, err := getBudget(ctx, q)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("a budget already exists (id %d)", existing.ID)
	}

	query := `
		INSERT INTO budgets (income, income_period, filing_status, deductions)
		VALUES (?, ?, ?, ?)`

	result, err := q.ExecContext(ctx, query,
		budget.Income.String(), budget.IncomePeriod, budget.FilingStatus, budget.Deductions.String())
	if err != nil {
		return nil, fmt.Errorf("failed to insert budget: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get budget id: %w", err)
	}
	budget.ID = id

	slog.Debug("created budget", "id", id)
	return budget, nil
}

func updateBudget(ctx context.Context, q querier, budget *model.Budget) error {
	query := `
		UPDATE budgets
		SET income = ?, income_period = ?, filing_status = ?, deductions = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := q.ExecContext(ctx, query,
		budget.Income.String(), budget.IncomePeriod, budget.FilingStatus, budget.Deductions.String(), budget.ID)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("budget %d not found", budget.ID)
	}
	return nil
}
