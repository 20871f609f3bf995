package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally-ho/internal/model"
)

// SaveTransaction upserts a transaction row.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactionModel(txn); err != nil {
		return err
	}
	return saveTransaction(ctx, s.db, txn)
}

// GetTransactionByID returns one transaction, or nil when it does not exist.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getTransactionByID(ctx, s.db, id)
}

// SaveAssignments replaces the committed split assignments for a transaction.
func (s *SQLiteStorage) SaveAssignments(ctx context.Context, txnID string, assignments []model.Assignment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(txnID, "txnID"); err != nil {
		return err
	}
	return saveAssignments(ctx, s.db, txnID, assignments)
}

// GetAssignments returns the committed split assignments for a transaction.
func (s *SQLiteStorage) GetAssignments(ctx context.Context, txnID string) ([]model.Assignment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(txnID, "txnID"); err != nil {
		return nil, err
	}
	return getAssignments(ctx, s.db, txnID)
}

func saveTransaction(ctx context.Context, q querier, txn *model.Transaction) error {
	query := `
		INSERT INTO transactions (id, date, name, merchant_name, amount)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			name = excluded.name,
			merchant_name = excluded.merchant_name,
			amount = excluded.amount`

	_, err := q.ExecContext(ctx, query,
		txn.ID, txn.Date, txn.Name, txn.MerchantName, txn.Amount.String())
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func getTransactionByID(ctx context.Context, q querier, id string) (*model.Transaction, error) {
	query := `
		SELECT id, date, name, merchant_name, amount
		FROM transactions
		WHERE id = ?`

	var (
		txn    model.Transaction
		amount string
	)
	err := q.QueryRowContext(ctx, query, id).Scan(
		&txn.ID, &txn.Date, &txn.Name, &txn.MerchantName, &amount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}

	if txn.Amount, err = parseDecimal(amount, "amount"); err != nil {
		return nil, err
	}
	return &txn, nil
}

func saveAssignments(ctx context.Context, q querier, txnID string, assignments []model.Assignment) error {
	if _, err := q.ExecContext(ctx,
		`DELETE FROM transaction_categories WHERE transaction_id = ?`, txnID); err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}

	for _, a := range assignments {
		_, err := q.ExecContext(ctx, `
			INSERT INTO transaction_categories (transaction_id, category_id, amount)
			VALUES (?, ?, ?)`,
			txnID, a.CategoryID, a.Amount.String())
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	slog.Debug("saved assignments", "transaction", txnID, "count", len(assignments))
	return nil
}

func getAssignments(ctx context.Context, q querier, txnID string) ([]model.Assignment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT category_id, amount
		FROM transaction_categories
		WHERE transaction_id = ?
		ORDER BY category_id`, txnID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var assignments []model.Assignment
	for rows.Next() {
		var (
			a      model.Assignment
			amount string
		)
		if err := rows.Scan(&a.CategoryID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if a.Amount, err = parseDecimal(amount, "assignment.amount"); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}
	return assignments, nil
}
