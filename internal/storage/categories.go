package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/tally-ho/internal/model"
)

const categoryColumns = `id, budget_id, name, category_type, allocated_amount, period, color,
	accumulated_total, expected_merchant, hide_from_transactions, move_target_id,
	auto_move_surplus, auto_move_deficit, is_tax_deductible, is_subject_to_fica,
	is_unconnected_account, created_at, updated_at`

// GetCategories returns all categories for a budget, sub-items included.
func (s *SQLiteStorage) GetCategories(ctx context.Context, budgetID int64) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategories(ctx, s.db, budgetID)
}

// GetCategoryByID returns one category, or nil when it does not exist.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategoryByID(ctx, s.db, id)
}

// CreateCategory saves a new category with its sub-items.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	return createCategory(ctx, s.db, category)
}

// UpdateCategory saves changes to a category, replacing its sub-items.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	return updateCategory(ctx, s.db, category)
}

// DeleteCategory removes a category. Referencing move targets are nulled by
// the schema; committed assignments keep their rows.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCategory(ctx, s.db, id)
}

func scanCategory(scan func(...any) error) (*model.Category, error) {
	var (
		c           model.Category
		allocated   string
		accumulated string
		moveTarget  sql.NullInt64
	)
	err := scan(
		&c.ID, &c.BudgetID, &c.Name, &c.Type, &allocated, &c.Period, &c.Color,
		&accumulated, &c.ExpectedMerchantName, &c.HideFromTransactions, &moveTarget,
		&c.AutoMoveSurplus, &c.AutoMoveDeficit, &c.IsTaxDeductible, &c.IsSubjectToFica,
		&c.IsUnconnectedAccount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.AllocatedAmount, err = parseDecimal(allocated, "allocated_amount"); err != nil {
		return nil, err
	}
	if c.AccumulatedTotal, err = parseDecimal(accumulated, "accumulated_total"); err != nil {
		return nil, err
	}
	if moveTarget.Valid {
		c.MoveTargetID = &moveTarget.Int64
	}
	return &c, nil
}

func getCategories(ctx context.Context, q querier, budgetID int64) ([]model.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		WHERE budget_id = ?
		ORDER BY id`, categoryColumns)

	rows, err := q.QueryContext(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	for i := range categories {
		items, err := getSubItems(ctx, q, categories[i].ID)
		if err != nil {
			return nil, err
		}
		categories[i].SubItems = items
	}

	slog.Debug("retrieved categories", "budget", budgetID, "count", len(categories))
	return categories, nil
}

func getCategoryByID(ctx context.Context, q querier, id int64) (*model.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		WHERE id = ?`, categoryColumns)

	cat, err := scanCategory(q.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	items, err := getSubItems(ctx, q, cat.ID)
	if err != nil {
		return nil, err
	}
	cat.SubItems = items
	return cat, nil
}

func getSubItems(ctx context.Context, q querier, categoryID int64) ([]model.SubItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, amount, period
		FROM sub_items
		WHERE category_id = ?
		ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.SubItem
	for rows.Next() {
		var (
			item   model.SubItem
			amount string
		)
		if err := rows.Scan(&item.ID, &item.Name, &amount, &item.Period); err != nil {
			return nil, fmt.Errorf("failed to scan sub-item: %w", err)
		}
		if item.Amount, err = parseDecimal(amount, "sub_item.amount"); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sub-items: %w", err)
	}
	return items, nil
}

func createCategory(ctx context.Context, q querier, category *model.Category) (*model.Category, error) {
	query := `
		INSERT INTO categories (
			budget_id, name, category_type, allocated_amount, period, color,
			accumulated_total, expected_merchant, hide_from_transactions, move_target_id,
			auto_move_surplus, auto_move_deficit, is_tax_deductible, is_subject_to_fica,
			is_unconnected_account
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var moveTarget any
	if category.MoveTargetID != nil {
		moveTarget = *category.MoveTargetID
	}

	result, err := q.ExecContext(ctx, query,
		category.BudgetID, category.Name, category.Type,
		category.AllocatedAmount.String(), category.Period, category.Color,
		category.AccumulatedTotal.String(), category.ExpectedMerchantName,
		category.HideFromTransactions, moveTarget,
		category.AutoMoveSurplus, category.AutoMoveDeficit,
		category.IsTaxDeductible, category.IsSubjectToFica, category.IsUnconnectedAccount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}
	category.ID = id

	if err := replaceSubItems(ctx, q, category.ID, category.SubItems); err != nil {
		return nil, err
	}

	slog.Debug("created category", "id", id, "name", category.Name, "type", category.Type)
	return category, nil
}

func updateCategory(ctx context.Context, q querier, category *model.Category) error {
	query := `
		UPDATE categories
		SET name = ?, category_type = ?, allocated_amount = ?, period = ?, color = ?,
		    accumulated_total = ?, expected_merchant = ?, hide_from_transactions = ?,
		    move_target_id = ?, auto_move_surplus = ?, auto_move_deficit = ?,
		    is_tax_deductible = ?, is_subject_to_fica = ?, is_unconnected_account = ?
		WHERE id = ?`

	var moveTarget any
	if category.MoveTargetID != nil {
		moveTarget = *category.MoveTargetID
	}

	result, err := q.ExecContext(ctx, query,
		category.Name, category.Type,
		category.AllocatedAmount.String(), category.Period, category.Color,
		category.AccumulatedTotal.String(), category.ExpectedMerchantName,
		category.HideFromTransactions, moveTarget,
		category.AutoMoveSurplus, category.AutoMoveDeficit,
		category.IsTaxDeductible, category.IsSubjectToFica, category.IsUnconnectedAccount,
		category.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("category %d not found", category.ID)
	}

	return replaceSubItems(ctx, q, category.ID, category.SubItems)
}

func replaceSubItems(ctx context.Context, q querier, categoryID int64, items []model.SubItem) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM sub_items WHERE category_id = ?`, categoryID); err != nil {
		return fmt.Errorf("failed to clear sub-items: %w", err)
	}
	for _, item := range items {
		_, err := q.ExecContext(ctx, `
			INSERT INTO sub_items (category_id, name, amount, period)
			VALUES (?, ?, ?, ?)`,
			categoryID, item.Name, item.Amount.String(), item.Period)
		if err != nil {
			return fmt.Errorf("failed to insert sub-item: %w", err)
		}
	}
	return nil
}

func deleteCategory(ctx context.Context, q querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("category %d not found", id)
	}
	slog.Debug("deleted category", "id", id)
	return nil
}
