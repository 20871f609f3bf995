package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally-ho/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testBudget() *model.Budget {
	return &model.Budget{
		Income:       d("5000"),
		IncomePeriod: model.PeriodMonthly,
		FilingStatus: model.FilingSingle,
		Deductions:   d("1000"),
	}
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
		store, err := NewSQLiteStorage(path)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))

	var version int
	require.NoError(t, store.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestBudgetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	// Empty database has no budget.
	got, err := store.GetBudget(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	created, err := store.CreateBudget(ctx, testBudget())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err = store.GetBudget(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Income.Equal(d("5000")))
	assert.Equal(t, model.PeriodMonthly, got.IncomePeriod)
	assert.Equal(t, model.FilingSingle, got.FilingStatus)
	assert.True(t, got.Deductions.Equal(d("1000")))
}

func TestCreateBudgetRejectsSecond(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	_, err := store.CreateBudget(ctx, testBudget())
	require.NoError(t, err)

	_, err = store.CreateBudget(ctx, testBudget())
	assert.Error(t, err)
}

func TestUpdateBudget(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	created, err := store.CreateBudget(ctx, testBudget())
	require.NoError(t, err)

	created.Income = d("72000")
	created.IncomePeriod = model.PeriodAnnual
	require.NoError(t, store.UpdateBudget(ctx, created))

	got, err := store.GetBudget(ctx)
	require.NoError(t, err)
	assert.True(t, got.Income.Equal(d("72000")))
	assert.Equal(t, model.PeriodAnnual, got.IncomePeriod)

	t.Run("missing budget", func(t *testing.T) {
		missing := testBudget()
		missing.ID = 999
		assert.Error(t, store.UpdateBudget(ctx, missing))
	})
}

func TestCategoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	budget, err := store.CreateBudget(ctx, testBudget())
	require.NoError(t, err)

	category := &model.Category{
		BudgetID:             budget.ID,
		Name:                 "Emergency Fund",
		Type:                 model.CategoryTypeSavings,
		Period:               model.PeriodMonthly,
		AllocatedAmount:      d("500"),
		AccumulatedTotal:     d("1250.75"),
		Color:                "#FF6B6B",
		IsTaxDeductible:      true,
		IsSubjectToFica:      true,
		IsUnconnectedAccount: true,
	}

	created, err := store.CreateCategory(ctx, category)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := store.GetCategoryByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Emergency Fund", got.Name)
	assert.Equal(t, model.CategoryTypeSavings, got.Type)
	assert.True(t, got.AllocatedAmount.Equal(d("500")))
	assert.True(t, got.AccumulatedTotal.Equal(d("1250.75")))
	assert.Equal(t, "#FF6B6B", got.Color)
	assert.True(t, got.IsTaxDeductible)
	assert.True(t, got.IsSubjectToFica)
	assert.True(t, got.IsUnconnectedAccount)
	assert.Nil(t, got.MoveTargetID)

	t.Run("unknown id returns nil", func(t *testing.T) {
		got, err := store.GetCategoryByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestCategorySubItems(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	budget, err := store.CreateBudget(ctx, testBudget())
	require.NoError(t, err)

	category := &model.Category{
		BudgetID:        budget.ID,
		Name:            "Utilities",
		Type:            model.CategoryTypeFixed,
		Period:          model.PeriodMonthly,
		AllocatedAmount: d("130"),
		SubItems: []model.SubItem{
			{Name: "Electric", Amount: d("80"), Period: model.PeriodMonthly},
			{Name: "Insurance", Amount: d("600"), Period: model.PeriodAnnual},
		},
	}

	created, err := store.CreateCategory(ctx, category)
	require.NoError(t, err)

	got, err := store.GetCategoryByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.SubItems, 2)
	assert.Equal(t, "Electric", got.SubItems[0].Name)
	assert.True(t, got.SubItems[1].Amount.Equal(d("600")))
	assert.Equal(t, model.PeriodAnnual, got.SubItems[1].Period)

	// Update replaces the sub-item set wholesale.
	got.SubItems = []model.SubItem{
		{Name: "Internet", Amount: d("60"), Period: model.PeriodMonthly},
	}
	require.NoError(t, store.UpdateCategory(ctx, got))

	updated, err := store.GetCategoryByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, updated.SubItems, 1)
	assert.Equal(t, "Internet", updated.SubItems[0].Name)
}

func TestGetCategoriesOrdering(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	budget, err := store.CreateBudget(ctx, testBudget())
	require.NoError(t, err)

	for _, name := range []string{"Rent", "Groceries", "Fun"} {
		_, err := store.CreateCategory(ctx, &model.Category{
			BudgetID:        budget.ID,
			Name:            name,
			Type:            model.CategoryTypeVariable,
			Period:          model.PeriodMonthly,
			AllocatedAmount: d("100"),
		})
		require.NoError(t, err)
	}

	categories, err := store.GetCategories(ctx, budget.ID)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Rent", categories[0].Name)
	assert.Equal(t, "Groceries", categories[1].Name)
	assert.Equal(t, "Fun", categories[2].Name)
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	budget, err := store.CreateBudget(ctx, testBudget())
	require.NoError(t, err)

	created, err := store.CreateCategory(ctx, &model.Category{
		BudgetID:        budget.ID,
		Name:            "Doomed",
		Type:            model.CategoryTypeVariable,
		Period:          model.PeriodMonthly,
		AllocatedAmount: d("10"),
		SubItems: []model.SubItem{
			{Name: "x", Amount: d("10"), Period: model.PeriodMonthly},
		},
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteCategory(ctx, created.ID))

	got, err := store.GetCategoryByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Cascade removed the sub-items too.
	var count int
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*) FROM sub_items WHERE category_id = ?", created.ID).Scan(&count))
	assert.Zero(t, count)

	assert.Error(t, store.DeleteCategory(ctx, created.ID), "second delete should fail")
}

func TestDeleteCategoryNullsMoveTarget(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	budget, err := store.CreateBudget(ctx, testBudget())
	require.NoError(t, err)

	target, err := store.CreateCategory(ctx, &model.Category{
		BudgetID:        budget.ID,
		Name:            "Target",
		Type:            model.CategoryTypeSavings,
		Period:          model.PeriodMonthly,
		AllocatedAmount: d("100"),
	})
	require.NoError(t, err)

	mover, err := store.CreateCategory(ctx, &model.Category{
		BudgetID:        budget.ID,
		Name:            "Mover",
		Type:            model.CategoryTypeVariable,
		Period:          model.PeriodMonthly,
		AllocatedAmount: d("100"),
		MoveTargetID:    &target.ID,
		AutoMoveSurplus: true,
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteCategory(ctx, target.ID))

	got, err := store.GetCategoryByID(ctx, mover.ID)
	require.NoError(t, err)
	assert.Nil(t, got.MoveTargetID, "schema should null the dangling move target")
	assert.True(t, got.AutoMoveSurplus)
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	txn := &model.Transaction{
		ID:           "txn-abc",
		Name:         "Costco",
		MerchantName: "COSTCO WHOLESALE",
		Amount:       d("-150.25"),
		Date:         time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveTransaction(ctx, txn))

	got, err := store.GetTransactionByID(ctx, "txn-abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Costco", got.Name)
	assert.Equal(t, "COSTCO WHOLESALE", got.MerchantName)
	assert.True(t, got.Amount.Equal(d("-150.25")))

	// Saving again upserts instead of failing.
	txn.Name = "Costco Run"
	require.NoError(t, store.SaveTransaction(ctx, txn))
	got, err = store.GetTransactionByID(ctx, "txn-abc")
	require.NoError(t, err)
	assert.Equal(t, "Costco Run", got.Name)

	t.Run("unknown id returns nil", func(t *testing.T) {
		got, err := store.GetTransactionByID(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestAssignments(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	budget, err := store.CreateBudget(ctx, testBudget())
	require.NoError(t, err)

	var catIDs []int64
	for _, name := range []string{"A", "B"} {
		cat, err := store.CreateCategory(ctx, &model.Category{
			BudgetID:        budget.ID,
			Name:            name,
			Type:            model.CategoryTypeVariable,
			Period:          model.PeriodMonthly,
			AllocatedAmount: d("100"),
		})
		require.NoError(t, err)
		catIDs = append(catIDs, cat.ID)
	}

	txn := &model.Transaction{ID: "txn-split", Amount: d("150"), Date: time.Now()}
	require.NoError(t, store.SaveTransaction(ctx, txn))

	assignments := []model.Assignment{
		{CategoryID: catIDs[0], Amount: d("40")},
		{CategoryID: catIDs[1], Amount: d("110")},
	}
	require.NoError(t, store.SaveAssignments(ctx, txn.ID, assignments))

	got, err := store.GetAssignments(ctx, txn.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Amount.Equal(d("40")))
	assert.True(t, got[1].Amount.Equal(d("110")))

	// Re-saving replaces the previous set.
	require.NoError(t, store.SaveAssignments(ctx, txn.ID, assignments[:1]))
	got, err = store.GetAssignments(ctx, txn.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTransactionAtomicity(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	_, err = tx.CreateBudget(ctx, testBudget())
	require.NoError(t, err)

	require.NoError(t, tx.Rollback())

	got, err := store.GetBudget(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "rolled back budget should not persist")

	t.Run("commit persists", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		_, err = tx.CreateBudget(ctx, testBudget())
		require.NoError(t, err)
		require.NoError(t, tx.Commit())

		got, err := store.GetBudget(ctx)
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("rollback after commit is a no-op", func(t *testing.T) {
		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
		require.NoError(t, tx.Rollback())
	})
}

func TestTransactionRefusesNesting(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.BeginTx(ctx)
	assert.Error(t, err)
	assert.Error(t, tx.Migrate(ctx))
	assert.Error(t, tx.Close())
}
