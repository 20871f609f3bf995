package allocation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally-ho/internal/common"
	"github.com/Veraticus/tally-ho/internal/model"
	"github.com/Veraticus/tally-ho/internal/service"
	"github.com/Veraticus/tally-ho/internal/split"
	"github.com/Veraticus/tally-ho/internal/tax"
)

// SurplusName is the display name given to the auto-created surplus category.
const SurplusName = "Surplus"

// Service orchestrates budget and category mutations. Every mutating
// operation re-derives the surplus category inside the same storage
// transaction, so the invariant survives any sequence of edits.
type Service struct {
	store service.Storage
	calc  *Model
}

// NewService creates an allocation service.
func NewService(store service.Storage, calc *Model) *Service {
	return &Service{store: store, calc: calc}
}

// Summary is a read-only snapshot of the budget's allocation state.
type Summary struct {
	Budget         *model.Budget
	Categories     []model.Category
	Tax            tax.Result
	TotalAllocated decimal.Decimal
	TotalSavings   decimal.Decimal
	NetIncome      decimal.Decimal
	Remaining      decimal.Decimal
}

// SetupBudget creates the user's single budget and derives the initial
// surplus category.
func (s *Service) SetupBudget(ctx context.Context, budget *model.Budget) (*model.Budget, error) {
	if err := budget.Validate(); err != nil {
		return nil, common.NewValidationError("budget", err.Error())
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := tx.GetBudget(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.ErrBudgetExists
	}

	created, err := tx.CreateBudget(ctx, budget)
	if err != nil {
		return nil, err
	}
	if err := s.reconcileSurplus(ctx, tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	slog.Info("budget created", "income", created.Income, "period", created.IncomePeriod)
	return created, nil
}

// SetIncome updates the budget's income and re-derives surplus.
func (s *Service) SetIncome(ctx context.Context, income decimal.Decimal, period model.Period) error {
	return s.mutateBudget(ctx, func(b *model.Budget) {
		b.Income = income
		b.IncomePeriod = period
	})
}

// SetTaxInputs updates the filing status and itemized deductions and
// re-derives surplus.
func (s *Service) SetTaxInputs(ctx context.Context, status model.FilingStatus, deductions decimal.Decimal) error {
	return s.mutateBudget(ctx, func(b *model.Budget) {
		b.FilingStatus = status
		b.Deductions = deductions
	})
}

func (s *Service) mutateBudget(ctx context.Context, apply func(*model.Budget)) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	budget, err := tx.GetBudget(ctx)
	if err != nil {
		return err
	}
	if budget == nil {
		return common.ErrNoBudget
	}

	apply(budget)
	if err := budget.Validate(); err != nil {
		return common.NewValidationError("budget", err.Error())
	}
	if err := tx.UpdateBudget(ctx, budget); err != nil {
		return err
	}
	if err := s.reconcileSurplus(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// AddCategory validates and saves a new category, then re-derives surplus.
// Surplus categories are never added directly; they exist only through the
// documented auto-create repair.
func (s *Service) AddCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	if category.Type == model.CategoryTypeSurplus {
		return nil, common.NewValidationError("categoryType",
			"surplus categories are created automatically and cannot be added")
	}
	if err := s.calc.ValidateCategory(category); err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	budget, err := tx.GetBudget(ctx)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, common.ErrNoBudget
	}
	category.BudgetID = budget.ID

	if category.Color == "" {
		existing, err := tx.GetCategories(ctx, budget.ID)
		if err != nil {
			return nil, err
		}
		category.Color = NextColor(existing)
	}

	created, err := tx.CreateCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if err := s.reconcileSurplus(ctx, tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	slog.Info("category added", "name", created.Name, "type", created.Type)
	return created, nil
}

// UpdateCategory validates and saves changes to a category, then re-derives
// surplus. The surplus category's allocation is derived; only its name and
// color accept edits.
func (s *Service) UpdateCategory(ctx context.Context, category *model.Category) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := tx.GetCategoryByID(ctx, category.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("category %d: %w", category.ID, common.ErrNotFound)
	}
	if existing.Type == model.CategoryTypeSurplus {
		// Name and color are editable; everything else is derived.
		category.Type = existing.Type
		category.AllocatedAmount = existing.AllocatedAmount
		category.Period = existing.Period
		category.SubItems = nil
	} else if category.Type == model.CategoryTypeSurplus {
		return common.NewValidationError("categoryType",
			"a category cannot be changed into the surplus category")
	}

	if err := s.calc.ValidateCategory(category); err != nil {
		return err
	}
	if err := tx.UpdateCategory(ctx, category); err != nil {
		return err
	}
	if err := s.reconcileSurplus(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteCategory removes a category and re-derives surplus. The surplus
// category is protected from deletion.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := tx.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if existing.Type == model.CategoryTypeSurplus {
		return common.ErrSurplusProtected
	}

	if err := tx.DeleteCategory(ctx, id); err != nil {
		return err
	}
	if err := s.reconcileSurplus(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Summarize loads the budget and returns its full allocation snapshot.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	budget, err := s.store.GetBudget(ctx)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, common.ErrNoBudget
	}
	categories, err := s.store.GetCategories(ctx, budget.ID)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Budget:         budget,
		Categories:     categories,
		Tax:            s.calc.Tax(budget, categories),
		TotalAllocated: s.calc.TotalAllocated(categories),
		TotalSavings:   s.calc.TotalSavings(categories),
		NetIncome:      s.calc.NetIncome(budget, categories),
		Remaining:      s.calc.RemainingBudget(budget, categories),
	}, nil
}

// Check runs the submission-time cross-check against the stored budget.
func (s *Service) Check(ctx context.Context) error {
	summary, err := s.Summarize(ctx)
	if err != nil {
		return err
	}
	return s.calc.Check(summary.Budget, summary.Categories)
}

// CommitSplits resolves a validated split set against its transaction and
// persists the assignments. Savings categories accumulate their share into
// the running balance. Everything happens in one storage transaction.
func (s *Service) CommitSplits(ctx context.Context, txn *model.Transaction, set *split.Set) ([]model.Assignment, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Category existence and kind checks happen before commit so the set
	// stays editable on failure.
	for i, line := range set.Lines() {
		if line.CategoryID == nil {
			return nil, common.NewIndexedValidationError("split", i, "no category selected")
		}
		cat, err := tx.GetCategoryByID(ctx, *line.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, common.NewIndexedValidationError("split", i,
				fmt.Sprintf("category %d does not exist", *line.CategoryID))
		}
		if cat.Type == model.CategoryTypeSurplus {
			return nil, common.NewIndexedValidationError("split", i,
				"transactions cannot be assigned to the surplus category")
		}
	}

	assignments, err := set.Commit()
	if err != nil {
		return nil, err
	}

	if err := tx.SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}
	if err := tx.SaveAssignments(ctx, txn.ID, assignments); err != nil {
		return nil, err
	}

	for _, a := range assignments {
		cat, err := tx.GetCategoryByID(ctx, a.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat.Type == model.CategoryTypeSavings {
			cat.AccumulatedTotal = cat.AccumulatedTotal.Add(a.Amount)
			if err := tx.UpdateCategory(ctx, cat); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	slog.Info("splits committed", "transaction", txn.ID, "splits", len(assignments))
	return assignments, nil
}

// reconcileSurplus re-derives the surplus category from the current budget
// and category set. Called at the end of every mutating operation, inside
// its transaction. Applying it twice in a row is a no-op: the surplus amount
// depends only on non-surplus categories.
func (s *Service) reconcileSurplus(ctx context.Context, store service.Storage) error {
	budget, err := store.GetBudget(ctx)
	if err != nil {
		return err
	}
	if budget == nil {
		return nil
	}
	categories, err := store.GetCategories(ctx, budget.ID)
	if err != nil {
		return err
	}

	surplus, err := FindSurplus(categories)
	if err != nil {
		return err
	}
	remaining := s.calc.RemainingBudget(budget, categories).Round(2)

	if surplus == nil {
		if !budget.MonthlyIncome().IsPositive() {
			return nil
		}
		created := &model.Category{
			BudgetID:        budget.ID,
			Name:            SurplusName,
			Type:            model.CategoryTypeSurplus,
			Period:          model.PeriodMonthly,
			AllocatedAmount: remaining,
			Color:           NextColor(categories),
		}
		if _, err := store.CreateCategory(ctx, created); err != nil {
			return err
		}
		slog.Info("surplus category created", "amount", remaining)
		return nil
	}

	if surplus.AllocatedAmount.Equal(remaining) && surplus.Period == model.PeriodMonthly {
		return nil
	}
	surplus.AllocatedAmount = remaining
	surplus.Period = model.PeriodMonthly
	if err := store.UpdateCategory(ctx, surplus); err != nil {
		return err
	}
	slog.Debug("surplus reconciled", "amount", remaining)
	return nil
}
