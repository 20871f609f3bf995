// Package allocation implements the budget allocation model: monthly
// aggregates, net income, and the self-balancing surplus category.
package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally-ho/internal/common"
	"github.com/Veraticus/tally-ho/internal/model"
	"github.com/Veraticus/tally-ho/internal/tax"
)

// Tolerance is the maximum drift allowed on the surplus invariant.
var Tolerance = decimal.RequireFromString("0.01")

// Model performs the allocation math for one budget. All aggregates are
// expressed monthly; annual amounts are normalized before summing.
type Model struct {
	engine *tax.Engine
}

// NewModel creates an allocation model backed by a tax engine.
func NewModel(engine *tax.Engine) *Model {
	return &Model{engine: engine}
}

// EffectiveMonthlyAmount returns the category's monthly allocation. When
// sub-items exist they are the source of truth and the stored parent amount
// is ignored.
func EffectiveMonthlyAmount(c *model.Category) decimal.Decimal {
	if len(c.SubItems) > 0 && c.SupportsSubItems() {
		return c.SubItemTotal()
	}
	return c.MonthlyAmount()
}

// TotalAllocated sums fixed and variable allocations, normalized to monthly.
// Surplus, excluded, and savings categories do not participate.
func (m *Model) TotalAllocated(categories []model.Category) decimal.Decimal {
	total := decimal.Zero
	for i := range categories {
		if categories[i].Type.CountsTowardAllocation() {
			total = total.Add(EffectiveMonthlyAmount(&categories[i]))
		}
	}
	return total
}

// TotalSavings sums savings-category allocations, normalized to monthly.
func (m *Model) TotalSavings(categories []model.Category) decimal.Decimal {
	total := decimal.Zero
	for i := range categories {
		if categories[i].Type == model.CategoryTypeSavings {
			total = total.Add(EffectiveMonthlyAmount(&categories[i]))
		}
	}
	return total
}

// Tax computes the full tax breakdown for the budget. Savings categories
// marked tax-deductible reduce federal taxable income; those additionally
// not subject to FICA reduce the payroll wage base.
func (m *Model) Tax(budget *model.Budget, categories []model.Category) tax.Result {
	deductible := decimal.Zero
	ficaExempt := decimal.Zero
	for i := range categories {
		c := &categories[i]
		if c.Type != model.CategoryTypeSavings || !c.IsTaxDeductible {
			continue
		}
		annual := EffectiveMonthlyAmount(c).Mul(decimal.NewFromInt(12))
		deductible = deductible.Add(annual)
		if !c.IsSubjectToFica {
			ficaExempt = ficaExempt.Add(annual)
		}
	}
	return m.engine.Compute(budget.AnnualIncome(), budget.FilingStatus, budget.Deductions, deductible, ficaExempt)
}

// NetIncome returns monthly income minus monthly tax.
func (m *Model) NetIncome(budget *model.Budget, categories []model.Category) decimal.Decimal {
	return budget.MonthlyIncome().Sub(m.Tax(budget, categories).MonthlyTotal())
}

// RemainingBudget returns monthly income minus tax, allocations, and savings.
// This value is the defining invariant for the surplus category.
func (m *Model) RemainingBudget(budget *model.Budget, categories []model.Category) decimal.Decimal {
	return m.NetIncome(budget, categories).
		Sub(m.TotalAllocated(categories)).
		Sub(m.TotalSavings(categories))
}

// Check is the submission-time cross-check: allocations plus savings must not
// exceed net income. Violations are reported, never clamped.
func (m *Model) Check(budget *model.Budget, categories []model.Category) error {
	allocated := m.TotalAllocated(categories).Add(m.TotalSavings(categories))
	net := m.NetIncome(budget, categories)
	if allocated.GreaterThan(net) {
		return common.NewValidationError("allocations",
			fmt.Sprintf("allocated %s exceeds net income %s", allocated.Round(2), net.Round(2)))
	}
	return nil
}

// FindSurplus locates the surplus category. It returns nil when none exists
// and an invariant violation when more than one does.
func FindSurplus(categories []model.Category) (*model.Category, error) {
	var found *model.Category
	for i := range categories {
		if categories[i].Type != model.CategoryTypeSurplus {
			continue
		}
		if found != nil {
			return nil, common.NewInvariantViolation("surplus-singleton",
				fmt.Sprintf("categories %d and %d are both surplus", found.ID, categories[i].ID))
		}
		found = &categories[i]
	}
	return found, nil
}

// ValidateCategory checks a category for save and applies the sub-item
// override: when sub-items exist the parent amount is recomputed from their
// monthly sum rather than accepted as entered.
func (m *Model) ValidateCategory(c *model.Category) error {
	if err := c.Validate(); err != nil {
		return common.NewValidationError("category", err.Error())
	}
	if len(c.SubItems) > 0 {
		hasValid := false
		for _, item := range c.SubItems {
			if item.Name != "" && !item.Amount.IsNegative() {
				hasValid = true
				break
			}
		}
		if !hasValid {
			return common.NewValidationError("subItems",
				"at least one sub-item with a name and non-negative amount is required")
		}
		c.AllocatedAmount = c.SubItemTotal()
		c.Period = model.PeriodMonthly
	}
	return nil
}
