package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryType determines how a category participates in allocation math.
type CategoryType string

const (
	// CategoryTypeFixed is a recurring, relatively invariant expense.
	CategoryTypeFixed CategoryType = "fixed"
	// CategoryTypeVariable is discretionary spending with optional auto-rebalancing.
	CategoryTypeVariable CategoryType = "variable"
	// CategoryTypeSavings accumulates a running balance.
	CategoryTypeSavings CategoryType = "savings"
	// CategoryTypeSurplus is the derived leftover-income sink; exactly one per budget.
	CategoryTypeSurplus CategoryType = "surplus"
	// CategoryTypeExcluded marks amounts that never count toward allocation totals.
	CategoryTypeExcluded CategoryType = "excluded"
)

// Valid reports whether the category type is a known value.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryTypeFixed, CategoryTypeVariable, CategoryTypeSavings,
		CategoryTypeSurplus, CategoryTypeExcluded:
		return true
	}
	return false
}

// CountsTowardAllocation reports whether this type is summed into
// TotalAllocated. Surplus is derived, excluded never counts, and savings is
// accounted separately via TotalSavings.
func (t CategoryType) CountsTowardAllocation() bool {
	return t == CategoryTypeFixed || t == CategoryTypeVariable
}

// Category is a single budget allocation bucket.
type Category struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Name            string
	Type            CategoryType
	Period          Period
	Color           string
	AllocatedAmount decimal.Decimal

	// Running balance across reconciled transactions (savings only).
	AccumulatedTotal decimal.Decimal

	// Fixed.
	ExpectedMerchantName string
	HideFromTransactions bool

	// Variable: optional rebalancing partner, nil when unset.
	MoveTargetID    *int64
	AutoMoveSurplus bool
	AutoMoveDeficit bool

	// Savings tax treatment.
	IsTaxDeductible      bool
	IsSubjectToFica      bool
	IsUnconnectedAccount bool

	SubItems []SubItem

	ID       int64
	BudgetID int64
}

// SubItem is an itemized line within a fixed or savings category. When any
// sub-items exist they are the source of truth for the parent's allocated
// amount.
type SubItem struct {
	Name   string
	Period Period
	Amount decimal.Decimal
	ID     int64
}

// MonthlyAmount returns the allocated amount normalized to monthly.
func (c *Category) MonthlyAmount() decimal.Decimal {
	return NormalizeMonthly(c.AllocatedAmount, c.Period)
}

// SupportsSubItems reports whether this category type can carry itemized
// sub-allocations.
func (c *Category) SupportsSubItems() bool {
	return c.Type == CategoryTypeFixed || c.Type == CategoryTypeSavings
}

// SubItemTotal returns the monthly sum of all sub-item amounts.
func (c *Category) SubItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.SubItems {
		total = total.Add(NormalizeMonthly(item.Amount, item.Period))
	}
	return total
}

// Validate checks the category's own fields. Surplus derivation and
// cross-category rules are enforced by the allocation service.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	if !c.Type.Valid() {
		return fmt.Errorf("invalid category type: %q", c.Type)
	}
	if !c.Period.Valid() {
		return fmt.Errorf("invalid period: %q", c.Period)
	}
	if c.AllocatedAmount.IsNegative() && c.Type != CategoryTypeSurplus {
		return fmt.Errorf("allocated amount cannot be negative, got %s", c.AllocatedAmount)
	}
	if len(c.SubItems) > 0 && !c.SupportsSubItems() {
		return fmt.Errorf("%s categories cannot have sub-items", c.Type)
	}
	for i, item := range c.SubItems {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("sub-item %d: name is required", i)
		}
		if !item.Period.Valid() {
			return fmt.Errorf("sub-item %d: invalid period: %q", i, item.Period)
		}
		if item.Amount.IsNegative() {
			return fmt.Errorf("sub-item %d: amount cannot be negative, got %s", i, item.Amount)
		}
	}
	return nil
}
