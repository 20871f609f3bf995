// Package model defines the core domain entities for budget allocation.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period indicates the cadence an amount is entered at.
type Period string

const (
	// PeriodMonthly represents amounts entered per month.
	PeriodMonthly Period = "monthly"
	// PeriodAnnual represents amounts entered per year.
	PeriodAnnual Period = "annual"
)

// Valid reports whether the period is a known value.
func (p Period) Valid() bool {
	return p == PeriodMonthly || p == PeriodAnnual
}

// FilingStatus is the federal tax filing status.
type FilingStatus string

const (
	// FilingSingle is an unmarried filer.
	FilingSingle FilingStatus = "single"
	// FilingMarriedJointly is a married couple filing one return.
	FilingMarriedJointly FilingStatus = "married-jointly"
	// FilingMarriedSeparately is a married filer on a separate return.
	FilingMarriedSeparately FilingStatus = "married-separately"
	// FilingHeadOfHousehold is an unmarried filer with dependents.
	FilingHeadOfHousehold FilingStatus = "head-of-household"
)

// Valid reports whether the filing status is a known value.
func (f FilingStatus) Valid() bool {
	switch f {
	case FilingSingle, FilingMarriedJointly, FilingMarriedSeparately, FilingHeadOfHousehold:
		return true
	}
	return false
}

// Budget holds a user's income and tax inputs. Exactly one active budget
// exists per user.
type Budget struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	IncomePeriod Period
	FilingStatus FilingStatus
	Income       decimal.Decimal
	Deductions   decimal.Decimal
	ID           int64
}

// MonthlyIncome returns the income normalized to a monthly cadence.
func (b *Budget) MonthlyIncome() decimal.Decimal {
	return NormalizeMonthly(b.Income, b.IncomePeriod)
}

// AnnualIncome returns the income normalized to an annual cadence.
func (b *Budget) AnnualIncome() decimal.Decimal {
	if b.IncomePeriod == PeriodAnnual {
		return b.Income
	}
	return b.Income.Mul(twelve)
}

// Validate checks the budget's fields.
func (b *Budget) Validate() error {
	if !b.IncomePeriod.Valid() {
		return fmt.Errorf("invalid income period: %q", b.IncomePeriod)
	}
	if !b.FilingStatus.Valid() {
		return fmt.Errorf("invalid filing status: %q", b.FilingStatus)
	}
	if b.Income.IsNegative() {
		return fmt.Errorf("income cannot be negative, got %s", b.Income)
	}
	if b.Deductions.IsNegative() {
		return fmt.Errorf("deductions cannot be negative, got %s", b.Deductions)
	}
	return nil
}

var twelve = decimal.NewFromInt(12)

// NormalizeMonthly converts an amount tagged with a period to its monthly
// equivalent. Annual amounts are divided by 12; monthly amounts pass through.
func NormalizeMonthly(amount decimal.Decimal, period Period) decimal.Decimal {
	if period == PeriodAnnual {
		return amount.Div(twelve)
	}
	return amount
}

// DenormalizeMonthly converts a monthly amount back to the given period for
// display views.
func DenormalizeMonthly(monthly decimal.Decimal, period Period) decimal.Decimal {
	if period == PeriodAnnual {
		return monthly.Mul(twelve)
	}
	return monthly
}
