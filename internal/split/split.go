// Package split implements the transaction-to-category amount-splitting
// state machine.
package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally-ho/internal/common"
	"github.com/Veraticus/tally-ho/internal/model"
)

// Mode describes the editing state of a split set.
type Mode string

const (
	// ModeSingle is exactly one split covering the full transaction amount.
	ModeSingle Mode = "single"
	// ModeSplit is two or more splits.
	ModeSplit Mode = "split"
)

// Tolerance is the maximum drift allowed between the resolved split total and
// the transaction's absolute amount.
var Tolerance = decimal.RequireFromString("0.01")

var (
	// ErrLastSplit is returned when removing the only remaining split.
	ErrLastSplit = errors.New("cannot remove the last split")
	// ErrRemainingLine is returned when editing the amount of the
	// use-remaining line.
	ErrRemainingLine = errors.New("amount of the use-remaining line is computed, not entered")
	// ErrCommitted is returned when mutating an already committed set.
	ErrCommitted = errors.New("split set already committed")
)

// Line is one apportionment of a transaction's amount. A nil CategoryID means
// uncategorized. The amount of the line currently designated use-remaining is
// derived, never read from the stored field.
type Line struct {
	CategoryID *int64
	Amount     decimal.Decimal
}

// Set is the in-memory split state for one transaction under edit. At most
// one line may be designated use-remaining; the designation is stored as a
// single index so two flagged lines are unrepresentable.
type Set struct {
	txnAmount decimal.Decimal
	lines     []Line
	remaining int
	committed bool
}

// NewSet starts an editing session for a transaction amount. Splits operate
// on the absolute value; sign is a presentation concern. The session begins
// with a single uncategorized line covering the full amount.
func NewSet(txnAmount decimal.Decimal) *Set {
	return &Set{
		txnAmount: txnAmount.Abs(),
		lines:     []Line{{Amount: txnAmount.Abs()}},
		remaining: -1,
	}
}

// TransactionAmount returns the absolute amount being apportioned.
func (s *Set) TransactionAmount() decimal.Decimal {
	return s.txnAmount
}

// Lines returns a copy of the current lines with all amounts resolved.
func (s *Set) Lines() []Line {
	out := make([]Line, len(s.lines))
	for i, l := range s.lines {
		out[i] = Line{CategoryID: l.CategoryID, Amount: s.ResolvedAmount(i)}
	}
	return out
}

// Len returns the number of splits.
func (s *Set) Len() int {
	return len(s.lines)
}

// Mode reports whether the set is a single assignment or a multi-way split.
func (s *Set) Mode() Mode {
	if len(s.lines) == 1 {
		return ModeSingle
	}
	return ModeSplit
}

// UseRemainingIndex returns the index of the use-remaining line, or -1.
func (s *Set) UseRemainingIndex() int {
	return s.remaining
}

// SetCategory assigns a category to the split at index.
func (s *Set) SetCategory(index int, categoryID int64) error {
	if err := s.mutable(index); err != nil {
		return err
	}
	s.lines[index].CategoryID = &categoryID
	return nil
}

// AddSplit appends a new split. The line previously designated use-remaining
// is fixed at its resolved value, and the new last line takes over the
// designation.
func (s *Set) AddSplit() error {
	if s.committed {
		return ErrCommitted
	}
	s.resolveRemaining()
	s.lines = append(s.lines, Line{})
	s.remaining = len(s.lines) - 1
	return nil
}

// RemoveSplit deletes the split at index. Disallowed when only one split
// remains. After removal the new last line is designated use-remaining.
func (s *Set) RemoveSplit(index int) error {
	if err := s.mutable(index); err != nil {
		return err
	}
	if len(s.lines) == 1 {
		return ErrLastSplit
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	s.remaining = len(s.lines) - 1
	return nil
}

// SetAmount fixes the amount of the split at index. Disallowed on the
// use-remaining line, whose amount is always derived.
func (s *Set) SetAmount(index int, amount decimal.Decimal) error {
	if err := s.mutable(index); err != nil {
		return err
	}
	if index == s.remaining {
		return ErrRemainingLine
	}
	s.lines[index].Amount = amount
	return nil
}

// ToggleUseRemaining designates the split at index as use-remaining, or
// clears the designation if it already holds it. The previous holder, if
// any, is fixed at its resolved value.
func (s *Set) ToggleUseRemaining(index int) error {
	if err := s.mutable(index); err != nil {
		return err
	}
	if index == s.remaining {
		s.resolveRemaining()
		return nil
	}
	s.resolveRemaining()
	s.remaining = index
	return nil
}

// CalculateRemaining returns the unassigned balance: the transaction amount
// minus every fixed line other than excludeIndex, floored at zero. Lines
// designated use-remaining are not yet resolved and do not participate in
// the subtraction.
func (s *Set) CalculateRemaining(excludeIndex int) decimal.Decimal {
	assigned := decimal.Zero
	for i, l := range s.lines {
		if i == excludeIndex || i == s.remaining {
			continue
		}
		assigned = assigned.Add(l.Amount)
	}
	rest := s.txnAmount.Sub(assigned)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// ResolvedAmount returns the effective amount of the split at index: the
// dynamically computed balance for the use-remaining line, the stored amount
// otherwise.
func (s *Set) ResolvedAmount(index int) decimal.Decimal {
	if index == s.remaining {
		return s.CalculateRemaining(index)
	}
	return s.lines[index].Amount
}

// Validate checks the split set against the transaction amount. Every line
// must reference a category, every resolved amount must be positive, the
// fixed lines must not exceed the transaction amount, and the resolved total
// must conserve it within the tolerance.
func (s *Set) Validate() error {
	fixed := decimal.Zero
	total := decimal.Zero
	for i, l := range s.lines {
		if l.CategoryID == nil {
			return common.NewIndexedValidationError("split", i, "no category selected")
		}
		resolved := s.ResolvedAmount(i)
		if !resolved.IsPositive() {
			return common.NewIndexedValidationError("split", i,
				fmt.Sprintf("amount must be greater than 0, got %s", resolved))
		}
		total = total.Add(resolved)
		if i != s.remaining && i < len(s.lines)-1 {
			fixed = fixed.Add(resolved)
		}
	}
	if fixed.GreaterThan(s.txnAmount) {
		return common.NewValidationError("split",
			fmt.Sprintf("assigned %s exceeds transaction amount %s", fixed, s.txnAmount))
	}
	if total.Sub(s.txnAmount).Abs().GreaterThan(Tolerance) {
		return common.NewValidationError("split",
			fmt.Sprintf("split total %s does not match transaction amount %s", total, s.txnAmount))
	}
	return nil
}

// Commit validates the set, resolves all use-remaining lines to concrete
// amounts, and returns the final immutable assignments. This is the only
// operation whose output reaches persisted state.
func (s *Set) Commit() ([]model.Assignment, error) {
	if s.committed {
		return nil, ErrCommitted
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.resolveRemaining()
	assignments := make([]model.Assignment, len(s.lines))
	for i, l := range s.lines {
		assignments[i] = model.Assignment{CategoryID: *l.CategoryID, Amount: l.Amount}
	}
	s.committed = true
	return assignments, nil
}

// ToSingle collapses a multi-way split back to a single assignment by
// summing. The first line's category is kept. This direction is lossless.
func (s *Set) ToSingle() error {
	if s.committed {
		return ErrCommitted
	}
	if len(s.lines) == 1 {
		return nil
	}
	s.lines = []Line{{CategoryID: s.lines[0].CategoryID, Amount: s.txnAmount}}
	s.remaining = -1
	return nil
}

// ToSplit expands a single assignment into two splits, halving the amount
// evenly as a starting point. The second line starts uncategorized.
func (s *Set) ToSplit() error {
	if s.committed {
		return ErrCommitted
	}
	if len(s.lines) > 1 {
		return nil
	}
	half := s.txnAmount.Div(decimal.NewFromInt(2)).Round(2)
	s.lines = []Line{
		{CategoryID: s.lines[0].CategoryID, Amount: half},
		{Amount: s.txnAmount.Sub(half)},
	}
	s.remaining = -1
	return nil
}

// resolveRemaining fixes the current use-remaining line at its computed
// value and clears the designation.
func (s *Set) resolveRemaining() {
	if s.remaining < 0 {
		return
	}
	s.lines[s.remaining].Amount = s.CalculateRemaining(s.remaining)
	s.remaining = -1
}

func (s *Set) mutable(index int) error {
	if s.committed {
		return ErrCommitted
	}
	if index < 0 || index >= len(s.lines) {
		return fmt.Errorf("split index %d out of range [0,%d)", index, len(s.lines))
	}
	return nil
}
