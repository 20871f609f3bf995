package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCategoryTypeCountsTowardAllocation(t *testing.T) {
	tests := []struct {
		categoryType CategoryType
		want         bool
	}{
		{CategoryTypeFixed, true},
		{CategoryTypeVariable, true},
		{CategoryTypeSavings, false},
		{CategoryTypeSurplus, false},
		{CategoryTypeExcluded, false},
	}

	for _, tt := range tests {
		if got := tt.categoryType.CountsTowardAllocation(); got != tt.want {
			t.Errorf("%s.CountsTowardAllocation() = %v, want %v", tt.categoryType, got, tt.want)
		}
	}
}

func TestCategoryMonthlyAmount(t *testing.T) {
	c := Category{AllocatedAmount: decimal.RequireFromString("1200"), Period: PeriodAnnual}
	if got := c.MonthlyAmount(); !got.Equal(decimal.RequireFromString("100")) {
		t.Errorf("MonthlyAmount() = %s, want 100", got)
	}
}

func TestSubItemTotal(t *testing.T) {
	c := Category{
		Type: CategoryTypeFixed,
		SubItems: []SubItem{
			{Name: "Electric", Amount: decimal.RequireFromString("80"), Period: PeriodMonthly},
			{Name: "Insurance", Amount: decimal.RequireFromString("600"), Period: PeriodAnnual},
		},
	}
	if got := c.SubItemTotal(); !got.Equal(decimal.RequireFromString("130")) {
		t.Errorf("SubItemTotal() = %s, want 130", got)
	}
}

func TestCategoryValidate(t *testing.T) {
	valid := Category{
		Name:            "Groceries",
		Type:            CategoryTypeVariable,
		Period:          PeriodMonthly,
		AllocatedAmount: decimal.RequireFromString("400"),
	}

	tests := []struct {
		name    string
		mutate  func(*Category)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Category) {}, wantErr: false},
		{name: "empty name", mutate: func(c *Category) { c.Name = "  " }, wantErr: true},
		{name: "bad type", mutate: func(c *Category) { c.Type = "mystery" }, wantErr: true},
		{name: "bad period", mutate: func(c *Category) { c.Period = "weekly" }, wantErr: true},
		{
			name:    "negative amount",
			mutate:  func(c *Category) { c.AllocatedAmount = decimal.RequireFromString("-5") },
			wantErr: true,
		},
		{
			name: "negative amount allowed on surplus",
			mutate: func(c *Category) {
				c.Type = CategoryTypeSurplus
				c.AllocatedAmount = decimal.RequireFromString("-5")
			},
			wantErr: false,
		},
		{
			name: "sub-items on variable category",
			mutate: func(c *Category) {
				c.SubItems = []SubItem{{Name: "x", Amount: decimal.Zero, Period: PeriodMonthly}}
			},
			wantErr: true,
		},
		{
			name: "sub-items on fixed category",
			mutate: func(c *Category) {
				c.Type = CategoryTypeFixed
				c.SubItems = []SubItem{{Name: "x", Amount: decimal.Zero, Period: PeriodMonthly}}
			},
			wantErr: false,
		},
		{
			name: "sub-item without name",
			mutate: func(c *Category) {
				c.Type = CategoryTypeFixed
				c.SubItems = []SubItem{{Amount: decimal.Zero, Period: PeriodMonthly}}
			},
			wantErr: true,
		},
		{
			name: "sub-item with negative amount",
			mutate: func(c *Category) {
				c.Type = CategoryTypeFixed
				c.SubItems = []SubItem{{Name: "x", Amount: decimal.RequireFromString("-1"), Period: PeriodMonthly}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionAbsAmount(t *testing.T) {
	txn := Transaction{Amount: decimal.RequireFromString("-42.50")}
	if got := txn.AbsAmount(); !got.Equal(decimal.RequireFromString("42.50")) {
		t.Errorf("AbsAmount() = %s, want 42.50", got)
	}
}
