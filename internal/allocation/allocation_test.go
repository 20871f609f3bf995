package allocation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally-ho/internal/common"
	"github.com/Veraticus/tally-ho/internal/model"
	"github.com/Veraticus/tally-ho/internal/tax"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestModel(t *testing.T) *Model {
	t.Helper()
	cfg, err := tax.ForYear(2025, d("0.05"))
	require.NoError(t, err)
	return NewModel(tax.New(cfg))
}

func testBudget() *model.Budget {
	return &model.Budget{
		ID:           1,
		Income:       d("5000"),
		IncomePeriod: model.PeriodMonthly,
		FilingStatus: model.FilingSingle,
	}
}

func testCategories() []model.Category {
	return []model.Category{
		{ID: 1, Name: "Rent", Type: model.CategoryTypeFixed, Period: model.PeriodMonthly, AllocatedAmount: d("2000")},
		{ID: 2, Name: "Groceries", Type: model.CategoryTypeVariable, Period: model.PeriodMonthly, AllocatedAmount: d("1000")},
		{ID: 3, Name: "Emergency Fund", Type: model.CategoryTypeSavings, Period: model.PeriodMonthly, AllocatedAmount: d("500"), IsSubjectToFica: true},
		{ID: 4, Name: "Reimbursements", Type: model.CategoryTypeExcluded, Period: model.PeriodMonthly, AllocatedAmount: d("200")},
	}
}

func TestEffectiveMonthlyAmount(t *testing.T) {
	plain := model.Category{Type: model.CategoryTypeFixed, Period: model.PeriodAnnual, AllocatedAmount: d("1200")}
	assert.True(t, EffectiveMonthlyAmount(&plain).Equal(d("100")))

	// Sub-items override the stored parent amount.
	itemized := model.Category{
		Type:            model.CategoryTypeFixed,
		Period:          model.PeriodMonthly,
		AllocatedAmount: d("9999"),
		SubItems: []model.SubItem{
			{Name: "Electric", Amount: d("80"), Period: model.PeriodMonthly},
			{Name: "Water", Amount: d("50"), Period: model.PeriodMonthly},
		},
	}
	assert.True(t, EffectiveMonthlyAmount(&itemized).Equal(d("130")))
}

func TestTotals(t *testing.T) {
	m := newTestModel(t)
	categories := testCategories()

	// Excluded and savings stay out of the allocation total.
	assert.True(t, m.TotalAllocated(categories).Equal(d("3000")))
	assert.True(t, m.TotalSavings(categories).Equal(d("500")))
}

func TestRemainingBudget(t *testing.T) {
	m := newTestModel(t)
	budget := testBudget()
	categories := testCategories()

	// 5000 gross, 989.50 monthly tax, 3000 allocated, 500 savings.
	assert.True(t, m.NetIncome(budget, categories).Equal(d("4010.5")),
		"net income = %s", m.NetIncome(budget, categories))
	assert.True(t, m.RemainingBudget(budget, categories).Equal(d("510.5")),
		"remaining = %s", m.RemainingBudget(budget, categories))
}

func TestTaxDeductibleSavings(t *testing.T) {
	m := newTestModel(t)
	budget := testBudget()
	categories := testCategories()

	base := m.Tax(budget, categories)

	// Marking the savings category tax-deductible and FICA-exempt annualizes
	// its 500/month into a 6000 contribution against both bases.
	categories[2].IsTaxDeductible = true
	categories[2].IsSubjectToFica = false
	sheltered := m.Tax(budget, categories)

	assert.True(t, sheltered.TaxableIncome.Equal(d("38250")), "taxable = %s", sheltered.TaxableIncome)
	assert.True(t, sheltered.TotalTax.LessThan(base.TotalTax))
	assert.True(t, sheltered.FICA.Total.LessThan(base.FICA.Total))

	// Deductible but still FICA-subject: income tax drops, payroll tax does not.
	categories[2].IsSubjectToFica = true
	partial := m.Tax(budget, categories)
	assert.True(t, partial.TaxableIncome.Equal(d("38250")))
	assert.True(t, partial.FICA.Total.Equal(base.FICA.Total))
}

func TestCheck(t *testing.T) {
	m := newTestModel(t)
	budget := testBudget()
	categories := testCategories()

	require.NoError(t, m.Check(budget, categories))

	// Push allocations past net income; the violation is reported, never
	// clamped.
	categories[0].AllocatedAmount = d("4000")
	err := m.Check(budget, categories)
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	assert.True(t, m.RemainingBudget(budget, categories).IsNegative())
}

func TestFindSurplus(t *testing.T) {
	surplus := model.Category{ID: 9, Name: "Surplus", Type: model.CategoryTypeSurplus}

	found, err := FindSurplus(testCategories())
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = FindSurplus(append(testCategories(), surplus))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, int64(9), found.ID)

	second := surplus
	second.ID = 10
	_, err = FindSurplus(append(testCategories(), surplus, second))
	require.Error(t, err)
	var iv *common.InvariantViolationError
	assert.ErrorAs(t, err, &iv)
}

func TestValidateCategory(t *testing.T) {
	m := newTestModel(t)

	t.Run("sub-items recompute the parent", func(t *testing.T) {
		c := &model.Category{
			Name:            "Utilities",
			Type:            model.CategoryTypeFixed,
			Period:          model.PeriodAnnual,
			AllocatedAmount: d("1"),
			SubItems: []model.SubItem{
				{Name: "Electric", Amount: d("80"), Period: model.PeriodMonthly},
				{Name: "Insurance", Amount: d("600"), Period: model.PeriodAnnual},
			},
		}
		require.NoError(t, m.ValidateCategory(c))
		assert.True(t, c.AllocatedAmount.Equal(d("130")))
		assert.Equal(t, model.PeriodMonthly, c.Period)
	})

	t.Run("invalid sub-item rejected", func(t *testing.T) {
		c := &model.Category{
			Name:            "Utilities",
			Type:            model.CategoryTypeFixed,
			Period:          model.PeriodMonthly,
			AllocatedAmount: d("1"),
			SubItems:        []model.SubItem{{Name: "x", Amount: d("10"), Period: "weekly"}},
		}
		assert.Error(t, m.ValidateCategory(c))
	})

	t.Run("invalid category rejected", func(t *testing.T) {
		c := &model.Category{Type: model.CategoryTypeVariable, Period: model.PeriodMonthly}
		err := m.ValidateCategory(c)
		require.Error(t, err)
		assert.True(t, common.IsValidation(err))
	})
}

func TestNextColor(t *testing.T) {
	assert.Equal(t, Palette[0], NextColor(nil))

	used := []model.Category{{Color: Palette[0]}, {Color: Palette[1]}}
	assert.Equal(t, Palette[2], NextColor(used))

	var all []model.Category
	for _, color := range Palette {
		all = append(all, model.Category{Color: color})
	}
	assert.Equal(t, Palette[0], NextColor(all))
}
