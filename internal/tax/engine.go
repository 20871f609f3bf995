package tax

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally-ho/internal/model"
)

// BracketLine is one row of the federal tax breakdown: the slice of taxable
// income that fell into a bracket and the tax it produced.
type BracketLine struct {
	Rate   decimal.Decimal
	Min    decimal.Decimal
	Max    decimal.Decimal
	Taxed  decimal.Decimal
	Amount decimal.Decimal
}

// FICA holds the payroll tax components.
type FICA struct {
	SocialSecurity     decimal.Decimal
	Medicare           decimal.Decimal
	AdditionalMedicare decimal.Decimal
	Total              decimal.Decimal
}

// Result is the full tax breakdown for one annual income. It has no persisted
// identity and is recomputed on demand.
type Result struct {
	AnnualIncome      decimal.Decimal
	StandardDeduction decimal.Decimal
	TaxableIncome     decimal.Decimal
	FederalTax        decimal.Decimal
	Brackets          []BracketLine
	MarginalRate      decimal.Decimal
	FICA              FICA
	StateTax          decimal.Decimal
	TotalTax          decimal.Decimal
	EffectiveRate     decimal.Decimal
}

// MonthlyTotal returns the total tax at a monthly cadence.
func (r Result) MonthlyTotal() decimal.Decimal {
	return r.TotalTax.Div(decimal.NewFromInt(12))
}

// Engine computes tax breakdowns against one year's rate tables.
type Engine struct {
	cfg Config
}

// New creates a tax engine for the given rate tables.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Compute returns the full tax breakdown for an annual income.
//
// taxDeductibleContributions reduce federal and state taxable income but not
// FICA wages; ficaExemptContributions are subtracted from the Social
// Security/Medicare wage base separately. Incomes at or below zero yield an
// all-zero result with the lowest bracket rate as the marginal rate.
func (e *Engine) Compute(
	annualIncome decimal.Decimal,
	status model.FilingStatus,
	itemizedDeductions decimal.Decimal,
	taxDeductibleContributions decimal.Decimal,
	ficaExemptContributions decimal.Decimal,
) Result {
	brackets := e.cfg.Brackets[status]
	result := Result{
		AnnualIncome:      annualIncome,
		StandardDeduction: e.cfg.StandardDeduction[status],
		MarginalRate:      brackets[0].Rate,
	}

	if !annualIncome.IsPositive() {
		result.AnnualIncome = decimal.Zero
		result.StandardDeduction = decimal.Zero
		return result
	}

	taxable := annualIncome.
		Sub(e.cfg.StandardDeduction[status]).
		Sub(itemizedDeductions).
		Sub(taxDeductibleContributions)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	result.TaxableIncome = taxable.Round(2)

	result.Brackets, result.FederalTax, result.MarginalRate = federalTax(taxable, brackets)
	result.FICA = e.fica(annualIncome, status, ficaExemptContributions)
	result.StateTax = taxable.Mul(e.cfg.StateRate).Round(2)

	result.TotalTax = result.FederalTax.Add(result.FICA.Total).Add(result.StateTax)
	result.EffectiveRate = result.TotalTax.Div(annualIncome).Round(4)
	return result
}

// federalTax walks the ascending brackets and taxes the slice of taxable
// income intersecting each. The marginal rate is the rate of the bracket
// containing the last dollar of taxable income.
func federalTax(taxable decimal.Decimal, brackets []Bracket) ([]BracketLine, decimal.Decimal, decimal.Decimal) {
	var lines []BracketLine
	total := decimal.Zero
	marginal := brackets[0].Rate

	for _, b := range brackets {
		if b.Min.GreaterThanOrEqual(taxable) {
			break
		}
		upper := taxable
		if !b.Max.IsZero() && upper.GreaterThan(b.Max) {
			upper = b.Max
		}
		taxed := upper.Sub(b.Min)
		amount := taxed.Mul(b.Rate)
		lines = append(lines, BracketLine{
			Rate:   b.Rate,
			Min:    b.Min,
			Max:    b.Max,
			Taxed:  taxed.Round(2),
			Amount: amount.Round(2),
		})
		total = total.Add(amount)
		marginal = b.Rate
	}

	return lines, total.Round(2), marginal
}

func (e *Engine) fica(annualIncome decimal.Decimal, status model.FilingStatus, exempt decimal.Decimal) FICA {
	wages := annualIncome.Sub(exempt)
	if wages.IsNegative() {
		wages = decimal.Zero
	}

	ssWages := wages
	if ssWages.GreaterThan(e.cfg.WageBase) {
		ssWages = e.cfg.WageBase
	}
	ss := ssWages.Mul(e.cfg.SocialSecurityRate).Round(2)
	medicare := wages.Mul(e.cfg.MedicareRate).Round(2)

	additional := decimal.Zero
	if excess := wages.Sub(e.cfg.AdditionalMedicareThreshold[status]); excess.IsPositive() {
		additional = excess.Mul(e.cfg.AdditionalMedicareRate).Round(2)
	}

	return FICA{
		SocialSecurity:     ss,
		Medicare:           medicare,
		AdditionalMedicare: additional,
		Total:              ss.Add(medicare).Add(additional),
	}
}
