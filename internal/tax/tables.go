// Package tax computes progressive federal, FICA, and flat state taxes.
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally-ho/internal/model"
)

// Bracket is a single federal tax bracket. Min is inclusive; a zero Max means
// the bracket is unbounded. Brackets are contiguous half-open ranges, so each
// bracket's Min equals the previous bracket's Max.
type Bracket struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Rate decimal.Decimal
}

// Config holds all rate tables for one tax year. Tables are static data,
// versionable by year; the state rate is the single configurable flat-rate
// jurisdiction.
type Config struct {
	Brackets                    map[model.FilingStatus][]Bracket
	StandardDeduction           map[model.FilingStatus]decimal.Decimal
	AdditionalMedicareThreshold map[model.FilingStatus]decimal.Decimal
	WageBase                    decimal.Decimal
	SocialSecurityRate          decimal.Decimal
	MedicareRate                decimal.Decimal
	AdditionalMedicareRate      decimal.Decimal
	StateRate                   decimal.Decimal
	Year                        int
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func brackets(rates []string, edges []string) []Bracket {
	bs := make([]Bracket, len(rates))
	lower := decimal.Zero
	for i, r := range rates {
		b := Bracket{Min: lower, Rate: d(r)}
		if i < len(edges) {
			b.Max = d(edges[i])
			lower = b.Max
		}
		bs[i] = b
	}
	return bs
}

var federalRates = []string{"0.10", "0.12", "0.22", "0.24", "0.32", "0.35", "0.37"}

// year2025 builds the 2025 federal tables (IRS Rev. Proc. 2024-40 as amended).
func year2025(stateRate decimal.Decimal) Config {
	return Config{
		Year: 2025,
		Brackets: map[model.FilingStatus][]Bracket{
			model.FilingSingle: brackets(federalRates,
				[]string{"11925", "48475", "103350", "197300", "250525", "626350"}),
			model.FilingMarriedJointly: brackets(federalRates,
				[]string{"23850", "96950", "206700", "394600", "501050", "751600"}),
			model.FilingMarriedSeparately: brackets(federalRates,
				[]string{"11925", "48475", "103350", "197300", "250525", "375800"}),
			model.FilingHeadOfHousehold: brackets(federalRates,
				[]string{"17000", "64850", "103350", "197300", "250525", "626350"}),
		},
		StandardDeduction: map[model.FilingStatus]decimal.Decimal{
			model.FilingSingle:            d("15750"),
			model.FilingMarriedJointly:    d("31500"),
			model.FilingMarriedSeparately: d("15750"),
			model.FilingHeadOfHousehold:   d("23625"),
		},
		AdditionalMedicareThreshold: map[model.FilingStatus]decimal.Decimal{
			model.FilingSingle:            d("200000"),
			model.FilingMarriedJointly:    d("250000"),
			model.FilingMarriedSeparately: d("200000"),
			model.FilingHeadOfHousehold:   d("200000"),
		},
		WageBase:               d("176100"),
		SocialSecurityRate:     d("0.062"),
		MedicareRate:           d("0.0145"),
		AdditionalMedicareRate: d("0.009"),
		StateRate:              stateRate,
	}
}

// ForYear returns the rate tables for the given tax year with the supplied
// flat state rate.
func ForYear(year int, stateRate decimal.Decimal) (Config, error) {
	switch year {
	case 2025:
		return year2025(stateRate), nil
	default:
		return Config{}, fmt.Errorf("no tax tables for year %d", year)
	}
}
