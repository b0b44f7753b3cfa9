package ledger

import "github.com/shopspring/decimal"

// TaxClassTaxable marks rows that carry consumption tax.
const TaxClassTaxable = "課税"

// DefaultTaxRate is the standard consumption tax rate.
var DefaultTaxRate = decimal.RequireFromString("0.10")

// Tax returns the consumption tax for a pre-tax amount, rounded half up to
// whole yen, together with the tax class. Non-positive amounts carry no tax.
func Tax(amount int64, rate decimal.Decimal) (int64, string) {
	if amount <= 0 {
		return 0, ""
	}
	return decimal.NewFromInt(amount).Mul(rate).Round(0).IntPart(), TaxClassTaxable
}
