package core

// PeriodTotal is the pre-tax sum of all line items for one period.
type PeriodTotal struct {
	Period Period
	Total  Money
	Count  int
}

// TotalsByLabel indexes totals by period label.
func TotalsByLabel(totals []PeriodTotal) map[string]int64 {
	out := make(map[string]int64, len(totals))
	for _, t := range totals {
		out[t.Period.Label] += t.Total.Yen
	}
	return out
}
