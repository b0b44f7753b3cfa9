package budget

// EstimatePolicy turns the observed spend of a box into a forward budget.
type EstimatePolicy interface {
	Estimate(observed int64) int64
}

// EstimateFunc adapts a function to EstimatePolicy.
type EstimateFunc func(observed int64) int64

func (f EstimateFunc) Estimate(observed int64) int64 { return f(observed) }

// ScaleToNextUnit multiplies the observed spend and moves it to the next
// multiple of Unit strictly above the product. Credits follow the same rule:
// -1234 doubles to -2468 and is estimated at -2000.
type ScaleToNextUnit struct {
	Factor int64
	Unit   int64
}

// DoubleToNextThousand assumes the observed three months are half of a six
// month plan.
var DoubleToNextThousand = ScaleToNextUnit{Factor: 2, Unit: 1000}

func (p ScaleToNextUnit) Estimate(observed int64) int64 {
	unit := p.Unit
	if unit <= 0 {
		unit = 1
	}
	return (floorDiv(observed*p.Factor, unit) + 1) * unit
}

// floorDiv is integer division rounded toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
