package engine

import "math"

// ComputeNetIncomeAndPV adds net income, the discount factor, the
// discounted net income, and the running cumulative present value.
//
// The discount rate is annual; periods are month-equivalent, so period
// p is discounted by (1 + rate)^(p/12). A zero rate yields a factor of
// exactly 1.0 for every period.
func ComputeNetIncomeAndPV(rows []PeriodRow) []PeriodRow {
	out := cloneTable(rows)
	cumulativePV := 0.0
	for i := range out {
		r := &out[i]
		r.NetIncome = r.TotalRevenue - r.TotalCost
		r.DiscountFactor = 1.0 / math.Pow(1.0+r.DiscountRate, float64(r.Period)/12.0)
		r.PVNetIncome = r.NetIncome * r.DiscountFactor
		cumulativePV += r.PVNetIncome
		r.CumulativePV = cumulativePV
	}
	return out
}
