package engine

// ComputeRevenue adds the revenue columns. All amounts are per-period
// aggregates, already scaled by the active account count.
func ComputeRevenue(rows []PeriodRow) []PeriodRow {
	out := cloneTable(rows)
	for i := range out {
		r := &out[i]
		r.FinanceCharge = r.ActiveAccountsBOP * r.RevolvingBalance * r.FinanceChargeRate
		r.Interchange = r.ActiveAccountsBOP * r.PurchaseAmount * r.FlatInterchangeRate
		r.FeeIncome = r.ActiveAccountsBOP * r.OtherFees
		r.TotalRevenue = r.FinanceCharge + r.Interchange + r.FeeIncome
	}
	return out
}

// ComputeCosts adds the cost columns. Charge-off loss is currently the
// only cost component; TotalCost is kept separate so further components
// can be added without touching downstream stages.
func ComputeCosts(rows []PeriodRow) []PeriodRow {
	out := cloneTable(rows)
	for i := range out {
		r := &out[i]
		r.ChargeOffLoss = r.ActiveAccountsBOP * r.ProbChargeOff * r.RevolvingBalance
		r.TotalCost = r.ChargeOffLoss
	}
	return out
}
