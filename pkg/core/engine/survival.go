package engine

// ComputeSurvival adds the survival cascade columns.
//
// CumulativeSurvival is the running product of all prior periods'
// survival factors, defined as 1.0 before period 1, so the cohort
// always starts period 1 at full size. Account conservation holds for
// any prefix: exited accounts plus the remaining active fraction always
// sum back to NumAccounts.
func ComputeSurvival(rows []PeriodRow) []PeriodRow {
	out := cloneTable(rows)
	cumulative := 1.0
	for i := range out {
		r := &out[i]
		r.SurvivalFactor = 1.0 - r.ProbChargeOff - r.ProbAttrition
		r.CumulativeSurvival = cumulative
		r.ActiveAccountsBOP = float64(r.NumAccounts) * r.CumulativeSurvival
		r.ChargeOffAccounts = r.ActiveAccountsBOP * r.ProbChargeOff
		r.AttritionAccounts = r.ActiveAccountsBOP * r.ProbAttrition
		cumulative *= r.SurvivalFactor
	}
	return out
}
