package engine

import (
	"credit_valuation/pkg/models"
)

// ComputeSummary reduces a completed table into the portfolio-level
// summary. The table must be non-empty and fully widened (the pipeline
// guarantees both).
//
// FinalSurvivalRate deliberately includes the last period's own exits:
// it is cumulative_survival of the last row times that row's survival
// factor, i.e. the fraction of the original cohort still active after
// the final period closes.
func ComputeSummary(rows []PeriodRow, numAccounts int) models.ValuationSummary {
	var totalPV, totalRevenue, totalCost, totalNetIncome float64
	for _, r := range rows {
		totalPV += r.PVNetIncome
		totalRevenue += r.TotalRevenue
		totalCost += r.TotalCost
		totalNetIncome += r.NetIncome
	}
	last := rows[len(rows)-1]
	return models.ValuationSummary{
		TotalPV:           totalPV,
		PVPerAccount:      totalPV / float64(numAccounts),
		TotalRevenue:      totalRevenue,
		TotalCost:         totalCost,
		TotalNetIncome:    totalNetIncome,
		FinalSurvivalRate: last.CumulativeSurvival * last.SurvivalFactor,
		NumPeriods:        len(rows),
		NumAccounts:       numAccounts,
	}
}
