package engine

import (
	"credit_valuation/pkg/models"
)

// Run executes the full valuation pipeline over a validated cohort and
// returns the completed period table plus its summary.
//
// Stage order matters: each stage reads columns produced by the
// previous one. Given a valid CohortInput the pipeline cannot fail; all
// input problems are caught at construction in pkg/models.
func Run(cohort *models.CohortInput) ([]PeriodRow, models.ValuationSummary) {
	rows := BuildPeriodTable(cohort)
	rows = ComputeSurvival(rows)
	rows = ComputeRevenue(rows)
	rows = ComputeCosts(rows)
	rows = ComputeNetIncomeAndPV(rows)
	summary := ComputeSummary(rows, cohort.Parameters.NumAccounts)
	return rows, summary
}

// RunRaw constructs and validates a CohortInput from raw records and,
// if valid, runs the pipeline. Any validation failure is returned
// before computation starts.
func RunRaw(periods []models.PeriodData, params models.GlobalParameters) ([]PeriodRow, models.ValuationSummary, error) {
	cohort, err := models.NewCohortInput(periods, params)
	if err != nil {
		return nil, models.ValuationSummary{}, err
	}
	rows, summary := Run(cohort)
	return rows, summary, nil
}
