// Package engine implements the cohort valuation pipeline: a strict-order
// sequence of pure stages over a progressively-widened period table.
// Each stage takes a table, returns a new one with additional columns
// populated, and never mutates its input.
package engine

import (
	"credit_valuation/pkg/models"
)

// PeriodRow is one row of the valuation table. It starts as a copy of
// the period's inputs plus the broadcast global parameters; the pipeline
// stages fill in the computed columns in order.
type PeriodRow struct {
	// Inputs
	Period            int     `json:"period"`
	ProbChargeOff     float64 `json:"prob_charge_off"`
	ProbAttrition     float64 `json:"prob_attrition"`
	RevolvingBalance  float64 `json:"revolving_balance"`
	PurchaseAmount    float64 `json:"purchase_amount"`
	FinanceChargeRate float64 `json:"finance_charge_rate"`
	OtherFees         float64 `json:"other_fees"`

	// Broadcast globals
	FlatInterchangeRate float64 `json:"flat_interchange_rate"`
	DiscountRate        float64 `json:"discount_rate"`
	NumAccounts         int     `json:"num_accounts"`

	// Survival cascade
	SurvivalFactor     float64 `json:"survival_factor"`
	CumulativeSurvival float64 `json:"cumulative_survival"`
	ActiveAccountsBOP  float64 `json:"active_accounts_bop"`
	ChargeOffAccounts  float64 `json:"charge_off_accounts"`
	AttritionAccounts  float64 `json:"attrition_accounts"`

	// Revenue
	FinanceCharge float64 `json:"finance_charge"`
	Interchange   float64 `json:"interchange"`
	FeeIncome     float64 `json:"fee_income"`
	TotalRevenue  float64 `json:"total_revenue"`

	// Costs
	ChargeOffLoss float64 `json:"charge_off_loss"`
	TotalCost     float64 `json:"total_cost"`

	// Net income and discounting
	NetIncome      float64 `json:"net_income"`
	DiscountFactor float64 `json:"discount_factor"`
	PVNetIncome    float64 `json:"pv_net_income"`
	CumulativePV   float64 `json:"cumulative_pv"`
}

// BuildPeriodTable converts a validated CohortInput into the base table:
// one row per period, input fields copied, global parameters broadcast
// onto every row.
func BuildPeriodTable(cohort *models.CohortInput) []PeriodRow {
	rows := make([]PeriodRow, len(cohort.Periods))
	for i, p := range cohort.Periods {
		rows[i] = PeriodRow{
			Period:              p.Period,
			ProbChargeOff:       p.ProbChargeOff,
			ProbAttrition:       p.ProbAttrition,
			RevolvingBalance:    p.RevolvingBalance,
			PurchaseAmount:      p.PurchaseAmount,
			FinanceChargeRate:   p.FinanceChargeRate,
			OtherFees:           p.OtherFees,
			FlatInterchangeRate: cohort.Parameters.FlatInterchangeRate,
			DiscountRate:        cohort.Parameters.DiscountRate,
			NumAccounts:         cohort.Parameters.NumAccounts,
		}
	}
	return rows
}

// cloneTable copies a table so a stage can widen it without touching
// the caller's slice.
func cloneTable(rows []PeriodRow) []PeriodRow {
	out := make([]PeriodRow, len(rows))
	copy(out, rows)
	return out
}
