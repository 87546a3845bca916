package models

import (
	"fmt"
	"math"
)

// MaxPeriods is the longest supported statement horizon.
const MaxPeriods = 60

// ValidationError reports a single invalid input field or relationship.
// The message always names the offending value(s) so callers can surface
// it directly.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErrorf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

type field struct {
	name  string
	value float64
}

// rejectNaN fails on the first NaN among the given fields. Range checks
// alone would let NaN through, since NaN fails every comparison.
func rejectNaN(fields ...field) error {
	for _, f := range fields {
		if math.IsNaN(f.value) {
			return validationErrorf(f.name, "got NaN, must be a number")
		}
	}
	return nil
}

// PeriodData holds the raw inputs for a single statement period.
// Instances are only considered valid once they have passed Validate
// (NewPeriodData and NewCohortInput enforce this).
type PeriodData struct {
	Period            int     `json:"period"`
	ProbChargeOff     float64 `json:"prob_charge_off"`
	ProbAttrition     float64 `json:"prob_attrition"`
	RevolvingBalance  float64 `json:"revolving_balance"`
	PurchaseAmount    float64 `json:"purchase_amount"`
	FinanceChargeRate float64 `json:"finance_charge_rate"`
	OtherFees         float64 `json:"other_fees"`
}

// NewPeriodData validates and returns a single period's inputs.
func NewPeriodData(p PeriodData) (PeriodData, error) {
	if err := p.Validate(); err != nil {
		return PeriodData{}, err
	}
	return p, nil
}

// Validate runs the per-field range checks and the competing-risk
// cross-field check.
func (p PeriodData) Validate() error {
	if p.Period < 1 || p.Period > MaxPeriods {
		return validationErrorf("period", "got %d, must be between 1 and %d", p.Period, MaxPeriods)
	}
	if err := rejectNaN(
		field{"prob_charge_off", p.ProbChargeOff},
		field{"prob_attrition", p.ProbAttrition},
		field{"revolving_balance", p.RevolvingBalance},
		field{"purchase_amount", p.PurchaseAmount},
		field{"finance_charge_rate", p.FinanceChargeRate},
		field{"other_fees", p.OtherFees},
	); err != nil {
		return err
	}
	if p.ProbChargeOff < 0 || p.ProbChargeOff > 1 {
		return validationErrorf("prob_charge_off", "got %g, must be in [0, 1]", p.ProbChargeOff)
	}
	if p.ProbAttrition < 0 || p.ProbAttrition > 1 {
		return validationErrorf("prob_attrition", "got %g, must be in [0, 1]", p.ProbAttrition)
	}
	if p.RevolvingBalance < 0 {
		return validationErrorf("revolving_balance", "got %g, must be >= 0", p.RevolvingBalance)
	}
	if p.PurchaseAmount < 0 {
		return validationErrorf("purchase_amount", "got %g, must be >= 0", p.PurchaseAmount)
	}
	if p.FinanceChargeRate < 0 || p.FinanceChargeRate > 1 {
		return validationErrorf("finance_charge_rate", "got %g, must be in [0, 1]", p.FinanceChargeRate)
	}
	if p.OtherFees < 0 {
		return validationErrorf("other_fees", "got %g, must be >= 0", p.OtherFees)
	}
	// Competing risks: an account exits through at most one channel per period.
	if sum := p.ProbChargeOff + p.ProbAttrition; sum > 1.0 {
		return validationErrorf("prob_charge_off",
			"prob_charge_off (%g) + prob_attrition (%g) = %g exceeds 1.0",
			p.ProbChargeOff, p.ProbAttrition, sum)
	}
	return nil
}

// GlobalParameters apply across every period of a cohort.
type GlobalParameters struct {
	FlatInterchangeRate float64 `json:"flat_interchange_rate"`
	DiscountRate        float64 `json:"discount_rate"` // annual
	NumAccounts         int     `json:"num_accounts"`
}

// NewGlobalParameters validates and returns cohort-wide parameters.
func NewGlobalParameters(g GlobalParameters) (GlobalParameters, error) {
	if err := g.Validate(); err != nil {
		return GlobalParameters{}, err
	}
	return g, nil
}

func (g GlobalParameters) Validate() error {
	if err := rejectNaN(
		field{"flat_interchange_rate", g.FlatInterchangeRate},
		field{"discount_rate", g.DiscountRate},
	); err != nil {
		return err
	}
	if g.FlatInterchangeRate < 0 || g.FlatInterchangeRate > 1 {
		return validationErrorf("flat_interchange_rate", "got %g, must be in [0, 1]", g.FlatInterchangeRate)
	}
	if g.DiscountRate < 0 {
		return validationErrorf("discount_rate", "got %g, must be >= 0", g.DiscountRate)
	}
	if g.NumAccounts <= 0 {
		return validationErrorf("num_accounts", "got %d, must be > 0", g.NumAccounts)
	}
	return nil
}

// CohortInput is the complete validated input to the valuation engine:
// an ordered period sequence plus global parameters. The constructor
// copies the period slice, so a CohortInput never shares state with the
// caller.
type CohortInput struct {
	Periods    []PeriodData     `json:"periods"`
	Parameters GlobalParameters `json:"parameters"`
}

// NewCohortInput validates every period, the global parameters, and the
// cross-record requirement that period indices form exactly 1..N.
func NewCohortInput(periods []PeriodData, params GlobalParameters) (*CohortInput, error) {
	if len(periods) == 0 {
		return nil, validationErrorf("periods", "at least one period is required")
	}
	if len(periods) > MaxPeriods {
		return nil, validationErrorf("periods", "got %d periods, maximum is %d", len(periods), MaxPeriods)
	}
	for i, p := range periods {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("period at index %d: %w", i, err)
		}
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	for i, p := range periods {
		if p.Period != i+1 {
			return nil, validationErrorf("periods",
				"must be sequential starting at 1, got %v expected %v",
				leadingPeriods(periods), leadingExpected(len(periods)))
		}
	}

	owned := make([]PeriodData, len(periods))
	copy(owned, periods)
	return &CohortInput{Periods: owned, Parameters: params}, nil
}

// leadingPeriods returns the first few actual period indices for error
// messages, so a 60-row failure stays readable.
func leadingPeriods(periods []PeriodData) []int {
	n := len(periods)
	if n > 5 {
		n = 5
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = periods[i].Period
	}
	return out
}

func leadingExpected(n int) []int {
	if n > 5 {
		n = 5
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = i + 1
	}
	return out
}

// ValuationSummary is the portfolio-level reduction of a completed
// valuation table.
type ValuationSummary struct {
	TotalPV           float64 `json:"total_pv"`
	PVPerAccount      float64 `json:"pv_per_account"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalCost         float64 `json:"total_cost"`
	TotalNetIncome    float64 `json:"total_net_income"`
	FinalSurvivalRate float64 `json:"final_survival_rate"`
	NumPeriods        int     `json:"num_periods"`
	NumAccounts       int     `json:"num_accounts"`
}
