// Package export serializes completed valuation tables and summaries to
// flat files. The table is written unchanged, one row per period, in
// the column order the pipeline produced.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"credit_valuation/pkg/core/engine"
	"credit_valuation/pkg/models"
)

// Format selects the output encoding for ExportTable.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Columns is the fixed output column order for the period table.
var Columns = []string{
	"period",
	"prob_charge_off",
	"prob_attrition",
	"revolving_balance",
	"purchase_amount",
	"finance_charge_rate",
	"other_fees",
	"flat_interchange_rate",
	"discount_rate",
	"num_accounts",
	"survival_factor",
	"cumulative_survival",
	"active_accounts_bop",
	"charge_off_accounts",
	"attrition_accounts",
	"finance_charge",
	"interchange",
	"fee_income",
	"total_revenue",
	"charge_off_loss",
	"total_cost",
	"net_income",
	"discount_factor",
	"pv_net_income",
	"cumulative_pv",
}

// ExportTable writes the table to path in the requested format and
// returns the path written. Unsupported formats are an error.
func ExportTable(rows []engine.PeriodRow, path string, format Format) (string, error) {
	switch format {
	case FormatCSV:
		f, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		if err := WriteCSV(rows, f); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
		return path, nil
	case FormatXLSX:
		if err := writeXLSX(rows, path); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
		return path, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use %q or %q", format, FormatCSV, FormatXLSX)
	}
}

// WriteCSV streams the table as CSV, header first.
func WriteCSV(rows []engine.PeriodRow, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		record := make([]string, 0, len(Columns))
		for _, v := range rowValues(r) {
			record = append(record, formatValue(v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeXLSX writes the table as a single-sheet workbook.
func writeXLSX(rows []engine.PeriodRow, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for col, name := range Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}
	for i, r := range rows {
		for col, v := range rowValues(r) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

// ExportSummaryJSON writes the summary record as indented JSON.
func ExportSummaryJSON(summary models.ValuationSummary, path string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// rowValues flattens a row into Columns order.
func rowValues(r engine.PeriodRow) []float64 {
	return []float64{
		float64(r.Period),
		r.ProbChargeOff,
		r.ProbAttrition,
		r.RevolvingBalance,
		r.PurchaseAmount,
		r.FinanceChargeRate,
		r.OtherFees,
		r.FlatInterchangeRate,
		r.DiscountRate,
		float64(r.NumAccounts),
		r.SurvivalFactor,
		r.CumulativeSurvival,
		r.ActiveAccountsBOP,
		r.ChargeOffAccounts,
		r.AttritionAccounts,
		r.FinanceCharge,
		r.Interchange,
		r.FeeIncome,
		r.TotalRevenue,
		r.ChargeOffLoss,
		r.TotalCost,
		r.NetIncome,
		r.DiscountFactor,
		r.PVNetIncome,
		r.CumulativePV,
	}
}

func formatValue(v float64) string {
	// Integral columns (period, num_accounts) round-trip cleanly through
	// 'g' formatting, so one formatter covers every column.
	return strconv.FormatFloat(v, 'g', -1, 64)
}
