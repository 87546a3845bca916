// Package ingest loads period data from CSV sources and turns it into
// validated model values. All schema problems (missing columns,
// malformed cells) are reported here, before any model construction.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"credit_valuation/pkg/models"
)

// RequiredColumns are the headers every period CSV must carry. Order in
// the file does not matter; extra columns are ignored.
var RequiredColumns = []string{
	"period",
	"prob_charge_off",
	"prob_attrition",
	"revolving_balance",
	"purchase_amount",
	"finance_charge_rate",
	"other_fees",
}

// ReadPeriods parses period records from r and validates each one.
func ReadPeriods(r io.Reader) ([]models.PeriodData, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := colIdx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("CSV is missing required columns: %s", strings.Join(missing, ", "))
	}

	var periods []models.PeriodData
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		line++

		period, err := parseInt(record, colIdx, "period", line)
		if err != nil {
			return nil, err
		}
		fields := make(map[string]float64, len(RequiredColumns)-1)
		for _, name := range RequiredColumns[1:] {
			v, err := parseFloat(record, colIdx, name, line)
			if err != nil {
				return nil, err
			}
			fields[name] = v
		}

		p, err := models.NewPeriodData(models.PeriodData{
			Period:            period,
			ProbChargeOff:     fields["prob_charge_off"],
			ProbAttrition:     fields["prob_attrition"],
			RevolvingBalance:  fields["revolving_balance"],
			PurchaseAmount:    fields["purchase_amount"],
			FinanceChargeRate: fields["finance_charge_rate"],
			OtherFees:         fields["other_fees"],
		})
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		periods = append(periods, p)
	}

	if len(periods) == 0 {
		return nil, fmt.Errorf("CSV contains no period rows")
	}
	return periods, nil
}

// LoadPeriodsFromCSV reads and validates a period CSV file.
func LoadPeriodsFromCSV(path string) ([]models.PeriodData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	periods, err := ReadPeriods(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return periods, nil
}

// LoadCohortInput loads CSV periods and combines them with global
// parameters into a fully validated CohortInput.
func LoadCohortInput(csvPath string, flatInterchangeRate, discountRate float64, numAccounts int) (*models.CohortInput, error) {
	periods, err := LoadPeriodsFromCSV(csvPath)
	if err != nil {
		return nil, err
	}
	params, err := models.NewGlobalParameters(models.GlobalParameters{
		FlatInterchangeRate: flatInterchangeRate,
		DiscountRate:        discountRate,
		NumAccounts:         numAccounts,
	})
	if err != nil {
		return nil, err
	}
	return models.NewCohortInput(periods, params)
}

func cell(record []string, colIdx map[string]int, name string, line int) (string, error) {
	idx := colIdx[name]
	if idx >= len(record) {
		return "", fmt.Errorf("line %d: missing value for column %q", line, name)
	}
	return strings.TrimSpace(record[idx]), nil
}

func parseFloat(record []string, colIdx map[string]int, name string, line int) (float64, error) {
	raw, err := cell(record, colIdx, name, line)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %q: cannot parse %q as number", line, name, raw)
	}
	return v, nil
}

func parseInt(record []string, colIdx map[string]int, name string, line int) (int, error) {
	raw, err := cell(record, colIdx, name, line)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		// Tolerate float-formatted integers like "1.0" from spreadsheet exports.
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("line %d: column %q: cannot parse %q as integer", line, name, raw)
		}
		v = int(f)
	}
	return v, nil
}
