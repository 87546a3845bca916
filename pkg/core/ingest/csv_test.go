package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const goodHeader = "period,prob_charge_off,prob_attrition,revolving_balance,purchase_amount,finance_charge_rate,other_fees"

func TestReadPeriods_Valid(t *testing.T) {
	csvData := goodHeader + "\n" +
		"1,0.02,0.03,5000,1000,0.015,25\n" +
		"2,0.02,0.03,5000,1000,0.015,25\n"

	periods, err := ReadPeriods(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(periods) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(periods))
	}
	if periods[0].Period != 1 || periods[1].Period != 2 {
		t.Errorf("period indices wrong: %+v", periods)
	}
	if periods[0].RevolvingBalance != 5000 {
		t.Errorf("revolving_balance: got %v", periods[0].RevolvingBalance)
	}
}

func TestReadPeriods_ColumnOrderIndependent(t *testing.T) {
	csvData := "other_fees,period,prob_attrition,prob_charge_off,purchase_amount,revolving_balance,finance_charge_rate,extra\n" +
		"25,1,0.03,0.02,1000,5000,0.015,ignored\n"

	periods, err := ReadPeriods(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := periods[0]
	if p.ProbChargeOff != 0.02 || p.OtherFees != 25 || p.FinanceChargeRate != 0.015 {
		t.Errorf("fields misassigned under reordered header: %+v", p)
	}
}

func TestReadPeriods_MissingColumns(t *testing.T) {
	csvData := "period,prob_charge_off,revolving_balance\n1,0.02,5000\n"
	_, err := ReadPeriods(strings.NewReader(csvData))
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	for _, col := range []string{"prob_attrition", "purchase_amount", "finance_charge_rate", "other_fees"} {
		if !strings.Contains(err.Error(), col) {
			t.Errorf("error %q should list missing column %s", err.Error(), col)
		}
	}
}

func TestReadPeriods_MalformedCell(t *testing.T) {
	csvData := goodHeader + "\n1,abc,0.03,5000,1000,0.015,25\n"
	_, err := ReadPeriods(strings.NewReader(csvData))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "prob_charge_off") || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name the column and line", err.Error())
	}
}

func TestReadPeriods_FloatFormattedPeriod(t *testing.T) {
	// Spreadsheet exports often write integers as "1.0".
	csvData := goodHeader + "\n1.0,0.02,0.03,5000,1000,0.015,25\n"
	periods, err := ReadPeriods(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if periods[0].Period != 1 {
		t.Errorf("period: got %d, want 1", periods[0].Period)
	}
}

func TestReadPeriods_InvalidRecordRejected(t *testing.T) {
	// Probability sum exceeds 1.0 on line 3.
	csvData := goodHeader + "\n" +
		"1,0.02,0.03,5000,1000,0.015,25\n" +
		"2,0.70,0.40,5000,1000,0.015,25\n"
	_, err := ReadPeriods(strings.NewReader(csvData))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error %q should name line 3", err.Error())
	}
}

func TestReadPeriods_NaNRejected(t *testing.T) {
	// strconv.ParseFloat accepts "NaN", so the record must fall to the
	// per-period validation instead of slipping into the engine.
	csvData := goodHeader + "\n1,NaN,0.03,5000,1000,0.015,25\n"
	_, err := ReadPeriods(strings.NewReader(csvData))
	if err == nil {
		t.Fatal("expected error for NaN probability")
	}
	if !strings.Contains(err.Error(), "line 2") || !strings.Contains(err.Error(), "NaN") {
		t.Errorf("error %q should name line 2 and the NaN value", err.Error())
	}
}

func TestReadPeriods_Empty(t *testing.T) {
	if _, err := ReadPeriods(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := ReadPeriods(strings.NewReader(goodHeader + "\n")); err == nil {
		t.Error("expected error for header-only input")
	}
}

func TestLoadCohortInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "periods.csv")
	csvData := goodHeader + "\n" +
		"1,0.02,0.03,5000,1000,0.015,25\n" +
		"2,0.02,0.03,5000,1000,0.015,25\n"
	if err := os.WriteFile(path, []byte(csvData), 0644); err != nil {
		t.Fatal(err)
	}

	cohort, err := LoadCohortInput(path, 0.02, 0.10, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cohort.Periods) != 2 || cohort.Parameters.NumAccounts != 1000 {
		t.Errorf("cohort not assembled correctly: %+v", cohort)
	}

	// Bad global parameters fail after a good CSV load.
	if _, err := LoadCohortInput(path, 0.02, 0.10, 0); err == nil {
		t.Error("expected error for zero num_accounts")
	}
}

func TestLoadPeriodsFromCSV_MissingFile(t *testing.T) {
	if _, err := LoadPeriodsFromCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
