package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"credit_valuation/pkg/core/engine"
	"credit_valuation/pkg/models"
)

func sampleRows(t *testing.T) ([]engine.PeriodRow, models.ValuationSummary) {
	t.Helper()
	periods := []models.PeriodData{
		{Period: 1, ProbChargeOff: 0.02, ProbAttrition: 0.03, RevolvingBalance: 5000, PurchaseAmount: 1000, FinanceChargeRate: 0.015, OtherFees: 25},
		{Period: 2, ProbChargeOff: 0.02, ProbAttrition: 0.03, RevolvingBalance: 5000, PurchaseAmount: 1000, FinanceChargeRate: 0.015, OtherFees: 25},
	}
	rows, summary, err := engine.RunRaw(periods, models.GlobalParameters{
		FlatInterchangeRate: 0.02,
		DiscountRate:        0.10,
		NumAccounts:         1000,
	})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	return rows, summary
}

func TestWriteCSV(t *testing.T) {
	rows, _ := sampleRows(t)

	var buf bytes.Buffer
	if err := WriteCSV(rows, &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-read exported CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if len(records[0]) != len(Columns) {
		t.Errorf("header width %d != %d columns", len(records[0]), len(Columns))
	}
	if records[0][0] != "period" || records[0][len(Columns)-1] != "cumulative_pv" {
		t.Errorf("unexpected header order: %v", records[0])
	}
	if records[1][0] != "1" || records[2][0] != "2" {
		t.Errorf("period column wrong: %v %v", records[1][0], records[2][0])
	}
}

func TestExportTable_CSV(t *testing.T) {
	rows, _ := sampleRows(t)
	path := filepath.Join(t.TempDir(), "out.csv")

	written, err := ExportTable(rows, path, FormatCSV)
	if err != nil {
		t.Fatalf("ExportTable: %v", err)
	}
	if written != path {
		t.Errorf("returned path %q != %q", written, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "period,") {
		t.Errorf("file does not start with header: %q", string(data[:20]))
	}
}

func TestExportTable_XLSX(t *testing.T) {
	rows, _ := sampleRows(t)
	path := filepath.Join(t.TempDir(), "out.xlsx")

	if _, err := ExportTable(rows, path, FormatXLSX); err != nil {
		t.Fatalf("ExportTable xlsx: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Sheet1", "A1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "period" {
		t.Errorf("A1: got %q, want \"period\"", got)
	}
	got, err = f.GetCellValue("Sheet1", "A3")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2" {
		t.Errorf("A3: got %q, want \"2\"", got)
	}
}

func TestExportTable_UnsupportedFormat(t *testing.T) {
	rows, _ := sampleRows(t)
	_, err := ExportTable(rows, filepath.Join(t.TempDir(), "out.parquet"), Format("parquet"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "parquet") {
		t.Errorf("error %q should name the rejected format", err.Error())
	}
}

func TestExportSummaryJSON(t *testing.T) {
	_, summary := sampleRows(t)
	path := filepath.Join(t.TempDir(), "summary.json")

	if err := ExportSummaryJSON(summary, path); err != nil {
		t.Fatalf("ExportSummaryJSON: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"total_pv", "pv_per_account", "final_survival_rate"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("summary JSON missing %q", key)
		}
	}
}
