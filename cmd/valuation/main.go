package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"credit_valuation/pkg/core/engine"
	"credit_valuation/pkg/core/export"
	"credit_valuation/pkg/core/ingest"
	"credit_valuation/pkg/core/scenario"
	"credit_valuation/pkg/core/store"
	"credit_valuation/pkg/models"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Scenario file (.yaml/.yml/.hjson) with parameters + periods_csv")
	inputPath := flag.String("input", "", "Period CSV file (alternative to -scenario)")
	interchange := flag.Float64("interchange", 0.02, "Flat interchange rate (with -input)")
	discount := flag.Float64("discount", 0.10, "Annual discount rate (with -input)")
	accounts := flag.Int("accounts", 10000, "Original cohort size (with -input)")
	outputPath := flag.String("output", "", "Optional path to export the period table")
	format := flag.String("format", "csv", "Export format: csv or xlsx")
	summaryPath := flag.String("summary-json", "", "Optional path to write the summary as JSON")
	save := flag.Bool("save", false, "Persist the run (DATABASE_URL or local .cache)")
	showRows := flag.Int("rows", 5, "Number of leading periods to print")
	flag.Parse()

	godotenv.Load()

	name := ""
	var cohort *models.CohortInput
	var err error
	switch {
	case *scenarioPath != "":
		var sc *scenario.Scenario
		sc, err = scenario.Load(*scenarioPath)
		if err != nil {
			log.Fatalf("load scenario: %v", err)
		}
		name = sc.Name
		params, perr := sc.GlobalParameters()
		if perr != nil {
			log.Fatalf("scenario parameters: %v", perr)
		}
		periods, lerr := ingest.LoadPeriodsFromCSV(sc.ResolvePeriodsCSV(*scenarioPath))
		if lerr != nil {
			log.Fatalf("load periods: %v", lerr)
		}
		cohort, err = models.NewCohortInput(periods, params)
	case *inputPath != "":
		cohort, err = ingest.LoadCohortInput(*inputPath, *interchange, *discount, *accounts)
	default:
		log.Fatalf("Usage: valuation -scenario file.yaml | -input periods.csv [-interchange r -discount r -accounts n]")
	}
	if err != nil {
		log.Fatalf("build cohort: %v", err)
	}

	rows, summary := engine.Run(cohort)

	printSummary(summary)
	printLeadingRows(rows, *showRows)

	if *outputPath != "" {
		written, err := export.ExportTable(rows, *outputPath, export.Format(*format))
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		fmt.Printf("\nResults exported to: %s\n", written)
	}
	if *summaryPath != "" {
		if err := export.ExportSummaryJSON(summary, *summaryPath); err != nil {
			log.Fatalf("export summary: %v", err)
		}
		fmt.Printf("Summary written to: %s\n", *summaryPath)
	}

	if *save {
		ctx := context.Background()
		repo, err := store.OpenRunRepo(ctx, os.Getenv("RUN_STORE_DIR"))
		if err != nil {
			log.Fatalf("open run store: %v", err)
		}
		defer repo.Close()
		rec := store.NewRunRecord(name, rows, summary)
		if err := repo.Save(ctx, rec); err != nil {
			log.Fatalf("save run: %v", err)
		}
		fmt.Printf("Run saved with id: %s\n", rec.ID)
	}
}

func printSummary(s models.ValuationSummary) {
	line := "============================================================"
	fmt.Println(line)
	fmt.Println("  Credit Valuation Summary")
	fmt.Println(line)
	fmt.Printf("  Accounts:            %12d\n", s.NumAccounts)
	fmt.Printf("  Periods:             %12d\n", s.NumPeriods)
	fmt.Printf("  Total Revenue:       $%14.2f\n", s.TotalRevenue)
	fmt.Printf("  Total Cost:          $%14.2f\n", s.TotalCost)
	fmt.Printf("  Total Net Income:    $%14.2f\n", s.TotalNetIncome)
	fmt.Printf("  Total PV:            $%14.2f\n", s.TotalPV)
	fmt.Printf("  PV per Account:      $%14.2f\n", s.PVPerAccount)
	fmt.Printf("  Final Survival Rate: %13.2f%%\n", s.FinalSurvivalRate*100)
	fmt.Println(line)
}

func printLeadingRows(rows []engine.PeriodRow, n int) {
	if n <= 0 {
		return
	}
	if n > len(rows) {
		n = len(rows)
	}
	fmt.Printf("\nFirst %d periods:\n", n)
	fmt.Printf("%7s %18s %14s %14s %14s %14s %14s\n",
		"period", "active_bop", "revenue", "cost", "net_income", "pv", "cumulative_pv")
	for _, r := range rows[:n] {
		fmt.Printf("%7d %18.2f %14.2f %14.2f %14.2f %14.2f %14.2f\n",
			r.Period, r.ActiveAccountsBOP, r.TotalRevenue, r.TotalCost,
			r.NetIncome, r.PVNetIncome, r.CumulativePV)
	}
}
