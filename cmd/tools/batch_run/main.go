// Batch runner: execute every scenario file in a directory and export
// the results side by side.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"

	"credit_valuation/pkg/core/engine"
	"credit_valuation/pkg/core/export"
	"credit_valuation/pkg/core/ingest"
	"credit_valuation/pkg/core/scenario"
	"credit_valuation/pkg/models"
)

var scenarioExts = map[string]bool{
	".yaml":  true,
	".yml":   true,
	".hjson": true,
}

type batchResult struct {
	Name    string
	Summary models.ValuationSummary
	Err     error
}

func main() {
	dir := flag.String("dir", "", "Directory containing scenario files")
	outDir := flag.String("out", "", "Directory for exported tables (default: alongside scenarios)")
	format := flag.String("format", "csv", "Export format: csv or xlsx")
	flag.Parse()

	if *dir == "" {
		log.Fatalf("Usage: batch_run -dir scenarios/ [-out results/] [-format csv|xlsx]")
	}
	if *outDir == "" {
		*outDir = *dir
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	paths := collectScenarios(*dir)
	if len(paths) == 0 {
		log.Fatalf("no scenario files (.yaml/.yml/.hjson) found in %s", *dir)
	}
	fmt.Printf("Running %d scenarios from %s...\n", len(paths), *dir)

	bar := progressbar.Default(int64(len(paths)))
	results := make([]batchResult, 0, len(paths))
	for _, path := range paths {
		results = append(results, runOne(path, *outDir, export.Format(*format)))
		bar.Add(1)
	}

	fmt.Printf("\n%-30s %16s %14s %10s\n", "scenario", "total_pv", "pv_per_acct", "survival")
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("%-30s FAILED: %v\n", res.Name, res.Err)
			continue
		}
		fmt.Printf("%-30s %16.2f %14.2f %9.2f%%\n",
			res.Name, res.Summary.TotalPV, res.Summary.PVPerAccount,
			res.Summary.FinalSurvivalRate*100)
	}
	if failed > 0 {
		fmt.Printf("\n%d of %d scenarios failed.\n", failed, len(results))
		os.Exit(1)
	}
}

func collectScenarios(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("read dir %s: %v", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if scenarioExts[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths
}

func runOne(path, outDir string, format export.Format) batchResult {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res := batchResult{Name: name}

	sc, err := scenario.Load(path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Name = sc.Name

	params, err := sc.GlobalParameters()
	if err != nil {
		res.Err = err
		return res
	}
	periods, err := ingest.LoadPeriodsFromCSV(sc.ResolvePeriodsCSV(path))
	if err != nil {
		res.Err = err
		return res
	}
	cohort, err := models.NewCohortInput(periods, params)
	if err != nil {
		res.Err = err
		return res
	}

	rows, summary := engine.Run(cohort)
	res.Summary = summary

	outPath := filepath.Join(outDir, fmt.Sprintf("%s_results.%s", sc.Name, format))
	if _, err := export.ExportTable(rows, outPath, format); err != nil {
		res.Err = err
		return res
	}
	sumPath := filepath.Join(outDir, fmt.Sprintf("%s_summary.json", sc.Name))
	if err := export.ExportSummaryJSON(summary, sumPath); err != nil {
		res.Err = err
	}
	return res
}
