package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"credit_valuation/pkg/core/engine"
	"credit_valuation/pkg/core/ingest"
	"credit_valuation/pkg/core/report"
	"credit_valuation/pkg/core/store"
	"credit_valuation/pkg/models"
)

var runRepo store.RunRepository

// InitHandler wires the run repository used by the save/load endpoints.
func InitHandler(repo store.RunRepository) {
	runRepo = repo
}

// RunRequest is the JSON body for /api/valuation/run and
// /api/valuation/report.
type RunRequest struct {
	Scenario   string                  `json:"scenario"`
	Periods    []models.PeriodData     `json:"periods"`
	Parameters models.GlobalParameters `json:"parameters"`
	Save       bool                    `json:"save"`
}

// RunResponse carries the completed table and summary back to the
// caller. RunID is set only when the run was persisted.
type RunResponse struct {
	RunID    string                  `json:"run_id,omitempty"`
	Scenario string                  `json:"scenario,omitempty"`
	Table    []engine.PeriodRow      `json:"table"`
	Summary  models.ValuationSummary `json:"summary"`
}

// HandleRun executes the pipeline on a JSON cohort.
func HandleRun(w http.ResponseWriter, r *http.Request) {
	if !beginPOST(w, r) {
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondWithRun(w, r.Context(), req)
}

// HandleUpload executes the pipeline on a CSV request body. Global
// parameters come from query parameters: interchange_rate,
// discount_rate, num_accounts, plus optional scenario and save=true.
func HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !beginPOST(w, r) {
		return
	}

	q := r.URL.Query()
	interchange, err := parseFloatParam(q.Get("interchange_rate"), "interchange_rate")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	discount, err := parseFloatParam(q.Get("discount_rate"), "discount_rate")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	numAccounts, err := strconv.Atoi(q.Get("num_accounts"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid num_accounts: %q", q.Get("num_accounts")), http.StatusBadRequest)
		return
	}

	periods, err := ingest.ReadPeriods(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondWithRun(w, r.Context(), RunRequest{
		Scenario: q.Get("scenario"),
		Periods:  periods,
		Parameters: models.GlobalParameters{
			FlatInterchangeRate: interchange,
			DiscountRate:        discount,
			NumAccounts:         numAccounts,
		},
		Save: q.Get("save") == "true",
	})
}

// HandleReport runs the pipeline and returns a rendered report.
// ?format=html returns HTML; anything else returns Markdown.
func HandleReport(w http.ResponseWriter, r *http.Request) {
	if !beginPOST(w, r) {
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, summary, err := engine.RunRaw(req.Periods, req.Parameters)
	if err != nil {
		http.Error(w, err.Error(), validationStatus(err))
		return
	}

	md := report.BuildMarkdown(req.Scenario, rows, summary, 10)
	if !report.ValidateMarkdown(md) {
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	if r.URL.Query().Get("format") == "html" {
		html, err := report.RenderHTML(md)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, md)
}

// HandleGetRun loads a previously saved run by ?id=.
func HandleGetRun(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id query parameter is required", http.StatusBadRequest)
		return
	}
	if runRepo == nil {
		http.Error(w, "run store not configured", http.StatusServiceUnavailable)
		return
	}

	rec, err := runRepo.Load(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, rec)
}

func respondWithRun(w http.ResponseWriter, ctx context.Context, req RunRequest) {
	rows, summary, err := engine.RunRaw(req.Periods, req.Parameters)
	if err != nil {
		http.Error(w, err.Error(), validationStatus(err))
		return
	}
	fmt.Printf("[VALUATION] scenario=%q periods=%d accounts=%d total_pv=%.2f\n",
		req.Scenario, summary.NumPeriods, summary.NumAccounts, summary.TotalPV)

	resp := RunResponse{Scenario: req.Scenario, Table: rows, Summary: summary}
	if req.Save {
		if runRepo == nil {
			http.Error(w, "run store not configured", http.StatusServiceUnavailable)
			return
		}
		rec := store.NewRunRecord(req.Scenario, rows, summary)
		if err := runRepo.Save(ctx, rec); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.RunID = rec.ID
	}
	writeJSON(w, resp)
}

// beginPOST handles CORS preflight and method checks shared by the POST
// endpoints. Returns false when the request has already been answered.
func beginPOST(w http.ResponseWriter, r *http.Request) bool {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("[VALUATION] failed to encode response: %v\n", err)
	}
}

// validationStatus maps validation failures to 400 and anything else to
// 500. Wrapped ValidationErrors (e.g. "period at index 3: ...") count.
func validationStatus(err error) int {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func parseFloatParam(raw, name string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}
