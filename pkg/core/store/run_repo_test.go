package store

import (
	"context"
	"testing"

	"credit_valuation/pkg/core/engine"
	"credit_valuation/pkg/models"
)

func sampleRun(t *testing.T) *RunRecord {
	t.Helper()
	periods := []models.PeriodData{
		{Period: 1, ProbChargeOff: 0.02, ProbAttrition: 0.03, RevolvingBalance: 5000, PurchaseAmount: 1000, FinanceChargeRate: 0.015, OtherFees: 25},
	}
	rows, summary, err := engine.RunRaw(periods, models.GlobalParameters{
		FlatInterchangeRate: 0.02,
		DiscountRate:        0.10,
		NumAccounts:         1000,
	})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	return NewRunRecord("unit-test", rows, summary)
}

func TestRunRepo_FileRoundTrip(t *testing.T) {
	repo := NewRunRepo(nil, t.TempDir())
	rec := sampleRun(t)
	ctx := context.Background()

	if rec.ID == "" {
		t.Fatal("NewRunRecord must assign an id")
	}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Load(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Scenario != "unit-test" {
		t.Errorf("scenario: got %q", loaded.Scenario)
	}
	if loaded.Summary != rec.Summary {
		t.Errorf("summary changed across round trip: %+v vs %+v", loaded.Summary, rec.Summary)
	}
	if len(loaded.Table) != len(rec.Table) || loaded.Table[0] != rec.Table[0] {
		t.Error("table changed across round trip")
	}
}

func TestRunRepo_LoadMissing(t *testing.T) {
	repo := NewRunRepo(nil, t.TempDir())
	if _, err := repo.Load(context.Background(), "does-not-exist"); err == nil {
		t.Error("expected error for unknown run id")
	}
}

func TestOpenRunRepo(t *testing.T) {
	ctx := context.Background()

	// Without DATABASE_URL the repo works against the file backend.
	t.Setenv("DATABASE_URL", "")
	repo, err := OpenRunRepo(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("OpenRunRepo: %v", err)
	}
	defer repo.Close()
	rec := sampleRun(t)
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.Load(ctx, rec.ID); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// A malformed URL fails at construction, not on first use.
	t.Setenv("DATABASE_URL", "not a connection string")
	if _, err := OpenRunRepo(ctx, ""); err == nil {
		t.Error("expected error for malformed DATABASE_URL")
	}
}

func TestNewRunRecord_UniqueIDs(t *testing.T) {
	a := sampleRun(t)
	b := sampleRun(t)
	if a.ID == b.ID {
		t.Error("run ids must be unique")
	}
}
