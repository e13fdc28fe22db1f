package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/store"
)

func TestReplaceQuarterIsIdempotentPerPeriod(t *testing.T) {
	ctx := context.Background()
	s := New()

	demo := []model.DemoRecord{{PrimaryID: "100-1", CaseID: "100", CaseVersion: 1, Period: "2023Q1"}}
	if err := s.ReplaceQuarter(ctx, "2023Q1", demo, nil, nil, nil, nil); err != nil {
		t.Fatalf("ReplaceQuarter: %v", err)
	}
	// loading the same period again must not duplicate rows
	if err := s.ReplaceQuarter(ctx, "2023Q1", demo, nil, nil, nil, nil); err != nil {
		t.Fatalf("ReplaceQuarter reload: %v", err)
	}

	got, err := s.LoadDemo(ctx)
	if err != nil {
		t.Fatalf("LoadDemo: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("demo rows = %d, want 1", len(got))
	}
}

func TestQuartersAccumulateAcrossPeriods(t *testing.T) {
	ctx := context.Background()
	s := New()

	q1 := []model.DrugRecord{{PrimaryID: "100-1", CaseID: "100", DrugSeq: 1, DrugName: "MINOXIDIL", Period: "2023Q1"}}
	q2 := []model.DrugRecord{{PrimaryID: "200-1", CaseID: "200", DrugSeq: 1, DrugName: "HYDRALAZINE", Period: "2023Q2"}}
	if err := s.ReplaceQuarter(ctx, "2023Q1", nil, q1, nil, nil, nil); err != nil {
		t.Fatalf("ReplaceQuarter Q1: %v", err)
	}
	if err := s.ReplaceQuarter(ctx, "2023Q2", nil, q2, nil, nil, nil); err != nil {
		t.Fatalf("ReplaceQuarter Q2: %v", err)
	}

	got, err := s.LoadDrug(ctx)
	if err != nil {
		t.Fatalf("LoadDrug: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("drug rows = %d, want 2", len(got))
	}
	if got[0].Period != "2023Q1" || got[1].Period != "2023Q2" {
		t.Errorf("rows not ordered by period: %q, %q", got[0].Period, got[1].Period)
	}
}

func TestLoadReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.ReplaceEventFacts(ctx, []model.EventFact{
		{CaseID: "100", Ingredient: "MINOXIDIL", Reaction: "PERICARDIAL EFFUSION"},
	}); err != nil {
		t.Fatalf("ReplaceEventFacts: %v", err)
	}

	first, err := s.LoadEventFacts(ctx)
	if err != nil {
		t.Fatalf("LoadEventFacts: %v", err)
	}
	first[0].Ingredient = "MUTATED"

	second, err := s.LoadEventFacts(ctx)
	if err != nil {
		t.Fatalf("LoadEventFacts: %v", err)
	}
	if second[0].Ingredient != "MINOXIDIL" {
		t.Errorf("store contents mutated through a loaded slice: %q", second[0].Ingredient)
	}
}

func TestListDistinctAxes(t *testing.T) {
	ctx := context.Background()
	s := New()

	facts := []model.EventFact{
		{CaseID: "1", Ingredient: "MINOXIDIL", Reaction: "PERICARDIAL EFFUSION"},
		{CaseID: "2", Ingredient: "MINOXIDIL", Reaction: "ALOPECIA"},
		{CaseID: "3", Ingredient: "HYDRALAZINE", Reaction: "PERICARDIAL EFFUSION"},
	}
	if err := s.ReplaceEventFacts(ctx, facts); err != nil {
		t.Fatalf("ReplaceEventFacts: %v", err)
	}

	ingredients, err := s.ListIngredients(ctx)
	if err != nil {
		t.Fatalf("ListIngredients: %v", err)
	}
	if len(ingredients) != 2 || ingredients[0] != "HYDRALAZINE" || ingredients[1] != "MINOXIDIL" {
		t.Errorf("ingredients = %v", ingredients)
	}

	terms, err := s.ListReactionTerms(ctx)
	if err != nil {
		t.Fatalf("ListReactionTerms: %v", err)
	}
	if len(terms) != 2 || terms[0] != "ALOPECIA" || terms[1] != "PERICARDIAL EFFUSION" {
		t.Errorf("terms = %v", terms)
	}
}

func TestSignalsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	recs := []model.SignalRecord{
		{
			Cohort:   "MINOXIDIL_SYSTEMIC",
			Endpoint: "PERICARDIAL EFFUSION",
			Table:    model.ContingencyTable{Cohort: "MINOXIDIL_SYSTEMIC", Endpoint: "PERICARDIAL EFFUSION", A: 12, B: 988, C: 40, D: 9960},
			N:        12,
			PRR:      3.0,
			Flagged:  true,
			Status:   model.StatusObserved,
		},
	}
	if err := s.ReplaceSignals(ctx, recs); err != nil {
		t.Fatalf("ReplaceSignals: %v", err)
	}
	got, err := s.LoadSignals(ctx)
	if err != nil {
		t.Fatalf("LoadSignals: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("signals = %d, want 1", len(got))
	}
	if got[0].Table.A != 12 || !got[0].Flagged || got[0].Status != model.StatusObserved {
		t.Errorf("round trip mismatch: %+v", got[0])
	}
}

func TestReplaceDerivedSetsAllTables(t *testing.T) {
	ctx := context.Background()
	s := New()

	facts := []model.EventFact{{CaseID: "100", Ingredient: "MINOXIDIL", Reaction: "PERICARDIAL EFFUSION"}}
	denoms := []model.Denominator{{Ingredient: "MINOXIDIL", TotalClaims: 200}}
	signals := []model.SignalRecord{{Cohort: "MINOXIDIL_SYSTEMIC", Endpoint: "PERICARDIAL EFFUSION"}}

	if err := s.ReplaceDerived(ctx, facts, denoms, signals); err != nil {
		t.Fatalf("ReplaceDerived: %v", err)
	}

	if got, err := s.LoadEventFacts(ctx); err != nil || len(got) != 1 {
		t.Errorf("facts = %d rows, err=%v", len(got), err)
	}
	if got, err := s.LoadDenominators(ctx); err != nil || len(got) != 1 {
		t.Errorf("denominators = %d rows, err=%v", len(got), err)
	}
	if got, err := s.LoadSignals(ctx); err != nil || len(got) != 1 {
		t.Errorf("signals = %d rows, err=%v", len(got), err)
	}
}

func TestLastRun(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.LastRun(ctx); err != nil || ok {
		t.Fatalf("LastRun on empty store: ok=%v err=%v", ok, err)
	}

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []store.Run{
		{ID: "01AAAAAAAAAAAAAAAAAAAAAAAA", CreatedAt: base},
		{ID: "01BBBBBBBBBBBBBBBBBBBBBBBB", CreatedAt: base.Add(time.Hour)},
	}
	for _, r := range runs {
		if err := s.SaveRun(ctx, r); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	got, ok, err := s.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if !ok || got.ID != runs[1].ID {
		t.Errorf("LastRun = %+v, ok=%v, want latest run", got, ok)
	}
}
