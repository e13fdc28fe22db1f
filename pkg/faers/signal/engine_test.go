package signal

import (
	"fmt"
	"testing"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/config"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
)

func testConfig() config.Analysis {
	cfg := config.Default()
	cfg.Cohorts = []config.Cohort{
		{Name: "MINOXIDIL_SYSTEMIC", Ingredient: "MINOXIDIL", Routes: []string{"oral", "unknown"}, ExcludeRoutes: []string{"topical"}},
		{Name: "MINOXIDIL_TOPICAL", Ingredient: "MINOXIDIL", Routes: []string{"topical"}},
		{Name: "HYDRALAZINE", IngredientContains: "HYDRALAZINE"},
	}
	return cfg
}

func fact(caseID, ingredient, reaction string, flags model.RouteFlags) model.EventFact {
	return model.EventFact{
		Period:     "2023Q1",
		CaseID:     caseID,
		PrimaryID:  caseID + "0",
		Ingredient: ingredient,
		Reaction:   reaction,
		Flags:      flags,
	}
}

var (
	oral    = model.RouteFlags{Oral: true}
	topical = model.RouteFlags{Topical: true}
	unknown = model.RouteFlags{Unknown: true}
)

func TestCohortAssignment(t *testing.T) {
	set := NewCohortSet(testConfig())

	cases := []struct {
		f    model.EventFact
		want string
	}{
		{fact("C1", "MINOXIDIL", "X", oral), "MINOXIDIL_SYSTEMIC"},
		{fact("C2", "MINOXIDIL", "X", unknown), "MINOXIDIL_SYSTEMIC"},
		{fact("C3", "MINOXIDIL", "X", topical), "MINOXIDIL_TOPICAL"},
		{fact("C4", "HYDRALAZINE HYDROCHLORIDE", "X", oral), "HYDRALAZINE"},
		{fact("C5", "METFORMIN", "X", oral), OtherCohort},
	}
	for _, c := range cases {
		if got := set.Assign(c.f); got != c.want {
			t.Errorf("Assign(%s/%+v) = %q, want %q", c.f.Ingredient, c.f.Flags, got, c.want)
		}
	}
}

func TestCohortAssignmentWithoutOther(t *testing.T) {
	cfg := testConfig()
	cfg.OtherCohort = false
	set := NewCohortSet(cfg)
	if got := set.Assign(fact("C1", "METFORMIN", "X", oral)); got != "" {
		t.Errorf("Assign = %q, want empty", got)
	}
}

// buildFacts creates n cases for a cohort ingredient, the first k of which
// report the endpoint, on a background of m other-drug cases of which j
// report the endpoint.
func buildFacts(n, k, m, j int) []model.EventFact {
	var facts []model.EventFact
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("EXP%05d", i)
		if i < k {
			facts = append(facts, fact(id, "MINOXIDIL", "PERICARDIAL EFFUSION", oral))
		} else {
			facts = append(facts, fact(id, "MINOXIDIL", "HEADACHE", oral))
		}
	}
	for i := 0; i < m; i++ {
		id := fmt.Sprintf("BKG%07d", i)
		if i < j {
			facts = append(facts, fact(id, "METFORMIN", "PERICARDIAL EFFUSION", oral))
		} else {
			facts = append(facts, fact(id, "METFORMIN", "HEADACHE", oral))
		}
	}
	return facts
}

func TestComputeContingencyCells(t *testing.T) {
	cfg := testConfig()
	facts := buildFacts(1000, 12, 10000, 40)

	recs, err := NewEngine(cfg).Compute(facts, NewCohortSet(cfg), []string{"PERICARDIAL EFFUSION"})
	if err != nil {
		t.Fatal(err)
	}

	var got *model.SignalRecord
	for i := range recs {
		if recs[i].Cohort == "MINOXIDIL_SYSTEMIC" {
			got = &recs[i]
		}
	}
	if got == nil {
		t.Fatal("MINOXIDIL_SYSTEMIC record missing")
	}
	tb := got.Table
	if tb.A != 12 || tb.B != 988 || tb.C != 40 || tb.D != 9960 {
		t.Fatalf("cells = %+v", tb)
	}
	if !got.Flagged {
		t.Errorf("expected flagged signal: %+v", got)
	}
	if got.Interpretation != model.InterpSignal {
		t.Errorf("interpretation = %q", got.Interpretation)
	}
	if got.Status != model.StatusObserved {
		t.Errorf("status = %q", got.Status)
	}
}

func TestComputeCountsCasesNotEventRows(t *testing.T) {
	cfg := testConfig()
	facts := buildFacts(10, 2, 100, 5)
	// a second ingredient row for an already-counted case must not
	// inflate the cohort's distinct-case count
	dup := fact("EXP00000", "MINOXIDIL HYDROCHLORIDE", "PERICARDIAL EFFUSION", oral)
	facts = append(facts, dup)

	recs, err := NewEngine(cfg).Compute(facts, NewCohortSet(cfg), []string{"PERICARDIAL EFFUSION"})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range recs {
		if r.Cohort == "MINOXIDIL_SYSTEMIC" && r.Table.A != 2 {
			t.Errorf("a = %d, want 2 (case-level counting)", r.Table.A)
		}
	}
}

func TestComputeCompleteMatrix(t *testing.T) {
	cfg := testConfig()
	facts := buildFacts(10, 2, 100, 5)
	endpoints := []string{"PERICARDIAL EFFUSION", "CARDIAC TAMPONADE", "ALOPECIA"}

	set := NewCohortSet(cfg)
	recs, err := NewEngine(cfg).Compute(facts, set, endpoints)
	if err != nil {
		t.Fatal(err)
	}

	wantRows := len(set.Names()) * len(endpoints)
	if len(recs) != wantRows {
		t.Fatalf("matrix has %d rows, want %d", len(recs), wantRows)
	}

	// CARDIAC TAMPONADE was never reported: rows must still be present,
	// zero-valued and unflagged
	found := false
	for _, r := range recs {
		if r.Endpoint != "CARDIAC TAMPONADE" {
			continue
		}
		found = true
		if r.Status != model.StatusObservedZero {
			t.Errorf("%s status = %q", r.Cohort, r.Status)
		}
		if r.Flagged || r.PRR != 0 || r.ChiSquare != 0 {
			t.Errorf("zero pair not zeroed: %+v", r)
		}
		if r.Interpretation != model.InterpInsufficient {
			t.Errorf("zero pair interpretation = %q", r.Interpretation)
		}
	}
	if !found {
		t.Error("zero-count endpoint missing from matrix")
	}
}

func TestComputeInsufficientData(t *testing.T) {
	cfg := testConfig()
	// two exposed cases with the endpoint: below the N >= 3 floor even if
	// the disproportionality is extreme
	facts := buildFacts(4, 2, 10000, 1)

	recs, err := NewEngine(cfg).Compute(facts, NewCohortSet(cfg), []string{"PERICARDIAL EFFUSION"})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range recs {
		if r.Cohort != "MINOXIDIL_SYSTEMIC" {
			continue
		}
		if r.Flagged {
			t.Errorf("flagged despite N < floor: %+v", r)
		}
		if r.Interpretation != model.InterpInsufficient {
			t.Errorf("interpretation = %q, want %q", r.Interpretation, model.InterpInsufficient)
		}
		if r.PRR == 0 {
			t.Error("statistics should still be computed below the floor")
		}
	}
}

func TestComputeOrderIndependence(t *testing.T) {
	cfg := testConfig()
	facts := buildFacts(100, 8, 1000, 10)
	endpoints := []string{"PERICARDIAL EFFUSION", "HEADACHE"}

	a, err := NewEngine(cfg).Compute(facts, NewCohortSet(cfg), endpoints)
	if err != nil {
		t.Fatal(err)
	}

	reversed := make([]model.EventFact, len(facts))
	for i, f := range facts {
		reversed[len(facts)-1-i] = f
	}
	b, err := NewEngine(cfg).Compute(reversed, NewCohortSet(cfg), endpoints)
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != len(b) {
		t.Fatalf("row counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("row %d differs under input reordering:\n%+v\n%+v", i, a[i], b[i])
		}
	}
}

func TestEndpointsAndIngredientsHelpers(t *testing.T) {
	facts := []model.EventFact{
		fact("C1", "B-DRUG", "ZETA", oral),
		fact("C2", "A-DRUG", "ALPHA", oral),
		fact("C3", "A-DRUG", "ZETA", oral),
	}
	eps := Endpoints(facts)
	if len(eps) != 2 || eps[0] != "ALPHA" || eps[1] != "ZETA" {
		t.Errorf("Endpoints = %v", eps)
	}
	ings := Ingredients(facts)
	if len(ings) != 2 || ings[0] != "A-DRUG" {
		t.Errorf("Ingredients = %v", ings)
	}
}
