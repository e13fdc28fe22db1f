package events

import (
	"errors"
	"testing"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/attach"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/internalerr"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
)

func retained() map[string]model.Case {
	return map[string]model.Case{
		"1001": {PrimaryID: "1001", CaseID: "C1", Sex: "F", Period: "2023Q1"},
		"2001": {PrimaryID: "2001", CaseID: "C2", Sex: "M", Period: "2023Q1"},
	}
}

func exposure(primaryID, caseID string, seq int64, ingredient string) model.DrugExposure {
	return model.DrugExposure{
		PrimaryID:  primaryID,
		CaseID:     caseID,
		DrugSeq:    seq,
		Role:       "PS",
		Ingredient: ingredient,
		Period:     "2023Q1",
	}
}

func TestBuildFanOut(t *testing.T) {
	exposures := []model.DrugExposure{
		exposure("1001", "C1", 1, "MINOXIDIL"),
		exposure("1001", "C1", 2, "HYDRALAZINE"),
	}
	reactions := []model.Reaction{
		{PrimaryID: "1001", CaseID: "C1", Term: "PERICARDIAL EFFUSION"},
		{PrimaryID: "1001", CaseID: "C1", Term: "ALOPECIA"},
	}

	out, cov, err := Builder{}.Build(retained(), exposures, reactions, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// 2 drugs x 2 reactions
	if len(out) != 4 || cov.FanOutRows != 4 {
		t.Fatalf("expected 4 facts, got %d (coverage %+v)", len(out), cov)
	}
}

func TestBuildSecondDedupPass(t *testing.T) {
	// the same ingredient on two drug-sequence rows of one case must not
	// double-count the (case, ingredient, reaction) combination
	exposures := []model.DrugExposure{
		exposure("1001", "C1", 1, "MINOXIDIL"),
		exposure("1001", "C1", 2, "MINOXIDIL"),
	}
	reactions := []model.Reaction{
		{PrimaryID: "1001", CaseID: "C1", Term: "PERICARDIAL EFFUSION"},
	}

	out, cov, err := Builder{}.Build(retained(), exposures, reactions, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 fact after dedup, got %d", len(out))
	}
	if cov.Collapsed != 1 {
		t.Errorf("collapsed = %d, want 1", cov.Collapsed)
	}
}

func TestBuildUniquenessInvariant(t *testing.T) {
	exposures := []model.DrugExposure{
		exposure("1001", "C1", 1, "MINOXIDIL"),
		exposure("1001", "C1", 2, "MINOXIDIL"),
		exposure("2001", "C2", 1, "MINOXIDIL"),
	}
	reactions := []model.Reaction{
		{PrimaryID: "1001", CaseID: "C1", Term: "PERICARDIAL EFFUSION"},
		{PrimaryID: "1001", CaseID: "C1", Term: "PERICARDIAL EFFUSION"},
		{PrimaryID: "2001", CaseID: "C2", Term: "PERICARDIAL EFFUSION"},
	}

	out, _, err := Builder{}.Build(retained(), exposures, reactions, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	seen := make(map[[3]string]int)
	for _, f := range out {
		seen[[3]string{f.CaseID, f.Ingredient, f.Reaction}]++
	}
	for k, n := range seen {
		if n > 1 {
			t.Errorf("duplicate fact for %v: %d rows", k, n)
		}
	}
	if len(out) != 2 {
		t.Errorf("expected one fact per case, got %d", len(out))
	}
}

func TestBuildAttachesIndicationAndOutcome(t *testing.T) {
	exposures := []model.DrugExposure{exposure("1001", "C1", 2, "MINOXIDIL")}
	reactions := []model.Reaction{{PrimaryID: "1001", CaseID: "C1", Term: "ALOPECIA"}}
	indications := map[attach.IndiKey]string{
		{PrimaryID: "1001", DrugSeq: 2}: "HYPERTENSION",
		{PrimaryID: "1001", DrugSeq: 1}: "WRONG DRUG",
	}
	outcomes := map[string]model.Outcome{
		"1001": {PrimaryID: "1001", Hospitalization: true, SeriousAny: true},
	}

	out, _, err := Builder{}.Build(retained(), exposures, reactions, indications, outcomes)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(out))
	}
	f := out[0]
	if f.Indication == nil || *f.Indication != "HYPERTENSION" {
		t.Errorf("indication = %v, want HYPERTENSION", f.Indication)
	}
	if !f.Outcome.SeriousAny {
		t.Errorf("outcome = %+v", f.Outcome)
	}
}

func TestBuildJoinIntegrityHardStop(t *testing.T) {
	exposures := []model.DrugExposure{exposure("9999", "CX", 1, "MINOXIDIL")}
	_, _, err := Builder{}.Build(retained(), exposures, nil, nil, nil)
	if !errors.Is(err, internalerr.ErrJoinIntegrity) {
		t.Errorf("expected ErrJoinIntegrity, got %v", err)
	}

	reactions := []model.Reaction{{PrimaryID: "9999", CaseID: "CX", Term: "ALOPECIA"}}
	_, _, err = Builder{}.Build(retained(), nil, reactions, nil, nil)
	if !errors.Is(err, internalerr.ErrJoinIntegrity) {
		t.Errorf("expected ErrJoinIntegrity for reaction rows, got %v", err)
	}
}

func TestBuildRouteGranularity(t *testing.T) {
	oral := exposure("1001", "C1", 1, "MINOXIDIL")
	oral.Route = "ORAL"
	topical := exposure("1001", "C1", 2, "MINOXIDIL")
	topical.Route = "TOPICAL"
	reactions := []model.Reaction{{PrimaryID: "1001", CaseID: "C1", Term: "ALOPECIA"}}

	out, _, err := Builder{}.Build(retained(), []model.DrugExposure{oral, topical}, reactions, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Errorf("without route granularity expected 1 fact, got %d", len(out))
	}

	out, _, err = Builder{IncludeRoute: true}.Build(retained(), []model.DrugExposure{oral, topical}, reactions, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Errorf("with route granularity expected 2 facts, got %d", len(out))
	}
}

func TestBuildDeterministicRepresentative(t *testing.T) {
	later := exposure("1003", "C1", 1, "MINOXIDIL")
	later.Period = "2023Q2"
	earlier := exposure("1001", "C1", 1, "MINOXIDIL")

	ret := map[string]model.Case{
		"1001": {PrimaryID: "1001", CaseID: "C1", Period: "2023Q1"},
		"1003": {PrimaryID: "1003", CaseID: "C1", Period: "2023Q2"},
	}
	reactions := []model.Reaction{
		{PrimaryID: "1001", CaseID: "C1", Term: "ALOPECIA"},
		{PrimaryID: "1003", CaseID: "C1", Term: "ALOPECIA"},
	}

	out, _, err := Builder{}.Build(ret, []model.DrugExposure{later, earlier}, reactions, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(out))
	}
	if out[0].PrimaryID != "1001" {
		t.Errorf("representative should be earliest period / lowest primaryid, got %s", out[0].PrimaryID)
	}
}
