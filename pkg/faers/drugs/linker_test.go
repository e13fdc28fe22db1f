package drugs

import (
	"testing"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
)

func retained() map[string]model.Case {
	return map[string]model.Case{
		"1001": {PrimaryID: "1001", CaseID: "C1", Period: "2023Q1"},
		"2001": {PrimaryID: "2001", CaseID: "C2", Period: "2023Q1"},
	}
}

func TestLinkRoleFilter(t *testing.T) {
	raw := []model.DrugRecord{
		{PrimaryID: "1001", DrugSeq: 1, RoleCode: "PS", DrugName: "minoxidil"},
		{PrimaryID: "1001", DrugSeq: 2, RoleCode: "SS", DrugName: "aspirin"},
		{PrimaryID: "1001", DrugSeq: 3, RoleCode: "C", DrugName: "metformin"},
		{PrimaryID: "9999", DrugSeq: 1, RoleCode: "PS", DrugName: "dropped"},
	}

	out, cov := Link(raw, retained(), map[string]bool{"PS": true})
	if len(out) != 1 {
		t.Fatalf("expected 1 exposure, got %d", len(out))
	}
	if out[0].Ingredient != "MINOXIDIL" || out[0].CaseID != "C1" {
		t.Errorf("exposure = %+v", out[0])
	}
	if cov.CasesWithDrug != 1 || cov.CasesRetained != 2 {
		t.Errorf("coverage = %+v", cov)
	}

	// sensitivity variant: PS + SS
	out, _ = Link(raw, retained(), map[string]bool{"PS": true, "SS": true})
	if len(out) != 2 {
		t.Errorf("PS+SS should keep 2 exposures, got %d", len(out))
	}
}

func TestLinkIngredientFallback(t *testing.T) {
	raw := []model.DrugRecord{
		{PrimaryID: "1001", DrugSeq: 1, RoleCode: "PS", ActiveIngredient: "MINOXIDIL", DrugName: "LONITEN"},
		{PrimaryID: "2001", DrugSeq: 1, RoleCode: "PS", ActiveIngredient: "  ", DrugName: "loniten"},
		{PrimaryID: "2001", DrugSeq: 2, RoleCode: "PS"},
	}
	out, cov := Link(raw, retained(), map[string]bool{"PS": true})
	if len(out) != 2 {
		t.Fatalf("expected 2 exposures, got %d", len(out))
	}
	if out[0].Ingredient != "MINOXIDIL" {
		t.Errorf("active ingredient should win, got %q", out[0].Ingredient)
	}
	if out[1].Ingredient != "LONITEN" {
		t.Errorf("blank active ingredient should fall back to drug name, got %q", out[1].Ingredient)
	}
	if cov.BlankName != 1 {
		t.Errorf("blank-name rows = %d, want 1", cov.BlankName)
	}
}

func TestLinkRouteFlags(t *testing.T) {
	raw := []model.DrugRecord{
		{PrimaryID: "1001", DrugSeq: 1, RoleCode: "PS", DrugName: "MINOXIDIL", Route: "Oral"},
	}
	out, _ := Link(raw, retained(), map[string]bool{"PS": true})
	if len(out) != 1 || !out[0].Flags.Oral {
		t.Errorf("expected oral flag set, got %+v", out)
	}
}
