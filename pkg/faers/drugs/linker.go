// Package drugs filters raw drug-exposure rows to the causally-implicated
// subset for the retained cases and normalizes ingredient identity.
package drugs

import (
	"sort"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/normalize"
)

// Coverage reports how many retained cases kept at least one qualifying
// drug row. Cases with none contribute nothing to ingredient-level
// analyses; that loss must be visible, not hidden.
type Coverage struct {
	RawRows       int64
	Qualifying    int64 // rows passing the role filter with a usable name
	BlankName     int64 // role-qualified rows with no usable drug identity
	CasesRetained int64
	CasesWithDrug int64
}

// Link restricts raw drug rows to the retained cases, applies the causality
// role filter and computes the normalized ingredient. Roles is the allowed
// role-code set (typically {PS}, or {PS, SS} for the sensitivity variant).
// Output order is deterministic: (primaryid, drug_seq) ascending.
func Link(raw []model.DrugRecord, retained map[string]model.Case, roles map[string]bool) ([]model.DrugExposure, Coverage) {
	cov := Coverage{
		RawRows:       int64(len(raw)),
		CasesRetained: int64(len(retained)),
	}

	casesWith := make(map[string]struct{})
	out := make([]model.DrugExposure, 0, len(raw))
	for _, r := range raw {
		c, ok := retained[r.PrimaryID]
		if !ok {
			continue
		}
		if !roles[normalize.Key(r.RoleCode)] {
			continue
		}
		ingredient := normalize.Ingredient(r.ActiveIngredient, r.DrugName)
		if ingredient == "" {
			cov.BlankName++
			continue
		}
		cov.Qualifying++

		route, flags := normalize.Route(r.Route)
		out = append(out, model.DrugExposure{
			PrimaryID:  r.PrimaryID,
			CaseID:     c.CaseID,
			DrugSeq:    r.DrugSeq,
			Role:       normalize.Key(r.RoleCode),
			Ingredient: ingredient,
			Route:      route,
			Flags:      flags,
			Period:     c.Period,
		})
		casesWith[r.PrimaryID] = struct{}{}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].PrimaryID != out[j].PrimaryID {
			return out[i].PrimaryID < out[j].PrimaryID
		}
		return out[i].DrugSeq < out[j].DrugSeq
	})

	cov.CasesWithDrug = int64(len(casesWith))
	return out, cov
}
