// Package events builds the case x ingredient x reaction fact table, the
// unit of analysis for signal detection.
package events

import (
	"fmt"
	"sort"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/attach"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/internalerr"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
)

// Coverage reports fan-out and dedup effects. CasesInFacts below
// CasesRetained means some retained cases had no qualifying drug or
// reaction; that is expected loss and is reported, not raised.
type Coverage struct {
	FanOutRows    int64 // rows produced by the drug x reaction join
	FactRows      int64 // rows after the second dedup pass
	Collapsed     int64 // duplicate rows removed by the second pass
	CasesRetained int64
	CasesInFacts  int64
}

// Builder assembles event facts from the per-stage tables.
type Builder struct {
	// IncludeRoute widens the dedup key from (caseid, ingredient,
	// reaction) to also include the normalized route.
	IncludeRoute bool
}

type factKey struct {
	caseID     string
	ingredient string
	reaction   string
	route      string
}

// Build fan-out joins drug exposures to reactions per report row, attaches
// indications by (primaryid, drug_seq) and outcomes by primaryid, then
// collapses the result to at most one representative row per (caseid,
// ingredient, reaction) group, keeping the row from the earliest period
// with the lowest primaryid.
//
// A drug or reaction row referencing a primaryid outside the retained set
// indicates a pipeline-ordering bug and fails hard with ErrJoinIntegrity.
func (b Builder) Build(
	retained map[string]model.Case,
	exposures []model.DrugExposure,
	reactions []model.Reaction,
	indications map[attach.IndiKey]string,
	outcomes map[string]model.Outcome,
) ([]model.EventFact, Coverage, error) {
	cov := Coverage{CasesRetained: int64(len(retained))}

	reacByPrimary := make(map[string][]model.Reaction, len(retained))
	for _, r := range reactions {
		if _, ok := retained[r.PrimaryID]; !ok {
			return nil, cov, fmt.Errorf("%w: reaction row references unretained primaryid %s",
				internalerr.ErrJoinIntegrity, r.PrimaryID)
		}
		reacByPrimary[r.PrimaryID] = append(reacByPrimary[r.PrimaryID], r)
	}

	best := make(map[factKey]model.EventFact)
	for _, ex := range exposures {
		c, ok := retained[ex.PrimaryID]
		if !ok {
			return nil, cov, fmt.Errorf("%w: drug row references unretained primaryid %s",
				internalerr.ErrJoinIntegrity, ex.PrimaryID)
		}

		for _, r := range reacByPrimary[ex.PrimaryID] {
			cov.FanOutRows++

			fact := model.EventFact{
				Period:     c.Period,
				CaseID:     c.CaseID,
				PrimaryID:  ex.PrimaryID,
				Ingredient: ex.Ingredient,
				Route:      ex.Route,
				Flags:      ex.Flags,
				Role:       ex.Role,
				Reaction:   r.Term,
				Sex:        c.Sex,
				AgeYears:   c.AgeYears,
			}
			if term, ok := indications[attach.IndiKey{PrimaryID: ex.PrimaryID, DrugSeq: ex.DrugSeq}]; ok {
				fact.Indication = &term
			}
			if o, ok := outcomes[ex.PrimaryID]; ok {
				fact.Outcome = o
			}

			k := factKey{caseID: c.CaseID, ingredient: ex.Ingredient, reaction: r.Term}
			if b.IncludeRoute {
				k.route = ex.Route
			}
			cur, seen := best[k]
			if !seen || represents(fact, cur) {
				best[k] = fact
			}
		}
	}

	out := make([]model.EventFact, 0, len(best))
	casesIn := make(map[string]struct{})
	for _, f := range best {
		out = append(out, f)
		casesIn[f.CaseID] = struct{}{}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CaseID != b.CaseID {
			return a.CaseID < b.CaseID
		}
		if a.Ingredient != b.Ingredient {
			return a.Ingredient < b.Ingredient
		}
		if a.Reaction != b.Reaction {
			return a.Reaction < b.Reaction
		}
		return a.Route < b.Route
	})

	cov.FactRows = int64(len(out))
	cov.Collapsed = cov.FanOutRows - cov.FactRows
	cov.CasesInFacts = int64(len(casesIn))
	return out, cov, nil
}

// represents reports whether a should replace b as the group
// representative: earliest period first, then lowest primaryid.
func represents(a, b model.EventFact) bool {
	if a.Period != b.Period {
		return a.Period < b.Period
	}
	return a.PrimaryID < b.PrimaryID
}
