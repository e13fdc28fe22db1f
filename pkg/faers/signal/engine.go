package signal

import (
	"fmt"
	"sort"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/config"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/normalize"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/stats"
)

// Engine computes the complete cohort x endpoint signal matrix from the
// immutable event fact table. Each record depends only on the fact table,
// so results are identical regardless of evaluation order.
type Engine struct {
	calc       *stats.Calculator
	thresholds config.Thresholds
}

// NewEngine builds an engine from the analysis configuration.
func NewEngine(cfg config.Analysis) *Engine {
	var policy stats.Correction
	switch cfg.Correction {
	case config.CorrectionAlways:
		policy = stats.CorrectionAlways
	case config.CorrectionNever:
		policy = stats.CorrectionNever
	default:
		policy = stats.CorrectionConditional
	}
	return &Engine{
		calc:       stats.NewCalculator(policy),
		thresholds: cfg.Thresholds,
	}
}

// Endpoints returns every distinct reaction term in the fact table,
// sorted, for full-matrix runs with no configured endpoint list.
func Endpoints(facts []model.EventFact) []string {
	seen := make(map[string]struct{})
	for _, f := range facts {
		seen[f.Reaction] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for term := range seen {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

// Ingredients returns every distinct normalized ingredient in the fact
// table, sorted.
func Ingredients(facts []model.EventFact) []string {
	seen := make(map[string]struct{})
	for _, f := range facts {
		seen[f.Ingredient] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for ing := range seen {
		out = append(out, ing)
	}
	sort.Strings(out)
	return out
}

// Compute produces one signal record for every (cohort, endpoint) pair in
// the cartesian product, including pairs with zero exposed cases. Counting
// is case-level: a case reporting the endpoint twice counts once.
func (e *Engine) Compute(facts []model.EventFact, cohorts *CohortSet, endpoints []string) ([]model.SignalRecord, error) {
	if cohorts == nil {
		return nil, fmt.Errorf("nil cohort set")
	}

	// distinct-case sets per cohort and per endpoint
	population := make(map[string]struct{})
	cohortCases := make(map[string]map[string]struct{})
	endpointCases := make(map[string]map[string]struct{})
	pairCases := make(map[[2]string]map[string]struct{})

	for _, f := range facts {
		population[f.CaseID] = struct{}{}

		cohort := cohorts.Assign(f)
		if cohort != "" {
			addCase(cohortCases, cohort, f.CaseID)
		}
		addCase(endpointCases, f.Reaction, f.CaseID)
		if cohort != "" {
			pk := [2]string{cohort, f.Reaction}
			if pairCases[pk] == nil {
				pairCases[pk] = make(map[string]struct{})
			}
			pairCases[pk][f.CaseID] = struct{}{}
		}
	}
	grand := int64(len(population))

	terms := make([]string, 0, len(endpoints))
	for _, ep := range endpoints {
		terms = append(terms, normalize.Term(ep))
	}

	out := make([]model.SignalRecord, 0, len(cohorts.Names())*len(terms))
	for _, cohort := range cohorts.Names() {
		nCohort := int64(len(cohortCases[cohort]))
		for _, term := range terms {
			a := int64(len(pairCases[[2]string{cohort, term}]))
			nEndpoint := int64(len(endpointCases[term]))

			table := model.ContingencyTable{
				Cohort:   cohort,
				Endpoint: term,
				A:        a,
				B:        nCohort - a,
				C:        nEndpoint - a,
				D:        grand - nCohort - (nEndpoint - a),
			}
			out = append(out, e.record(table))
		}
	}
	return out, nil
}

// record derives one signal record from a contingency table. Pairs with
// no exposed-with-event cases are real "no signal" rows: emitted with
// zeroed statistics, never omitted.
func (e *Engine) record(t model.ContingencyTable) model.SignalRecord {
	rec := model.SignalRecord{
		Cohort:   t.Cohort,
		Endpoint: t.Endpoint,
		Table:    t,
		N:        t.A,
	}

	if t.A == 0 {
		rec.Status = model.StatusObservedZero
		rec.Interpretation = model.InterpInsufficient
		return rec
	}

	res := e.calc.Compute(t.A, t.B, t.C, t.D)
	rec.Status = model.StatusObserved
	rec.PRR = res.PRR
	rec.PRRLower = res.PRRLower
	rec.PRRUpper = res.PRRUpper
	rec.ROR = res.ROR
	rec.RORLower = res.RORLower
	rec.RORUpper = res.RORUpper
	rec.ChiSquare = res.ChiSquare

	rec.Flagged = res.PRR >= e.thresholds.PRRMin &&
		res.ChiSquare >= e.thresholds.Chi2Min &&
		t.A >= e.thresholds.NMin
	rec.Interpretation = e.interpret(rec)
	return rec
}

// interpret maps the flagging rule onto the human-readable decision. A
// result failing the case-count floor is insufficient data, which is not
// the same statement as "no signal".
func (e *Engine) interpret(rec model.SignalRecord) string {
	if rec.N < e.thresholds.NMin {
		return model.InterpInsufficient
	}
	if rec.Flagged {
		return model.InterpSignal
	}
	return model.InterpNoSignal
}

func addCase(m map[string]map[string]struct{}, key, caseID string) {
	if m[key] == nil {
		m[key] = make(map[string]struct{})
	}
	m[key][caseID] = struct{}{}
}
