// Package attach cleans and attaches reaction terms, therapeutic
// indications and coded outcomes to the retained cases. Every attacher
// guarantees that no blank join key survives into its output.
package attach

import (
	"sort"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/normalize"
)

// ReactionCoverage reports reaction-row retention.
type ReactionCoverage struct {
	RawRows       int64
	Attached      int64
	BlankTerms    int64
	CasesWithReac int64
}

// Reactions inner-joins raw reaction rows to the retained cases, dropping
// blank terms. Output order: (primaryid, term) ascending.
func Reactions(raw []model.ReacRecord, retained map[string]model.Case) ([]model.Reaction, ReactionCoverage) {
	cov := ReactionCoverage{RawRows: int64(len(raw))}

	casesWith := make(map[string]struct{})
	out := make([]model.Reaction, 0, len(raw))
	for _, r := range raw {
		c, ok := retained[r.PrimaryID]
		if !ok {
			continue
		}
		term := normalize.Term(r.Term)
		if term == "" {
			cov.BlankTerms++
			continue
		}
		out = append(out, model.Reaction{
			PrimaryID: r.PrimaryID,
			CaseID:    c.CaseID,
			Term:      term,
			Period:    c.Period,
		})
		casesWith[r.PrimaryID] = struct{}{}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].PrimaryID != out[j].PrimaryID {
			return out[i].PrimaryID < out[j].PrimaryID
		}
		return out[i].Term < out[j].Term
	})

	cov.Attached = int64(len(out))
	cov.CasesWithReac = int64(len(casesWith))
	return out, cov
}
