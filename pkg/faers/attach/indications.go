package attach

import (
	"sort"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/normalize"
)

// Indications inner-joins raw indication rows to the retained cases,
// preserving the drug-sequence key so each indication stays attached to
// the specific drug exposure it was reported against. Many cases have
// zero indications; downstream joins treat this table as left-joinable.
func Indications(raw []model.IndiRecord, retained map[string]model.Case) []model.Indication {
	out := make([]model.Indication, 0, len(raw))
	for _, r := range raw {
		if _, ok := retained[r.PrimaryID]; !ok {
			continue
		}
		term := normalize.Term(r.Term)
		if term == "" {
			continue
		}
		out = append(out, model.Indication{
			PrimaryID: r.PrimaryID,
			DrugSeq:   r.DrugSeq,
			Term:      term,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].PrimaryID != out[j].PrimaryID {
			return out[i].PrimaryID < out[j].PrimaryID
		}
		return out[i].DrugSeq < out[j].DrugSeq
	})
	return out
}

// IndicationIndex keys indications by (primaryid, drug_seq) for the event
// builder's left join. When one exposure row lists several indications the
// first in sorted order wins.
func IndicationIndex(indis []model.Indication) map[IndiKey]string {
	idx := make(map[IndiKey]string, len(indis))
	for _, in := range indis {
		k := IndiKey{PrimaryID: in.PrimaryID, DrugSeq: in.DrugSeq}
		if _, ok := idx[k]; !ok {
			idx[k] = in.Term
		}
	}
	return idx
}

// IndiKey joins an indication to one drug exposure row.
type IndiKey struct {
	PrimaryID string
	DrugSeq   int64
}
