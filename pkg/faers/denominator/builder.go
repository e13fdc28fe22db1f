// Package denominator aggregates Medicare Part D prescription-volume
// records into one row per normalized ingredient, the exposure denominator
// joined against the event table.
package denominator

import (
	"sort"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/normalize"
)

// Coverage reports denominator-source retention.
type Coverage struct {
	RawRows     int64
	Usable      int64 // rows with a usable generic or brand name
	Dropped     int64
	Ingredients int64
}

// Build groups raw Part D records by normalized ingredient and sums each
// volume measure. The key uses the same normalization rule as the event
// builder: generic name preferred, brand name fallback, uppercased and
// trimmed. Suppressed (missing) measures contribute zero to the sums.
// Output order: ingredient ascending.
func Build(raw []model.PartDRecord) ([]model.Denominator, Coverage) {
	cov := Coverage{RawRows: int64(len(raw))}

	byIngredient := make(map[string]*model.Denominator)
	for _, r := range raw {
		key := normalize.Ingredient(r.GenericName, r.BrandName)
		if key == "" {
			cov.Dropped++
			continue
		}
		cov.Usable++

		d, ok := byIngredient[key]
		if !ok {
			d = &model.Denominator{Ingredient: key}
			byIngredient[key] = d
		}
		d.Records++
		d.TotalClaims += value(r.TotalClaims)
		d.TotalFills += value(r.TotalFills)
		d.TotalDaySupply += value(r.TotalDaySupply)
		d.TotalBeneficiaries += value(r.TotalBeneficiaries)
		d.GE65Claims += value(r.GE65Claims)
		d.GE65Fills += value(r.GE65Fills)
		d.GE65DaySupply += value(r.GE65DaySupply)
		d.GE65Beneficiaries += value(r.GE65Beneficiaries)
	}

	out := make([]model.Denominator, 0, len(byIngredient))
	for _, d := range byIngredient {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ingredient < out[j].Ingredient })

	cov.Ingredients = int64(len(out))
	return out, cov
}

// Index keys denominators by ingredient. Ingredients present in the event
// table but absent here join as nil, never as a zero denominator.
func Index(ds []model.Denominator) map[string]*model.Denominator {
	idx := make(map[string]*model.Denominator, len(ds))
	for i := range ds {
		idx[ds[i].Ingredient] = &ds[i]
	}
	return idx
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
