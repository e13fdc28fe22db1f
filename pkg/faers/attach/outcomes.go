package attach

import (
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/normalize"
)

// Outcomes pivots the repeatable outcome-code table into one row of fixed
// boolean flags per retained case. Cases with no outcome rows simply have
// no entry; the event builder treats that as all-false.
func Outcomes(raw []model.OutcRecord, retained map[string]model.Case) map[string]model.Outcome {
	out := make(map[string]model.Outcome)
	for _, r := range raw {
		if _, ok := retained[r.PrimaryID]; !ok {
			continue
		}
		o := out[r.PrimaryID]
		o.PrimaryID = r.PrimaryID
		switch normalize.Key(r.Code) {
		case "DE":
			o.Death = true
		case "LT":
			o.LifeThreatening = true
		case "HO":
			o.Hospitalization = true
		case "DS":
			o.Disability = true
		case "CA":
			o.CongenitalAnomaly = true
		case "RI":
			o.RequiredIntervention = true
		case "OT":
			o.Other = true
		default:
			continue
		}
		o.SeriousAny = o.Death || o.LifeThreatening || o.Hospitalization ||
			o.Disability || o.CongenitalAnomaly || o.RequiredIntervention
		out[r.PrimaryID] = o
	}
	return out
}
