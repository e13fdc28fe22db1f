// Package signal builds 2x2 contingency tables per (cohort, endpoint)
// pair over the event fact table and computes flagged disproportionality
// results.
package signal

import (
	"strings"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/config"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/normalize"
)

// OtherCohort is the background cohort collecting every case no explicit
// rule claims. Keeping it in the analysis population is what makes the
// unexposed side of each 2x2 complete.
const OtherCohort = "OTHER"

// CohortRule decides whether an event row belongs to a named cohort.
type CohortRule struct {
	Name               string
	Ingredient         string // exact match on the normalized ingredient
	IngredientContains string // substring match, for salt/combination names
	Routes             []string
	ExcludeRoutes      []string
}

// CohortSet assigns event rows to cohorts. Rules are evaluated in order;
// the first match wins.
type CohortSet struct {
	rules        []CohortRule
	includeOther bool
}

// NewCohortSet builds a cohort set from the analysis configuration.
func NewCohortSet(cfg config.Analysis) *CohortSet {
	rules := make([]CohortRule, 0, len(cfg.Cohorts))
	for _, c := range cfg.Cohorts {
		rules = append(rules, CohortRule{
			Name:               c.Name,
			Ingredient:         normalize.Key(c.Ingredient),
			IngredientContains: normalize.Key(c.IngredientContains),
			Routes:             c.Routes,
			ExcludeRoutes:      c.ExcludeRoutes,
		})
	}
	return &CohortSet{rules: rules, includeOther: cfg.OtherCohort}
}

// Names returns the cohort labels in rule order, with OTHER last when
// enabled.
func (s *CohortSet) Names() []string {
	names := make([]string, 0, len(s.rules)+1)
	for _, r := range s.rules {
		names = append(names, r.Name)
	}
	if s.includeOther {
		names = append(names, OtherCohort)
	}
	return names
}

// Assign returns the cohort label for an event row, or "" when the row
// belongs to no cohort and the OTHER background is disabled.
func (s *CohortSet) Assign(f model.EventFact) string {
	for _, r := range s.rules {
		if r.matches(f) {
			return r.Name
		}
	}
	if s.includeOther {
		return OtherCohort
	}
	return ""
}

func (r CohortRule) matches(f model.EventFact) bool {
	if r.Ingredient != "" && f.Ingredient != r.Ingredient {
		return false
	}
	if r.IngredientContains != "" && !strings.Contains(f.Ingredient, r.IngredientContains) {
		return false
	}
	if len(r.Routes) > 0 {
		any := false
		for _, class := range r.Routes {
			if hasRouteClass(f.Flags, class) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	for _, class := range r.ExcludeRoutes {
		if hasRouteClass(f.Flags, class) {
			return false
		}
	}
	return true
}

func hasRouteClass(fl model.RouteFlags, class string) bool {
	switch class {
	case "oral":
		return fl.Oral
	case "topical":
		return fl.Topical
	case "unknown":
		return fl.Unknown
	}
	return false
}
