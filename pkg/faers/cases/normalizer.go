// Package cases deduplicates raw demographic report rows to one retained
// row per case identifier and standardizes demographics.
package cases

import (
	"sort"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/normalize"
)

// Coverage records where raw demographic rows were lost, the primary
// defense against silent data loss.
type Coverage struct {
	RawRows       int64
	Parsed        int64 // rows with a parseable date
	InPopulation  int64 // rows passing the country/year filter
	DistinctCases int64 // retained rows, one per caseid
}

// Filter narrows the analysis population.
type Filter struct {
	Country   string
	YearStart int
	YearEnd   int
}

// Normalize filters raw DEMO rows to the target population and keeps, for
// each case identifier, only the row with the highest case version
// (ties broken by the higher primaryid). Output order is deterministic:
// ascending by caseid.
func Normalize(raw []model.DemoRecord, f Filter) ([]model.Case, Coverage) {
	cov := Coverage{RawRows: int64(len(raw))}
	country := normalize.Country(f.Country)

	best := make(map[string]model.Case)
	for _, r := range raw {
		date, ok := normalize.BestDate(r.EventDate, r.FDADate, r.ReportDate)
		if !ok {
			continue
		}
		cov.Parsed++

		if normalize.Country(r.Country) != country {
			continue
		}
		if y := date.Year(); y < f.YearStart || y > f.YearEnd {
			continue
		}
		cov.InPopulation++

		c := model.Case{
			PrimaryID:   r.PrimaryID,
			CaseID:      r.CaseID,
			CaseVersion: r.CaseVersion,
			Date:        date,
			Country:     country,
			Sex:         normalize.Sex(r.Sex),
			Period:      r.Period,
		}
		if age, ok := normalize.AgeYears(r.Age, r.AgeUnit); ok {
			c.AgeYears = &age
		}

		cur, seen := best[c.CaseID]
		if !seen || newerVersion(c, cur) {
			best[c.CaseID] = c
		}
	}

	out := make([]model.Case, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CaseID < out[j].CaseID })

	cov.DistinctCases = int64(len(out))
	return out, cov
}

// newerVersion reports whether a supersedes b for the same case identifier.
func newerVersion(a, b model.Case) bool {
	if a.CaseVersion != b.CaseVersion {
		return a.CaseVersion > b.CaseVersion
	}
	return a.PrimaryID > b.PrimaryID
}

// RetainedSet indexes retained cases by their report-row identifier, the
// join key every downstream table must restrict itself to.
func RetainedSet(cs []model.Case) map[string]model.Case {
	set := make(map[string]model.Case, len(cs))
	for _, c := range cs {
		set[c.PrimaryID] = c
	}
	return set
}
