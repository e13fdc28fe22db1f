// Package model defines the row types flowing through the signal-detection
// pipeline: raw FAERS quarterly records, the cleaned per-stage tables, the
// Medicare denominator rows, and the derived signal outputs.
package model

import "time"

// DemoRecord is one raw row from a FAERS DEMO quarterly extract.
type DemoRecord struct {
	PrimaryID   string
	CaseID      string
	CaseVersion int64
	EventDate   string // raw YYYYMMDD / YYYYMM / YYYY text
	FDADate     string
	ReportDate  string
	Age         string
	AgeUnit     string
	Sex         string
	Country     string
	Period      string // e.g. "2023Q1"
}

// DrugRecord is one raw row from a FAERS DRUG quarterly extract.
type DrugRecord struct {
	PrimaryID        string
	CaseID           string
	DrugSeq          int64
	RoleCode         string // PS, SS, C, I
	DrugName         string
	ActiveIngredient string
	Route            string
	Period           string
}

// ReacRecord is one raw row from a FAERS REAC quarterly extract.
type ReacRecord struct {
	PrimaryID string
	CaseID    string
	Term      string // MedDRA preferred term
	Period    string
}

// OutcRecord is one raw row from a FAERS OUTC quarterly extract.
type OutcRecord struct {
	PrimaryID string
	CaseID    string
	Code      string // DE, LT, HO, DS, CA, RI, OT
	Period    string
}

// IndiRecord is one raw row from a FAERS INDI quarterly extract.
type IndiRecord struct {
	PrimaryID string
	CaseID    string
	DrugSeq   int64
	Term      string
	Period    string
}

// PartDRecord is one raw row from the Medicare Part D
// by-provider-and-drug utilization file. Small counts are suppressed at
// the source; suppressed numeric fields arrive as nil, never zero.
type PartDRecord struct {
	PrescriberNPI      string
	BrandName          string
	GenericName        string
	TotalClaims        *float64
	TotalFills         *float64
	TotalDaySupply     *float64
	TotalBeneficiaries *float64
	GE65Claims         *float64
	GE65Fills          *float64
	GE65DaySupply      *float64
	GE65Beneficiaries  *float64
}

// Case is one deduplicated adverse-event report: the retained row with the
// highest case version for its case identifier. PrimaryID is the report-row
// join key used by every downstream table; CaseID is the stable case
// identity used for distinct-case counting.
type Case struct {
	PrimaryID   string
	CaseID      string
	CaseVersion int64
	Date        time.Time
	Country     string
	Sex         string // M, F or U
	AgeYears    *float64
	Period      string
}

// RouteFlags classifies a reported route of administration.
type RouteFlags struct {
	Oral    bool
	Topical bool
	Unknown bool
}

// DrugExposure is one qualifying (retained case, drug sequence) row after
// role filtering and ingredient normalization.
type DrugExposure struct {
	PrimaryID  string
	CaseID     string
	DrugSeq    int64
	Role       string
	Ingredient string
	Route      string
	Flags      RouteFlags
	Period     string
}

// Reaction is one cleaned reaction term attached to a retained case.
type Reaction struct {
	PrimaryID string
	CaseID    string
	Term      string
	Period    string
}

// Indication links a therapeutic indication to a specific drug exposure
// row, not just to the case.
type Indication struct {
	PrimaryID string
	DrugSeq   int64
	Term      string
}

// Outcome carries the pivoted outcome flags for one retained case.
type Outcome struct {
	PrimaryID            string
	Death                bool
	LifeThreatening      bool
	Hospitalization      bool
	Disability           bool
	CongenitalAnomaly    bool
	RequiredIntervention bool
	Other                bool
	SeriousAny           bool
}

// EventFact is the unit of analysis: one (case, ingredient, reaction)
// combination with demographics and outcome flags carried through. The
// event builder guarantees at most one row per such combination.
type EventFact struct {
	Period     string
	CaseID     string
	PrimaryID  string
	Ingredient string
	Route      string
	Flags      RouteFlags
	Role       string
	Reaction   string
	Indication *string
	Sex        string
	AgeYears   *float64
	Outcome    Outcome
}

// Denominator holds summed prescription-volume measures for one
// normalized ingredient, with the over-65 eligibility stratum split out.
type Denominator struct {
	Ingredient         string
	TotalClaims        float64
	TotalFills         float64
	TotalDaySupply     float64
	TotalBeneficiaries float64
	GE65Claims         float64
	GE65Fills          float64
	GE65DaySupply      float64
	GE65Beneficiaries  float64
	Records            int64
}

// ContingencyTable is a 2x2 case-count table for one (cohort, endpoint)
// pair. A counts exposed cases with the endpoint reaction, B exposed cases
// without it, C unexposed cases with it, D the remainder.
type ContingencyTable struct {
	Cohort     string
	Endpoint   string
	A, B, C, D int64
}

// Status values for a signal row. ObservedZero marks a pair that was part
// of the computed matrix but had no exposed cases with the endpoint; it is
// a real "no signal" result. NotComputed marks a pair filled in by the
// reporting layer because it was outside the run's configured axes.
const (
	StatusObserved     = "observed"
	StatusObservedZero = "observed-zero"
	StatusNotComputed  = "not-computed"
)

// Interpretation strings attached to signal rows. The engine writes them
// and the reporting layer reuses them for filled-in rows, so they live
// here rather than in either package.
const (
	InterpSignal       = "Reject H0 (signal)"
	InterpNoSignal     = "Fail to reject H0"
	InterpInsufficient = "Insufficient data"
)

// SignalRecord is one computed disproportionality result. Derived, never
// mutated after computation.
type SignalRecord struct {
	Cohort         string
	Endpoint       string
	Table          ContingencyTable
	N              int64 // raw exposed-with-event case count (cell A)
	PRR            float64
	PRRLower       float64
	PRRUpper       float64
	ROR            float64
	RORLower       float64
	RORUpper       float64
	ChiSquare      float64
	Flagged        bool
	Status         string
	Interpretation string
}
