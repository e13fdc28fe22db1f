// Package store persists the raw report tables and the derived analysis
// tables. Derived tables are replaced wholesale inside one transaction,
// never updated in place: a pipeline run either publishes a complete table
// or leaves the previous one untouched.
package store

import (
	"context"
	"time"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
)

// Run records one pipeline execution and its coverage metrics.
type Run struct {
	ID           string
	CreatedAt    time.Time
	CoverageJSON string
}

// Store is the warehouse interface for the signal-detection pipeline.
type Store interface {
	Close() error

	// Raw tables. ReplaceQuarter loads one FAERS reporting period
	// atomically, replacing any previous load of the same period so
	// re-running ingestion is idempotent.
	ReplaceQuarter(ctx context.Context, period string,
		demo []model.DemoRecord, drug []model.DrugRecord,
		reac []model.ReacRecord, outc []model.OutcRecord,
		indi []model.IndiRecord) error
	ReplacePartD(ctx context.Context, rows []model.PartDRecord) error

	LoadDemo(ctx context.Context) ([]model.DemoRecord, error)
	LoadDrug(ctx context.Context) ([]model.DrugRecord, error)
	LoadReac(ctx context.Context) ([]model.ReacRecord, error)
	LoadOutc(ctx context.Context) ([]model.OutcRecord, error)
	LoadIndi(ctx context.Context) ([]model.IndiRecord, error)
	LoadPartD(ctx context.Context) ([]model.PartDRecord, error)

	// Derived tables, read-only once published. ReplaceDerived swaps all
	// three in one transaction; a failure part-way leaves every previous
	// table in place.
	ReplaceDerived(ctx context.Context, facts []model.EventFact,
		ds []model.Denominator, recs []model.SignalRecord) error
	ReplaceEventFacts(ctx context.Context, facts []model.EventFact) error
	LoadEventFacts(ctx context.Context) ([]model.EventFact, error)
	ReplaceDenominators(ctx context.Context, ds []model.Denominator) error
	LoadDenominators(ctx context.Context) ([]model.Denominator, error)
	ReplaceSignals(ctx context.Context, recs []model.SignalRecord) error
	LoadSignals(ctx context.Context) ([]model.SignalRecord, error)

	// Listing helpers for interactive consumers.
	ListIngredients(ctx context.Context) ([]string, error)
	ListReactionTerms(ctx context.Context) ([]string, error)

	// Run manifests.
	SaveRun(ctx context.Context, r Run) error
	LastRun(ctx context.Context) (Run, bool, error)
}
