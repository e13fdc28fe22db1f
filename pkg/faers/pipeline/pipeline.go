// Package pipeline orchestrates the end-to-end signal-detection run:
// raw tables out of the store, through the staged cleaning and join
// passes, signals back into the store with a run manifest.
package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/attach"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/cases"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/config"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/denominator"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/drugs"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/events"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/signal"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/store"
)

// Coverage aggregates the per-stage retention counters for one run. It is
// serialized into the run manifest so a finished warehouse can always
// answer "where did the rows go".
type Coverage struct {
	Cases        cases.Coverage          `json:"cases"`
	Drugs        drugs.Coverage          `json:"drugs"`
	Reactions    attach.ReactionCoverage `json:"reactions"`
	Events       events.Coverage         `json:"events"`
	Denominators denominator.Coverage    `json:"denominators"`
	Join         JoinCoverage            `json:"denominator_join"`
	Signals      int64                   `json:"signal_rows"`
}

// JoinCoverage reports how much of the event fact table carries a
// prescription-volume denominator. An ingredient missing from the
// denominator table joins as null downstream; the fraction here makes
// that loss visible instead of silent.
type JoinCoverage struct {
	FactIngredients      int64 `json:"fact_ingredients"`
	MatchedIngredients   int64 `json:"matched_ingredients"`
	FactsWithDenominator int64 `json:"facts_with_denominator"`
}

// Runner executes analysis runs against a store.
type Runner struct {
	store   store.Store
	cfg     config.Analysis
	entropy *ulid.MonotonicEntropy
}

// NewRunner returns a Runner bound to the given store and configuration.
func NewRunner(s store.Store, cfg config.Analysis) *Runner {
	return &Runner{
		store:   s,
		cfg:     cfg,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// stages loads the raw tables and runs the cleaning and join passes,
// returning the derived tables without publishing anything.
func (r *Runner) stages(ctx context.Context) ([]model.EventFact, []model.Denominator, Coverage, error) {
	var cov Coverage

	demo, err := r.store.LoadDemo(ctx)
	if err != nil {
		return nil, nil, cov, fmt.Errorf("load demo: %w", err)
	}
	drug, err := r.store.LoadDrug(ctx)
	if err != nil {
		return nil, nil, cov, fmt.Errorf("load drug: %w", err)
	}
	reac, err := r.store.LoadReac(ctx)
	if err != nil {
		return nil, nil, cov, fmt.Errorf("load reac: %w", err)
	}
	outc, err := r.store.LoadOutc(ctx)
	if err != nil {
		return nil, nil, cov, fmt.Errorf("load outc: %w", err)
	}
	indi, err := r.store.LoadIndi(ctx)
	if err != nil {
		return nil, nil, cov, fmt.Errorf("load indi: %w", err)
	}
	partd, err := r.store.LoadPartD(ctx)
	if err != nil {
		return nil, nil, cov, fmt.Errorf("load part d: %w", err)
	}

	cs, caseCov := cases.Normalize(demo, cases.Filter{
		Country:   r.cfg.Country,
		YearStart: r.cfg.YearStart,
		YearEnd:   r.cfg.YearEnd,
	})
	cov.Cases = caseCov
	retained := cases.RetainedSet(cs)

	exposures, drugCov := drugs.Link(drug, retained, r.cfg.RoleSet())
	cov.Drugs = drugCov

	reactions, reacCov := attach.Reactions(reac, retained)
	cov.Reactions = reacCov

	indications := attach.IndicationIndex(attach.Indications(indi, retained))
	outcomes := attach.Outcomes(outc, retained)

	builder := events.Builder{IncludeRoute: r.cfg.RouteGranularity}
	facts, eventCov, err := builder.Build(retained, exposures, reactions, indications, outcomes)
	if err != nil {
		return nil, nil, cov, fmt.Errorf("build event facts: %w", err)
	}
	cov.Events = eventCov

	denoms, denomCov := denominator.Build(partd)
	cov.Denominators = denomCov
	cov.Join = joinCoverage(facts, denominator.Index(denoms))

	return facts, denoms, cov, nil
}

func joinCoverage(facts []model.EventFact, index map[string]*model.Denominator) JoinCoverage {
	var jc JoinCoverage
	seen := make(map[string]bool)
	for _, f := range facts {
		if index[f.Ingredient] != nil {
			jc.FactsWithDenominator++
		}
		if seen[f.Ingredient] {
			continue
		}
		seen[f.Ingredient] = true
		jc.FactIngredients++
		if index[f.Ingredient] != nil {
			jc.MatchedIngredients++
		}
	}
	return jc
}

// BuildViews runs the cleaning and join stages and publishes the event
// fact and denominator tables, recording a run manifest. Signals are not
// computed; ComputeSignals (or Run) does that.
func (r *Runner) BuildViews(ctx context.Context) (store.Run, Coverage, error) {
	facts, denoms, cov, err := r.stages(ctx)
	if err != nil {
		return store.Run{}, cov, err
	}
	if err := r.publishViews(ctx, facts, denoms); err != nil {
		return store.Run{}, cov, err
	}
	manifest, err := r.saveManifest(ctx, cov)
	return manifest, cov, err
}

// ComputeSignals computes the disproportionality table from the published
// event facts and replaces the signal table.
func (r *Runner) ComputeSignals(ctx context.Context) ([]model.SignalRecord, error) {
	facts, err := r.store.LoadEventFacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load event facts: %w", err)
	}
	records, err := r.signals(facts)
	if err != nil {
		return nil, err
	}
	if err := r.store.ReplaceSignals(ctx, records); err != nil {
		return nil, fmt.Errorf("publish signals: %w", err)
	}
	return records, nil
}

// Run executes a full pipeline pass: case dedup, drug linking, reaction
// and outcome attachment, event-fact assembly, denominator aggregation and
// signal computation. Derived tables are published only after every stage
// has succeeded, then the run manifest is recorded.
func (r *Runner) Run(ctx context.Context) (store.Run, Coverage, error) {
	facts, denoms, cov, err := r.stages(ctx)
	if err != nil {
		return store.Run{}, cov, err
	}
	records, err := r.signals(facts)
	if err != nil {
		return store.Run{}, cov, err
	}
	cov.Signals = int64(len(records))

	if err := r.store.ReplaceDerived(ctx, facts, denoms, records); err != nil {
		return store.Run{}, cov, fmt.Errorf("publish derived tables: %w", err)
	}
	manifest, err := r.saveManifest(ctx, cov)
	return manifest, cov, err
}

func (r *Runner) signals(facts []model.EventFact) ([]model.SignalRecord, error) {
	endpoints := r.cfg.Endpoints
	if len(endpoints) == 0 {
		endpoints = signal.Endpoints(facts)
	}
	engine := signal.NewEngine(r.cfg)
	records, err := engine.Compute(facts, signal.NewCohortSet(r.cfg), endpoints)
	if err != nil {
		return nil, fmt.Errorf("compute signals: %w", err)
	}
	return records, nil
}

func (r *Runner) publishViews(ctx context.Context, facts []model.EventFact, denoms []model.Denominator) error {
	if err := r.store.ReplaceEventFacts(ctx, facts); err != nil {
		return fmt.Errorf("publish event facts: %w", err)
	}
	if err := r.store.ReplaceDenominators(ctx, denoms); err != nil {
		return fmt.Errorf("publish denominators: %w", err)
	}
	return nil
}

func (r *Runner) saveManifest(ctx context.Context, cov Coverage) (store.Run, error) {
	data, err := json.Marshal(cov)
	if err != nil {
		return store.Run{}, fmt.Errorf("encode coverage: %w", err)
	}
	manifest := store.Run{
		ID:           ulid.MustNew(ulid.Now(), r.entropy).String(),
		CreatedAt:    time.Now().UTC(),
		CoverageJSON: string(data),
	}
	if err := r.store.SaveRun(ctx, manifest); err != nil {
		return store.Run{}, fmt.Errorf("save run manifest: %w", err)
	}
	return manifest, nil
}
