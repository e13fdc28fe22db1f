// Package memstore provides an in-memory Store used by tests and by
// one-shot runs that do not need a database on disk.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/store"
)

type memStore struct {
	mu sync.RWMutex

	demo map[string][]model.DemoRecord
	drug map[string][]model.DrugRecord
	reac map[string][]model.ReacRecord
	outc map[string][]model.OutcRecord
	indi map[string][]model.IndiRecord

	partd        []model.PartDRecord
	facts        []model.EventFact
	denominators []model.Denominator
	signals      []model.SignalRecord
	runs         []store.Run
}

// New returns an empty in-memory store.
func New() store.Store {
	return &memStore{
		demo: make(map[string][]model.DemoRecord),
		drug: make(map[string][]model.DrugRecord),
		reac: make(map[string][]model.ReacRecord),
		outc: make(map[string][]model.OutcRecord),
		indi: make(map[string][]model.IndiRecord),
	}
}

func (m *memStore) Close() error { return nil }

func (m *memStore) ReplaceQuarter(ctx context.Context, period string,
	demo []model.DemoRecord, drug []model.DrugRecord,
	reac []model.ReacRecord, outc []model.OutcRecord,
	indi []model.IndiRecord) error {

	m.mu.Lock()
	defer m.mu.Unlock()
	m.demo[period] = append([]model.DemoRecord(nil), demo...)
	m.drug[period] = append([]model.DrugRecord(nil), drug...)
	m.reac[period] = append([]model.ReacRecord(nil), reac...)
	m.outc[period] = append([]model.OutcRecord(nil), outc...)
	m.indi[period] = append([]model.IndiRecord(nil), indi...)
	return nil
}

func (m *memStore) ReplacePartD(ctx context.Context, rows []model.PartDRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partd = append([]model.PartDRecord(nil), rows...)
	return nil
}

func (m *memStore) periods() []string {
	seen := map[string]bool{}
	for p := range m.demo {
		seen[p] = true
	}
	for p := range m.drug {
		seen[p] = true
	}
	for p := range m.reac {
		seen[p] = true
	}
	for p := range m.outc {
		seen[p] = true
	}
	for p := range m.indi {
		seen[p] = true
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (m *memStore) LoadDemo(ctx context.Context) ([]model.DemoRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.DemoRecord
	for _, p := range m.periods() {
		out = append(out, m.demo[p]...)
	}
	return out, nil
}

func (m *memStore) LoadDrug(ctx context.Context) ([]model.DrugRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.DrugRecord
	for _, p := range m.periods() {
		out = append(out, m.drug[p]...)
	}
	return out, nil
}

func (m *memStore) LoadReac(ctx context.Context) ([]model.ReacRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.ReacRecord
	for _, p := range m.periods() {
		out = append(out, m.reac[p]...)
	}
	return out, nil
}

func (m *memStore) LoadOutc(ctx context.Context) ([]model.OutcRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.OutcRecord
	for _, p := range m.periods() {
		out = append(out, m.outc[p]...)
	}
	return out, nil
}

func (m *memStore) LoadIndi(ctx context.Context) ([]model.IndiRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.IndiRecord
	for _, p := range m.periods() {
		out = append(out, m.indi[p]...)
	}
	return out, nil
}

func (m *memStore) LoadPartD(ctx context.Context) ([]model.PartDRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.PartDRecord(nil), m.partd...), nil
}

func (m *memStore) ReplaceDerived(ctx context.Context, facts []model.EventFact,
	ds []model.Denominator, recs []model.SignalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facts = append([]model.EventFact(nil), facts...)
	m.denominators = append([]model.Denominator(nil), ds...)
	m.signals = append([]model.SignalRecord(nil), recs...)
	return nil
}

func (m *memStore) ReplaceEventFacts(ctx context.Context, facts []model.EventFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facts = append([]model.EventFact(nil), facts...)
	return nil
}

func (m *memStore) LoadEventFacts(ctx context.Context) ([]model.EventFact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.EventFact(nil), m.facts...), nil
}

func (m *memStore) ReplaceDenominators(ctx context.Context, ds []model.Denominator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denominators = append([]model.Denominator(nil), ds...)
	return nil
}

func (m *memStore) LoadDenominators(ctx context.Context) ([]model.Denominator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Denominator(nil), m.denominators...), nil
}

func (m *memStore) ReplaceSignals(ctx context.Context, recs []model.SignalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals = append([]model.SignalRecord(nil), recs...)
	return nil
}

func (m *memStore) LoadSignals(ctx context.Context) ([]model.SignalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.SignalRecord(nil), m.signals...), nil
}

func (m *memStore) ListIngredients(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return distinct(m.facts, func(f model.EventFact) string { return f.Ingredient }), nil
}

func (m *memStore) ListReactionTerms(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return distinct(m.facts, func(f model.EventFact) string { return f.Reaction }), nil
}

func distinct(facts []model.EventFact, key func(model.EventFact) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range facts {
		k := key(f)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *memStore) SaveRun(ctx context.Context, r store.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.runs {
		if m.runs[i].ID == r.ID {
			m.runs[i] = r
			return nil
		}
	}
	m.runs = append(m.runs, r)
	return nil
}

func (m *memStore) LastRun(ctx context.Context) (store.Run, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.runs) == 0 {
		return store.Run{}, false, nil
	}
	best := m.runs[0]
	for _, r := range m.runs[1:] {
		if r.CreatedAt.After(best.CreatedAt) || (r.CreatedAt.Equal(best.CreatedAt) && r.ID > best.ID) {
			best = r
		}
	}
	return best, true, nil
}
