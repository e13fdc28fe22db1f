// Package sqlite implements the warehouse store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/store"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) a warehouse database with WAL mode
// enabled and the schema initialized.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS demo_raw (
	primaryid TEXT NOT NULL,
	caseid TEXT NOT NULL,
	caseversion INTEGER,
	event_dt TEXT,
	fda_dt TEXT,
	rept_dt TEXT,
	age TEXT,
	age_cod TEXT,
	sex TEXT,
	country TEXT,
	period TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_demo_period ON demo_raw(period);

CREATE TABLE IF NOT EXISTS drug_raw (
	primaryid TEXT NOT NULL,
	caseid TEXT NOT NULL,
	drug_seq INTEGER,
	role_cod TEXT,
	drugname TEXT,
	prod_ai TEXT,
	route TEXT,
	period TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_drug_period ON drug_raw(period);

CREATE TABLE IF NOT EXISTS reac_raw (
	primaryid TEXT NOT NULL,
	caseid TEXT NOT NULL,
	pt TEXT,
	period TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reac_period ON reac_raw(period);

CREATE TABLE IF NOT EXISTS outc_raw (
	primaryid TEXT NOT NULL,
	caseid TEXT NOT NULL,
	outc_cod TEXT,
	period TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outc_period ON outc_raw(period);

CREATE TABLE IF NOT EXISTS indi_raw (
	primaryid TEXT NOT NULL,
	caseid TEXT NOT NULL,
	indi_drug_seq INTEGER,
	indi_pt TEXT,
	period TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_indi_period ON indi_raw(period);

CREATE TABLE IF NOT EXISTS partd_raw (
	prscrbr_npi TEXT,
	brnd_name TEXT,
	gnrc_name TEXT,
	tot_clms REAL,
	tot_30day_fills REAL,
	tot_day_suply REAL,
	tot_benes REAL,
	ge65_tot_clms REAL,
	ge65_tot_30day_fills REAL,
	ge65_tot_day_suply REAL,
	ge65_tot_benes REAL
);

CREATE TABLE IF NOT EXISTS event_facts (
	period TEXT NOT NULL,
	caseid TEXT NOT NULL,
	primaryid TEXT NOT NULL,
	ingredient TEXT NOT NULL,
	route TEXT,
	is_oral INTEGER NOT NULL DEFAULT 0,
	is_topical INTEGER NOT NULL DEFAULT 0,
	is_unknown INTEGER NOT NULL DEFAULT 0,
	role_cod TEXT,
	reaction_pt TEXT NOT NULL,
	indi_pt TEXT,
	sex TEXT,
	age_yrs REAL,
	death INTEGER NOT NULL DEFAULT 0,
	life_threatening INTEGER NOT NULL DEFAULT 0,
	hospitalization INTEGER NOT NULL DEFAULT 0,
	disability INTEGER NOT NULL DEFAULT 0,
	congenital_anomaly INTEGER NOT NULL DEFAULT 0,
	required_intervention INTEGER NOT NULL DEFAULT 0,
	other_outcome INTEGER NOT NULL DEFAULT 0,
	serious_any INTEGER NOT NULL DEFAULT 0,
	UNIQUE(caseid, ingredient, reaction_pt, route)
);
CREATE INDEX IF NOT EXISTS idx_facts_ingredient ON event_facts(ingredient);
CREATE INDEX IF NOT EXISTS idx_facts_reaction ON event_facts(reaction_pt);

CREATE TABLE IF NOT EXISTS denominators (
	ingredient TEXT PRIMARY KEY,
	tot_clms REAL NOT NULL,
	tot_fills REAL NOT NULL,
	tot_day_suply REAL NOT NULL,
	tot_benes REAL NOT NULL,
	ge65_tot_clms REAL NOT NULL,
	ge65_tot_fills REAL NOT NULL,
	ge65_tot_day_suply REAL NOT NULL,
	ge65_tot_benes REAL NOT NULL,
	records INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS signals (
	cohort TEXT NOT NULL,
	reaction_pt TEXT NOT NULL,
	a INTEGER NOT NULL,
	b INTEGER NOT NULL,
	c INTEGER NOT NULL,
	d INTEGER NOT NULL,
	n INTEGER NOT NULL,
	prr REAL NOT NULL,
	prr_lcl REAL NOT NULL,
	prr_ucl REAL NOT NULL,
	ror REAL NOT NULL,
	ror_lcl REAL NOT NULL,
	ror_ucl REAL NOT NULL,
	chi2 REAL NOT NULL,
	flagged INTEGER NOT NULL,
	status TEXT NOT NULL,
	interpretation TEXT NOT NULL,
	PRIMARY KEY(cohort, reaction_pt)
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	coverage_json TEXT
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// ReplaceQuarter loads one reporting period, replacing any earlier load
// of the same period in a single transaction.
func (s *sqliteStore) ReplaceQuarter(ctx context.Context, period string,
	demo []model.DemoRecord, drug []model.DrugRecord,
	reac []model.ReacRecord, outc []model.OutcRecord,
	indi []model.IndiRecord) error {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"demo_raw", "drug_raw", "reac_raw", "outc_raw", "indi_raw"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE period=?`, period); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertDemo(ctx, tx, demo); err != nil {
		return err
	}
	if err := insertDrug(ctx, tx, drug); err != nil {
		return err
	}
	if err := insertReac(ctx, tx, reac); err != nil {
		return err
	}
	if err := insertOutc(ctx, tx, outc); err != nil {
		return err
	}
	if err := insertIndi(ctx, tx, indi); err != nil {
		return err
	}
	return tx.Commit()
}

func insertDemo(ctx context.Context, tx *sql.Tx, rows []model.DemoRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO demo_raw (primaryid, caseid, caseversion, event_dt, fda_dt, rept_dt, age, age_cod, sex, country, period)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.PrimaryID, r.CaseID, r.CaseVersion,
			r.EventDate, r.FDADate, r.ReportDate, r.Age, r.AgeUnit, r.Sex, r.Country, r.Period); err != nil {
			return fmt.Errorf("insert demo row: %w", err)
		}
	}
	return nil
}

func insertDrug(ctx context.Context, tx *sql.Tx, rows []model.DrugRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO drug_raw (primaryid, caseid, drug_seq, role_cod, drugname, prod_ai, route, period)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.PrimaryID, r.CaseID, r.DrugSeq,
			r.RoleCode, r.DrugName, r.ActiveIngredient, r.Route, r.Period); err != nil {
			return fmt.Errorf("insert drug row: %w", err)
		}
	}
	return nil
}

func insertReac(ctx context.Context, tx *sql.Tx, rows []model.ReacRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO reac_raw (primaryid, caseid, pt, period) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.PrimaryID, r.CaseID, r.Term, r.Period); err != nil {
			return fmt.Errorf("insert reac row: %w", err)
		}
	}
	return nil
}

func insertOutc(ctx context.Context, tx *sql.Tx, rows []model.OutcRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO outc_raw (primaryid, caseid, outc_cod, period) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.PrimaryID, r.CaseID, r.Code, r.Period); err != nil {
			return fmt.Errorf("insert outc row: %w", err)
		}
	}
	return nil
}

func insertIndi(ctx context.Context, tx *sql.Tx, rows []model.IndiRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO indi_raw (primaryid, caseid, indi_drug_seq, indi_pt, period) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.PrimaryID, r.CaseID, r.DrugSeq, r.Term, r.Period); err != nil {
			return fmt.Errorf("insert indi row: %w", err)
		}
	}
	return nil
}

// ReplacePartD replaces the denominator source table.
func (s *sqliteStore) ReplacePartD(ctx context.Context, rows []model.PartDRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM partd_raw`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO partd_raw (prscrbr_npi, brnd_name, gnrc_name, tot_clms, tot_30day_fills,
	tot_day_suply, tot_benes, ge65_tot_clms, ge65_tot_30day_fills, ge65_tot_day_suply, ge65_tot_benes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.PrescriberNPI, r.BrandName, r.GenericName,
			nf(r.TotalClaims), nf(r.TotalFills), nf(r.TotalDaySupply), nf(r.TotalBeneficiaries),
			nf(r.GE65Claims), nf(r.GE65Fills), nf(r.GE65DaySupply), nf(r.GE65Beneficiaries)); err != nil {
			return fmt.Errorf("insert part d row: %w", err)
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) LoadDemo(ctx context.Context) ([]model.DemoRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT primaryid, caseid, caseversion, event_dt, fda_dt, rept_dt, age, age_cod, sex, country, period
FROM demo_raw ORDER BY period, primaryid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DemoRecord
	for rows.Next() {
		var r model.DemoRecord
		if err := rows.Scan(&r.PrimaryID, &r.CaseID, &r.CaseVersion, &r.EventDate,
			&r.FDADate, &r.ReportDate, &r.Age, &r.AgeUnit, &r.Sex, &r.Country, &r.Period); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) LoadDrug(ctx context.Context) ([]model.DrugRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT primaryid, caseid, drug_seq, role_cod, drugname, prod_ai, route, period
FROM drug_raw ORDER BY period, primaryid, drug_seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DrugRecord
	for rows.Next() {
		var r model.DrugRecord
		if err := rows.Scan(&r.PrimaryID, &r.CaseID, &r.DrugSeq, &r.RoleCode,
			&r.DrugName, &r.ActiveIngredient, &r.Route, &r.Period); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) LoadReac(ctx context.Context) ([]model.ReacRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT primaryid, caseid, pt, period FROM reac_raw ORDER BY period, primaryid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ReacRecord
	for rows.Next() {
		var r model.ReacRecord
		if err := rows.Scan(&r.PrimaryID, &r.CaseID, &r.Term, &r.Period); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) LoadOutc(ctx context.Context) ([]model.OutcRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT primaryid, caseid, outc_cod, period FROM outc_raw ORDER BY period, primaryid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OutcRecord
	for rows.Next() {
		var r model.OutcRecord
		if err := rows.Scan(&r.PrimaryID, &r.CaseID, &r.Code, &r.Period); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) LoadIndi(ctx context.Context) ([]model.IndiRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT primaryid, caseid, indi_drug_seq, indi_pt, period FROM indi_raw ORDER BY period, primaryid, indi_drug_seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.IndiRecord
	for rows.Next() {
		var r model.IndiRecord
		if err := rows.Scan(&r.PrimaryID, &r.CaseID, &r.DrugSeq, &r.Term, &r.Period); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) LoadPartD(ctx context.Context) ([]model.PartDRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT prscrbr_npi, brnd_name, gnrc_name, tot_clms, tot_30day_fills, tot_day_suply,
	tot_benes, ge65_tot_clms, ge65_tot_30day_fills, ge65_tot_day_suply, ge65_tot_benes
FROM partd_raw`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PartDRecord
	for rows.Next() {
		var r model.PartDRecord
		if err := rows.Scan(&r.PrescriberNPI, &r.BrandName, &r.GenericName,
			&r.TotalClaims, &r.TotalFills, &r.TotalDaySupply, &r.TotalBeneficiaries,
			&r.GE65Claims, &r.GE65Fills, &r.GE65DaySupply, &r.GE65Beneficiaries); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// replace runs fn inside one transaction, committing only on success.
func (s *sqliteStore) replace(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceDerived publishes event facts, denominators and signals as one
// atomic replacement.
func (s *sqliteStore) ReplaceDerived(ctx context.Context, facts []model.EventFact,
	ds []model.Denominator, recs []model.SignalRecord) error {
	return s.replace(ctx, func(tx *sql.Tx) error {
		if err := replaceFacts(ctx, tx, facts); err != nil {
			return err
		}
		if err := replaceDenominators(ctx, tx, ds); err != nil {
			return err
		}
		return replaceSignals(ctx, tx, recs)
	})
}

// ReplaceEventFacts publishes the fact table in one transaction.
func (s *sqliteStore) ReplaceEventFacts(ctx context.Context, facts []model.EventFact) error {
	return s.replace(ctx, func(tx *sql.Tx) error {
		return replaceFacts(ctx, tx, facts)
	})
}

func replaceFacts(ctx context.Context, tx *sql.Tx, facts []model.EventFact) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM event_facts`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO event_facts (period, caseid, primaryid, ingredient, route, is_oral, is_topical, is_unknown,
	role_cod, reaction_pt, indi_pt, sex, age_yrs, death, life_threatening, hospitalization,
	disability, congenital_anomaly, required_intervention, other_outcome, serious_any)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range facts {
		o := f.Outcome
		if _, err := stmt.ExecContext(ctx, f.Period, f.CaseID, f.PrimaryID, f.Ingredient, f.Route,
			b(f.Flags.Oral), b(f.Flags.Topical), b(f.Flags.Unknown),
			f.Role, f.Reaction, f.Indication, f.Sex, f.AgeYears,
			b(o.Death), b(o.LifeThreatening), b(o.Hospitalization), b(o.Disability),
			b(o.CongenitalAnomaly), b(o.RequiredIntervention), b(o.Other), b(o.SeriousAny)); err != nil {
			return fmt.Errorf("insert event fact: %w", err)
		}
	}
	return nil
}

func (s *sqliteStore) LoadEventFacts(ctx context.Context) ([]model.EventFact, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT period, caseid, primaryid, ingredient, route, is_oral, is_topical, is_unknown,
	role_cod, reaction_pt, indi_pt, sex, age_yrs, death, life_threatening, hospitalization,
	disability, congenital_anomaly, required_intervention, other_outcome, serious_any
FROM event_facts ORDER BY caseid, ingredient, reaction_pt, route`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EventFact
	for rows.Next() {
		var f model.EventFact
		var oral, topical, unknown int
		var death, lt, ho, ds, ca, ri, other, serious int
		if err := rows.Scan(&f.Period, &f.CaseID, &f.PrimaryID, &f.Ingredient, &f.Route,
			&oral, &topical, &unknown, &f.Role, &f.Reaction, &f.Indication, &f.Sex, &f.AgeYears,
			&death, &lt, &ho, &ds, &ca, &ri, &other, &serious); err != nil {
			return nil, err
		}
		f.Flags = model.RouteFlags{Oral: oral != 0, Topical: topical != 0, Unknown: unknown != 0}
		f.Outcome = model.Outcome{
			PrimaryID:            f.PrimaryID,
			Death:                death != 0,
			LifeThreatening:      lt != 0,
			Hospitalization:      ho != 0,
			Disability:           ds != 0,
			CongenitalAnomaly:    ca != 0,
			RequiredIntervention: ri != 0,
			Other:                other != 0,
			SeriousAny:           serious != 0,
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ReplaceDenominators publishes the denominator table in one transaction.
func (s *sqliteStore) ReplaceDenominators(ctx context.Context, ds []model.Denominator) error {
	return s.replace(ctx, func(tx *sql.Tx) error {
		return replaceDenominators(ctx, tx, ds)
	})
}

func replaceDenominators(ctx context.Context, tx *sql.Tx, ds []model.Denominator) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM denominators`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO denominators (ingredient, tot_clms, tot_fills, tot_day_suply, tot_benes,
	ge65_tot_clms, ge65_tot_fills, ge65_tot_day_suply, ge65_tot_benes, records)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, d := range ds {
		if _, err := stmt.ExecContext(ctx, d.Ingredient, d.TotalClaims, d.TotalFills,
			d.TotalDaySupply, d.TotalBeneficiaries, d.GE65Claims, d.GE65Fills,
			d.GE65DaySupply, d.GE65Beneficiaries, d.Records); err != nil {
			return fmt.Errorf("insert denominator: %w", err)
		}
	}
	return nil
}

func (s *sqliteStore) LoadDenominators(ctx context.Context) ([]model.Denominator, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT ingredient, tot_clms, tot_fills, tot_day_suply, tot_benes,
	ge65_tot_clms, ge65_tot_fills, ge65_tot_day_suply, ge65_tot_benes, records
FROM denominators ORDER BY ingredient`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Denominator
	for rows.Next() {
		var d model.Denominator
		if err := rows.Scan(&d.Ingredient, &d.TotalClaims, &d.TotalFills, &d.TotalDaySupply,
			&d.TotalBeneficiaries, &d.GE65Claims, &d.GE65Fills, &d.GE65DaySupply,
			&d.GE65Beneficiaries, &d.Records); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ReplaceSignals publishes the signal table in one transaction.
func (s *sqliteStore) ReplaceSignals(ctx context.Context, recs []model.SignalRecord) error {
	return s.replace(ctx, func(tx *sql.Tx) error {
		return replaceSignals(ctx, tx, recs)
	})
}

func replaceSignals(ctx context.Context, tx *sql.Tx, recs []model.SignalRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM signals`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO signals (cohort, reaction_pt, a, b, c, d, n, prr, prr_lcl, prr_ucl,
	ror, ror_lcl, ror_ucl, chi2, flagged, status, interpretation)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.Cohort, r.Endpoint,
			r.Table.A, r.Table.B, r.Table.C, r.Table.D, r.N,
			r.PRR, r.PRRLower, r.PRRUpper, r.ROR, r.RORLower, r.RORUpper,
			r.ChiSquare, b(r.Flagged), r.Status, r.Interpretation); err != nil {
			return fmt.Errorf("insert signal: %w", err)
		}
	}
	return nil
}

func (s *sqliteStore) LoadSignals(ctx context.Context) ([]model.SignalRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT cohort, reaction_pt, a, b, c, d, n, prr, prr_lcl, prr_ucl,
	ror, ror_lcl, ror_ucl, chi2, flagged, status, interpretation
FROM signals ORDER BY cohort, reaction_pt`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SignalRecord
	for rows.Next() {
		var r model.SignalRecord
		var flagged int
		if err := rows.Scan(&r.Cohort, &r.Endpoint,
			&r.Table.A, &r.Table.B, &r.Table.C, &r.Table.D, &r.N,
			&r.PRR, &r.PRRLower, &r.PRRUpper, &r.ROR, &r.RORLower, &r.RORUpper,
			&r.ChiSquare, &flagged, &r.Status, &r.Interpretation); err != nil {
			return nil, err
		}
		r.Table.Cohort = r.Cohort
		r.Table.Endpoint = r.Endpoint
		r.Flagged = flagged != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) ListIngredients(ctx context.Context) ([]string, error) {
	return s.listColumn(ctx, `SELECT DISTINCT ingredient FROM event_facts WHERE ingredient <> '' ORDER BY ingredient`)
}

func (s *sqliteStore) ListReactionTerms(ctx context.Context) ([]string, error) {
	return s.listColumn(ctx, `SELECT DISTINCT reaction_pt FROM event_facts WHERE reaction_pt <> '' ORDER BY reaction_pt`)
}

func (s *sqliteStore) listColumn(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SaveRun records a pipeline run manifest.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, created_at, coverage_json) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET created_at=excluded.created_at, coverage_json=excluded.coverage_json`,
		r.ID, r.CreatedAt.UTC().Format(time.RFC3339), r.CoverageJSON)
	return err
}

// LastRun returns the most recent run manifest, if any.
func (s *sqliteStore) LastRun(ctx context.Context) (store.Run, bool, error) {
	var r store.Run
	var created string
	err := s.db.QueryRowContext(ctx, `
SELECT id, created_at, coverage_json FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`).
		Scan(&r.ID, &created, &r.CoverageJSON)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return store.Run{}, false, fmt.Errorf("parse run timestamp: %w", err)
	}
	r.CreatedAt = t
	return r, true, nil
}

func b(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nf(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
