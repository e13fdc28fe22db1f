// Package ingest reads the raw input files: FAERS quarterly ASCII
// extracts ($-delimited) and the Medicare Part D utilization CSV.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/internalerr"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
)

// FAERS quarterly table names.
const (
	TableDemo = "DEMO"
	TableDrug = "DRUG"
	TableReac = "REAC"
	TableOutc = "OUTC"
	TableIndi = "INDI"
)

// QuarterFile is one discovered FAERS ASCII extract.
type QuarterFile struct {
	Table  string
	Period string // e.g. "2023Q1"
	Path   string
}

var faersName = regexp.MustCompile(`(?i)^(DEMO|DRUG|REAC|OUTC|INDI)(\d{2})(Q[1-4])\.txt$`)

// ParseQuarterName decodes a FAERS extract filename like DEMO23Q1.txt.
func ParseQuarterName(name string) (table, period string, ok bool) {
	m := faersName.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	yy, _ := strconv.Atoi(m[2])
	return strings.ToUpper(m[1]), fmt.Sprintf("%d%s", 2000+yy, strings.ToUpper(m[3])), true
}

// DiscoverFAERS walks a data directory for FAERS ASCII extracts, in
// deterministic (path-sorted) order.
func DiscoverFAERS(root string) ([]QuarterFile, error) {
	var out []QuarterFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if table, period, ok := ParseQuarterName(d.Name()); ok {
			out = append(out, QuarterFile{Table: table, Period: period, Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover faers files: %w", err)
	}
	return out, nil
}

// table reads a $-delimited FAERS file into header-indexed rows.
type table struct {
	index map[string]int
	rows  [][]string
}

func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '$'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", internalerr.ErrInvalidInput)
	}
	t := &table{index: make(map[string]int, len(header))}
	for i, name := range header {
		t.index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func (t *table) get(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) getInt(row []string, column string) int64 {
	v, err := strconv.ParseInt(t.get(row, column), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ReadDemo parses a DEMO quarterly extract.
func ReadDemo(r io.Reader, period string) ([]model.DemoRecord, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	out := make([]model.DemoRecord, 0, len(t.rows))
	for _, row := range t.rows {
		country := t.get(row, "occr_country")
		if country == "" {
			country = t.get(row, "reporter_country")
		}
		out = append(out, model.DemoRecord{
			PrimaryID:   t.get(row, "primaryid"),
			CaseID:      t.get(row, "caseid"),
			CaseVersion: t.getInt(row, "caseversion"),
			EventDate:   t.get(row, "event_dt"),
			FDADate:     t.get(row, "fda_dt"),
			ReportDate:  t.get(row, "rept_dt"),
			Age:         t.get(row, "age"),
			AgeUnit:     t.get(row, "age_cod"),
			Sex:         t.get(row, "sex"),
			Country:     country,
			Period:      period,
		})
	}
	return out, nil
}

// ReadDrug parses a DRUG quarterly extract.
func ReadDrug(r io.Reader, period string) ([]model.DrugRecord, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	out := make([]model.DrugRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, model.DrugRecord{
			PrimaryID:        t.get(row, "primaryid"),
			CaseID:           t.get(row, "caseid"),
			DrugSeq:          t.getInt(row, "drug_seq"),
			RoleCode:         t.get(row, "role_cod"),
			DrugName:         t.get(row, "drugname"),
			ActiveIngredient: t.get(row, "prod_ai"),
			Route:            t.get(row, "route"),
			Period:           period,
		})
	}
	return out, nil
}

// ReadReac parses a REAC quarterly extract.
func ReadReac(r io.Reader, period string) ([]model.ReacRecord, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	out := make([]model.ReacRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, model.ReacRecord{
			PrimaryID: t.get(row, "primaryid"),
			CaseID:    t.get(row, "caseid"),
			Term:      t.get(row, "pt"),
			Period:    period,
		})
	}
	return out, nil
}

// ReadOutc parses an OUTC quarterly extract.
func ReadOutc(r io.Reader, period string) ([]model.OutcRecord, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	out := make([]model.OutcRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, model.OutcRecord{
			PrimaryID: t.get(row, "primaryid"),
			CaseID:    t.get(row, "caseid"),
			Code:      t.get(row, "outc_cod"),
			Period:    period,
		})
	}
	return out, nil
}

// ReadIndi parses an INDI quarterly extract.
func ReadIndi(r io.Reader, period string) ([]model.IndiRecord, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	out := make([]model.IndiRecord, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, model.IndiRecord{
			PrimaryID: t.get(row, "primaryid"),
			CaseID:    t.get(row, "caseid"),
			DrugSeq:   t.getInt(row, "indi_drug_seq"),
			Term:      t.get(row, "indi_pt"),
			Period:    period,
		})
	}
	return out, nil
}
