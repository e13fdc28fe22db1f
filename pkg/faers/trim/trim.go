// Package trim projects the full signal table into complete, human-readable
// cohort x endpoint decision matrices and renders them as CSV or markdown.
package trim

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
)

// Matrix produces exactly len(cohorts) x len(endpoints) rows from the
// signal table, in (cohort order, endpoint order). Combinations missing
// from the input are filled with explicit zero-case rows marked
// not-computed; they are distinct from observed-zero rows, which the
// engine emitted itself.
func Matrix(records []model.SignalRecord, cohorts, endpoints []string) []model.SignalRecord {
	index := make(map[[2]string]model.SignalRecord, len(records))
	for _, r := range records {
		index[[2]string{r.Cohort, r.Endpoint}] = r
	}

	out := make([]model.SignalRecord, 0, len(cohorts)*len(endpoints))
	for _, cohort := range cohorts {
		for _, ep := range endpoints {
			if r, ok := index[[2]string{cohort, ep}]; ok {
				out = append(out, r)
				continue
			}
			out = append(out, model.SignalRecord{
				Cohort:         cohort,
				Endpoint:       ep,
				Table:          model.ContingencyTable{Cohort: cohort, Endpoint: ep},
				Status:         model.StatusNotComputed,
				Interpretation: model.InterpInsufficient,
			})
		}
	}
	return out
}

// header is the trimmed-table column order.
var header = []string{
	"cohort", "reaction_pt", "a", "b", "c", "d", "N",
	"PRR", "PRR_LCL", "PRR_UCL", "ROR", "ROR_LCL", "ROR_UCL",
	"chi2", "flagged", "status", "decision", "interpretation",
}

// WriteCSV renders a trimmed matrix with numeric values rounded to three
// decimals. Rounding happens only at the output boundary; stored records
// keep full precision.
func WriteCSV(w io.Writer, records []model.SignalRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMarkdown renders the same matrix as a markdown table under the
// given title.
func WriteMarkdown(w io.Writer, title string, records []model.SignalRecord) error {
	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")

	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")

	for _, r := range records {
		b.WriteString("| " + strings.Join(row(r), " | ") + " |\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func row(r model.SignalRecord) []string {
	decision := model.InterpNoSignal
	if r.Flagged {
		decision = model.InterpSignal
	}
	return []string{
		r.Cohort,
		r.Endpoint,
		strconv.FormatInt(r.Table.A, 10),
		strconv.FormatInt(r.Table.B, 10),
		strconv.FormatInt(r.Table.C, 10),
		strconv.FormatInt(r.Table.D, 10),
		strconv.FormatInt(r.N, 10),
		round3(r.PRR),
		round3(r.PRRLower),
		round3(r.PRRUpper),
		round3(r.ROR),
		round3(r.RORLower),
		round3(r.RORUpper),
		round3(r.ChiSquare),
		strconv.FormatBool(r.Flagged),
		r.Status,
		decision,
		r.Interpretation,
	}
}

func round3(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// ReadCSV parses a signal table previously written by WriteCSV. Column
// order is resolved from the header row, so extra trailing columns in a
// hand-edited file are tolerated.
func ReadCSV(r io.Reader) ([]model.SignalRecord, error) {
	cr := csv.NewReader(r)
	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read signal csv header: %w", err)
	}
	index := make(map[string]int, len(head))
	for i, name := range head {
		index[strings.TrimSpace(name)] = i
	}
	for _, want := range []string{"cohort", "reaction_pt", "a", "b", "c", "d"} {
		if _, ok := index[want]; !ok {
			return nil, fmt.Errorf("signal csv missing column %q", want)
		}
	}

	get := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	num := func(row []string, col string) float64 {
		v, _ := strconv.ParseFloat(get(row, col), 64)
		return v
	}
	count := func(row []string, col string) int64 {
		v, _ := strconv.ParseInt(get(row, col), 10, 64)
		return v
	}

	var out []model.SignalRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read signal csv: %w", err)
		}
		rec := model.SignalRecord{
			Cohort:   get(row, "cohort"),
			Endpoint: get(row, "reaction_pt"),
			Table: model.ContingencyTable{
				Cohort:   get(row, "cohort"),
				Endpoint: get(row, "reaction_pt"),
				A:        count(row, "a"),
				B:        count(row, "b"),
				C:        count(row, "c"),
				D:        count(row, "d"),
			},
			N:              count(row, "N"),
			PRR:            num(row, "PRR"),
			PRRLower:       num(row, "PRR_LCL"),
			PRRUpper:       num(row, "PRR_UCL"),
			ROR:            num(row, "ROR"),
			RORLower:       num(row, "ROR_LCL"),
			RORUpper:       num(row, "ROR_UCL"),
			ChiSquare:      num(row, "chi2"),
			Flagged:        get(row, "flagged") == "true",
			Status:         get(row, "status"),
			Interpretation: get(row, "interpretation"),
		}
		if rec.Status == "" {
			rec.Status = model.StatusObserved
		}
		out = append(out, rec)
	}
	return out, nil
}

// Describe builds the one-line narrative used by report consumers.
func Describe(r model.SignalRecord) string {
	if r.Flagged {
		return fmt.Sprintf("%s: Disproportionate reporting for %s (PRR=%.1f, 95%% CI %.1f-%.1f, N=%d)",
			r.Cohort, r.Endpoint, r.PRR, r.PRRLower, r.PRRUpper, r.N)
	}
	return fmt.Sprintf("%s: No disproportionate reporting for %s (PRR=%.1f, N=%d)",
		r.Cohort, r.Endpoint, r.PRR, r.N)
}
