package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/internalerr"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
)

// ReadPartD parses the Medicare Part D by-provider-and-drug utilization
// CSV. CMS suppresses small counts; a blank or starred numeric field is
// returned as nil so downstream code cannot mistake suppression for zero.
func ReadPartD(r io.Reader) ([]model.PartDRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", internalerr.ErrInvalidInput)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	get := func(row []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []model.PartDRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read part d row: %w", err)
		}
		out = append(out, model.PartDRecord{
			PrescriberNPI:      get(row, "prscrbr_npi"),
			BrandName:          get(row, "brnd_name"),
			GenericName:        get(row, "gnrc_name"),
			TotalClaims:        numeric(get(row, "tot_clms")),
			TotalFills:         numeric(get(row, "tot_30day_fills")),
			TotalDaySupply:     numeric(get(row, "tot_day_suply")),
			TotalBeneficiaries: numeric(get(row, "tot_benes")),
			GE65Claims:         numeric(get(row, "ge65_tot_clms")),
			GE65Fills:          numeric(get(row, "ge65_tot_30day_fills")),
			GE65DaySupply:      numeric(get(row, "ge65_tot_day_suply")),
			GE65Beneficiaries:  numeric(get(row, "ge65_tot_benes")),
		})
	}
	return out, nil
}

// numeric parses a possibly suppressed CMS count. CMS publishes counts
// with thousands separators in some vintages; those are stripped first.
func numeric(s string) *float64 {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "*" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
