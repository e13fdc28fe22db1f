package main

import (
	"context"
	"flag"
	"log"
	"os"
	"sort"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/ingest"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/store/sqlite"
)

type quarter struct {
	demo []model.DemoRecord
	drug []model.DrugRecord
	reac []model.ReacRecord
	outc []model.OutcRecord
	indi []model.IndiRecord
}

func main() {
	var (
		dbPath    = flag.String("db", "", "Path to warehouse database (required)")
		dataDir   = flag.String("data", "", "Directory containing FAERS ASCII quarter files (required)")
		partdPath = flag.String("partd", "", "Optional: Medicare Part D by-provider-and-drug CSV")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *dataDir == "" {
		log.Fatal("--data required")
	}

	ctx := context.Background()

	s, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer s.Close()

	files, err := ingest.DiscoverFAERS(*dataDir)
	if err != nil {
		log.Fatalf("discover faers files: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("no FAERS quarter files under %s", *dataDir)
	}

	quarters := map[string]*quarter{}
	for _, qf := range files {
		q := quarters[qf.Period]
		if q == nil {
			q = &quarter{}
			quarters[qf.Period] = q
		}
		if err := readInto(q, qf); err != nil {
			log.Fatalf("read %s: %v", qf.Path, err)
		}
	}

	periods := make([]string, 0, len(quarters))
	for p := range quarters {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	for _, p := range periods {
		q := quarters[p]
		if err := s.ReplaceQuarter(ctx, p, q.demo, q.drug, q.reac, q.outc, q.indi); err != nil {
			log.Fatalf("load quarter %s: %v", p, err)
		}
		log.Printf("loaded %s: demo=%d drug=%d reac=%d outc=%d indi=%d",
			p, len(q.demo), len(q.drug), len(q.reac), len(q.outc), len(q.indi))
	}

	if *partdPath != "" {
		f, err := os.Open(*partdPath)
		if err != nil {
			log.Fatalf("open part d csv: %v", err)
		}
		rows, err := ingest.ReadPartD(f)
		f.Close()
		if err != nil {
			log.Fatalf("read part d csv: %v", err)
		}
		if err := s.ReplacePartD(ctx, rows); err != nil {
			log.Fatalf("load part d: %v", err)
		}
		log.Printf("loaded part d: %d rows", len(rows))
	}
}

func readInto(q *quarter, qf ingest.QuarterFile) error {
	f, err := os.Open(qf.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch qf.Table {
	case ingest.TableDemo:
		rows, err := ingest.ReadDemo(f, qf.Period)
		q.demo = append(q.demo, rows...)
		return err
	case ingest.TableDrug:
		rows, err := ingest.ReadDrug(f, qf.Period)
		q.drug = append(q.drug, rows...)
		return err
	case ingest.TableReac:
		rows, err := ingest.ReadReac(f, qf.Period)
		q.reac = append(q.reac, rows...)
		return err
	case ingest.TableOutc:
		rows, err := ingest.ReadOutc(f, qf.Period)
		q.outc = append(q.outc, rows...)
		return err
	case ingest.TableIndi:
		rows, err := ingest.ReadIndi(f, qf.Period)
		q.indi = append(q.indi, rows...)
		return err
	}
	return nil
}
