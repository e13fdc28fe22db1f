package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/config"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/pipeline"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/store/sqlite"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/trim"
)

func main() {
	var (
		dbPath  = flag.String("db", "", "Path to warehouse database (required)")
		cfgPath = flag.String("config", "", "Optional: analysis YAML, defaults applied if omitted")
		outPath = flag.String("out", "", "Optional: write the signal table as CSV")
		prrMin  = flag.Float64("prr-min", 0, "Override: PRR flagging threshold")
		chi2Min = flag.Float64("chi2-min", 0, "Override: chi-square flagging threshold")
		nMin    = flag.Int64("n-min", 0, "Override: minimum exposed-with-event case count")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *prrMin > 0 {
		cfg.Thresholds.PRRMin = *prrMin
	}
	if *chi2Min > 0 {
		cfg.Thresholds.Chi2Min = *chi2Min
	}
	if *nMin > 0 {
		cfg.Thresholds.NMin = *nMin
	}

	ctx := context.Background()

	s, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer s.Close()

	records, err := pipeline.NewRunner(s, cfg).ComputeSignals(ctx)
	if err != nil {
		log.Fatalf("compute signals: %v", err)
	}

	var flagged int
	for _, r := range records {
		if r.Flagged {
			flagged++
			log.Printf("flagged: %s", trim.Describe(r))
		}
	}
	log.Printf("signals: %d rows, %d flagged", len(records), flagged)

	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("create output: %v", err)
		}
		if err := trim.WriteCSV(f, records); err != nil {
			f.Close()
			log.Fatalf("write csv: %v", err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("close output: %v", err)
		}
		log.Printf("wrote %s", *outPath)
	}
}
