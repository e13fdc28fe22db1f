package main

import (
	"flag"
	"log"
	"os"
	"sort"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/config"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/signal"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/trim"
)

func main() {
	var (
		inPath   = flag.String("input", "", "Signal table CSV from faers-summary (required)")
		outPath  = flag.String("output", "", "Trimmed matrix output path (required)")
		markdown = flag.Bool("markdown", false, "Render markdown instead of CSV")
		title    = flag.String("title", "Signal decision matrix", "Markdown title")
		cfgPath  = flag.String("config", "", "Optional: analysis YAML naming the cohort/endpoint axes")
	)
	flag.Parse()

	if *inPath == "" {
		log.Fatal("--input required")
	}
	if *outPath == "" {
		log.Fatal("--output required")
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	in, err := os.Open(*inPath)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	records, err := trim.ReadCSV(in)
	in.Close()
	if err != nil {
		log.Fatalf("read signal table: %v", err)
	}

	cohorts := signal.NewCohortSet(cfg).Names()
	endpoints := cfg.Endpoints
	if len(endpoints) == 0 {
		endpoints = endpointsOf(records)
	}

	matrix := trim.Matrix(records, cohorts, endpoints)

	out, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	if *markdown {
		err = trim.WriteMarkdown(out, *title, matrix)
	} else {
		err = trim.WriteCSV(out, matrix)
	}
	if err != nil {
		out.Close()
		log.Fatalf("write trimmed matrix: %v", err)
	}
	if err := out.Close(); err != nil {
		log.Fatalf("close output: %v", err)
	}
	log.Printf("wrote %d rows (%d cohorts x %d endpoints) to %s",
		len(matrix), len(cohorts), len(endpoints), *outPath)
}

func endpointsOf(records []model.SignalRecord) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range records {
		if r.Endpoint == "" || seen[r.Endpoint] {
			continue
		}
		seen[r.Endpoint] = true
		out = append(out, r.Endpoint)
	}
	sort.Strings(out)
	return out
}
