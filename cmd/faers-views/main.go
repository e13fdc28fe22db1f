package main

import (
	"context"
	"flag"
	"log"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/config"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/pipeline"
	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/store/sqlite"
)

func main() {
	var (
		dbPath  = flag.String("db", "", "Path to warehouse database (required)")
		cfgPath = flag.String("config", "", "Optional: analysis YAML, defaults applied if omitted")
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

	ctx := context.Background()

	s, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer s.Close()

	run, cov, err := pipeline.NewRunner(s, cfg).BuildViews(ctx)
	if err != nil {
		log.Fatalf("build views: %v", err)
	}

	log.Printf("run %s", run.ID)
	log.Printf("cases: raw=%d parsed=%d in_population=%d distinct=%d",
		cov.Cases.RawRows, cov.Cases.Parsed, cov.Cases.InPopulation, cov.Cases.DistinctCases)
	log.Printf("drugs: raw=%d qualifying=%d blank_name=%d cases_with_drug=%d/%d",
		cov.Drugs.RawRows, cov.Drugs.Qualifying, cov.Drugs.BlankName,
		cov.Drugs.CasesWithDrug, cov.Drugs.CasesRetained)
	log.Printf("reactions: raw=%d attached=%d blank_terms=%d",
		cov.Reactions.RawRows, cov.Reactions.Attached, cov.Reactions.BlankTerms)
	log.Printf("events: fan_out=%d facts=%d collapsed=%d cases_in_facts=%d/%d",
		cov.Events.FanOutRows, cov.Events.FactRows, cov.Events.Collapsed,
		cov.Events.CasesInFacts, cov.Events.CasesRetained)
	log.Printf("denominators: raw=%d usable=%d ingredients=%d",
		cov.Denominators.RawRows, cov.Denominators.Usable, cov.Denominators.Ingredients)
	log.Printf("denominator join: ingredients=%d/%d facts_with_denominator=%d/%d",
		cov.Join.MatchedIngredients, cov.Join.FactIngredients,
		cov.Join.FactsWithDenominator, cov.Events.FactRows)
}
