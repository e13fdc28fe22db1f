// Package config loads the YAML analysis configuration: the population
// filter, the role filter, correction policy, flagging thresholds, and the
// cohort/endpoint axes of the signal matrix.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/internalerr"
)

// Correction policies for zero-count contingency cells.
const (
	CorrectionConditional = "conditional" // +0.5 on every cell iff any cell is zero
	CorrectionAlways      = "always"
	CorrectionNever       = "never"
)

// Thresholds holds the flagging rule parameters.
type Thresholds struct {
	PRRMin  float64 `yaml:"prr_min"`
	Chi2Min float64 `yaml:"chi2_min"`
	NMin    int64   `yaml:"n_min"`
}

// Cohort defines one exposed-case set. Ingredient is an exact match on the
// normalized ingredient; IngredientContains a substring match. The route
// fields constrain on the normalized route flags.
type Cohort struct {
	Name               string   `yaml:"name"`
	Ingredient         string   `yaml:"ingredient"`
	IngredientContains string   `yaml:"ingredient_contains"`
	Routes             []string `yaml:"routes"`         // any-of: oral, topical, unknown
	ExcludeRoutes      []string `yaml:"exclude_routes"` // none-of
}

// Analysis is the full analysis configuration.
type Analysis struct {
	Country          string     `yaml:"country"`
	YearStart        int        `yaml:"year_start"`
	YearEnd          int        `yaml:"year_end"`
	Roles            []string   `yaml:"roles"`
	RouteGranularity bool       `yaml:"route_granularity"`
	Correction       string     `yaml:"correction"`
	Thresholds       Thresholds `yaml:"thresholds"`
	Cohorts          []Cohort   `yaml:"cohorts"`
	OtherCohort      bool       `yaml:"other_cohort"`
	Endpoints        []string   `yaml:"endpoints"`
}

// Default returns the analysis configuration with the standard flagging
// thresholds and the primary-suspect-only role filter.
func Default() Analysis {
	return Analysis{
		Country:    "US",
		YearStart:  2023,
		YearEnd:    2023,
		Roles:      []string{"PS"},
		Correction: CorrectionConditional,
		Thresholds: Thresholds{
			PRRMin:  2.0,
			Chi2Min: 4.0,
			NMin:    3,
		},
		OtherCohort: true,
	}
}

// Load reads an analysis configuration from a YAML file, applying
// defaults for omitted fields.
func Load(path string) (Analysis, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Analysis{}, fmt.Errorf("read analysis config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Analysis{}, fmt.Errorf("parse analysis config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Analysis{}, err
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (a Analysis) Validate() error {
	if a.Country == "" {
		return fmt.Errorf("%w: country is required", internalerr.ErrInvalidConfig)
	}
	if a.YearStart > a.YearEnd {
		return fmt.Errorf("%w: year_start %d after year_end %d",
			internalerr.ErrInvalidConfig, a.YearStart, a.YearEnd)
	}
	if len(a.Roles) == 0 {
		return fmt.Errorf("%w: at least one role code is required", internalerr.ErrInvalidConfig)
	}
	for _, r := range a.Roles {
		switch r {
		case "PS", "SS", "C", "I":
		default:
			return fmt.Errorf("%w: unknown role code %q", internalerr.ErrInvalidConfig, r)
		}
	}
	switch a.Correction {
	case CorrectionConditional, CorrectionAlways, CorrectionNever:
	default:
		return fmt.Errorf("%w: unknown correction policy %q", internalerr.ErrInvalidConfig, a.Correction)
	}
	if a.Thresholds.NMin < 0 {
		return fmt.Errorf("%w: n_min must not be negative", internalerr.ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(a.Cohorts))
	for _, c := range a.Cohorts {
		if c.Name == "" {
			return fmt.Errorf("%w: cohort without a name", internalerr.ErrInvalidConfig)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate cohort %q", internalerr.ErrInvalidConfig, c.Name)
		}
		seen[c.Name] = true
		if c.Ingredient == "" && c.IngredientContains == "" {
			return fmt.Errorf("%w: cohort %q matches nothing", internalerr.ErrInvalidConfig, c.Name)
		}
		for _, r := range append(append([]string{}, c.Routes...), c.ExcludeRoutes...) {
			switch r {
			case "oral", "topical", "unknown":
			default:
				return fmt.Errorf("%w: cohort %q has unknown route class %q",
					internalerr.ErrInvalidConfig, c.Name, r)
			}
		}
	}
	return nil
}

// RoleSet returns the configured causality roles as a lookup set.
func (a Analysis) RoleSet() map[string]bool {
	set := make(map[string]bool, len(a.Roles))
	for _, r := range a.Roles {
		set[r] = true
	}
	return set
}
