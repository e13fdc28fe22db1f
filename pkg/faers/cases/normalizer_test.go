package cases

import (
	"testing"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
)

var usFilter = Filter{Country: "US", YearStart: 2023, YearEnd: 2023}

func demo(primaryID, caseID string, version int64, date string) model.DemoRecord {
	return model.DemoRecord{
		PrimaryID:   primaryID,
		CaseID:      caseID,
		CaseVersion: version,
		EventDate:   date,
		Sex:         "F",
		Country:     "US",
		Period:      "2023Q1",
	}
}

func TestNormalizeKeepsMaxVersion(t *testing.T) {
	raw := []model.DemoRecord{
		demo("1001", "C1", 1, "20230110"),
		demo("1002", "C1", 2, "20230120"),
		demo("1003", "C1", 3, "20230130"),
		demo("2001", "C2", 1, "20230201"),
	}

	out, cov := Normalize(raw, usFilter)
	if len(out) != 2 {
		t.Fatalf("expected 2 retained cases, got %d", len(out))
	}
	if cov.DistinctCases != 2 || cov.RawRows != 4 {
		t.Errorf("coverage = %+v", cov)
	}

	byCase := make(map[string]model.Case)
	for _, c := range out {
		byCase[c.CaseID] = c
	}
	if byCase["C1"].CaseVersion != 3 || byCase["C1"].PrimaryID != "1003" {
		t.Errorf("C1 retained row = %+v, want version 3", byCase["C1"])
	}
}

func TestNormalizeVersionTieBreak(t *testing.T) {
	raw := []model.DemoRecord{
		demo("1001", "C1", 2, "20230110"),
		demo("1009", "C1", 2, "20230111"),
	}
	out, _ := Normalize(raw, usFilter)
	if len(out) != 1 || out[0].PrimaryID != "1009" {
		t.Errorf("tie should keep the higher primaryid, got %+v", out)
	}
}

func TestNormalizeDropsBadDatesAndForeignRows(t *testing.T) {
	bad := demo("3001", "C3", 1, "not-a-date")
	foreign := demo("4001", "C4", 1, "20230301")
	foreign.Country = "FR"
	wrongYear := demo("5001", "C5", 1, "20190301")

	out, cov := Normalize([]model.DemoRecord{bad, foreign, wrongYear}, usFilter)
	if len(out) != 0 {
		t.Fatalf("expected no retained cases, got %d", len(out))
	}
	if cov.Parsed != 2 {
		t.Errorf("parsed = %d, want 2", cov.Parsed)
	}
	if cov.InPopulation != 0 {
		t.Errorf("in-population = %d, want 0", cov.InPopulation)
	}
}

func TestNormalizeFallsBackThroughDates(t *testing.T) {
	r := demo("1001", "C1", 1, "")
	r.FDADate = "202304"
	out, _ := Normalize([]model.DemoRecord{r}, usFilter)
	if len(out) != 1 {
		t.Fatal("expected row retained via FDA date fallback")
	}
	if out[0].Date.Year() != 2023 {
		t.Errorf("date = %v", out[0].Date)
	}
}

func TestNormalizeDemographics(t *testing.T) {
	r := demo("1001", "C1", 1, "20230601")
	r.Sex = "unknown"
	r.Age = "18"
	r.AgeUnit = "MON"
	out, _ := Normalize([]model.DemoRecord{r}, usFilter)
	if len(out) != 1 {
		t.Fatal("expected one case")
	}
	if out[0].Sex != "U" {
		t.Errorf("sex = %q, want U", out[0].Sex)
	}
	if out[0].AgeYears == nil || *out[0].AgeYears != 1.5 {
		t.Errorf("age = %v, want 1.5", out[0].AgeYears)
	}

	r.AgeUnit = "DEC"
	out, _ = Normalize([]model.DemoRecord{r}, usFilter)
	if out[0].AgeYears != nil {
		t.Error("unrecognized age unit must yield a missing age, not a guess")
	}
}
