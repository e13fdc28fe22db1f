// Package stats computes disproportionality statistics from 2x2
// contingency tables: PRR, ROR, their 95% confidence intervals, and the
// Pearson chi-square statistic, with a configurable Haldane-Anscombe
// continuity correction.
package stats

import "math"

// z for a 95% confidence interval.
const z95 = 1.96

// Correction policy for zero-count cells.
type Correction int

const (
	// CorrectionConditional adds 0.5 to every cell only when any cell is
	// zero, keeping ratios finite without biasing populated tables.
	CorrectionConditional Correction = iota
	CorrectionAlways
	CorrectionNever
)

// Calculator computes disproportionality measures under one correction
// policy.
type Calculator struct {
	correction Correction
}

// NewCalculator creates a calculator with the given correction policy.
func NewCalculator(c Correction) *Calculator {
	return &Calculator{correction: c}
}

// Cells holds (possibly corrected) 2x2 cell counts.
type Cells struct {
	A, B, C, D float64
}

// Result holds all statistics for one 2x2 table.
type Result struct {
	PRR       float64
	PRRLower  float64
	PRRUpper  float64
	ROR       float64
	RORLower  float64
	RORUpper  float64
	ChiSquare float64
	Corrected bool
}

// Correct applies the calculator's continuity-correction policy to raw
// cell counts.
func (c *Calculator) Correct(a, b, cc, d int64) (Cells, bool) {
	cells := Cells{A: float64(a), B: float64(b), C: float64(cc), D: float64(d)}
	apply := false
	switch c.correction {
	case CorrectionAlways:
		apply = true
	case CorrectionConditional:
		apply = a == 0 || b == 0 || cc == 0 || d == 0
	}
	if apply {
		cells.A += 0.5
		cells.B += 0.5
		cells.C += 0.5
		cells.D += 0.5
	}
	return cells, apply
}

// Compute derives PRR, ROR and chi-square with confidence intervals from
// raw cell counts.
func (c *Calculator) Compute(a, b, cc, d int64) Result {
	cells, corrected := c.Correct(a, b, cc, d)

	res := Result{Corrected: corrected}
	res.PRR, res.PRRLower, res.PRRUpper = prr(cells)
	res.ROR, res.RORLower, res.RORUpper = ror(cells)
	res.ChiSquare = chiSquare(cells)
	return res
}

// prr computes the proportional reporting ratio with a delta-method 95% CI:
// PRR = [a/(a+b)] / [c/(c+d)], SE ln PRR = sqrt(1/a - 1/(a+b) + 1/c - 1/(c+d)).
func prr(x Cells) (est, lower, upper float64) {
	if x.A == 0 || x.A+x.B == 0 || x.C+x.D == 0 {
		return 0, 0, 0
	}
	p1 := x.A / (x.A + x.B)
	p0 := x.C / (x.C + x.D)
	if p0 == 0 {
		return math.Inf(1), math.Inf(1), math.Inf(1)
	}
	est = p1 / p0

	se := math.Sqrt(1/x.A - 1/(x.A+x.B) + 1/x.C - 1/(x.C+x.D))
	ln := math.Log(est)
	return est, math.Exp(ln - z95*se), math.Exp(ln + z95*se)
}

// ror computes the reporting odds ratio with its delta-method 95% CI:
// ROR = (a*d)/(b*c), SE ln ROR = sqrt(1/a + 1/b + 1/c + 1/d).
func ror(x Cells) (est, lower, upper float64) {
	if x.A == 0 || x.C == 0 {
		return 0, 0, 0
	}
	if x.B == 0 || x.D == 0 {
		return math.Inf(1), math.Inf(1), math.Inf(1)
	}
	est = (x.A / x.B) / (x.C / x.D)

	se := math.Sqrt(1/x.A + 1/x.B + 1/x.C + 1/x.D)
	ln := math.Log(est)
	return est, math.Exp(ln - z95*se), math.Exp(ln + z95*se)
}

// chiSquare computes the Pearson statistic on 1 degree of freedom, no
// Yates correction.
func chiSquare(x Cells) float64 {
	n := x.A + x.B + x.C + x.D
	if n == 0 {
		return 0
	}
	den := (x.A + x.B) * (x.C + x.D) * (x.A + x.C) * (x.B + x.D)
	if den == 0 {
		return 0
	}
	diff := x.A*x.D - x.B*x.C
	return diff * diff * n / den
}
