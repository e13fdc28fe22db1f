package normalize

import "strconv"

// Years per raw age unit. Units outside this table yield an unknown age
// rather than a guess.
var ageUnitFactors = map[string]float64{
	"YR":  1,
	"MON": 1.0 / 12,
	"WK":  1.0 / 52.1429,
	"DY":  1.0 / 365.25,
	"HR":  1.0 / (24 * 365.25),
}

// AgeYears converts a raw age value and unit code into years. The second
// return is false when the value is blank, non-numeric, negative, or the
// unit is unrecognized.
func AgeYears(rawAge, rawUnit string) (float64, bool) {
	v, err := strconv.ParseFloat(Key(rawAge), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	factor, ok := ageUnitFactors[Key(rawUnit)]
	if !ok {
		return 0, false
	}
	return v * factor, true
}
