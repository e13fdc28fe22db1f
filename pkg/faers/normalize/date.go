package normalize

import "time"

// Date parses a FAERS date field. The files carry full dates (YYYYMMDD)
// and partial dates (YYYYMM, YYYY); partial dates resolve to the first
// day of the period. Returns false for anything else.
func Date(raw string) (time.Time, bool) {
	s := Key(raw)
	var layout string
	switch len(s) {
	case 8:
		layout = "20060102"
	case 6:
		layout = "200601"
	case 4:
		layout = "2006"
	default:
		return time.Time{}, false
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// BestDate walks an ordered list of candidate date fields and parses the
// first one that yields a calendar date.
func BestDate(candidates ...string) (time.Time, bool) {
	for _, c := range candidates {
		if t, ok := Date(c); ok {
			return t, true
		}
	}
	return time.Time{}, false
}
