package normalize

import (
	"strings"

	"github.com/DarylOkeke/faers-signal-detection/pkg/faers/model"
)

var topicalSubstrings = []string{
	"TOPICAL", "CUTANEOUS", "SCALP", "LOTION", "FOAM", "SOLUTION", "SOLN",
}

// Route normalizes a reported route of administration and classifies it
// into the oral/topical/unknown flags used for cohort assignment.
func Route(raw string) (string, model.RouteFlags) {
	r := Key(raw)
	var f model.RouteFlags

	switch r {
	case "", "UNKNOWN", "UNSPECIFIED", "NONE":
		f.Unknown = true
		return r, f
	}

	switch r {
	case "ORAL", "PO", "BY MOUTH":
		f.Oral = true
	default:
		if strings.HasPrefix(r, "ORAL ") {
			f.Oral = true
		}
	}

	switch r {
	case "TOPICAL", "CUTANEOUS", "SCALP", "TRANSDERMAL":
		f.Topical = true
	default:
		for _, sub := range topicalSubstrings {
			if strings.Contains(r, sub) {
				f.Topical = true
				break
			}
		}
	}

	return r, f
}
