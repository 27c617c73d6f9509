package normalize

import (
	"regexp"
	"strings"
)

var usPostalStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true, "CT": true,
	"DE": true, "FL": true, "GA": true, "HI": true, "ID": true, "IL": true, "IN": true,
	"IA": true, "KS": true, "KY": true, "LA": true, "ME": true, "MD": true, "MA": true,
	"MI": true, "MN": true, "MS": true, "MO": true, "MT": true, "NE": true, "NV": true,
	"NH": true, "NJ": true, "NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true, "WI": true,
	"WY": true, "DC": true,
}

var zipSuffixRE = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// StateFromLocation extracts the two-letter postal state from a free-text
// location string ("123 Main St, Richmond, VA 23219" -> "VA"). It looks at
// the last comma-separated token, stripping a trailing ZIP if present, and
// only returns a match if that token is in the 2-letter postal set.
func StateFromLocation(location string) (state string, ok bool) {
	parts := strings.Split(location, ",")
	if len(parts) == 0 {
		return "", false
	}

	last := strings.TrimSpace(parts[len(parts)-1])
	fields := strings.Fields(last)
	if len(fields) == 0 {
		return "", false
	}

	// Drop a trailing ZIP token if present, e.g. "VA 23219" -> "VA".
	if len(fields) > 1 && zipSuffixRE.MatchString(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 0 {
		return "", false
	}

	candidate := strings.ToUpper(fields[len(fields)-1])
	if usPostalStates[candidate] {
		return candidate, true
	}
	return "", false
}
