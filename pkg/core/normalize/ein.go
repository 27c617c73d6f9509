package normalize

import (
	"regexp"
	"strings"
)

var einDashed = regexp.MustCompile(`^\d{2}-\d{7}$`)
var einDigitsOnly = regexp.MustCompile(`^\d{9}$`)

// invalidEINPrefixes are IRS-published prefixes that were never issued.
// Source: IRS EIN prefix allocation tables; kept as a fixed set since the
// authoritative list changes rarely and is not exposed via an external API
// this core depends on.
var invalidEINPrefixes = map[string]bool{
	"00": true,
	"07": true,
	"08": true,
	"09": true,
	"17": true,
	"18": true,
	"19": true,
	"28": true,
	"29": true,
	"49": true,
	"69": true,
	"70": true,
	"78": true,
	"79": true,
	"89": true,
	"96": true,
	"97": true,
}

// ParseEIN accepts "XX-XXXXXXX" or 9 consecutive digits and returns the
// canonical "XX-XXXXXXX" form plus whether it is valid (correctly shaped and
// not on the invalid-prefix list).
func ParseEIN(raw string) (canonical string, valid bool) {
	trimmed := strings.TrimSpace(raw)

	var digits string
	switch {
	case einDashed.MatchString(trimmed):
		digits = trimmed[:2] + trimmed[3:]
	case einDigitsOnly.MatchString(trimmed):
		digits = trimmed
	default:
		return "", false
	}

	prefix := digits[:2]
	canonical = prefix + "-" + digits[2:]
	if invalidEINPrefixes[prefix] {
		return canonical, false
	}
	return canonical, true
}
