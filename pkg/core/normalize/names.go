// Package normalize implements the deterministic canonical forms used across
// the core: person and organization names, EINs, state extraction, and the
// role-category/influence-score derivation for officers (spec §4.1).
package normalize

import (
	"regexp"
	"strings"
)

var personTitles = []string{
	"DR.", "DR", "MR.", "MR", "MRS.", "MRS", "MS.", "MS", "PROF.", "PROF", "REV.", "REV",
}

var personSuffixes = []string{
	"JR.", "JR", "SR.", "SR", "II", "III", "IV", "ESQ.", "ESQ",
}

var punctuationRE = regexp.MustCompile(`[^\w\s-]`)
var whitespaceRE = regexp.MustCompile(`\s+`)
var hyphenRE = regexp.MustCompile(`-+`)

// CanonicalPersonName strips honorific titles and suffixes, removes
// punctuation, collapses whitespace, and folds to upper case. Output is
// deterministic: equal normalized byte strings always produce equal output.
func CanonicalPersonName(raw string) string {
	name := strings.ToUpper(strings.TrimSpace(raw))
	name = punctuationRE.ReplaceAllString(name, " ")

	tokens := strings.Fields(name)
	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if containsToken(personTitles, tok) || containsToken(personSuffixes, tok) {
			continue
		}
		filtered = append(filtered, tok)
	}

	return strings.Join(filtered, " ")
}

// CanonicalOrgName removes punctuation, collapses hyphens to spaces, collapses
// whitespace, and upper-cases. No stemming, no stop-word removal.
func CanonicalOrgName(raw string) string {
	name := strings.ToUpper(strings.TrimSpace(raw))
	name = hyphenRE.ReplaceAllString(name, " ")
	name = punctuationRE.ReplaceAllString(name, " ")
	name = whitespaceRE.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

func containsToken(set []string, tok string) bool {
	for _, s := range set {
		if s == tok {
			return true
		}
	}
	return false
}
