package normalize

import (
	"math"
	"strings"
	"unicode"
)

// RoleInput is the subset of an Officer record needed to derive its role
// category and influence score.
type RoleInput struct {
	Title        string
	IsOfficer    bool
	IsDirector   bool
	Compensation float64
	HoursPerWeek float64
	VotingMember bool
	PolicyMaker  bool
}

var executiveTitleMarkers = []string{"CEO", "PRESIDENT", "EXECUTIVE DIRECTOR", "CFO", "COO"}
var boardTitleMarkers = []string{"DIRECTOR", "CHAIR", "TRUSTEE"}

// RoleCategory classifies RoleInput per the priority rules in spec §4.1:
// executive title markers (matched as whole words) win first, then
// officer/director/board-title markers, then any positive compensation,
// else volunteer.
func RoleCategory(in RoleInput) string {
	title := strings.ToUpper(in.Title)
	words := " " + strings.Join(strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ") + " "

	for _, marker := range executiveTitleMarkers {
		if strings.Contains(words, " "+marker+" ") {
			return "Executive"
		}
	}

	if in.IsOfficer || in.IsDirector {
		return "Board"
	}
	for _, marker := range boardTitleMarkers {
		if strings.Contains(title, marker) {
			return "Board"
		}
	}

	if in.Compensation > 0 {
		return "Staff"
	}

	return "Volunteer"
}

var roleBase = map[string]float64{
	"Executive": 1.0,
	"Board":     0.7,
	"Staff":     0.4,
	"Volunteer": 0.2,
}

// InfluenceFlagSet resolves Open Question 2: which boolean indicators add
// +0.05 each to influence score. Defaults to {is_voting_member,
// is_policy_maker} per spec §9, but is injectable configuration so callers
// can widen or narrow the set without touching this package.
type InfluenceFlagSet struct {
	VotingMember bool
	PolicyMaker  bool
}

// DefaultInfluenceFlagSet is the spec-documented default.
func DefaultInfluenceFlagSet() InfluenceFlagSet {
	return InfluenceFlagSet{VotingMember: true, PolicyMaker: true}
}

// InfluenceScore computes clamp(role_base + comp/500000*0.3 +
// hours/40*0.2 + flags, 0, 1), where flags add 0.05 per enabled indicator in
// flagSet that is also true on in.
func InfluenceScore(in RoleInput, role string, flagSet InfluenceFlagSet) float64 {
	score := roleBase[role]
	score += (in.Compensation / 500000) * 0.3
	score += (in.HoursPerWeek / 40) * 0.2

	if flagSet.VotingMember && in.VotingMember {
		score += 0.05
	}
	if flagSet.PolicyMaker && in.PolicyMaker {
		score += 0.05
	}

	return math.Max(0, math.Min(1, score))
}
