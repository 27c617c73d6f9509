package normalize

import "testing"

func TestCanonicalPersonName(t *testing.T) {
	cases := map[string]string{
		"Dr. Jane A. Smith, Jr.": "JANE A SMITH",
		"MR. JOHN   DOE III":     "JOHN DOE",
		"Rev. T. Williams Esq.":  "T WILLIAMS",
	}
	for in, want := range cases {
		if got := CanonicalPersonName(in); got != want {
			t.Errorf("CanonicalPersonName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalPersonNameDeterministic(t *testing.T) {
	a := CanonicalPersonName("Mr. John Doe")
	b := CanonicalPersonName("Mr. John Doe")
	if a != b {
		t.Fatalf("expected deterministic output, got %q vs %q", a, b)
	}
}

func TestCanonicalOrgName(t *testing.T) {
	cases := map[string]string{
		"Acme Foundation, Inc.":  "ACME FOUNDATION INC",
		"Smith-Jones  Trust":     "SMITH JONES TRUST",
		"  The   Fund  (2023)  ": "THE FUND 2023",
	}
	for in, want := range cases {
		if got := CanonicalOrgName(in); got != want {
			t.Errorf("CanonicalOrgName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseEIN(t *testing.T) {
	canon, valid := ParseEIN("300219424")
	if canon != "30-0219424" || !valid {
		t.Fatalf("ParseEIN(digits) = %q, %v, want 30-0219424, true", canon, valid)
	}

	canon, valid = ParseEIN("30-0219424")
	if canon != "30-0219424" || !valid {
		t.Fatalf("ParseEIN(dashed) = %q, %v, want 30-0219424, true", canon, valid)
	}

	if _, valid := ParseEIN("00-1234567"); valid {
		t.Fatalf("expected invalid prefix 00 to be rejected")
	}

	if _, valid := ParseEIN("not-an-ein"); valid {
		t.Fatalf("expected malformed EIN to be rejected")
	}
}

func TestStateFromLocation(t *testing.T) {
	cases := map[string]string{
		"123 Main St, Richmond, VA 23219": "VA",
		"456 Oak Ave, Baltimore, MD":      "MD",
	}
	for in, want := range cases {
		got, ok := StateFromLocation(in)
		if !ok || got != want {
			t.Errorf("StateFromLocation(%q) = %q, %v, want %q, true", in, got, ok, want)
		}
	}

	if _, ok := StateFromLocation("no state here"); ok {
		t.Fatalf("expected no match for location without a state")
	}
}

func TestRoleCategoryPriority(t *testing.T) {
	cases := []struct {
		name string
		in   RoleInput
		want string
	}{
		{"ceo", RoleInput{Title: "Chief Executive Officer / CEO"}, "Executive"},
		{"officer-flag", RoleInput{Title: "Member", IsOfficer: true}, "Board"},
		{"chair-title", RoleInput{Title: "Board Chair"}, "Board"},
		{"paid-staff", RoleInput{Title: "Program Manager", Compensation: 45000}, "Staff"},
		{"volunteer", RoleInput{Title: "Volunteer Coordinator"}, "Volunteer"},
	}
	for _, c := range cases {
		if got := RoleCategory(c.in); got != c.want {
			t.Errorf("%s: RoleCategory() = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestInfluenceScoreClampedToUnitInterval(t *testing.T) {
	in := RoleInput{Compensation: 5_000_000, HoursPerWeek: 80, VotingMember: true, PolicyMaker: true}
	score := InfluenceScore(in, "Executive", DefaultInfluenceFlagSet())
	if score != 1.0 {
		t.Fatalf("expected clamp to 1.0, got %v", score)
	}

	in = RoleInput{}
	score = InfluenceScore(in, "Volunteer", DefaultInfluenceFlagSet())
	if score < 0 || score > 1 {
		t.Fatalf("expected score in [0,1], got %v", score)
	}
}
