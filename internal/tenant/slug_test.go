package tenant

import (
	"strings"
	"testing"
)

func TestMakeSlug(t *testing.T) {
	cases := map[string]string{
		"Acme":                "acme",
		"Acme Travel":         "acme-travel",
		"Acme  &  Co.":        "acme-co",
		"  Spaced   Out  ":    "spaced-out",
		"Already-kebab":       "alreadykebab", // '-' is not alphanumeric or space
		"München":             "mnchen",
		"***":                 "site",
		"":                    "site",
		"Tabs\tand\nnewlines": "tabs-and-newlines",
	}
	for in, want := range cases {
		if got := MakeSlug(in); got != want {
			t.Errorf("MakeSlug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMakeSlugCapsLength(t *testing.T) {
	got := MakeSlug(strings.Repeat("a", 150))
	if len(got) != 100 {
		t.Fatalf("len = %d, want 100", len(got))
	}
}
