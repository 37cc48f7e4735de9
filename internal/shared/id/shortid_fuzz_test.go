package id

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func FuzzParsePrefixedID(f *testing.F) {
	seeds := []string{
		"req_xK9mP2vL3nQa",
		"",
		"nounderscore",
		"_leadingunderscore",
		"trailing_",
		"multiple_under_scores_here",
		"中文_测试",
		strings.Repeat("a", 1000) + "_" + strings.Repeat("b", 1000),
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			return
		}

		prefix, shortID, err := ParsePrefixedID(input)
		if !strings.Contains(input, "_") {
			if err == nil {
				t.Errorf("ParsePrefixedID(%q) should fail without an underscore", input)
			}
			return
		}

		if err != nil {
			t.Fatalf("ParsePrefixedID(%q) unexpected error: %v", input, err)
		}
		if prefix+"_"+shortID != input {
			t.Errorf("ParsePrefixedID(%q) = (%q, %q), does not round-trip", input, prefix, shortID)
		}
		if strings.Contains(prefix, "_") {
			t.Errorf("ParsePrefixedID(%q) prefix %q contains an underscore", input, prefix)
		}
	})
}

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := Generate(0)
		if err != nil {
			t.Fatal(err)
		}
		if len(id) != DefaultLength {
			t.Fatalf("len(%q) = %d, want %d", id, len(id), DefaultLength)
		}
		for _, r := range id {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("%q contains %q outside the alphabet", id, r)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestNewRequestID(t *testing.T) {
	rid := NewRequestID()
	prefix, short, err := ParsePrefixedID(rid)
	if err != nil {
		t.Fatal(err)
	}
	if prefix != PrefixRequest || len(short) != DefaultLength {
		t.Fatalf("unexpected request id %q", rid)
	}
}
