package utils

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStringHelper_WrapWords(t *testing.T) {
	s := NewStringHelper()

	tests := []struct {
		name     string
		text     string
		maxWords int
		want     string
	}{
		{"short", "Rally shooting", 3, "Rally shooting"},
		{"exact", "one two three", 3, "one two three"},
		{"wraps", "one two three four five six seven", 3, "one two three<br>four five six<br>seven"},
		{"collapses spaces", "  one   two  ", 3, "one two"},
		{"empty", "", 3, ""},
		{"zero width", "one two three four", 0, "one two three four"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.WrapWords(tt.text, tt.maxWords, "<br>"); got != tt.want {
				t.Errorf("WrapWords(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestStringHelper_RemoveStopwords(t *testing.T) {
	s := NewStringHelper()

	got := s.RemoveStopwords("The Senate votes on the bill, and it's over!")
	if got != "senate votes bill" {
		t.Errorf("RemoveStopwords = %q", got)
	}

	custom := NewStringHelperWithStopwords([]string{"Senate"})
	if got := custom.RemoveStopwords("Senate votes"); got != "votes" {
		t.Errorf("custom RemoveStopwords = %q", got)
	}
}

func TestStringHelper_Words(t *testing.T) {
	got := NewStringHelper().Words(`"Breaking": Storm hits coast... (again)`)
	want := []string{"breaking", "storm", "hits", "coast", "again"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Words mismatch (-want +got):\n%s", diff)
	}
}

func TestStringHelper_TruncateString(t *testing.T) {
	s := NewStringHelper()

	if got := s.TruncateString("héllo wörld", 5); got != "héllo..." {
		t.Errorf("TruncateString = %q", got)
	}

	if got := s.TruncateString("short", 10); got != "short" {
		t.Errorf("TruncateString = %q", got)
	}
}

func TestStringHelper_NormalizeWhitespace(t *testing.T) {
	if got := NewStringHelper().NormalizeWhitespace(" a \t b\n c "); got != "a b c" {
		t.Errorf("NormalizeWhitespace = %q", got)
	}
}
