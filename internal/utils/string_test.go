package utils

import "testing"

func TestIsValidInput(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"আমি", true},
		{"ভালো", true},
		{"কৃষ্ণ", true},
		{"hello", true},
		{"১২৩", false},
		{"123", false},
		{"আমি!", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidInput(tt.input); got != tt.want {
			t.Errorf("IsValidInput(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestContainsBengali(t *testing.T) {
	if !ContainsBengali("abc আ") {
		t.Error("mixed text should contain Bengali")
	}
	if ContainsBengali("abc") {
		t.Error("latin text has no Bengali")
	}
	if !IsBengali('ৎ') {
		t.Error("khanda ta is in the Bengali block")
	}
}

func TestNormalizeText(t *testing.T) {
	composed := "\u09df"
	decomposed := "\u09af\u09bc"
	if NormalizeText(composed) != NormalizeText(decomposed) {
		t.Errorf("%q and %q normalize differently", composed, decomposed)
	}
	items := NormalizeAll([]string{composed, "আমি"})
	if items[0] != NormalizeText(decomposed) || items[1] != "আমি" {
		t.Errorf("NormalizeAll = %q", items)
	}
}

func TestSuggestionFilter(t *testing.T) {
	f := NewSuggestionFilter("কল")
	if f.ShouldInclude("কল") {
		t.Error("input itself should be excluded")
	}
	if !f.ShouldInclude("কলম") || f.ShouldInclude("কলম") {
		t.Error("first occurrence kept, duplicate dropped")
	}
}
