package tokens

import "testing"

func TestHeuristic(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Estimate
	}{
		{"empty", "", Estimate{Tokens: 0, Characters: 0, Words: 0}},
		{"rounds up", "abcde", Estimate{Tokens: 2, Characters: 5, Words: 1}},
		{"exact", "abcd", Estimate{Tokens: 1, Characters: 4, Words: 1}},
		{"words", "# Hello\n\nWorld\n", Estimate{Tokens: 4, Characters: 15, Words: 3}},
		{"runes", "héllo wörld", Estimate{Tokens: 3, Characters: 11, Words: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Heuristic(tt.text); got != tt.want {
				t.Errorf("Heuristic(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNewTiktoken(t *testing.T) {
	count, err := NewTiktoken(DefaultEncoding)
	if err != nil {
		// The encoding is fetched on first use; offline runs skip.
		t.Skipf("tiktoken unavailable: %v", err)
	}

	got := count("hello world")
	if got.Tokens != 2 {
		t.Errorf("Tokens = %d, want 2", got.Tokens)
	}
	if got.Characters != 11 || got.Words != 2 {
		t.Errorf("got %+v", got)
	}
}

func TestNewTiktoken_UnknownEncoding(t *testing.T) {
	if _, err := NewTiktoken("no_such_encoding"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}
