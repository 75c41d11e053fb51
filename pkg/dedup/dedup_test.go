package dedup

import (
	"strings"
	"testing"
)

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts *Options
		want string
	}{
		{
			name: "repeated section",
			in:   "## Title\n\nSame text.\n\n## Title\n\nSame text.\n",
			want: "## Title\n\nSame text.\n",
		},
		{
			name: "same heading different content",
			in:   "## Details\n\nFirst product body.\n\n## Details\n\nSecond product body.\n",
			want: "## Details\n\nFirst product body.\n\n## Details\n\nSecond product body.\n",
		},
		{
			name: "repeated paragraph",
			in:   "A paragraph that repeats.\n\nMiddle.\n\nA paragraph that repeats.\n",
			want: "A paragraph that repeats.\n\nMiddle.\n",
		},
		{
			name: "case and whitespace insensitive",
			in:   "Subscribe to our list\n\nsubscribe   TO our\nlist\n",
			want: "Subscribe to our list\n",
		},
		{
			name: "section content later standalone",
			in:   "## Intro\n\nThe shared body text.\n\nThe shared body text.\n",
			want: "## Intro\n\nThe shared body text.\n",
		},
		{
			name: "standalone headings kept",
			in:   "## Featured\n\n## Featured\n\n## Featured\n",
			want: "## Featured\n\n## Featured\n\n## Featured\n",
		},
		{
			name: "heading at end kept",
			in:   "Body paragraph here.\n\n## Trailing\n",
			want: "Body paragraph here.\n\n## Trailing\n",
		},
		{
			name: "first occurrence wins",
			in:   "Alpha block of text.\n\nBeta block of text.\n\nAlpha block of text.\n\nBeta block of text.\n",
			want: "Alpha block of text.\n\nBeta block of text.\n",
		},
		{
			name: "blank line runs",
			in:   "\n\nRepeated content line\n\n\n\nRepeated content line\n\n\n",
			want: "Repeated content line\n",
		},
		{
			name: "custom min length",
			in:   "Repeated content line\n\nRepeated content line\n",
			opts: &Options{MinLength: 50},
			want: "Repeated content line\n\nRepeated content line\n",
		},
		{
			name: "not a heading without space",
			in:   "#hashtag is here\n\n#hashtag is here\n",
			want: "#hashtag is here\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Deduplicate(tt.in, tt.opts); got != tt.want {
				t.Errorf("Deduplicate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeduplicate_Floor(t *testing.T) {
	in := strings.Repeat("---\n\nShort one\n\n", 5)
	got := Deduplicate(in, nil)

	if n := strings.Count(got, "---"); n != 5 {
		t.Errorf("expected 5 separators kept, got %d in %q", n, got)
	}
	if n := strings.Count(got, "Short one"); n != 5 {
		t.Errorf("expected 5 short labels kept, got %d in %q", n, got)
	}
}

// Idempotence holds unless dropping a section moves a standalone heading
// next to a short block; see TestDeduplicate_RepairedSection.
func TestDeduplicate_Idempotent(t *testing.T) {
	inputs := []string{
		"## Title\n\nSame text.\n\n## Title\n\nSame text.\n",
		"## S\n\nlong content here\n\n## H\n\n## S\n\nlong content here\n\nanother paragraph\n",
		"# Doc\n\nIntro paragraph text.\n\n## A\n\nIntro paragraph text.\n\n## A\n\nIntro paragraph text.\n\n---\n\n---\n",
		"Para one is long.\n\n## X\n\nPara one is long.\n\nPara one is long.\n",
		"",
	}

	for _, in := range inputs {
		once := Deduplicate(in, nil)
		if twice := Deduplicate(once, nil); twice != once {
			t.Errorf("not idempotent for %q:\nonce  %q\ntwice %q", in, once, twice)
		}
	}
}

func TestDeduplicate_RepairedSection(t *testing.T) {
	in := "# Heading one\n\nhi\n\n## Two\n\nSome content here\n\n" +
		"# Heading one\n\n## Two\n\nSome content here\n\nhi\n"

	once := Deduplicate(in, nil)
	wantOnce := "# Heading one\n\nhi\n\n## Two\n\nSome content here\n\n# Heading one\n\nhi\n"
	if once != wantOnce {
		t.Fatalf("first pass = %q, want %q", once, wantOnce)
	}

	// The kept standalone heading now pairs with the short block and forms
	// a repeated section, so a second pass drops it.
	twice := Deduplicate(once, nil)
	wantTwice := "# Heading one\n\nhi\n\n## Two\n\nSome content here\n"
	if twice != wantTwice {
		t.Fatalf("second pass = %q, want %q", twice, wantTwice)
	}
	if third := Deduplicate(twice, nil); third != twice {
		t.Errorf("third pass = %q, want fixed point %q", third, twice)
	}
}

func TestFingerprint(t *testing.T) {
	if got := Fingerprint("  Hello \n\n  WORLD\t!  "); got != "hello world !" {
		t.Errorf("Fingerprint() = %q", got)
	}
}
