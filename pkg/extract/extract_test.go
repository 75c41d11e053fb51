package extract

import (
	"regexp"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parse(t *testing.T, s string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		t.Fatalf("render: %v", err)
	}
	return sb.String()
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		opts     *Options
		contains []string
		excludes []string
	}{
		{
			name:     "strips default tags",
			html:     `<nav>Menu</nav><header>Top</header><main><p>Keep</p></main><footer>Bottom</footer><aside>Side</aside>`,
			contains: []string{"Keep"},
			excludes: []string{"Menu", "Top", "Bottom", "Side"},
		},
		{
			name:     "strips by role",
			html:     `<div role="navigation">Links</div><div role="main">Body</div>`,
			contains: []string{"Body"},
			excludes: []string{"Links"},
		},
		{
			name:     "role token list",
			html:     `<div role="presentation banner">Brand</div><p>Body</p>`,
			contains: []string{"Body"},
			excludes: []string{"Brand"},
		},
		{
			name:     "strips by class substring",
			html:     `<div class="left-sidebar wide">Side</div><p>Body</p>`,
			contains: []string{"Body"},
			excludes: []string{"Side"},
		},
		{
			name:     "ad regexp respects word boundaries",
			html:     `<div class="ad-slot">Buy</div><div class="reading">Story</div><div class="shadow">Box</div>`,
			contains: []string{"Story", "Box"},
			excludes: []string{"Buy"},
		},
		{
			name:     "strips by id",
			html:     `<div id="comments">Chatter</div><div id="article">Body</div>`,
			contains: []string{"Body"},
			excludes: []string{"Chatter"},
		},
		{
			name:     "keep header subtracts default",
			html:     `<header>Top</header><nav>Menu</nav><p>Body</p>`,
			opts:     &Options{KeepHeader: true},
			contains: []string{"Top", "Body"},
			excludes: []string{"Menu"},
		},
		{
			name:     "keep footer and nav",
			html:     `<footer>Bottom</footer><nav>Menu</nav>`,
			opts:     &Options{KeepFooter: true, KeepNav: true},
			contains: []string{"Bottom", "Menu"},
		},
		{
			name:     "custom tags are additive",
			html:     `<table><tr><td>Cell</td></tr></table><nav>Menu</nav><p>Body</p>`,
			opts:     &Options{StripTags: []string{"TABLE"}},
			contains: []string{"Body"},
			excludes: []string{"Cell", "Menu"},
		},
		{
			name:     "custom class regexp",
			html:     `<div class="promo-2024">Deal</div><p>Body</p>`,
			opts:     &Options{StripClasses: []Pattern{Regexp(regexp.MustCompile(`^promo-\d+$`))}},
			contains: []string{"Body"},
			excludes: []string{"Deal"},
		},
		{
			name:     "custom role and id",
			html:     `<div role="note">Aside</div><div id="x-legal">Legal</div><p>Body</p>`,
			opts:     &Options{StripRoles: []string{"note"}, StripIDs: []Pattern{Substring("legal")}},
			contains: []string{"Body"},
			excludes: []string{"Aside", "Legal"},
		},
		{
			name:     "kept ancestor loses stripped descendants",
			html:     `<main><p>One</p><div><script>evil()</script><p>Two</p></div></main>`,
			contains: []string{"One", "Two"},
			excludes: []string{"evil"},
		},
		{
			name:     "adjacent matches are all removed",
			html:     `<div><nav>A</nav><nav>B</nav><nav>C</nav><p>Body</p></div>`,
			contains: []string{"Body"},
			excludes: []string{">A<", ">B<", ">C<"},
		},
		{
			name:     "document skeleton is never stripped",
			html:     `<html class="cookie-consent"><body class="page-with-sidebar" id="nav"><p>Body</p></body></html>`,
			contains: []string{"Body"},
		},
		{
			name:     "empty unmatched element is kept",
			html:     `<div id="article"><span class="x"></span></div>`,
			contains: []string{`<span class="x"></span>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, tt.html)
			Extract(doc, tt.opts)
			out := render(t, doc)

			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("expected output to contain %q, got: %s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("expected output to not contain %q, got: %s", s, out)
				}
			}
		})
	}
}

func TestExtract_NoMatchingElementsRemain(t *testing.T) {
	doc := parse(t, `<div class="page">
		<header><nav class="menu">x</nav></header>
		<div class="content"><aside>y</aside><p id="cookie-note">z</p><p>text</p></div>
		<div role="contentinfo"><footer>f</footer></div>
	</div>`)
	Extract(doc, nil)

	m := newMatcher(nil)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				if reason, ok := m.match(c); ok {
					t.Errorf("element <%s> still matches %s predicate", c.Data, reason)
				}
			}
			walk(c)
		}
	}
	walk(doc)
}

func TestExtract_DetachesRemovedNodes(t *testing.T) {
	doc := parse(t, `<div><nav id="n">Menu</nav><p>Body</p></div>`)

	var nav *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "nav" {
			nav = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	if nav == nil {
		t.Fatal("nav not found")
	}

	Extract(doc, nil)
	if nav.Parent != nil {
		t.Error("expected removed node to have no parent")
	}
	if nav.NextSibling != nil || nav.PrevSibling != nil {
		t.Error("expected removed node to have no siblings")
	}
}

func TestExtract_Stats(t *testing.T) {
	doc := parse(t, `<nav>a</nav><nav>b</nav><div role="search">c</div><div class="sidebar">d</div><div id="comments">e</div><p>f</p>`)
	stats := Extract(doc, nil)

	if got := stats.ElementsRemoved["nav"]; got != 2 {
		t.Errorf("nav removals = %d, want 2", got)
	}
	if got := stats.TotalRemoved(); got != 5 {
		t.Errorf("TotalRemoved() = %d, want 5", got)
	}
	want := map[Reason]int{ReasonTag: 2, ReasonRole: 1, ReasonClass: 1, ReasonID: 1}
	for reason, n := range want {
		if stats.Reasons[reason] != n {
			t.Errorf("Reasons[%s] = %d, want %d", reason, stats.Reasons[reason], n)
		}
	}
	if !strings.Contains(stats.String(), "nav=2") {
		t.Errorf("String() = %q, want nav=2", stats.String())
	}
}

func TestExtract_TagBeforeClass(t *testing.T) {
	doc := parse(t, `<nav class="sidebar">x</nav>`)
	stats := Extract(doc, nil)
	if stats.Reasons[ReasonTag] != 1 || stats.Reasons[ReasonClass] != 0 {
		t.Errorf("expected tag predicate to win, got %v", stats.Reasons)
	}
}

func TestExtract_DeepDocument(t *testing.T) {
	const depth = 20000

	// Build the tree by hand; the parser caps nesting depth on its own.
	root := &html.Node{Type: html.DocumentNode}
	cur := root
	for i := 0; i < depth; i++ {
		div := &html.Node{Type: html.ElementNode, Data: "div"}
		cur.AppendChild(div)
		cur = div
	}
	nav := &html.Node{Type: html.ElementNode, Data: "nav"}
	cur.AppendChild(nav)

	stats := Extract(root, nil)
	if stats.ElementsRemoved["nav"] != 1 {
		t.Errorf("expected deep nav to be removed, stats: %s", stats)
	}
	if cur.FirstChild != nil {
		t.Error("expected innermost div to be empty")
	}
}

func TestExtract_NilDocument(t *testing.T) {
	stats := Extract(nil, nil)
	if stats.TotalRemoved() != 0 {
		t.Error("expected no removals")
	}
}

func TestParsePattern(t *testing.T) {
	tests := []struct {
		in    string
		value string
		want  bool
	}{
		{"promo", "big-promo", true},
		{"promo", "other", false},
		{"/^promo$/", "promo", true},
		{"/^promo$/", "big-promo", false},
		{"", "anything", false},
	}
	for _, tt := range tests {
		p, err := ParsePattern(tt.in)
		if err != nil {
			t.Fatalf("ParsePattern(%q) error = %v", tt.in, err)
		}
		if got := p.Match(tt.value); got != tt.want {
			t.Errorf("ParsePattern(%q).Match(%q) = %v, want %v", tt.in, tt.value, got, tt.want)
		}
	}

	if _, err := ParsePattern("/[/"); err == nil {
		t.Error("expected error for invalid regexp")
	}
	if got := MustCompile(`a+`).String(); got != "/a+/" {
		t.Errorf("String() = %q", got)
	}
}
