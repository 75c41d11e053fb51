package markdown

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}
	return doc
}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, Attr: attrs}
}

func TestFilter_Matches(t *testing.T) {
	note := element("div", html.Attribute{Key: "class", Val: "note"})

	tests := []struct {
		name   string
		filter Filter
		node   *html.Node
		want   bool
	}{
		{"tag match", Tag("p"), element("p"), true},
		{"tag case folded", Tag("P"), element("p"), true},
		{"tag mismatch", Tag("p"), element("div"), false},
		{"tags match", Tags("b", "strong"), element("strong"), true},
		{"tags mismatch", Tags("b", "strong"), element("em"), false},
		{"func match", Func(func(n *html.Node) bool { return attr(n, "class") == "note" }), note, true},
		{"func mismatch", Func(func(n *html.Node) bool { return false }), note, false},
		{"nil func", Func(nil), note, false},
		{"text node", Tag("p"), &html.Node{Type: html.TextNode, Data: "p"}, false},
		{"nil node", Tag("p"), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.node); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeRules_PriorityOrder(t *testing.T) {
	text := func(s string) Replacement {
		return func(*Context) Outcome { return Text(s) }
	}

	zero := Rule{Name: "zero", Filter: Tag("p"), Replacement: text("zero")}
	ten := Rule{Name: "ten", Filter: Tag("p"), Replacement: text("ten"), Priority: 10}

	rules := MergeRules([]Rule{zero, ten}, DefaultRules())
	got := convertHTML(t, "<p>x</p>", Options{}, rules)
	if got != "ten" {
		t.Errorf("expected priority 10 rule to win, got %q", got)
	}

	if rules[0].Name != "ten" {
		t.Errorf("rules[0] = %q, want %q", rules[0].Name, "ten")
	}
	for i := 1; i < len(rules); i++ {
		if rules[i].Priority > rules[i-1].Priority {
			t.Fatalf("rules not sorted by priority at %d", i)
		}
	}
}

func TestMergeRules_StableTies(t *testing.T) {
	a := NewRule(Tag("p"), nil).WithName("a")
	b := NewRule(Tag("p"), nil).WithName("b")
	builtinP := Rule{Name: "builtin", Filter: Tag("p"), Priority: UserPriority}

	got := MergeRules([]Rule{a, b}, []Rule{builtinP})
	var names []string
	for _, r := range got {
		names = append(names, r.Name)
	}
	if strings.Join(names, ",") != "a,b,builtin" {
		t.Errorf("order = %v, want [a b builtin]", names)
	}
}

func TestNewRule_OverridesBuiltin(t *testing.T) {
	upper := NewRule(Tag("h1"), func(ctx *Context) Outcome {
		return Text("\n\nTITLE: " + strings.ToUpper(ctx.Content()) + "\n\n")
	})

	got := convertHTML(t, "<h1>hello</h1>", Options{}, MergeRules([]Rule{upper}, DefaultRules()))
	if got != "TITLE: HELLO" {
		t.Errorf("got %q", got)
	}
}

func TestOutcome_Pass(t *testing.T) {
	calls := 0
	decline := NewRule(Tag("p"), func(*Context) Outcome {
		calls++
		return Pass
	})

	got := convertHTML(t, "<p>kept</p>", Options{}, MergeRules([]Rule{decline}, DefaultRules()))
	if got != "kept" {
		t.Errorf("expected built-in paragraph, got %q", got)
	}
	if calls != 1 {
		t.Errorf("rule called %d times, want 1", calls)
	}
}

func TestOutcome_PassWithoutFallback(t *testing.T) {
	decline := NewRule(Tag("section"), func(*Context) Outcome { return Pass })

	got := convertHTML(t, "<section><em>inner</em></section>", Options{}, MergeRules([]Rule{decline}, DefaultRules()))
	if got != "*inner*" {
		t.Errorf("expected transparent walk, got %q", got)
	}
}

func TestOutcome_Remove(t *testing.T) {
	drop := NewRule(Func(func(n *html.Node) bool {
		return n.Data == "div" && attr(n, "class") == "promo"
	}), func(*Context) Outcome { return Remove })

	got := convertHTML(t, `<p>a</p><div class="promo"><p>buy</p></div><p>b</p>`, Options{}, MergeRules([]Rule{drop}, DefaultRules()))
	if strings.Contains(got, "buy") {
		t.Errorf("expected promo removed, got %q", got)
	}
	if got != "a\n\nb" {
		t.Errorf("got %q", got)
	}
}

func TestDefaultRules_Copy(t *testing.T) {
	first := DefaultRules()
	if len(first) == 0 {
		t.Fatal("DefaultRules() returned no rules")
	}
	for _, r := range first {
		if r.Priority != 0 {
			t.Errorf("built-in rule %q has priority %d", r.Name, r.Priority)
		}
		if r.Name == "" {
			t.Error("built-in rule without a name")
		}
	}

	first[0] = Rule{Name: "mutated"}
	if second := DefaultRules(); second[0].Name == "mutated" {
		t.Error("DefaultRules() exposed the cached table")
	}
}
