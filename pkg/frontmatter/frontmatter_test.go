package frontmatter

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}
	return doc
}

func TestExtract(t *testing.T) {
	doc := parse(t, `<html><head>
		<title>  My   Page </title>
		<meta name="description" content="A page about things">
		<meta name="author" content="Jane Doe">
		<meta name="keywords" content="a, b">
		<meta property="og:image" content="https://example.com/i.png">
		<link rel="canonical" href="https://example.com/page">
	</head><body><p>x</p></body></html>`)

	got := Extract(doc, "https://fallback.example")
	want := map[string]string{
		FieldTitle:       "My Page",
		FieldDescription: "A page about things",
		FieldAuthor:      "Jane Doe",
		FieldKeywords:    "a, b",
		FieldImage:       "https://example.com/i.png",
		FieldURL:         "https://example.com/page",
	}

	if len(got) != len(want) {
		t.Errorf("got %d fields, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestExtract_Fallbacks(t *testing.T) {
	doc := parse(t, `<head>
		<meta property="og:title" content="OG Title">
		<meta property="og:description" content="OG Desc">
	</head><p>x</p>`)

	got := Extract(doc, "https://example.com/base")
	if got[FieldTitle] != "OG Title" {
		t.Errorf("title = %q", got[FieldTitle])
	}
	if got[FieldDescription] != "OG Desc" {
		t.Errorf("description = %q", got[FieldDescription])
	}
	if got[FieldURL] != "https://example.com/base" {
		t.Errorf("url = %q", got[FieldURL])
	}
	if _, ok := got[FieldAuthor]; ok {
		t.Error("expected no author field")
	}
}

func TestExtract_Empty(t *testing.T) {
	if got := Extract(parse(t, "<p>only body</p>"), ""); len(got) != 0 {
		t.Errorf("expected no fields, got %v", got)
	}
	if got := Extract(nil, ""); len(got) != 0 {
		t.Errorf("expected no fields for nil document, got %v", got)
	}
}

func TestMerge(t *testing.T) {
	got := Merge(
		map[string]string{"title": "Extracted", "author": "A"},
		map[string]string{"title": "Override", "author": "", "source": "crawler"},
	)
	if got["title"] != "Override" || got["source"] != "crawler" {
		t.Errorf("got %v", got)
	}
	if _, ok := got["author"]; ok {
		t.Errorf("expected author removed, got %v", got)
	}
}

func TestRender(t *testing.T) {
	out, err := Render(map[string]string{"title": "Hello: World", "author": "Me"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !strings.HasPrefix(out, "---\n") || !strings.HasSuffix(out, "---\n\n") {
		t.Fatalf("unexpected framing: %q", out)
	}
	if strings.Index(out, "author:") > strings.Index(out, "title:") {
		t.Errorf("expected sorted keys, got %q", out)
	}

	body := strings.TrimSuffix(strings.TrimPrefix(out, "---\n"), "---\n\n")
	var back map[string]string
	if err := yaml.Unmarshal([]byte(body), &back); err != nil {
		t.Fatalf("frontmatter is not valid YAML: %v", err)
	}
	if back["title"] != "Hello: World" {
		t.Errorf("title round-trip = %q", back["title"])
	}
}

func TestRender_Empty(t *testing.T) {
	out, err := Render(nil)
	if err != nil || out != "" {
		t.Errorf("Render(nil) = %q, %v", out, err)
	}
}
