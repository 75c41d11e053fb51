// Package frontmatter extracts page metadata from an HTML document and
// renders it as a YAML frontmatter block.
package frontmatter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Field names produced by Extract.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldAuthor      = "author"
	FieldKeywords    = "keywords"
	FieldImage       = "image"
	FieldURL         = "url"
)

// Extract reads title, description, author, keywords, og:image and the
// canonical URL from doc. Missing values are omitted. baseURL fills the url
// field when the document declares no canonical link.
// Call it before the extractor runs, which may remove <head> content.
func Extract(doc *html.Node, baseURL string) map[string]string {
	fields := make(map[string]string)
	if doc == nil {
		return fields
	}
	d := goquery.NewDocumentFromNode(doc)

	set := func(key, value string) {
		value = strings.Join(strings.Fields(value), " ")
		if value != "" {
			fields[key] = value
		}
	}

	set(FieldTitle, d.Find("title").First().Text())
	if _, ok := fields[FieldTitle]; !ok {
		set(FieldTitle, metaContent(d, `meta[property="og:title"]`))
	}

	set(FieldDescription, metaContent(d, `meta[name="description"]`))
	if _, ok := fields[FieldDescription]; !ok {
		set(FieldDescription, metaContent(d, `meta[property="og:description"]`))
	}

	set(FieldAuthor, metaContent(d, `meta[name="author"]`))
	set(FieldKeywords, metaContent(d, `meta[name="keywords"]`))
	set(FieldImage, metaContent(d, `meta[property="og:image"]`))

	if href, ok := d.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		set(FieldURL, href)
	}
	if _, ok := fields[FieldURL]; !ok {
		set(FieldURL, baseURL)
	}

	return fields
}

func metaContent(d *goquery.Document, selector string) string {
	content, _ := d.Find(selector).First().Attr("content")
	return content
}

// Merge returns extracted with overrides applied on top. An empty override
// value deletes the field.
func Merge(extracted, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(extracted)+len(overrides))
	for k, v := range extracted {
		merged[k] = v
	}
	for k, v := range overrides {
		if v == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}

// Render serializes fields as "---\n<yaml>---\n\n" with keys sorted.
// Empty fields render as "".
func Render(fields map[string]string) (string, error) {
	if len(fields) == 0 {
		return "", nil
	}
	out, err := yaml.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	return "---\n" + string(out) + "---\n\n", nil
}
