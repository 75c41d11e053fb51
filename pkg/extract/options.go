// Package extract prunes navigation, chrome and other non-content subtrees
// from a parsed HTML document before it is converted to Markdown.
package extract

import (
	"regexp"
	"strings"
)

// Pattern matches a class or id attribute value, either as a plain
// substring or as a regular expression.
type Pattern struct {
	substr string
	re     *regexp.Regexp
}

// Substring returns a pattern that matches any value containing s.
func Substring(s string) Pattern {
	return Pattern{substr: s}
}

// Regexp returns a pattern that matches values accepted by re.
func Regexp(re *regexp.Regexp) Pattern {
	return Pattern{re: re}
}

// MustCompile compiles expr into a regular expression pattern.
// It panics if expr is invalid, like regexp.MustCompile.
func MustCompile(expr string) Pattern {
	return Pattern{re: regexp.MustCompile(expr)}
}

// ParsePattern interprets s as a regular expression when it is wrapped in
// slashes (/expr/) and as a substring otherwise. This is the form used by
// config files and CLI flags.
func ParsePattern(s string) (Pattern, error) {
	if len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") {
		re, err := regexp.Compile(s[1 : len(s)-1])
		if err != nil {
			return Pattern{}, err
		}
		return Regexp(re), nil
	}
	return Substring(s), nil
}

// Match reports whether value matches the pattern.
func (p Pattern) Match(value string) bool {
	if p.re != nil {
		return p.re.MatchString(value)
	}
	if p.substr == "" {
		return false
	}
	return strings.Contains(value, p.substr)
}

// String returns the pattern in the form accepted by ParsePattern.
func (p Pattern) String() string {
	if p.re != nil {
		return "/" + p.re.String() + "/"
	}
	return p.substr
}

// Options configures which elements are stripped.
//
// The pattern sets are merge-only: entries are added to the built-in
// defaults, never substituted for them. The Keep* flags are the only way
// to take a default away.
type Options struct {
	// StripTags adds tag names to the default strip set.
	StripTags []string `json:"strip_tags,omitempty" yaml:"strip_tags,omitempty"`

	// StripRoles adds ARIA role values to the default strip set.
	StripRoles []string `json:"strip_roles,omitempty" yaml:"strip_roles,omitempty"`

	// StripClasses adds class attribute patterns.
	StripClasses []Pattern `json:"-" yaml:"-"`

	// StripIDs adds id attribute patterns.
	StripIDs []Pattern `json:"-" yaml:"-"`

	// KeepHeader keeps <header> elements.
	KeepHeader bool `json:"keep_header,omitempty" yaml:"keep_header,omitempty"`

	// KeepFooter keeps <footer> elements.
	KeepFooter bool `json:"keep_footer,omitempty" yaml:"keep_footer,omitempty"`

	// KeepNav keeps <nav> elements.
	KeepNav bool `json:"keep_nav,omitempty" yaml:"keep_nav,omitempty"`
}

// DefaultStripTags are tags that never carry page content.
var DefaultStripTags = []string{
	"script", "style", "noscript", "template",
	"iframe", "svg", "canvas",
	"form", "button", "select", "textarea",
	"nav", "header", "footer", "aside",
}

// DefaultStripRoles are ARIA landmark and widget roles used for page chrome.
var DefaultStripRoles = []string{
	"navigation", "banner", "contentinfo", "complementary",
	"search", "menu", "menubar", "dialog", "alertdialog",
}

// DefaultStripClasses matches common boilerplate class names.
var DefaultStripClasses = []Pattern{
	Substring("sidebar"),
	Substring("cookie"),
	Substring("consent"),
	Substring("newsletter"),
	Substring("breadcrumb"),
	Substring("pagination"),
	Substring("popup"),
	Substring("modal"),
	Substring("share"),
	Substring("social"),
	MustCompile(`\b(ad|ads|advert|advertisement|sponsored)\b`),
}

// DefaultStripIDs matches common boilerplate element ids.
var DefaultStripIDs = []Pattern{
	Substring("sidebar"),
	Substring("cookie"),
	Substring("comments"),
	MustCompile(`^(nav|menu|header|footer|banner)$`),
	MustCompile(`\b(ad|ads)\b`),
}

// matcher is the resolved form of Options used during traversal.
type matcher struct {
	tags    map[string]struct{}
	roles   map[string]struct{}
	classes []Pattern
	ids     []Pattern
}

func newMatcher(opts *Options) *matcher {
	if opts == nil {
		opts = &Options{}
	}

	m := &matcher{
		tags:  make(map[string]struct{}, len(DefaultStripTags)+len(opts.StripTags)),
		roles: make(map[string]struct{}, len(DefaultStripRoles)+len(opts.StripRoles)),
	}
	for _, t := range DefaultStripTags {
		m.tags[t] = struct{}{}
	}
	for _, t := range opts.StripTags {
		m.tags[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	for _, r := range DefaultStripRoles {
		m.roles[r] = struct{}{}
	}
	for _, r := range opts.StripRoles {
		m.roles[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	if opts.KeepHeader {
		delete(m.tags, "header")
	}
	if opts.KeepFooter {
		delete(m.tags, "footer")
	}
	if opts.KeepNav {
		delete(m.tags, "nav")
	}

	m.classes = append(append(m.classes, DefaultStripClasses...), opts.StripClasses...)
	m.ids = append(append(m.ids, DefaultStripIDs...), opts.StripIDs...)
	return m
}

func matchAny(patterns []Pattern, value string) bool {
	if value == "" {
		return false
	}
	for _, p := range patterns {
		if p.Match(value) {
			return true
		}
	}
	return false
}
