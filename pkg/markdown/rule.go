// Package markdown converts an HTML node tree to Markdown by dispatching
// each element to a priority-ordered table of rules.
package markdown

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// UserPriority is the priority NewRule assigns. Built-in rules use 0, so a
// user rule is tried before any built-in rule matching the same element.
const UserPriority = 100

type filterKind int

const (
	filterTag filterKind = iota
	filterTags
	filterFunc
)

// Filter selects the elements a rule applies to: a single tag name, a set
// of tag names, or a predicate.
type Filter struct {
	kind filterKind
	tag  string
	tags map[string]struct{}
	fn   func(*html.Node) bool
}

// Tag matches elements with the given tag name.
func Tag(name string) Filter {
	return Filter{kind: filterTag, tag: strings.ToLower(name)}
}

// Tags matches elements whose tag name is any of names.
func Tags(names ...string) Filter {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return Filter{kind: filterTags, tags: set}
}

// Func matches elements for which fn returns true.
func Func(fn func(n *html.Node) bool) Filter {
	return Filter{kind: filterFunc, fn: fn}
}

// Matches reports whether the element n is selected by the filter.
func (f Filter) Matches(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch f.kind {
	case filterTag:
		return n.Data == f.tag
	case filterTags:
		_, ok := f.tags[n.Data]
		return ok
	case filterFunc:
		return f.fn != nil && f.fn(n)
	}
	return false
}

type outcomeKind int

const (
	outcomeText outcomeKind = iota
	outcomeRemove
	outcomePass
)

// Outcome is what a replacement returns: a Markdown fragment, Remove, or Pass.
type Outcome struct {
	kind outcomeKind
	text string
}

var (
	// Remove drops the element and its subtree from the output.
	Remove = Outcome{kind: outcomeRemove}

	// Pass declines the element; the next matching rule is tried.
	Pass = Outcome{kind: outcomePass}
)

// Text returns an outcome whose fragment is s. An empty s produces no output.
func Text(s string) Outcome {
	return Outcome{kind: outcomeText, text: s}
}

// Replacement produces the Markdown for an element.
type Replacement func(ctx *Context) Outcome

// Rule pairs a filter with a replacement.
type Rule struct {
	// Name is used in logs and tests only.
	Name        string
	Filter      Filter
	Replacement Replacement
	Priority    int
}

// NewRule returns a rule at UserPriority.
func NewRule(filter Filter, replacement Replacement) Rule {
	return Rule{Filter: filter, Replacement: replacement, Priority: UserPriority}
}

// WithPriority returns a copy of r with the given priority.
func (r Rule) WithPriority(p int) Rule {
	r.Priority = p
	return r
}

// WithName returns a copy of r with the given name.
func (r Rule) WithName(name string) Rule {
	r.Name = name
	return r
}

// MergeRules returns user followed by defaults, stably sorted by priority
// descending. Rules with equal priority keep that order, so a user rule
// still precedes a built-in of the same priority.
func MergeRules(user, defaults []Rule) []Rule {
	merged := make([]Rule, 0, len(user)+len(defaults))
	merged = append(merged, user...)
	merged = append(merged, defaults...)
	slices.SortStableFunc(merged, func(a, b Rule) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	return merged
}

var builtinRules = sync.OnceValue(func() []Rule {
	return MergeRules(nil, builtin())
})

// DefaultRules returns a copy of the built-in rule table. The table is
// built once on first use and shared read-only by every conversion.
func DefaultRules() []Rule {
	return slices.Clone(builtinRules())
}
