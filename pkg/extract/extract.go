package extract

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Reason identifies which strip predicate removed an element.
type Reason string

const (
	ReasonTag   Reason = "tag"
	ReasonRole  Reason = "role"
	ReasonClass Reason = "class"
	ReasonID    Reason = "id"
)

// Stats records what Extract removed.
type Stats struct {
	// ElementsRemoved counts removed elements by tag name.
	ElementsRemoved map[string]int `json:"elements_removed" yaml:"elements_removed"`

	// Reasons counts removed elements by the predicate that matched.
	Reasons map[Reason]int `json:"reasons" yaml:"reasons"`

	// ElementsKept counts elements that survived, including descendants of kept elements.
	ElementsKept int `json:"elements_kept" yaml:"elements_kept"`
}

// NewStats creates a Stats with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsRemoved: make(map[string]int),
		Reasons:         make(map[Reason]int),
	}
}

// RecordRemoval records that an element with the given tag was removed.
func (s *Stats) RecordRemoval(tag string, reason Reason) {
	s.ElementsRemoved[tag]++
	s.Reasons[reason]++
}

// TotalRemoved returns the number of removed subtrees.
func (s *Stats) TotalRemoved() int {
	total := 0
	for _, n := range s.ElementsRemoved {
		total += n
	}
	return total
}

// String returns a one-line summary, tags sorted by name.
func (s *Stats) String() string {
	tags := make([]string, 0, len(s.ElementsRemoved))
	for tag := range s.ElementsRemoved {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, fmt.Sprintf("%s=%d", tag, s.ElementsRemoved[tag]))
	}
	return fmt.Sprintf("removed %d (%s), kept %d", s.TotalRemoved(), strings.Join(parts, ", "), s.ElementsKept)
}

// Extract removes every element of doc that matches a strip predicate,
// modifying doc in place. Predicates are tested in order tag, role,
// class, id; the first match wins. Removed subtrees are detached and
// their Parent pointer cleared. Descendants of kept elements are still
// examined, so a kept container can lose stripped children.
//
// The traversal uses an explicit stack, so document depth is not bounded
// by the goroutine stack.
func Extract(doc *html.Node, opts *Options) *Stats {
	stats := NewStats()
	if doc == nil {
		return stats
	}

	m := newMatcher(opts)
	stack := []*html.Node{doc}
	var matched []*html.Node

	for len(stack) > 0 {
		parent := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Collect first, splice after: removing while walking the sibling
		// list would skip the node following each removal.
		matched = matched[:0]
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if reason, ok := m.match(c); ok {
				stats.RecordRemoval(c.Data, reason)
				matched = append(matched, c)
				continue
			}
			stats.ElementsKept++
			stack = append(stack, c)
		}
		for _, c := range matched {
			parent.RemoveChild(c)
		}
	}

	return stats
}

// match tests the strip predicates in their fixed order. The document
// skeleton is never stripped: <body class="has-sidebar"> is common.
func (m *matcher) match(n *html.Node) (Reason, bool) {
	switch n.Data {
	case "html", "head", "body":
		return "", false
	}
	if _, ok := m.tags[n.Data]; ok {
		return ReasonTag, true
	}

	var role, class, id string
	for _, a := range n.Attr {
		switch a.Key {
		case "role":
			role = a.Val
		case "class":
			class = a.Val
		case "id":
			id = a.Val
		}
	}

	if role != "" && m.matchRole(role) {
		return ReasonRole, true
	}
	if matchAny(m.classes, class) {
		return ReasonClass, true
	}
	if matchAny(m.ids, id) {
		return ReasonID, true
	}
	return "", false
}

// matchRole accepts the attribute as a whole or any of its
// space-separated fallback tokens.
func (m *matcher) matchRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if _, ok := m.roles[role]; ok {
		return true
	}
	for _, tok := range strings.Fields(role) {
		if _, ok := m.roles[tok]; ok {
			return true
		}
	}
	return false
}
