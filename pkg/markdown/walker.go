package markdown

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// state is the formatting context a subtree is walked in.
type state struct {
	listDepth   int
	insidePre   bool
	insideCode  bool
	insideTable bool
	depth       int
}

// enter derives the state for the children of element n. The pre and
// table flags stay set for the rest of the subtree once entered.
func (s state) enter(n *html.Node) state {
	if n.Type != html.ElementNode {
		return s
	}
	s.depth++
	switch n.Data {
	case "pre":
		s.insidePre = true
	case "code", "kbd", "samp":
		s.insideCode = true
	case "table":
		s.insideTable = true
	case "ul", "ol":
		s.listDepth++
	}
	return s
}

// Context is the read-only view a replacement receives.
type Context struct {
	// Node is the matched element.
	Node *html.Node

	// Parent is Node's parent, nil for a detached node.
	Parent *html.Node

	// Options are the resolved formatting options.
	Options Options

	// ListDepth counts the ul/ol elements enclosing Node.
	ListDepth int

	// InsidePre is set when Node is inside a <pre>.
	InsidePre bool

	// InsideTable is set when Node is inside a <table>.
	InsideTable bool

	w  *walker
	st state
}

// ConvertChildren walks the children of n and returns their Markdown.
// n is normally ctx.Node; passing a descendant converts that subtree in
// the state derived from both ctx.Node and n.
func (c *Context) ConvertChildren(n *html.Node) string {
	st := c.st.enter(c.Node)
	if n != c.Node {
		st = st.enter(n)
	}
	return c.w.walk(n, st)
}

// Content is shorthand for ConvertChildren(ctx.Node).
func (c *Context) Content() string {
	return c.ConvertChildren(c.Node)
}

// Attr returns the value of the named attribute of Node, or "".
func (c *Context) Attr(key string) string {
	return attr(c.Node, key)
}

// ResolveURL resolves raw against Options.BaseURL. URLs that already carry
// a scheme (including data: URIs) and fragment-only references are
// returned unchanged, as is everything when no base URL is set.
func (c *Context) ResolveURL(raw string) string {
	return resolveURL(c.Options.BaseURL, raw)
}

// reference registers href for reference-style output and returns its number.
func (c *Context) reference(href string) int {
	return c.w.refs.add(href)
}

// Converter turns a parsed document into raw, unnormalized Markdown.
// A Converter is safe for concurrent use; each Convert call owns its tree.
type Converter struct {
	rules []Rule
	opts  Options
}

// NewConverter creates a converter. A nil rules slice selects the
// built-in table; otherwise rules is used as given and must already be
// sorted (see MergeRules).
func NewConverter(opts Options, rules []Rule) *Converter {
	if rules == nil {
		rules = builtinRules()
	}
	return &Converter{rules: rules, opts: opts.WithDefaults()}
}

// Options returns the resolved options the converter renders with.
func (c *Converter) Options() Options {
	return c.opts
}

// Convert walks the children of root depth-first and returns the
// concatenated fragments. With LinkStyle referenced the link definitions
// are appended as a final block.
func (c *Converter) Convert(root *html.Node) string {
	w := &walker{rules: c.rules, opts: &c.opts, refs: newReferences()}
	out := w.walk(root, state{})
	if defs := w.refs.definitions(); defs != "" {
		out += "\n\n" + defs + "\n"
	}
	return out
}

type walker struct {
	rules []Rule
	opts  *Options
	refs  *references
}

func (w *walker) walk(n *html.Node, st state) string {
	var sb strings.Builder
	prevElement := false

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			prevElement = false
			sb.WriteString(w.text(c, st))

		case html.ElementNode:
			// An element without output leaves prevElement as it was, so
			// <a/><span></span><a/> still gets a separator.
			frag := w.element(c, st)
			if frag == "" {
				continue
			}
			// Two inline elements with no text node between them would
			// otherwise fuse, e.g. "[a](/a)[b](/b)".
			if prevElement && !st.insidePre && !st.insideTable && !startsWithSpace(frag) && sb.Len() > 0 && !endsInSpace(sb.String()) {
				sb.WriteByte(' ')
			}
			sb.WriteString(frag)
			prevElement = true
		}
	}

	return sb.String()
}

func (w *walker) text(n *html.Node, st state) string {
	if st.insidePre {
		return n.Data
	}
	if isBlank(n.Data) && (st.insideTable || isListContainer(n.Parent)) {
		return ""
	}
	if st.insideCode {
		return collapseSpace(n.Data)
	}
	return escapeText(collapseSpace(n.Data))
}

func (w *walker) element(n *html.Node, st state) string {
	if st.depth >= w.opts.MaxDepth {
		return collapseSpace(textContent(n))
	}

	ctx := &Context{
		Node:        n,
		Parent:      n.Parent,
		Options:     *w.opts,
		ListDepth:   st.listDepth,
		InsidePre:   st.insidePre,
		InsideTable: st.insideTable,
		w:           w,
		st:          st,
	}

	for i := range w.rules {
		r := &w.rules[i]
		if r.Replacement == nil || !r.Filter.Matches(n) {
			continue
		}
		out := r.Replacement(ctx)
		switch out.kind {
		case outcomeText:
			return out.text
		case outcomeRemove:
			return ""
		}
	}

	return w.walk(n, st.enter(n))
}

// references numbers link targets by first appearance.
type references struct {
	index map[string]int
	urls  []string
}

func newReferences() *references {
	return &references{index: make(map[string]int)}
}

func (r *references) add(href string) int {
	if n, ok := r.index[href]; ok {
		return n
	}
	r.urls = append(r.urls, href)
	n := len(r.urls)
	r.index[href] = n
	return n
}

func (r *references) definitions() string {
	if len(r.urls) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, u := range r.urls {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString("]: ")
		sb.WriteString(u)
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func resolveURL(base, raw string) string {
	raw = strings.TrimSpace(raw)
	if base == "" || raw == "" || strings.HasPrefix(raw, "#") {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil || ref.Scheme != "" {
		return raw
	}
	b, err := url.Parse(base)
	if err != nil {
		return raw
	}
	return b.ResolveReference(ref).String()
}

func isListContainer(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "ul", "ol", "dl":
		return true
	}
	return false
}

// textContent gathers the text below n without recursion.
func textContent(n *html.Node) string {
	var sb strings.Builder
	stack := []*html.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Type == html.TextNode {
			sb.WriteString(cur.Data)
			sb.WriteByte(' ')
			continue
		}
		if cur.Type == html.ElementNode {
			switch cur.Data {
			case "script", "style", "head", "template":
				continue
			}
		}
		for c := cur.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
	return sb.String()
}
