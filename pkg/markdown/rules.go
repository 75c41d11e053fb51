package markdown

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// builtin returns the built-in rule table, all at priority 0.
func builtin() []Rule {
	return []Rule{
		{Name: "strip", Filter: Tags(
			"head", "title", "meta", "link", "base",
			"script", "style", "noscript", "template",
			"iframe", "svg", "canvas", "object", "embed",
		), Replacement: func(*Context) Outcome { return Remove }},

		{Name: "heading", Filter: Tags("h1", "h2", "h3", "h4", "h5", "h6"), Replacement: heading},
		{Name: "paragraph", Filter: Tag("p"), Replacement: paragraph},
		{Name: "blockquote", Filter: Tag("blockquote"), Replacement: blockquote},
		{Name: "codeBlock", Filter: Tag("pre"), Replacement: codeBlock},
		{Name: "inlineCode", Filter: Tags("code", "kbd", "samp", "tt"), Replacement: inlineCode},
		{Name: "horizontalRule", Filter: Tag("hr"), Replacement: horizontalRule},
		{Name: "lineBreak", Filter: Tag("br"), Replacement: lineBreak},

		{Name: "list", Filter: Tags("ul", "ol"), Replacement: list},
		{Name: "listItem", Filter: Tag("li"), Replacement: listItem},
		{Name: "checkbox", Filter: Tag("input"), Replacement: checkbox},
		{Name: "definitionList", Filter: Tag("dl"), Replacement: block},
		{Name: "definitionTerm", Filter: Tag("dt"), Replacement: definitionTerm},
		{Name: "definitionDescription", Filter: Tag("dd"), Replacement: definitionDescription},

		{Name: "table", Filter: Tag("table"), Replacement: table},

		{Name: "strong", Filter: Tags("strong", "b"), Replacement: delimited(func(o Options) string { return o.StrongDelimiter })},
		{Name: "emphasis", Filter: Tags("em", "i"), Replacement: delimited(func(o Options) string { return o.EmDelimiter })},
		{Name: "strikethrough", Filter: Tags("del", "s", "strike"), Replacement: delimited(func(Options) string { return "~~" })},
		{Name: "link", Filter: Tag("a"), Replacement: link},
		{Name: "image", Filter: Tag("img"), Replacement: image},
		{Name: "figcaption", Filter: Tag("figcaption"), Replacement: paragraph},
	}
}

func heading(ctx *Context) Outcome {
	content := strings.TrimSpace(collapseSpace(ctx.Content()))
	if content == "" {
		return Text("")
	}
	// Table cells are flattened to one line.
	if ctx.InsideTable {
		return Text("\n" + content + "\n")
	}

	level := int(ctx.Node.Data[1] - '0')
	if ctx.Options.HeadingStyle == HeadingSetext && level <= 2 {
		underline := "="
		if level == 2 {
			underline = "-"
		}
		return Text("\n\n" + content + "\n" + strings.Repeat(underline, utf8.RuneCountInString(content)) + "\n\n")
	}
	return Text("\n\n" + strings.Repeat("#", level) + " " + content + "\n\n")
}

func paragraph(ctx *Context) Outcome {
	content := strings.TrimSpace(ctx.Content())
	if content == "" {
		return Text("")
	}
	if ctx.InsideTable {
		return Text("\n" + content + "\n")
	}

	// Text following a <br> keeps the source indentation otherwise.
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimLeft(lines[i], " \t")
	}
	return Text("\n\n" + strings.Join(lines, "\n") + "\n\n")
}

// block renders an element as a standalone block of its converted children.
func block(ctx *Context) Outcome {
	content := strings.TrimSpace(squeezeBlankLines(ctx.Content()))
	if content == "" {
		return Text("")
	}
	return Text("\n\n" + content + "\n\n")
}

func blockquote(ctx *Context) Outcome {
	content := strings.TrimSpace(squeezeBlankLines(ctx.Content()))
	if content == "" {
		return Text("")
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + line
	}
	return Text("\n\n" + strings.Join(lines, "\n") + "\n\n")
}

func codeBlock(ctx *Context) Outcome {
	code := strings.Trim(ctx.Content(), "\n")
	if strings.TrimSpace(code) == "" {
		return Text("")
	}

	if ctx.Options.CodeBlockStyle == CodeBlockIndented {
		return Text("\n\n    " + indentLines(code, "    ") + "\n\n")
	}

	fc := ctx.Options.FenceChar
	fence := strings.Repeat(fc, max(3, longestRun(code, fc[0])+1))
	return Text("\n\n" + fence + codeLanguage(ctx.Node) + "\n" + code + "\n" + fence + "\n\n")
}

// codeLanguage reads a language-* or lang-* class from <pre> or its first <code>.
func codeLanguage(pre *html.Node) string {
	candidates := []*html.Node{pre}
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			candidates = append(candidates, c)
			break
		}
	}
	for _, n := range candidates {
		for _, class := range strings.Fields(attr(n, "class")) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok && lang != "" {
				return lang
			}
			if lang, ok := strings.CutPrefix(class, "lang-"); ok && lang != "" {
				return lang
			}
		}
	}
	return ""
}

func inlineCode(ctx *Context) Outcome {
	if ctx.InsidePre {
		return Pass
	}
	content := ctx.Content()
	if strings.TrimSpace(content) == "" {
		return Text("")
	}

	delim, pad := "`", ""
	if strings.Contains(content, "`") {
		delim = "``"
		if strings.HasPrefix(content, "`") || strings.HasSuffix(content, "`") {
			pad = " "
		}
	}
	return Text(delim + pad + content + pad + delim)
}

func horizontalRule(ctx *Context) Outcome {
	if ctx.InsideTable {
		return Text("")
	}
	return Text("\n\n---\n\n")
}

func lineBreak(ctx *Context) Outcome {
	switch {
	case ctx.InsidePre:
		return Text("\n")
	case ctx.InsideTable:
		return Text(" ")
	}
	return Text("  \n")
}

func list(ctx *Context) Outcome {
	content := strings.Trim(ctx.Content(), "\n")
	if strings.TrimSpace(content) == "" {
		return Text("")
	}
	// A nested list continues its parent item without blank lines.
	if ctx.ListDepth > 0 {
		return Text("\n" + content + "\n")
	}
	return Text("\n\n" + content + "\n\n")
}

func listItem(ctx *Context) Outcome {
	body := strings.TrimSpace(squeezeBlankLines(ctx.Content()))
	if body == "" {
		return Text("")
	}

	prefix := ctx.Options.BulletChar + " "
	if p := ctx.Parent; p != nil && p.Type == html.ElementNode && p.Data == "ol" {
		prefix = strconv.Itoa(ordinal(ctx.Node)) + ". "
	}
	return Text(prefix + indentLines(body, strings.Repeat(" ", len(prefix))) + "\n")
}

// ordinal numbers an <li> by the <li> siblings preceding it plus the
// parent's start attribute. Any value attribute on the item is ignored.
func ordinal(li *html.Node) int {
	start := 1
	if s := strings.TrimSpace(attr(li.Parent, "start")); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			start = n
		}
	}
	count := 0
	for c := li.Parent.FirstChild; c != nil && c != li; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			count++
		}
	}
	return start + count
}

func checkbox(ctx *Context) Outcome {
	if !strings.EqualFold(ctx.Attr("type"), "checkbox") {
		return Remove
	}
	mark := "[ ]"
	if hasAttr(ctx.Node, "checked") {
		mark = "[x]"
	}
	if next := ctx.Node.NextSibling; next == nil || next.Type != html.TextNode || !startsWithSpace(next.Data) {
		mark += " "
	}
	return Text(mark)
}

func definitionTerm(ctx *Context) Outcome {
	content := strings.TrimSpace(collapseSpace(ctx.Content()))
	if content == "" {
		return Text("")
	}
	d := ctx.Options.StrongDelimiter
	return Text(d + content + d + "\n")
}

func definitionDescription(ctx *Context) Outcome {
	content := strings.TrimSpace(squeezeBlankLines(ctx.Content()))
	if content == "" {
		return Text("")
	}
	return Text(": " + indentLines(content, "  ") + "\n")
}

func table(ctx *Context) Outcome {
	if ctx.InsideTable {
		return Text(strings.TrimSpace(collapseSpace(textContent(ctx.Node))))
	}

	var caption string
	var rows [][]string
	addRow := func(tr *html.Node) {
		var row []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				row = append(row, tableCell(ctx, c))
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	for c := ctx.Node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "caption":
			caption = tableCell(ctx, c)
		case "thead", "tbody", "tfoot":
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type == html.ElementNode && tr.Data == "tr" {
					addRow(tr)
				}
			}
		case "tr":
			addRow(c)
		}
	}

	if len(rows) == 0 {
		return Text("")
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	var sb strings.Builder
	sb.WriteString("\n\n")
	if caption != "" {
		sb.WriteString(caption)
		sb.WriteString("\n\n")
	}
	writeRow := func(row []string) {
		sb.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(" ")
			sb.WriteString(cell)
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(rows[0])
	sb.WriteString("|")
	for i := 0; i < width; i++ {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	sb.WriteString("\n")

	return Text(sb.String())
}

func tableCell(ctx *Context, cell *html.Node) string {
	text := strings.TrimSpace(collapseSpace(ctx.ConvertChildren(cell)))
	return strings.ReplaceAll(text, "|", `\|`)
}

// delimited wraps inline content in a delimiter, keeping surrounding
// whitespace outside the markers so "a<b> b </b>c" stays "a **b** c".
func delimited(delim func(Options) string) Replacement {
	return func(ctx *Context) Outcome {
		lead, body, trail := splitSpace(ctx.Content())
		if body == "" {
			return Text("")
		}
		d := delim(ctx.Options)
		return Text(lead + d + body + d + trail)
	}
}

func link(ctx *Context) Outcome {
	content := strings.TrimSpace(collapseSpace(ctx.Content()))
	if content == "" {
		return Text("")
	}

	href := strings.TrimSpace(ctx.Attr("href"))
	if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return Text(content)
	}

	dest := destination(ctx.ResolveURL(href), ctx.Attr("title"))
	if ctx.Options.LinkStyle == LinkReferenced {
		return Text("[" + content + "][" + strconv.Itoa(ctx.reference(dest)) + "]")
	}
	return Text("[" + content + "](" + dest + ")")
}

func image(ctx *Context) Outcome {
	src := strings.TrimSpace(ctx.Attr("src"))
	if src == "" {
		src = strings.TrimSpace(ctx.Attr("data-src"))
	}
	if src == "" {
		return Text("")
	}

	alt := strings.TrimSpace(collapseSpace(ctx.Attr("alt")))
	return Text("![" + alt + "](" + destination(ctx.ResolveURL(src), ctx.Attr("title")) + ")")
}

// destination formats a link target with an optional title.
func destination(href, title string) string {
	if strings.ContainsAny(href, " \t<>") {
		href = "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(href) + ">"
	}
	title = strings.TrimSpace(collapseSpace(title))
	if title == "" {
		return href
	}
	return href + ` "` + strings.ReplaceAll(title, `"`, `\"`) + `"`
}
