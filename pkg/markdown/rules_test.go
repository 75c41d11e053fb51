package markdown

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

func TestBuiltinRules(t *testing.T) {
	tests := []struct {
		name string
		html string
		opts Options
		want string
	}{
		{
			name: "atx headings",
			html: "<h1>One</h1><h3>Three</h3><h6>Six</h6>",
			want: "# One\n\n### Three\n\n###### Six",
		},
		{
			name: "setext headings",
			html: "<h1>Title</h1><h2>Sub</h2><h3>Deep</h3>",
			opts: Options{HeadingStyle: HeadingSetext},
			want: "Title\n=====\n\nSub\n---\n\n### Deep",
		},
		{
			name: "setext counts runes",
			html: "<h1>Café</h1>",
			opts: Options{HeadingStyle: HeadingSetext},
			want: "Café\n====",
		},
		{
			name: "heading whitespace",
			html: "<h2>\n  Spaced\n  out  </h2>",
			want: "## Spaced out",
		},
		{
			name: "paragraphs",
			html: "<p>One</p><p>Two</p>",
			want: "One\n\nTwo",
		},
		{
			name: "line break",
			html: "<p>a<br>b</p>",
			want: "a  \nb",
		},
		{
			name: "blockquote",
			html: "<blockquote><p>one</p><p>two</p></blockquote>",
			want: "> one\n>\n> two",
		},
		{
			name: "horizontal rule",
			html: "<p>a</p><hr><p>b</p>",
			want: "a\n\n---\n\nb",
		},
		{
			name: "unordered list",
			html: "<ul>\n  <li>One</li>\n  <li>Two</li>\n</ul>",
			want: "- One\n- Two",
		},
		{
			name: "bullet char",
			html: "<ul><li>One</li></ul>",
			opts: Options{BulletChar: "*"},
			want: "* One",
		},
		{
			name: "ordered list start",
			html: `<ol start="5"><li>Five</li><li>Six</li></ol>`,
			want: "5. Five\n6. Six",
		},
		{
			name: "ordered list ignores item value",
			html: `<ol><li>One</li><li value="9">Two</li></ol>`,
			want: "1. One\n2. Two",
		},
		{
			name: "nested list",
			html: "<ul><li>One<ul><li>Sub</li></ul></li><li>Two</li></ul>",
			want: "- One\n  - Sub\n- Two",
		},
		{
			name: "nested ordered list",
			html: "<ol><li>One<ol><li>Sub</li></ol></li></ol>",
			want: "1. One\n   1. Sub",
		},
		{
			name: "task list",
			html: `<ul><li><input type="checkbox" checked> Done</li><li><input type="checkbox">Todo</li></ul>`,
			want: "- [x] Done\n- [ ] Todo",
		},
		{
			name: "non-checkbox input removed",
			html: `<p>a<input type="text" value="x">b</p>`,
			want: "ab",
		},
		{
			name: "definition list",
			html: "<dl><dt>Term</dt><dd>Definition</dd></dl>",
			want: "**Term**\n: Definition",
		},
		{
			name: "strong and emphasis",
			html: "<p><b>bold</b> and <i>italic</i> and <del>gone</del></p>",
			want: "**bold** and *italic* and ~~gone~~",
		},
		{
			name: "custom delimiters",
			html: "<p><strong>bold</strong> <em>it</em></p>",
			opts: Options{StrongDelimiter: "__", EmDelimiter: "_"},
			want: "__bold__ _it_",
		},
		{
			name: "delimiters keep outer whitespace",
			html: "<p>a<strong> b </strong>c</p>",
			want: "a **b** c",
		},
		{
			name: "inline code",
			html: "<p>run <code>go test</code></p>",
			want: "run `go test`",
		},
		{
			name: "inline code with backtick",
			html: "<p><code>a`b</code></p>",
			want: "``a`b``",
		},
		{
			name: "inline code padded",
			html: "<p><code>`x</code></p>",
			want: "`` `x ``",
		},
		{
			name: "fenced code with language",
			html: "<pre><code class=\"language-go\">fmt.Println(1)\n</code></pre>",
			want: "```go\nfmt.Println(1)\n```",
		},
		{
			name: "fence longer than content run",
			html: "<pre>a ``` b</pre>",
			want: "````\na ``` b\n````",
		},
		{
			name: "tilde fence",
			html: "<pre class=\"lang-sh\">ls</pre>",
			opts: Options{FenceChar: "~"},
			want: "~~~sh\nls\n~~~",
		},
		{
			name: "code keeps whitespace",
			html: "<pre>if x {\n    y()\n}</pre>",
			want: "```\nif x {\n    y()\n}\n```",
		},
		{
			name: "link",
			html: `<p><a href="https://example.com">Example</a></p>`,
			want: "[Example](https://example.com)",
		},
		{
			name: "link title",
			html: `<p><a href="/x" title="The X">X</a></p>`,
			want: `[X](/x "The X")`,
		},
		{
			name: "link without href",
			html: `<p><a name="top">Top</a></p>`,
			want: "Top",
		},
		{
			name: "javascript link",
			html: `<p><a href="javascript:void(0)">Click</a></p>`,
			want: "Click",
		},
		{
			name: "link resolved against base",
			html: `<p><a href="docs/a">A</a> <a href="#s">S</a></p>`,
			opts: Options{BaseURL: "https://example.com/"},
			want: "[A](https://example.com/docs/a) [S](#s)",
		},
		{
			name: "image",
			html: `<p><img src="/i.png" alt="Alt" title="T"></p>`,
			opts: Options{BaseURL: "https://example.com"},
			want: `![Alt](https://example.com/i.png "T")`,
		},
		{
			name: "lazy image",
			html: `<p><img data-src="/lazy.png" alt="L"></p>`,
			want: "![L](/lazy.png)",
		},
		{
			name: "data uri image",
			html: `<p><img src="data:image/png;base64,AAAA" alt="D"></p>`,
			opts: Options{BaseURL: "https://example.com"},
			want: "![D](data:image/png;base64,AAAA)",
		},
		{
			name: "image destination with space",
			html: `<p><img src="/a b.png" alt="S"></p>`,
			want: "![S](</a b.png>)",
		},
		{
			name: "figure",
			html: `<figure><img src="/f.png" alt="F"><figcaption>Caption</figcaption></figure>`,
			want: "![F](/f.png)\n\nCaption",
		},
		{
			name: "metadata stripped",
			html: "<head><title>T</title><style>p{}</style></head><body><script>x()</script><p>Body</p><noscript>js</noscript></body>",
			want: "Body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertHTML(t, tt.html, tt.opts, nil)
			if got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestBuiltinRules_IndentedCode(t *testing.T) {
	doc := parse(t, "<pre>line1\n  line2</pre>")
	got := NewConverter(Options{CodeBlockStyle: CodeBlockIndented}, nil).Convert(doc)

	if !strings.Contains(got, "\n    line1\n      line2\n") {
		t.Errorf("expected 4-space indented block, got %q", got)
	}
}

func TestBuiltinRules_Table(t *testing.T) {
	src := `<table>
		<caption>Sizes</caption>
		<thead><tr><th>Name</th><th>Size</th></tr></thead>
		<tbody>
			<tr><td>a|b</td><td><strong>1</strong> KB</td></tr>
			<tr><td>c</td></tr>
		</tbody>
	</table>`

	got := convertHTML(t, src, Options{}, nil)
	want := "Sizes\n\n" +
		"| Name | Size |\n" +
		"| --- | --- |\n" +
		"| a\\|b | **1** KB |\n" +
		"| c |  |"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestBuiltinRules_TableCellBlocks(t *testing.T) {
	src := `<table><tr><td><p>one</p><p>two</p></td><td>x<br>y</td></tr></table>`
	got := convertHTML(t, src, Options{}, nil)

	if !strings.Contains(got, "| one two | x y |") {
		t.Errorf("expected flattened cells, got %q", got)
	}
}

func TestBuiltinRules_NestedTable(t *testing.T) {
	src := `<table><tr><td>outer <table><tr><td>inner</td></tr></table></td></tr></table>`
	got := convertHTML(t, src, Options{}, nil)

	if strings.Count(got, "| --- |") != 1 {
		t.Errorf("expected one table, got %q", got)
	}
	if !strings.Contains(got, "inner") {
		t.Errorf("expected nested table text, got %q", got)
	}
}

func TestBuiltinRules_ReferenceLinks(t *testing.T) {
	src := `<p><a href="/a">A</a> and <a href="/b">B</a> and <a href="/a">again</a></p>`
	got := convertHTML(t, src, Options{LinkStyle: LinkReferenced, BaseURL: "https://example.com"}, nil)

	want := "[A][1] and [B][2] and [again][1]\n\n" +
		"[1]: https://example.com/a\n" +
		"[2]: https://example.com/b"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

// TestBuiltinRules_ValidMarkdown renders the converter output back to HTML
// and checks the structure survived.
func TestBuiltinRules_ValidMarkdown(t *testing.T) {
	src := `<h1>Doc</h1>
<ol start="3"><li>three</li><li>four</li></ol>
<ul><li><input type="checkbox" checked> done</li></ul>
<p><a href="https://example.com/a">A</a><a href="https://example.com/b">B</a></p>
<table><tr><th>H</th></tr><tr><td>v</td></tr></table>
<pre><code class="language-go">x := 1</code></pre>
<p><del>old</del></p>`

	for _, style := range []LinkStyle{LinkInlined, LinkReferenced} {
		t.Run(string(style), func(t *testing.T) {
			md := convertHTML(t, src, Options{LinkStyle: style}, nil)

			var buf bytes.Buffer
			gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
			if err := gm.Convert([]byte(md), &buf); err != nil {
				t.Fatalf("goldmark Convert() error = %v", err)
			}
			out := buf.String()

			for _, want := range []string{
				"<h1>Doc</h1>",
				`<ol start="3">`,
				"<li>four</li>",
				`checked=""`,
				`<a href="https://example.com/a">A</a> <a href="https://example.com/b">B</a>`,
				"<th>H</th>",
				"<td>v</td>",
				`<code class="language-go">x := 1`,
				"<del>old</del>",
			} {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in rendered HTML:\n%s\nmarkdown:\n%s", want, out, md)
				}
			}
		})
	}
}
