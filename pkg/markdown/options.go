package markdown

// HeadingStyle selects how h1 and h2 are rendered.
type HeadingStyle string

const (
	HeadingATX    HeadingStyle = "atx"
	HeadingSetext HeadingStyle = "setext"
)

// CodeBlockStyle selects how <pre> blocks are rendered.
type CodeBlockStyle string

const (
	CodeBlockFenced   CodeBlockStyle = "fenced"
	CodeBlockIndented CodeBlockStyle = "indented"
)

// LinkStyle selects inline links or numbered reference links.
type LinkStyle string

const (
	LinkInlined    LinkStyle = "inlined"
	LinkReferenced LinkStyle = "referenced"
)

// DefaultMaxDepth bounds element nesting for the walker.
const DefaultMaxDepth = 512

// Options controls Markdown formatting. Zero values select the defaults
// listed on each field.
type Options struct {
	// HeadingStyle: atx (default) or setext. Setext only applies to h1 and h2.
	HeadingStyle HeadingStyle `json:"heading_style,omitempty" yaml:"heading_style,omitempty" validate:"omitempty,oneof=atx setext"`

	// BulletChar: "-" (default), "*" or "+".
	BulletChar string `json:"bullet_char,omitempty" yaml:"bullet_char,omitempty" validate:"omitempty,oneof=- * +"`

	// CodeBlockStyle: fenced (default) or indented.
	CodeBlockStyle CodeBlockStyle `json:"code_block_style,omitempty" yaml:"code_block_style,omitempty" validate:"omitempty,oneof=fenced indented"`

	// FenceChar: "`" (default) or "~".
	FenceChar string `json:"fence_char,omitempty" yaml:"fence_char,omitempty" validate:"omitempty,fencechar"`

	// StrongDelimiter: "**" (default) or "__".
	StrongDelimiter string `json:"strong_delimiter,omitempty" yaml:"strong_delimiter,omitempty" validate:"omitempty,oneof=** __"`

	// EmDelimiter: "*" (default) or "_".
	EmDelimiter string `json:"em_delimiter,omitempty" yaml:"em_delimiter,omitempty" validate:"omitempty,oneof=* _"`

	// LinkStyle: inlined (default) or referenced.
	LinkStyle LinkStyle `json:"link_style,omitempty" yaml:"link_style,omitempty" validate:"omitempty,oneof=inlined referenced"`

	// BaseURL resolves relative href and src attributes.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`

	// MaxDepth bounds element nesting. Deeper subtrees are emitted as
	// plain text. Default DefaultMaxDepth.
	MaxDepth int `json:"max_depth,omitempty" yaml:"max_depth,omitempty" validate:"gte=0"`
}

// WithDefaults returns a copy of o with every zero field set to its default.
func (o Options) WithDefaults() Options {
	if o.HeadingStyle == "" {
		o.HeadingStyle = HeadingATX
	}
	if o.BulletChar == "" {
		o.BulletChar = "-"
	}
	if o.CodeBlockStyle == "" {
		o.CodeBlockStyle = CodeBlockFenced
	}
	if o.FenceChar == "" {
		o.FenceChar = "`"
	}
	if o.StrongDelimiter == "" {
		o.StrongDelimiter = "**"
	}
	if o.EmDelimiter == "" {
		o.EmDelimiter = "*"
	}
	if o.LinkStyle == "" {
		o.LinkStyle = LinkInlined
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}
