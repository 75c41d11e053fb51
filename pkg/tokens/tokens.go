// Package tokens estimates how many LLM tokens a Markdown document costs.
package tokens

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Estimate is the size of a text in tokens, characters and words.
type Estimate struct {
	Tokens     int `json:"tokens" yaml:"tokens"`
	Characters int `json:"characters" yaml:"characters"`
	Words      int `json:"words" yaml:"words"`
}

// Counter computes an Estimate for a text.
type Counter func(text string) Estimate

// CharsPerToken is the ratio the heuristic counter assumes.
const CharsPerToken = 4

// Heuristic estimates tokens as characters divided by CharsPerToken,
// rounded up. Characters are counted as runes; words are the
// whitespace-separated fields.
func Heuristic(text string) Estimate {
	chars := utf8.RuneCountInString(text)
	return Estimate{
		Tokens:     (chars + CharsPerToken - 1) / CharsPerToken,
		Characters: chars,
		Words:      len(strings.Fields(text)),
	}
}

// DefaultEncoding is the BPE encoding NewTiktoken is usually given.
const DefaultEncoding = "cl100k_base"

// NewTiktoken returns a Counter that counts tokens with the named BPE
// encoding. Loading an encoding may download its rank file on first use.
func NewTiktoken(encoding string) (Counter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	return func(text string) Estimate {
		e := Heuristic(text)
		e.Tokens = len(enc.Encode(text, nil, nil))
		return e
	}, nil
}
