// Package dedup removes repeated blocks from normalized Markdown while
// keeping repeated section headings whose content differs.
package dedup

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jmylchreest/agentmd/pkg/render"
)

// DefaultMinLength is the fingerprint length below which a block is never
// treated as a duplicate.
const DefaultMinLength = 10

// Options configures Deduplicate.
type Options struct {
	// MinLength is the fingerprint length floor, counted in characters.
	// Zero selects DefaultMinLength.
	MinLength int `json:"min_length,omitempty" yaml:"min_length,omitempty" validate:"gte=0"`
}

func (o *Options) minLength() int {
	if o == nil || o.MinLength <= 0 {
		return DefaultMinLength
	}
	return o.MinLength
}

var (
	blockSep      = regexp.MustCompile(`\n{2,}`)
	headingMarker = regexp.MustCompile(`^#{1,6} `)
	spaceRun      = regexp.MustCompile(`\s+`)
)

// Fingerprint is the normalized dedup key of a block: lower-cased, trimmed,
// with whitespace runs collapsed to single spaces.
func Fingerprint(s string) string {
	return spaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// Deduplicate drops blocks of md that repeat an earlier block. A heading
// followed by content is handled as one section: the pair is dropped only
// when the same heading and content appeared together before. Headings
// with no content after them are always kept. Blocks whose fingerprint is
// shorter than opts.MinLength are always kept. A nil opts uses defaults.
func Deduplicate(md string, opts *Options) string {
	minLen := opts.minLength()
	blocks := blockSep.Split(md, -1)
	seen := make(map[string]struct{})
	kept := make([]string, 0, len(blocks))

	long := func(fp string) bool { return utf8.RuneCountInString(fp) >= minLen }
	isSeen := func(fp string) bool { _, ok := seen[fp]; return ok }

	for i := 0; i < len(blocks); i++ {
		block := strings.TrimSpace(blocks[i])
		if block == "" {
			continue
		}

		if isHeading(block) {
			next := nextBlock(blocks, i+1)
			if next < 0 || isHeading(strings.TrimSpace(blocks[next])) {
				kept = append(kept, blocks[i])
				continue
			}

			content := strings.TrimSpace(blocks[next])
			section := Fingerprint(block + "\n" + content)
			if long(section) {
				if isSeen(section) {
					i = next
					continue
				}
				seen[section] = struct{}{}
			}
			if fp := Fingerprint(content); long(fp) {
				seen[fp] = struct{}{}
			}
			kept = append(kept, blocks[i], blocks[next])
			i = next
			continue
		}

		fp := Fingerprint(block)
		if !long(fp) {
			kept = append(kept, blocks[i])
			continue
		}
		if isSeen(fp) {
			continue
		}
		seen[fp] = struct{}{}
		kept = append(kept, blocks[i])
	}

	return render.Finish(strings.Join(kept, "\n\n"))
}

func isHeading(block string) bool {
	return headingMarker.MatchString(block)
}

// nextBlock returns the index of the first non-empty block at or after i,
// or -1.
func nextBlock(blocks []string, i int) int {
	for ; i < len(blocks); i++ {
		if strings.TrimSpace(blocks[i]) != "" {
			return i
		}
	}
	return -1
}
