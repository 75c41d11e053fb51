package markdown

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// asciiSpace is HTML's definition of inter-element whitespace. Non-breaking
// spaces are content and survive collapsing.
const asciiSpace = " \t\n\r\f"

var (
	spaceRun      = regexp.MustCompile(`[ \t\n\r\f]+`)
	blankLineRuns = regexp.MustCompile(`\n([ \t]*\n)+`)
)

func collapseSpace(s string) string {
	return spaceRun.ReplaceAllString(s, " ")
}

func isBlank(s string) bool {
	return strings.Trim(s, asciiSpace) == ""
}

func endsInSpace(s string) bool {
	return s != "" && strings.IndexByte(asciiSpace, s[len(s)-1]) >= 0
}

func startsWithSpace(s string) bool {
	return s != "" && strings.IndexByte(asciiSpace, s[0]) >= 0
}

// squeezeBlankLines reduces any run of blank or whitespace-only lines to a
// single empty line.
func squeezeBlankLines(s string) string {
	return blankLineRuns.ReplaceAllString(s, "\n\n")
}

// splitSpace returns the leading whitespace, the trimmed body and the
// trailing whitespace of s.
func splitSpace(s string) (lead, body, trail string) {
	body = strings.TrimLeft(s, asciiSpace)
	lead = s[:len(s)-len(body)]
	trimmed := strings.TrimRight(body, asciiSpace)
	trail = body[len(trimmed):]
	return lead, trimmed, trail
}

// longestRun returns the length of the longest run of ch in s.
func longestRun(s string, ch byte) int {
	longest, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == ch {
			cur++
			if cur > longest {
				longest = cur
			}
			continue
		}
		cur = 0
	}
	return longest
}

func indentLines(s, indent string) string {
	return strings.ReplaceAll(s, "\n", "\n"+indent)
}

// escapeText backslash-escapes the characters in literal text that would
// otherwise start emphasis or a heading: every "*", a "_" at a word
// boundary, and a "#" opening the text. Intraword underscores such as
// snake_case are left alone.
func escapeText(s string) string {
	if !strings.ContainsAny(s, "*_#") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 4)
	lead := true
	for i, r := range s {
		switch {
		case r == '*':
			sb.WriteString(`\*`)
		case r == '_' && !intraword(s, i):
			sb.WriteString(`\_`)
		case r == '#' && lead:
			sb.WriteString(`\#`)
		default:
			sb.WriteRune(r)
		}
		if r != ' ' {
			lead = false
		}
	}
	return sb.String()
}

// intraword reports whether the byte at i sits between two letters or
// digits.
func intraword(s string, i int) bool {
	prev, _ := utf8.DecodeLastRuneInString(s[:i])
	next, _ := utf8.DecodeRuneInString(s[i+1:])
	return isWordRune(prev) && isWordRune(next)
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
