// Package render normalizes the raw Markdown produced by the converter.
package render

import (
	"regexp"
	"strings"
)

var (
	newlineRuns = regexp.MustCompile(`\n{3,}`)
	hardBreak   = regexp.MustCompile(`[^ \t] {2,}$`)
)

// Normalize cleans raw Markdown line by line:
//
//  1. \r\n and lone \r become \n
//  2. whitespace-only lines become empty
//  3. runs of three or more newlines collapse to two
//  4. trailing whitespace is trimmed, except that a line ending in two or
//     more spaces keeps exactly two as a hard break
//  5. the result is trimmed and ends in exactly one newline
//
// Code block lines are treated like any other line.
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
		}
	}
	s = newlineRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")

	lines = strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = trimLine(line)
	}

	return Finish(strings.Join(lines, "\n"))
}

// Finish trims surrounding whitespace and appends a single newline.
func Finish(s string) string {
	return strings.TrimSpace(s) + "\n"
}

func trimLine(line string) string {
	if hardBreak.MatchString(line) {
		return strings.TrimRight(line, " ") + "  "
	}
	return strings.TrimRight(line, " \t")
}
