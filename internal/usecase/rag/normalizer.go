package rag

import (
	"regexp"
	"strings"
)

var (
	pageNumberRe  = regexp.MustCompile(`(?i)Page\s+\d+`)
	pageMarkerRe  = regexp.MustCompile(`-\s*\d+\s*-`)
	manyNewlines  = regexp.MustCompile(`\n\s*\n\s*\n+`)
	manySpaces    = regexp.MustCompile(` +`)
	controlCharRe = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f-\x9f]`)
)

// NormalizeText cleans extracted PDF page text: page-number artifacts are
// removed, runs of blank lines collapse to one, space runs collapse to a
// single space, and non-printable control characters are stripped. Returns
// the empty string for pages with no usable content.
func NormalizeText(text string) string {
	text = pageNumberRe.ReplaceAllString(text, "")
	text = pageMarkerRe.ReplaceAllString(text, "")
	// strip control characters before collapsing whitespace so the removal
	// cannot leave new space or newline runs behind
	text = controlCharRe.ReplaceAllString(text, "")
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	text = manySpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
