package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Normalize strips extraction boilerplate from raw document text: isolated
// page numbers, "Page X of Y" markers, running chapter headers, figure/table
// caption lines, citation markers, and legal/disclaimer lines. Whitespace
// runs are collapsed afterwards.
//
// It is a pure function and it never fails: input that is not valid UTF-8 is
// returned unchanged so a bad extraction cannot block ingestion.
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}
	if !utf8.ValidString(raw) {
		return raw
	}

	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isBoilerplateLine(trimmed) {
			continue
		}
		kept = append(kept, line)
	}

	out := strings.Join(kept, "\n")
	out = citationMarker.ReplaceAllString(out, "")
	out = collapseWhitespace(out)
	return out
}

var (
	// "42", "- 42 -", "[42]"
	pageNumberLine = regexp.MustCompile(`^[-–—\[\(\s]*\d{1,4}[-–—\]\)\s]*$`)
	// "Page 3", "Page 3 of 12", "page 3/12"
	pageMarkerLine = regexp.MustCompile(`(?i)^page\s+\d+(\s*(of|/)\s*\d+)?$`)
	// running header like "Chapter 4" / "SECTION 2.1" with optional trailing page number
	chapterHeaderLine = regexp.MustCompile(`(?i)^(chapter|section)\s+\d+(\.\d+)*\.?(\s+\d{1,4})?$`)
	// "Figure 3: ...", "Table 2 - ...", "Fig. 1."
	captionLine = regexp.MustCompile(`(?i)^(figure|fig\.|table|chart|diagram)\s+\d+[.:)\-–—\s]`)
	// inline citation markers: "[12]", "[3, 4]", "(Smith et al., 2020)"
	citationMarker = regexp.MustCompile(`\[\d+(\s*,\s*\d+)*\]|\([A-Z][A-Za-z]+( et al\.)?,\s*\d{4}\)`)
	// bibliographic reference lines: "[7] J. Doe, ..."
	referenceLine = regexp.MustCompile(`^\[\d+\]\s+[A-Z]`)
)

// legalPhrases flags disclaimer lines. The match is deliberately restricted
// to short lines so a paragraph that merely mentions copyright survives.
var legalPhrases = []string{
	"all rights reserved",
	"copyright ©",
	"copyright (c)",
	"confidential and proprietary",
	"for internal use only",
	"this document is provided \"as is\"",
	"no part of this publication may be reproduced",
}

func isBoilerplateLine(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	// Headings are content, never boilerplate.
	if strings.HasPrefix(trimmed, "#") {
		return false
	}
	if pageNumberLine.MatchString(trimmed) {
		return true
	}
	if pageMarkerLine.MatchString(trimmed) {
		return true
	}
	if chapterHeaderLine.MatchString(trimmed) {
		return true
	}
	if captionLine.MatchString(trimmed) && !hasSentenceStructure(trimmed) {
		return true
	}
	if referenceLine.MatchString(trimmed) {
		return true
	}
	if len(trimmed) < 200 {
		lower := strings.ToLower(trimmed)
		for _, phrase := range legalPhrases {
			if strings.Contains(lower, phrase) {
				return true
			}
		}
	}
	return false
}

// hasSentenceStructure reports whether a line reads like prose (multiple
// sentences) rather than a bare caption. Such lines are kept.
func hasSentenceStructure(line string) bool {
	count := strings.Count(line, ". ") + strings.Count(line, "! ") + strings.Count(line, "? ")
	return count >= 2
}

var (
	spaceRun   = regexp.MustCompile(`[ \t]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

func collapseWhitespace(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	// trim the spaces the run-collapse left dangling at line ends
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	s = strings.Join(lines, "\n")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
