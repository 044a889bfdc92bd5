package ai

import (
	"regexp"
	"strings"
)

var (
	boldRe          = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe        = regexp.MustCompile(`\*([^*\n]+)\*`)
	headingRe       = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)
	listDashRe      = regexp.MustCompile(`(?m)^[ \t]*[-•][ \t]+`)
	jsonFenceRe     = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")
	anyFenceRe      = regexp.MustCompile("```[a-zA-Z]*")
	adjacentObjRe   = regexp.MustCompile(`\}\s*\{`)
	doubleCommaRe   = regexp.MustCompile(`,\s*,`)
	trailingComRe   = regexp.MustCompile(`,\s*([}\]])`)
	missingKeySepRe = regexp.MustCompile(`"(\s*)"([^"\\]*)"(\s*):`)
)

// RecoverJSON returns the best candidate for a JSON object hidden in model output.
// It strips markdown, prefers the last ```json block, picks the longest balanced
// {...} span and applies structural comma repairs. It never fails: when no object
// is found the trimmed input is returned for the caller's parser to reject.
func RecoverJSON(raw string) string {
	text := stripMarkdown(strings.TrimSpace(raw))
	text = selectFencedBlock(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return strings.TrimSpace(raw)
	}

	return strings.TrimSpace(repairStructure(longestObject(text)))
}

// stripMarkdown removes emphasis, headings and list dashes that leak into answers.
func stripMarkdown(s string) string {
	s = boldRe.ReplaceAllString(s, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	s = headingRe.ReplaceAllString(s, "")
	return listDashRe.ReplaceAllString(s, "")
}

// selectFencedBlock keeps the last ```json block, or drops bare fences when there is none.
func selectFencedBlock(s string) string {
	blocks := jsonFenceRe.FindAllStringSubmatch(s, -1)
	if len(blocks) > 0 {
		return strings.TrimSpace(blocks[len(blocks)-1][1])
	}
	return strings.TrimSpace(anyFenceRe.ReplaceAllString(s, ""))
}

// balancedObjects returns every top-level depth-balanced {...} span in order, plus the
// offset of an object that was opened but never closed (-1 if none).
func balancedObjects(s string) (spans []string, unclosed int) {
	depth, start := 0, -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				spans = append(spans, s[start:i+1])
				start = -1
			}
		}
	}
	return spans, start
}

// longestObject picks the longest balanced span; later spans win ties. Truncated output
// with no balanced span yields the text from the unclosed brace to the end.
func longestObject(s string) string {
	spans, unclosed := balancedObjects(s)
	if len(spans) == 0 {
		if unclosed >= 0 {
			return s[unclosed:]
		}
		return s
	}
	best := spans[0]
	for _, span := range spans[1:] {
		if len(span) >= len(best) {
			best = span
		}
	}
	return best
}

// repairStructure applies one pass of the comma repairs: "}{" -> "},{", ",," -> ","
// and no comma before a closing bracket.
func repairStructure(s string) string {
	s = adjacentObjRe.ReplaceAllString(s, "},{")
	s = doubleCommaRe.ReplaceAllString(s, ",")
	return trailingComRe.ReplaceAllString(s, "$1")
}

// repairStructureFully repeats the comma repairs until the text stops changing.
func repairStructureFully(s string) string {
	for i := 0; i < 8; i++ {
		next := repairStructure(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}
