package ai

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var (
	canonicalDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	// Go's \w and \b are ASCII-only, so Cyrillic words are spelled out.
	budgetUpToRe    = regexp.MustCompile(`до\s*(\d+)\s*(тысяч[а-яё]*|тыс|к(?:$|[^а-яё]))?`)
	budgetKiloRe    = regexp.MustCompile(`(\d+)\s*к(?:$|[^а-яё])`)
	firstIntegerRe  = regexp.MustCompile(`\d+`)
	digitGroupRe    = regexp.MustCompile(`(^|[^\d.,])(\d{1,3})((?:[ \x{00a0}]\d{3})+)\b`)
	groupSepRe      = regexp.MustCompile(`[ \x{00a0}]`)
	thousandsWordRe = regexp.MustCompile(`тысяч|тыс`)
)

// looseDateLayouts are tried in order when a date is neither canonical nor relative.
var looseDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02.01.2006",
	"02/01/2006",
	"2006/01/02",
	"2006.01.02",
	"2006-1-2",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// DateNormalizer converts loose Russian date phrases into YYYY-MM-DD.
type DateNormalizer struct {
	now func() time.Time
}

// NewDateNormalizer returns a normalizer reading "today" from now. A nil now uses time.Now.
func NewDateNormalizer(now func() time.Time) *DateNormalizer {
	if now == nil {
		now = time.Now
	}
	return &DateNormalizer{now: now}
}

// Today returns the local calendar day the normalizer resolves relative dates against.
func (d *DateNormalizer) Today() time.Time {
	return d.now()
}

// Normalize returns the canonical form of s, or s unchanged when it is not recognized.
func (d *DateNormalizer) Normalize(s string) string {
	trimmed := strings.TrimSpace(s)
	if canonicalDateRe.MatchString(trimmed) {
		return trimmed
	}
	if trimmed == "" {
		return ""
	}

	if offset, ok := relativeDayOffset(strings.ToLower(trimmed)); ok {
		return d.now().AddDate(0, 0, offset).Format(isoDate)
	}

	for _, layout := range looseDateLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, d.now().Location()); err == nil {
			return t.Format(isoDate)
		}
	}
	return s
}

// relativeDayOffset recognizes the supported relative phrases in a lower-cased text.
func relativeDayOffset(lower string) (int, bool) {
	switch {
	case strings.Contains(lower, "завтра"):
		return 1, true
	case strings.Contains(lower, "через два дня"), strings.Contains(lower, "через 2 дня"):
		return 2, true
	case strings.Contains(lower, "через неделю"), strings.Contains(lower, "через 7 дней"):
		return 7, true
	}
	return 0, false
}

// NormalizeBudget turns phrases like "до 20 тысяч", "15к" or "50000" into an integer
// amount. It is a keyword heuristic: ambiguous phrasing may be misread, and text without
// any number is returned unchanged.
func NormalizeBudget(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	lower := joinDigitGroups(strings.ToLower(s))

	if m := budgetUpToRe.FindStringSubmatch(lower); m != nil {
		return scaleAmount(s, m[1], m[2] != "")
	}
	if m := budgetKiloRe.FindStringSubmatch(lower); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || n > math.MaxInt64/1000 {
			return s
		}
		return strconv.FormatInt(n*1000, 10)
	}
	if m := firstIntegerRe.FindString(lower); m != "" {
		return scaleAmount(s, m, thousandsWordRe.MatchString(lower))
	}
	return s
}

// scaleAmount parses digits and multiplies small amounts by 1000 when a thousands
// qualifier was seen. Unparseable digits fall back to the original text.
func scaleAmount(original, digits string, thousands bool) string {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return original
	}
	if thousands && n < 1000 {
		n *= 1000
	}
	return strconv.FormatInt(n, 10)
}

// joinDigitGroups removes the thousands separators in "1 500 000". Only a number whose
// leading group has 1-3 digits is joined, so "20.08.2025 150" stays two numbers.
func joinDigitGroups(s string) string {
	return digitGroupRe.ReplaceAllStringFunc(s, func(match string) string {
		m := digitGroupRe.FindStringSubmatch(match)
		return m[1] + m[2] + groupSepRe.ReplaceAllString(m[3], "")
	})
}

// normalizeGuests keeps the first integer of a guests value.
func normalizeGuests(s string) string {
	return firstIntegerRe.FindString(joinDigitGroups(s))
}
