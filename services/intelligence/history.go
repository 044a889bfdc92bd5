package ai

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"eventura/models"
)

// BookingFields holds the slots a FieldExtractor can recover. Empty means not found.
type BookingFields struct {
	EventType   string
	Date        string
	GuestsCount string
	Budget      string
	City        string
}

// FieldExtractor recovers booking slots from a conversation without the model.
type FieldExtractor interface {
	Extract(transcript []models.ConversationTurn) BookingFields
}

// stemRule maps a word stem found at the start of a word to its canonical value.
type stemRule struct {
	re        *regexp.Regexp
	canonical string
}

func stem(pattern, canonical string) stemRule {
	return stemRule{
		re:        regexp.MustCompile(`(?:^|[^а-яёa-z])(` + pattern + `)`),
		canonical: canonical,
	}
}

// Legacy categories (children's parties, quests) fold into birthdays.
var eventTypeRules = []stemRule{
	stem(`свадьб`, "Свадьба"),
	stem(`(?:день|дня|дню|днем|днём)\s+рожден`, "День рождения"),
	stem(`корпоратив`, "Корпоратив"),
	stem(`гендер[- ]?пати`, "Гендер-пати"),
	stem(`выпускн`, "Выпускной"),
	stem(`юбиле`, "Юбилей"),
	stem(`детск[а-яё]*\s+праздник`, "День рождения"),
	stem(`(?:интерактивн[а-яё]*\s+)?квест`, "День рождения"),
	stem(`wedding`, "Свадьба"),
	stem(`birthday`, "День рождения"),
	stem(`corporate`, "Корпоратив"),
}

var cityRules = []stemRule{
	stem(`москв`, "Москва"),
	stem(`санкт[- ]?петербург|питер|спб`, "Санкт-Петербург"),
	stem(`екатеринбург`, "Екатеринбург"),
	stem(`новосибирск`, "Новосибирск"),
	stem(`казан`, "Казань"),
	stem(`нижн[а-яё]*\s+новгород`, "Нижний Новгород"),
}

var (
	guestsRe        = regexp.MustCompile(`(\d+)\s*(?:человек|гост|участник|чел)`)
	budgetRublesRe  = regexp.MustCompile(`(\d+)\s*(?:тысяч[а-яё]*|тыс\.?)\s*руб`)
	budgetKeywordRe = regexp.MustCompile(`бюджет[а-яё]*\s*(?:в|до|:)?\s*(?:до\s*)?(\d+)\s*(тысяч[а-яё]*|тыс|к(?:$|[^а-яё]))?`)
	budgetRoundRe   = regexp.MustCompile(`\d+000`)
	numericDateRe   = regexp.MustCompile(`(\d{1,2})[./](\d{1,2})[./](\d{4})`)
)

// HistoryExtractor scans the whole transcript with keyword and regex heuristics.
// Each field is independent; the earliest match in the transcript wins.
type HistoryExtractor struct {
	dates *DateNormalizer
}

// NewHistoryExtractor resolves relative dates against dates' clock.
func NewHistoryExtractor(dates *DateNormalizer) *HistoryExtractor {
	if dates == nil {
		dates = NewDateNormalizer(nil)
	}
	return &HistoryExtractor{dates: dates}
}

// Extract implements FieldExtractor.
func (h *HistoryExtractor) Extract(transcript []models.ConversationTurn) BookingFields {
	texts := make([]string, 0, len(transcript))
	for _, turn := range transcript {
		texts = append(texts, turn.Content)
	}
	buffer := strings.ToLower(strings.Join(texts, "\n"))

	return BookingFields{
		EventType:   firstStem(buffer, eventTypeRules),
		GuestsCount: extractGuests(buffer),
		Budget:      extractBudget(joinDigitGroups(buffer)),
		City:        firstStem(buffer, cityRules),
		Date:        h.extractDate(buffer),
	}
}

// firstStem returns the canonical value of the rule matching earliest in text.
func firstStem(text string, rules []stemRule) string {
	best, bestAt := "", -1
	for _, rule := range rules {
		loc := rule.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		if bestAt < 0 || loc[2] < bestAt {
			best, bestAt = rule.canonical, loc[2]
		}
	}
	return best
}

// canonicalEventType maps a free-form event type onto the taxonomy, or "" if unknown.
func canonicalEventType(s string) string {
	return firstStem(strings.ToLower(strings.TrimSpace(s)), eventTypeRules)
}

// canonicalCity returns the supported city named in s, or s trimmed when none matches.
func canonicalCity(s string) string {
	trimmed := strings.TrimSpace(s)
	if city := firstStem(strings.ToLower(trimmed), cityRules); city != "" {
		return city
	}
	return trimmed
}

func extractGuests(text string) string {
	if m := guestsRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func extractBudget(text string) string {
	if m := budgetRublesRe.FindStringSubmatch(text); m != nil {
		return scaleAmount("", m[1], true)
	}
	if m := budgetKeywordRe.FindStringSubmatch(text); m != nil {
		return scaleAmount("", m[1], m[2] != "")
	}
	return budgetRoundRe.FindString(text)
}

func (h *HistoryExtractor) extractDate(text string) string {
	if offset, ok := relativeDayOffset(text); ok {
		return h.dates.Today().AddDate(0, 0, offset).Format(isoDate)
	}
	for _, m := range numericDateRe.FindAllStringSubmatch(text, -1) {
		if date, ok := numericDate(m[1], m[2], m[3]); ok {
			return date
		}
	}
	return ""
}

// numericDate builds YYYY-MM-DD from day, month and year groups, rejecting impossible dates.
func numericDate(day, month, year string) (string, bool) {
	d, errD := strconv.Atoi(day)
	m, errM := strconv.Atoi(month)
	y, errY := strconv.Atoi(year)
	if errD != nil || errM != nil || errY != nil {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}
