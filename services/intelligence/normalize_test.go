package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedToday() func() time.Time {
	return func() time.Time { return time.Date(2025, 1, 10, 15, 30, 0, 0, time.UTC) }
}

func TestDateNormalizer_Normalize(t *testing.T) {
	dates := NewDateNormalizer(fixedToday())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"canonical passes through", "2025-03-14", "2025-03-14"},
		{"canonical with spaces", "  2025-03-14 ", "2025-03-14"},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"tomorrow", "завтра", "2025-01-11"},
		{"tomorrow in a sentence", "Давайте Завтра вечером", "2025-01-11"},
		{"in two days", "через два дня", "2025-01-12"},
		{"in 2 days", "через 2 дня", "2025-01-12"},
		{"in a week", "через неделю", "2025-01-17"},
		{"in 7 days", "через 7 дней", "2025-01-17"},
		{"dotted", "14.03.2025", "2025-03-14"},
		{"slashed", "14/03/2025", "2025-03-14"},
		{"rfc3339", "2025-03-14T10:00:00Z", "2025-03-14"},
		{"english", "March 14, 2025", "2025-03-14"},
		{"unrecognized stays", "в следующую субботу", "в следующую субботу"},
		{"impossible date stays", "31.02.2025", "31.02.2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dates.Normalize(tt.in))
		})
	}
}

func TestDateNormalizer_Idempotent(t *testing.T) {
	dates := NewDateNormalizer(fixedToday())
	for _, in := range []string{"", "завтра", "через неделю", "14.03.2025", "2025-03-14", "когда-нибудь", "March 14, 2025"} {
		once := dates.Normalize(in)
		assert.Equal(t, once, dates.Normalize(once), in)
	}
}

func TestNormalizeBudget(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"до 20 тысяч", "20000"},
		{"до 20 тыс", "20000"},
		{"до 5к", "5000"},
		{"до 150000", "150000"},
		{"15к", "15000"},
		{"15 к", "15000"},
		{"50000", "50000"},
		{"20 тысяч рублей", "20000"},
		{"100 000 рублей", "100000"},
		{"около 30 тыс.", "30000"},
		{"без ограничений", "без ограничений"},
		{"1 500 000 рублей", "1500000"},
		{"до 2025 100 тысяч", "2025"},
		{"10000000000000000к", "10000000000000000к"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBudget(tt.in))
		})
	}
}

func TestNormalizeBudget_Idempotent(t *testing.T) {
	for _, in := range []string{"до 20 тысяч", "15к", "50000", "", "без ограничений", "100 000"} {
		once := NormalizeBudget(in)
		assert.Equal(t, once, NormalizeBudget(once), in)
	}
}

func TestJoinDigitGroups(t *testing.T) {
	assert.Equal(t, "бюджет 100000 рублей", joinDigitGroups("бюджет 100 000 рублей"))
	assert.Equal(t, "1500000", joinDigitGroups("1\u00a0500\u00a0000"))
	assert.Equal(t, "20.08.2025 150 тысяч", joinDigitGroups("20.08.2025 150 тысяч"))
	assert.Equal(t, "в 2025 100 гостей", joinDigitGroups("в 2025 100 гостей"))
	assert.Equal(t, "12,5 000", joinDigitGroups("12,5 000"))
}

func TestNormalizeGuests(t *testing.T) {
	assert.Equal(t, "8", normalizeGuests("8 человек"))
	assert.Equal(t, "120", normalizeGuests("около 120"))
	assert.Equal(t, "", normalizeGuests("много"))
}
