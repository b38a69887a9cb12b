package core

import (
	"regexp"
	"strings"
)

// amountMatcher tries one recognition pattern against free text and, when it
// matches, parses the captured numeral into cents.
type amountMatcher struct {
	name string
	re   *regexp.Regexp
}

// The recognition patterns form an auditable priority chain: the first
// pattern that matches the text wins, and only its first match is used.
// A bare integer with no currency word never matches, so counts like
// "comprei 3 itens" are not misread as amounts.
var amountMatchers = []amountMatcher{
	{name: "currency-prefixed decimal", re: regexp.MustCompile(`(?i)r?\$?\s*(\d+[.,]\d{2})`)},
	{name: "decimal with reais suffix", re: regexp.MustCompile(`(?i)(\d+[.,]\d{2})\s*(?:reais?|real)`)},
	{name: "integer with reais suffix", re: regexp.MustCompile(`(?i)(\d+)\s*(?:reais?|real)`)},
	{name: "bare decimal", re: regexp.MustCompile(`(\d+[.,]\d{2})`)},
}

// stripAmountRE removes the tokens the matchers recognize, plus currency
// symbols and stray "reais"/"real" words, when deriving a description from
// the submitted text.
var stripAmountRE = regexp.MustCompile(`(?i)\d+[.,]\d{2}|r?\$|\d+\s*(?:reais?|real)|\b(?:reais?|real)\b`)

// ExtractAmount pulls the first monetary amount out of free text.
// It returns ErrNoAmount when no pattern matches, so callers can tell
// "no amount" apart from a zero amount.
func ExtractAmount(text string) (Money, error) {
	for _, m := range amountMatchers {
		match := m.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		cents, err := ParseDecimalToCents(match[1])
		if err != nil {
			return Money{}, err
		}
		return Money{Cents: cents}, nil
	}
	return Money{}, ErrNoAmount
}

// StripAmountTokens removes the recognized amount and currency tokens from
// the text, leaving the human description of the expense.
func StripAmountTokens(text string) string {
	return strings.TrimSpace(stripAmountRE.ReplaceAllString(text, ""))
}
