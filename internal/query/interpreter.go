// Package query turns free-text questions into an intent and a candidate
// ticker, and composes the intent-shaped responses sent back to callers.
package query

import (
	"regexp"
	"strings"

	"finsight/internal/models"
)

// sigilPattern matches an explicit $TICKER mention, e.g. "$AAPL" or "$brk-b".
var sigilPattern = regexp.MustCompile(`\$([A-Za-z.\-]{1,6})\b`)

// Searcher is the directory lookup used as the last extraction stage when no
// alias, sigil or known ticker matched.
type Searcher interface {
	Search(term string) []models.CompanyRecord
}

// Interpreter resolves questions to (intent, ticker). An empty ticker means
// unresolved; callers treat that as "ask the user to clarify", not an error.
type Interpreter struct {
	directory Searcher
}

// NewInterpreter creates an interpreter. The directory may be nil, which
// disables the free-text fallback stage.
func NewInterpreter(directory Searcher) *Interpreter {
	return &Interpreter{directory: directory}
}

// Interpret classifies the question and extracts a candidate ticker.
func (i *Interpreter) Interpret(question string) (models.Intent, string) {
	return Classify(question), i.ExtractTicker(question)
}

// ExtractTicker finds the most plausible ticker in a question. Stages run in
// fixed precedence and the first hit wins:
//
//  1. curated alias phrases, longest first ("bank of america" before "bofa")
//  2. a $TICKER sigil
//  3. a bare uppercase token of length 2-5 on the known-ticker allow-list
//  4. free-text search against the company directory
//
// When a question names several companies the longest matching alias wins,
// so "Compare Apple and Microsoft" resolves to MSFT.
func (i *Interpreter) ExtractTicker(question string) string {
	lower := strings.ToLower(question)

	for _, phrase := range aliasPhrases {
		if strings.Contains(lower, phrase) {
			return companyAliases[phrase]
		}
	}

	if m := sigilPattern.FindStringSubmatch(question); m != nil {
		return strings.ToUpper(m[1])
	}

	for _, field := range strings.Fields(question) {
		token := strings.Trim(field, `,.!?;:()'"`)
		if len(token) < 2 || len(token) > 5 {
			continue
		}
		if token != strings.ToUpper(token) {
			continue
		}
		if _, ok := knownTickers[token]; ok {
			return token
		}
	}

	if i.directory != nil {
		if ticker := i.searchDirectory(question); ticker != "" {
			return ticker
		}
	}

	return ""
}

// searchDirectory runs each plausible word of the question through the
// directory search and returns the first hit. Capped so a rambling question
// cannot turn into dozens of lookups.
func (i *Interpreter) searchDirectory(question string) string {
	const maxTerms = 10

	terms := 0
	for _, field := range strings.Fields(question) {
		word := strings.Trim(field, `,.!?()[]{}":;'`)
		if len(word) < 3 || !isAlpha(word) {
			continue
		}
		if terms++; terms > maxTerms {
			break
		}
		if records := i.directory.Search(word); len(records) > 0 {
			return records[0].Ticker
		}
	}
	return ""
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
