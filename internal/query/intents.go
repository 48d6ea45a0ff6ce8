package query

import (
	"strings"

	"finsight/internal/models"
)

// intentBucket pairs an intent with the trigger words that select it.
type intentBucket struct {
	intent   models.Intent
	triggers []string
}

// intentBuckets are scanned in order and the first bucket with any trigger
// substring in the lowercased question wins. Order matters: natural
// questions mix vocabulary ("analyze the price of AAPL" is analysis, not
// price), so the broader intents are checked first.
var intentBuckets = []intentBucket{
	{models.IntentAnalysis, []string{"analyze", "analysis", "how is", "performance", "overview", "summary", "report"}},
	{models.IntentPerformance, []string{"revenue", "profit", "earnings", "income", "margin", "growth", "financials"}},
	{models.IntentTechnical, []string{"rsi", "bollinger", "moving average", "technical", "indicator", "chart"}},
	{models.IntentPrice, []string{"price", "cost", "value", "worth", "current", "quote"}},
	{models.IntentCompanyInfo, []string{"company", "about", "information", "details", "tell me"}},
}

// Classify maps a free-text question to an intent. Unmatched questions are
// general; callers decide whether that means help text or a bare lookup.
func Classify(question string) models.Intent {
	lower := strings.ToLower(question)
	for _, bucket := range intentBuckets {
		for _, trigger := range bucket.triggers {
			if strings.Contains(lower, trigger) {
				return bucket.intent
			}
		}
	}
	return models.IntentGeneral
}
