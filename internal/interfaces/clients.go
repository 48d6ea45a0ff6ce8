// Package interfaces defines client and service contracts for finsight
package interfaces

import (
	"context"

	"finsight/internal/models"
)

// MarketDataClient provides access to upstream market data
type MarketDataClient interface {
	// GetQuote retrieves a current quote with fundamentals
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)

	// GetHistory retrieves daily bars for a range like "1mo", "6mo", "1y"
	GetHistory(ctx context.Context, ticker string, rng string) (models.PriceSeries, error)

	// GetProfile retrieves company profile data used by directory refresh
	GetProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error)
}

// AssistantClient generates free-text answers for general questions
type AssistantClient interface {
	// Answer produces a short answer to a question
	Answer(ctx context.Context, question string) (string, error)
}
