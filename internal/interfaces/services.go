// Package interfaces defines client and service contracts for finsight
package interfaces

import (
	"context"

	"finsight/internal/models"
)

// DirectoryService manages the company directory. Reads serve from an
// in-memory snapshot and never block; Refresh is the only networked call.
type DirectoryService interface {
	// ResolveTicker finds a company by exact ticker (case-insensitive)
	ResolveTicker(ticker string) (*models.CompanyRecord, error)

	// ResolveName finds a company by name substring (case-insensitive)
	ResolveName(name string) (*models.CompanyRecord, error)

	// Lookup resolves a term as a ticker first, then as a name
	Lookup(term string) (*models.CompanyRecord, error)

	// Search returns ranked matches for a free-text term
	Search(term string) []models.CompanyRecord

	// Top returns the first n companies by rank
	Top(n int) []models.CompanyRecord

	// BySector returns companies whose sector contains the term
	BySector(sector string) []models.CompanyRecord

	// ByIndustry returns companies whose industry contains the term
	ByIndustry(industry string) []models.CompanyRecord

	// Refresh rebuilds the directory from upstream market caps and
	// reports how many companies the new snapshot holds
	Refresh(ctx context.Context) (int, error)

	// Stats describes the current snapshot
	Stats() models.DirectoryStats

	// Stale reports whether the snapshot is older than the refresh interval
	Stale() bool
}

// MarketService serves quotes, technical reports and charts
type MarketService interface {
	// GetQuote retrieves a quote, served from cache when fresh
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)

	// GetHistory retrieves daily bars for a range, served from cache when fresh
	GetHistory(ctx context.Context, ticker string, rng string) (models.PriceSeries, error)

	// GetTechnicalReport computes indicators over recent history
	GetTechnicalReport(ctx context.Context, ticker string) (*models.TechnicalReport, error)

	// RenderPriceChart draws a PNG price chart with moving-average overlays
	RenderPriceChart(ctx context.Context, ticker string) ([]byte, error)
}

// QueryService runs the natural-language pipeline
type QueryService interface {
	// Process answers a free-text question
	Process(ctx context.Context, question string) (models.Response, error)

	// Examples lists questions the pipeline understands
	Examples() models.QueryExamples
}

// AssistantService answers general questions when an upstream model is
// configured; it degrades to the empty string rather than failing
type AssistantService interface {
	// Answer returns a free-text answer, or "" when unavailable
	Answer(ctx context.Context, question string) string

	// Enabled reports whether an upstream model is configured
	Enabled() bool
}
