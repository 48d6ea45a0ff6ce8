// Package models defines data structures for finsight
package models

import "time"

// CompanyRecord is one entry in the company directory. Records are created
// at directory load or refresh and replaced wholesale by the next snapshot,
// never patched in place.
type CompanyRecord struct {
	Rank      int     `json:"rank,omitempty"` // 0 when unranked
	Name      string  `json:"name"`
	Ticker    string  `json:"ticker"` // uppercase, unique within a snapshot
	Sector    string  `json:"sector,omitempty"`
	Industry  string  `json:"industry,omitempty"`
	Revenue   float64 `json:"revenue,omitempty"` // millions USD, 0 when unknown
	Profit    float64 `json:"profit,omitempty"`  // millions USD, 0 when unknown
	MarketCap float64 `json:"market_cap,omitempty"`
}

// CompanyProfile is the upstream view of a company used during directory
// refresh: identity plus the fundamentals needed to build a CompanyRecord.
type CompanyProfile struct {
	Ticker    string  `json:"ticker"`
	Name      string  `json:"name"`
	Sector    string  `json:"sector,omitempty"`
	Industry  string  `json:"industry,omitempty"`
	MarketCap float64 `json:"market_cap"`
	Revenue   float64 `json:"revenue,omitempty"` // millions USD
	Profit    float64 `json:"profit,omitempty"`  // millions USD
}

// DirectoryStats describes the current directory snapshot for diagnostics.
type DirectoryStats struct {
	Companies   int       `json:"companies"`
	Source      string    `json:"source"` // "seed" or "dynamic"
	LastRefresh time.Time `json:"last_refresh,omitempty"`
	Stale       bool      `json:"stale"`
}
