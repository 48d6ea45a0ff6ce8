package models

import "time"

// Intent is the classified purpose of a free-text question.
// Recomputed per request, never persisted.
type Intent string

const (
	IntentPrice       Intent = "price"
	IntentCompanyInfo Intent = "company_info"
	IntentTechnical   Intent = "technical"
	IntentPerformance Intent = "performance"
	IntentAnalysis    Intent = "analysis"
	IntentGeneral     Intent = "general"
)

// Envelope is the common wrapper shared by every composed response.
type Envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Response is implemented by the intent-specific response payloads so the
// pipeline can hand any of them back through one return value.
type Response interface {
	ResponseIntent() Intent
}

// PriceResponse answers a price question
type PriceResponse struct {
	Envelope
	Query  string `json:"query"`
	Intent Intent `json:"intent"`
	Ticker string `json:"ticker"`
	Quote  *Quote `json:"quote,omitempty"`
}

// TechnicalResponse answers a technical-analysis or full-analysis question
type TechnicalResponse struct {
	Envelope
	Query   string           `json:"query"`
	Intent  Intent           `json:"intent"`
	Ticker  string           `json:"ticker"`
	Report  *TechnicalReport `json:"report,omitempty"`
	Company *CompanyRecord   `json:"company,omitempty"`
}

// CompanyResponse answers a company-information question
type CompanyResponse struct {
	Envelope
	Query   string         `json:"query"`
	Intent  Intent         `json:"intent"`
	Ticker  string         `json:"ticker"`
	Company *CompanyRecord `json:"company,omitempty"`
	Quote   *Quote         `json:"quote,omitempty"`
}

// PerformanceResponse answers a financial-performance question
type PerformanceResponse struct {
	Envelope
	Query        string         `json:"query"`
	Intent       Intent         `json:"intent"`
	Ticker       string         `json:"ticker"`
	Company      *CompanyRecord `json:"company,omitempty"`
	Quote        *Quote         `json:"quote,omitempty"`
	ProfitMargin *float64       `json:"profit_margin,omitempty"` // percent, nil when revenue unknown
}

// HelpResponse is returned when no ticker could be resolved or the question
// is general; it carries example questions the caller can try.
type HelpResponse struct {
	Envelope
	Query       string   `json:"query"`
	Intent      Intent   `json:"intent"`
	Suggestions []string `json:"suggestions"`
}

// QueryExamples lists questions the interpreter understands, served so
// clients can show users what to ask.
type QueryExamples struct {
	Examples         []string `json:"examples"`
	SupportedQueries []string `json:"supported_queries"`
}

func (r *PriceResponse) ResponseIntent() Intent       { return r.Intent }
func (r *TechnicalResponse) ResponseIntent() Intent   { return r.Intent }
func (r *CompanyResponse) ResponseIntent() Intent     { return r.Intent }
func (r *PerformanceResponse) ResponseIntent() Intent { return r.Intent }
func (r *HelpResponse) ResponseIntent() Intent        { return r.Intent }
