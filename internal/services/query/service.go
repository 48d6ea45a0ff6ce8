// Package query runs the end-to-end question pipeline: interpret the
// question, pull market data and directory context for its intent, and
// compose the response.
package query

import (
	"context"
	"strings"

	"finsight/internal/common"
	"finsight/internal/interfaces"
	"finsight/internal/models"
	"finsight/internal/query"
)

// Service answers free-text questions about public companies.
type Service struct {
	interpreter *query.Interpreter
	composer    *query.Composer
	directory   interfaces.DirectoryService
	market      interfaces.MarketService
	assistant   interfaces.AssistantService
	logger      *common.Logger
	minLength   int
}

// NewService wires the pipeline. The interpreter also searches the directory
// as its last ticker-extraction stage, so the directory serves both stages.
func NewService(directory interfaces.DirectoryService, market interfaces.MarketService, assistant interfaces.AssistantService, cfg *common.Config, logger *common.Logger) *Service {
	if cfg == nil {
		cfg = common.NewDefaultConfig()
	}
	if logger == nil {
		logger = common.NewDefaultLogger()
	}

	minLength := cfg.Query.MinLength
	if minLength <= 0 {
		minLength = 3
	}

	return &Service{
		interpreter: query.NewInterpreter(directory),
		composer:    query.NewComposer(cfg.Query),
		directory:   directory,
		market:      market,
		assistant:   assistant,
		logger:      logger,
		minLength:   minLength,
	}
}

// Process answers a free-text question. An unresolvable ticker produces a
// clarification response, not an error; errors are reserved for invalid input
// and infrastructure faults.
func (s *Service) Process(ctx context.Context, question string) (models.Response, error) {
	trimmed := strings.TrimSpace(question)
	if len(trimmed) < s.minLength {
		return nil, common.InvalidInputf("query too short: %d characters", len(trimmed))
	}

	intent, ticker := s.interpreter.Interpret(trimmed)
	s.logger.Debug().
		Str("intent", string(intent)).
		Str("ticker", ticker).
		Msg("Question interpreted")

	if ticker == "" {
		if intent == models.IntentGeneral {
			var answer string
			if s.assistant != nil {
				answer = s.assistant.Answer(ctx, trimmed)
			}
			return s.composer.Help(trimmed, answer), nil
		}
		return s.composer.Clarify(trimmed, intent), nil
	}

	switch intent {
	case models.IntentTechnical, models.IntentAnalysis:
		report, err := s.market.GetTechnicalReport(ctx, ticker)
		if err != nil {
			return nil, err
		}
		return s.composer.Technical(trimmed, intent, report, s.companyContext(ticker)), nil

	case models.IntentCompanyInfo:
		company := s.companyContext(ticker)
		quote, err := s.market.GetQuote(ctx, ticker)
		if err != nil {
			if company == nil {
				return nil, err
			}
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Quote unavailable for company answer")
			quote = nil
		}
		return s.composer.Company(trimmed, ticker, company, quote), nil

	case models.IntentPerformance:
		company := s.companyContext(ticker)
		quote, err := s.market.GetQuote(ctx, ticker)
		if err != nil {
			if company == nil {
				return nil, err
			}
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Quote unavailable for performance answer")
			quote = nil
		}
		return s.composer.Performance(trimmed, ticker, company, quote), nil

	default:
		// Price questions, and general questions that still name a company:
		// both get the basic quote answer.
		quote, err := s.market.GetQuote(ctx, ticker)
		if err != nil {
			return nil, err
		}
		return s.composer.Price(trimmed, ticker, quote), nil
	}
}

// Examples lists questions the interpreter handles, served by the examples
// endpoint.
func (s *Service) Examples() models.QueryExamples {
	return models.QueryExamples{
		Examples: []string{
			"What is the price of AAPL?",
			"Tell me about Tesla",
			"Show RSI for Microsoft",
			"What is Amazon worth?",
			"Give me info about GOOGL",
		},
		SupportedQueries: []string{
			"Stock prices",
			"Company information",
			"Technical analysis",
			"RSI indicators",
			"Basic stock data",
		},
	}
}

// companyContext returns directory context for ticker, nil when the ticker is
// not in the current snapshot.
func (s *Service) companyContext(ticker string) *models.CompanyRecord {
	rec, err := s.directory.ResolveTicker(ticker)
	if err != nil {
		return nil
	}
	return rec
}

// Ensure Service implements the QueryService interface
var _ interfaces.QueryService = (*Service)(nil)
