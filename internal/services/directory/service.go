// Package directory maintains the company directory behind query resolution
// and the company endpoints. A seed list embedded at build time serves until
// the first dynamic refresh replaces it with the top companies by market cap.
package directory

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"finsight/internal/common"
	"finsight/internal/interfaces"
	"finsight/internal/models"
)

//go:embed seed.yaml
var seedYAML []byte

const (
	sourceSeed    = "seed"
	sourceDynamic = "dynamic"

	// searchLimit caps Search results.
	searchLimit = 10
)

type seedFile struct {
	Companies []models.CompanyRecord `yaml:"companies"`
}

// Service maintains the directory snapshot. Reads serve the current snapshot
// without blocking; Refresh assembles a replacement off to the side and swaps
// it in under the write lock. Snapshot records are stored in rank order.
type Service struct {
	client   interfaces.MarketDataClient
	logger   *common.Logger
	universe []string
	interval time.Duration
	topSize  int
	workers  int

	mu          sync.RWMutex
	snapshot    []models.CompanyRecord
	byTicker    map[string]int
	source      string
	lastRefresh time.Time

	now func() time.Time // stubbed in tests
}

// NewService creates a directory service seeded from the embedded company
// list. The seed snapshot reports as stale until a Refresh succeeds.
func NewService(client interfaces.MarketDataClient, cfg common.DirectoryConfig, logger *common.Logger) (*Service, error) {
	if logger == nil {
		logger = common.NewDefaultLogger()
	}

	var seed seedFile
	if err := yaml.Unmarshal(seedYAML, &seed); err != nil {
		return nil, fmt.Errorf("failed to load directory seed: %w", err)
	}

	universe := cfg.Universe
	if len(universe) == 0 {
		universe = defaultUniverse
	}

	topSize := cfg.TopSize
	if topSize <= 0 {
		topSize = 100
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 10
	}

	s := &Service{
		client:   client,
		logger:   logger,
		universe: universe,
		interval: cfg.GetRefreshInterval(),
		topSize:  topSize,
		workers:  workers,
		now:      time.Now,
	}
	s.setSnapshot(seed.Companies, sourceSeed, time.Time{})

	logger.Info().
		Int("companies", len(seed.Companies)).
		Int("universe", len(universe)).
		Msg("Company directory seeded")

	return s, nil
}

// setSnapshot installs records as the current snapshot. Records must already
// be in rank order; the service owns the slice after the call.
func (s *Service) setSnapshot(records []models.CompanyRecord, source string, refreshedAt time.Time) {
	index := make(map[string]int, len(records))
	for i, rec := range records {
		index[strings.ToUpper(rec.Ticker)] = i
	}

	s.mu.Lock()
	s.snapshot = records
	s.byTicker = index
	s.source = source
	s.lastRefresh = refreshedAt
	s.mu.Unlock()
}

// ResolveTicker returns the record for an exact ticker match, case-insensitive.
func (s *Service) ResolveTicker(ticker string) (*models.CompanyRecord, error) {
	key := strings.ToUpper(strings.TrimSpace(ticker))
	if key == "" {
		return nil, common.InvalidInputf("empty ticker")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.byTicker[key]; ok {
		rec := s.snapshot[i]
		return &rec, nil
	}

	return nil, common.NotFoundf("ticker %s not in directory", key)
}

// ResolveName returns the first record whose name contains term,
// case-insensitive. Records are scanned in rank order, so the better-known
// company wins an ambiguous term.
func (s *Service) ResolveName(name string) (*models.CompanyRecord, error) {
	term := strings.ToLower(strings.TrimSpace(name))
	if term == "" {
		return nil, common.InvalidInputf("empty company name")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.snapshot {
		if strings.Contains(strings.ToLower(rec.Name), term) {
			out := rec
			return &out, nil
		}
	}

	return nil, common.NotFoundf("no company matching %q", name)
}

// Lookup resolves term as a ticker first, then as a company name.
func (s *Service) Lookup(term string) (*models.CompanyRecord, error) {
	if rec, err := s.ResolveTicker(term); err == nil {
		return rec, nil
	}
	return s.ResolveName(term)
}

// Search returns up to ten records ranked by match quality: exact ticker,
// exact name, substring of the name, word prefix of the name, then a sector
// or industry match. Within a tier, records keep rank order.
func (s *Service) Search(term string) []models.CompanyRecord {
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Tickers are unique within a snapshot and each record lands in at most
	// one tier, so concatenating tiers cannot duplicate a company.
	var tiers [5][]models.CompanyRecord
	for _, rec := range s.snapshot {
		name := strings.ToLower(rec.Name)
		switch {
		case strings.ToLower(rec.Ticker) == q:
			tiers[0] = append(tiers[0], rec)
		case name == q:
			tiers[1] = append(tiers[1], rec)
		case strings.Contains(name, q):
			tiers[2] = append(tiers[2], rec)
		case hasWordPrefix(name, q):
			tiers[3] = append(tiers[3], rec)
		case strings.Contains(strings.ToLower(rec.Sector), q) ||
			strings.Contains(strings.ToLower(rec.Industry), q):
			tiers[4] = append(tiers[4], rec)
		}
	}

	var out []models.CompanyRecord
	for _, tier := range tiers {
		for _, rec := range tier {
			out = append(out, rec)
			if len(out) == searchLimit {
				return out
			}
		}
	}

	return out
}

// Top returns the n highest-ranked companies, or all of them when n is zero,
// negative, or past the snapshot size.
func (s *Service) Top(n int) []models.CompanyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.snapshot) {
		n = len(s.snapshot)
	}

	out := make([]models.CompanyRecord, n)
	copy(out, s.snapshot)
	return out
}

// BySector returns companies whose sector contains term, case-insensitive.
func (s *Service) BySector(sector string) []models.CompanyRecord {
	return s.filter(sector, func(rec models.CompanyRecord) string { return rec.Sector })
}

// ByIndustry returns companies whose industry contains term, case-insensitive.
func (s *Service) ByIndustry(industry string) []models.CompanyRecord {
	return s.filter(industry, func(rec models.CompanyRecord) string { return rec.Industry })
}

func (s *Service) filter(term string, field func(models.CompanyRecord) string) []models.CompanyRecord {
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.CompanyRecord
	for _, rec := range s.snapshot {
		if strings.Contains(strings.ToLower(field(rec)), q) {
			out = append(out, rec)
		}
	}

	return out
}

// Stats describes the current snapshot for the health and cache endpoints.
func (s *Service) Stats() models.DirectoryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.DirectoryStats{
		Companies:   len(s.snapshot),
		Source:      s.source,
		LastRefresh: s.lastRefresh,
		Stale:       s.staleLocked(),
	}
}

// Stale reports whether the snapshot is due for a refresh. The seed snapshot
// is always stale.
func (s *Service) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.staleLocked()
}

func (s *Service) staleLocked() bool {
	if s.source != sourceDynamic {
		return true
	}
	return s.now().Sub(s.lastRefresh) > s.interval
}

func hasWordPrefix(name, q string) bool {
	for _, word := range strings.Fields(name) {
		if strings.HasPrefix(word, q) {
			return true
		}
	}
	return false
}

// Ensure Service implements the DirectoryService interface
var _ interfaces.DirectoryService = (*Service)(nil)
