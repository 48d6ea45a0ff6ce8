package directory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"finsight/internal/common"
	"finsight/internal/models"
)

// Refresh rebuilds the directory from live market data. Every universe symbol
// is profiled concurrently; failed fetches and zero-market-cap results are
// dropped, survivors are ranked by market cap descending and truncated to the
// configured size. The snapshot swaps only on success, so readers keep the
// previous data through a failed refresh. Returns the new snapshot size.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	start := s.now()
	s.logger.Info().Int("universe", len(s.universe)).Msg("Refreshing company directory")

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var profiles []models.CompanyProfile

	for _, ticker := range s.universe {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return 0, ctx.Err()
		}

		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			defer func() { <-sem }()

			profile, err := s.client.GetProfile(ctx, ticker)
			if err != nil {
				s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Skipping symbol in directory refresh")
				return
			}
			if profile.MarketCap <= 0 {
				s.logger.Debug().Str("ticker", ticker).Msg("Skipping symbol without market cap")
				return
			}

			mu.Lock()
			profiles = append(profiles, *profile)
			mu.Unlock()
		}(ticker)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(profiles) == 0 {
		return 0, common.Upstreamf("directory refresh produced no records")
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].MarketCap > profiles[j].MarketCap
	})
	if len(profiles) > s.topSize {
		profiles = profiles[:s.topSize]
	}

	records := make([]models.CompanyRecord, len(profiles))
	for i, p := range profiles {
		records[i] = models.CompanyRecord{
			Rank:      i + 1,
			Name:      p.Name,
			Ticker:    strings.ToUpper(p.Ticker),
			Sector:    p.Sector,
			Industry:  p.Industry,
			Revenue:   p.Revenue,
			Profit:    p.Profit,
			MarketCap: p.MarketCap,
		}
	}

	s.setSnapshot(records, sourceDynamic, s.now())

	s.logger.Info().
		Int("companies", len(records)).
		Dur("elapsed", s.now().Sub(start)).
		Msg("Company directory refreshed")

	return len(records), nil
}
