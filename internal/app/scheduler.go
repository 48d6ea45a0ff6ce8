package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"finsight/internal/common"
	"finsight/internal/interfaces"
)

// StartWarmRefresh launches the startup directory refresh goroutine.
// The embedded seed snapshot serves all reads until it completes.
func (a *App) StartWarmRefresh() {
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	a.warmCancel = warmCancel
	go func() {
		defer warmCancel()
		warmRefresh(warmCtx, a.DirectoryService, a.Logger)
	}()
}

// StartRefreshScheduler schedules periodic directory refreshes on the
// configured cron spec (6-field, with seconds).
func (a *App) StartRefreshScheduler() error {
	spec := a.Config.Directory.RefreshCron

	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(spec, func() {
		refreshDirectory(schedulerCtx, a.DirectoryService, a.Logger)
	}); err != nil {
		schedulerCancel()
		return fmt.Errorf("invalid refresh cron spec %q: %w", spec, err)
	}
	c.Start()

	a.refreshCron = c
	a.schedulerCancel = schedulerCancel

	a.Logger.Info().Str("cron", spec).Msg("Directory refresh scheduled")
	return nil
}

// warmRefresh refreshes the directory once at startup so early queries see
// live rankings instead of the seed.
func warmRefresh(ctx context.Context, dir interfaces.DirectoryService, logger *common.Logger) {
	// Check env var override
	if os.Getenv("FINSIGHT_WARM_REFRESH") == "off" {
		logger.Info().Msg("Warm refresh: disabled via FINSIGHT_WARM_REFRESH=off")
		return
	}

	if !dir.Stale() {
		logger.Info().Msg("Warm refresh: directory already fresh, skipping")
		return
	}

	refreshDirectory(ctx, dir, logger)
}

func refreshDirectory(ctx context.Context, dir interfaces.DirectoryService, logger *common.Logger) {
	start := time.Now()

	count, err := dir.Refresh(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Directory refresh: failed, serving previous snapshot")
		return
	}

	logger.Info().
		Int("companies", count).
		Dur("elapsed", time.Since(start)).
		Msg("Directory refresh: complete")
}
