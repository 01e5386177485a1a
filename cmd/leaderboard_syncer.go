package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"varirunBack/internal/services"
)

const leaderboardSyncTimeout = 30 * time.Second

// startLeaderboardSync rebuilds the leaderboard cache now and then on schedule.
// The returned cron must be stopped on shutdown.
func startLeaderboardSync(ctx context.Context, svc *services.RankingService, schedule string, log zerolog.Logger) (*cron.Cron, error) {
	log = log.With().Str("component", "leaderboard_sync").Logger()

	run := func() {
		runCtx, cancel := context.WithTimeout(ctx, leaderboardSyncTimeout)
		defer cancel()

		n, err := svc.Rebuild(runCtx)
		if err != nil {
			log.Error().Err(err).Msg("failed to rebuild leaderboard cache")
			return
		}
		log.Info().Int("runners", n).Msg("leaderboard cache rebuilt")
	}

	c := cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, run); err != nil {
		return nil, err
	}
	go run()
	c.Start()
	return c, nil
}
