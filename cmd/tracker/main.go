package main

import (
	"context"
	"database/sql"
	"time"

	"ranked-progress/internal/constants"
	fxmodules "ranked-progress/internal/fx"
	"ranked-progress/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runTracker),
	).Run()
}

// runTracker starts the one-shot job when the app starts and shuts the app
// down once the summary has been published.
func runTracker(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	tracker *service.TrackerService,
	db *sql.DB,
	logger zerolog.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				tracker.Run(ctx)
				if err := shutdowner.Shutdown(); err != nil {
					logger.Error().Err(err).Msg("shutdown request failed")
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()

			select {
			case <-done:
			case <-time.After(constants.ShutdownTimeout):
				logger.Warn().Msg("tracker did not stop before timeout")
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("tracker stopped")
			return nil
		},
	})
}
