package fx

import (
	"database/sql"

	"ranked-progress/internal/api"
	"ranked-progress/internal/backoff"
	"ranked-progress/internal/config"
	"ranked-progress/internal/database"
	"ranked-progress/internal/logger"
	"ranked-progress/internal/report"
	"ranked-progress/internal/repository"
	"ranked-progress/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideFetcher(cfg *config.Config, logger zerolog.Logger) api.Fetcher {
	return api.NewRetryingFetcher(api.NewHTTPFetcher(nil), backoff.Policy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		BaseDelay:    cfg.Retry.BaseDelay,
		GrowthFactor: cfg.Retry.Growth,
		MaxDelay:     cfg.Retry.MaxDelay,
		Retryable:    api.IsTransient,
		Logger:       logger,
	})
}

func ProvideMatchCache(sqlDB *sql.DB, logger zerolog.Logger) service.MatchCache {
	return repository.NewMatchCacheRepository(sqlDB, logger)
}

func ProvidePublisher(cfg *config.Config, logger zerolog.Logger) service.SummaryPublisher {
	return report.NewWebhookReporter(cfg, logger)
}

func ProvidePacer(cfg *config.Config) *service.Pacer {
	return service.NewPacer(cfg.RequestDelay, backoff.SleepContext)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// cache
	fx.Provide(ProvideMatchCache),
	// api client
	fx.Provide(ProvideFetcher),
	fx.Provide(api.NewRiotClient),
	// svc
	fx.Provide(service.NewRules),
	fx.Provide(ProvidePacer),
	fx.Provide(service.NewAggregatorService),
	fx.Provide(ProvidePublisher),
	fx.Provide(service.NewTrackerService),
)
