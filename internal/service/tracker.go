package service

import (
	"context"
	"time"

	"ranked-progress/internal/api"
	"ranked-progress/internal/config"
	"ranked-progress/internal/domain"
	"ranked-progress/internal/runctx"

	"github.com/rs/zerolog"
)

type SummaryPublisher interface {
	Publish(ctx context.Context, results []domain.AggregateResult) bool
}

// TrackerService walks the roster one player at a time and publishes a
// single summary at the end.
type TrackerService struct {
	riot             *api.RiotClient
	aggregator       *AggregatorService
	publisher        SummaryPublisher
	players          []domain.Player
	totalRequirement int
	pacer            *Pacer
	logger           zerolog.Logger
}

func NewTrackerService(
	riot *api.RiotClient,
	aggregator *AggregatorService,
	publisher SummaryPublisher,
	cfg *config.Config,
	pacer *Pacer,
	logger zerolog.Logger,
) *TrackerService {
	return &TrackerService{
		riot:             riot,
		aggregator:       aggregator,
		publisher:        publisher,
		players:          cfg.Tracking.Players,
		totalRequirement: cfg.Tracking.TotalRequirement,
		pacer:            pacer,
		logger:           logger,
	}
}

// Run processes every player in roster order. A failure for one player is
// recorded in that player's result and never stops the run.
func (s *TrackerService) Run(ctx context.Context) []domain.AggregateResult {
	ctx, log := runctx.Start(ctx, s.logger)
	start := time.Now()

	log.Info().Int("players", len(s.players)).Msg("run started")

	results := make([]domain.AggregateResult, 0, len(s.players))
	for _, player := range s.players {
		result := s.trackPlayer(ctx, log, player)
		results = append(results, result)
	}

	delivered := s.publisher.Publish(ctx, results)

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	log.Info().
		Int("players", len(results)).
		Int("failed", failed).
		Bool("delivered", delivered).
		Int("cached_matches", s.aggregator.CachedMatches(ctx)).
		Dur("duration", time.Since(start)).
		Msg("run completed")

	return results
}

func (s *TrackerService) trackPlayer(ctx context.Context, log zerolog.Logger, player domain.Player) domain.AggregateResult {
	log = log.With().Str("player", player.String()).Logger()
	ctx = log.WithContext(ctx)

	if err := s.pacer.Wait(ctx); err != nil {
		return s.failed(log, player, err)
	}

	account, err := s.riot.GetAccount(ctx, player.Name, player.Tag)
	if err != nil {
		return s.failed(log, player, err)
	}
	log.Info().Str("puuid", account.Puuid).Msg("account resolved")

	tally, err := s.aggregator.Aggregate(ctx, account)
	if err != nil {
		return s.failed(log, player, err)
	}

	rules := s.aggregator.Rules()
	progress := Evaluate(tally.Counts, rules.Buckets, s.totalRequirement)

	log.Info().
		Int("games", progress.Total).
		Ints("bucket_counts", tally.Counts).
		Str("status", progress.Status).
		Msg("player aggregated")

	return domain.AggregateResult{
		Player:           player,
		Puuid:            account.Puuid,
		Buckets:          progress.Buckets,
		Total:            progress.Total,
		TotalRequirement: progress.TotalRequirement,
		TotalMet:         progress.TotalMet,
		FirstMatch:       tally.First,
		LastMatch:        tally.Last,
		Status:           progress.Status,
	}
}

func (s *TrackerService) failed(log zerolog.Logger, player domain.Player, err error) domain.AggregateResult {
	log.Error().Err(err).Msg("player tracking failed")
	return domain.AggregateResult{
		Player: player,
		Status: StatusError,
		Err:    err,
	}
}
