package service

import (
	"context"
	"fmt"
	"time"

	"ranked-progress/internal/api"
	"ranked-progress/internal/backoff"
	"ranked-progress/internal/domain"
	"ranked-progress/internal/runctx"

	"github.com/rs/zerolog"
)

type MatchCache interface {
	Get(ctx context.Context, matchID string) (*domain.MatchDetail, error)
	Put(ctx context.Context, detail *domain.MatchDetail) error
	Count(ctx context.Context) (int, error)
}

type AggregatorService struct {
	riot   *api.RiotClient
	cache  MatchCache
	rules  Rules
	pacer  *Pacer
	logger zerolog.Logger
}

func NewAggregatorService(riot *api.RiotClient, cache MatchCache, rules Rules, pacer *Pacer, logger zerolog.Logger) *AggregatorService {
	return &AggregatorService{riot: riot, cache: cache, rules: rules, pacer: pacer, logger: logger}
}

func (s *AggregatorService) Rules() Rules {
	return s.rules
}

// CachedMatches reports how many match details the cache holds, or -1 when
// there is no cache or it cannot be read.
func (s *AggregatorService) CachedMatches(ctx context.Context) int {
	if s.cache == nil {
		return -1
	}
	n, err := s.cache.Count(ctx)
	if err != nil {
		runctx.Logger(ctx, s.logger).Warn().Err(err).Msg("match cache count failed")
		return -1
	}
	return n
}

// Aggregate pages through the account's match history and tallies every
// match that passes the rules. Any fetch error aborts the whole aggregation.
func (s *AggregatorService) Aggregate(ctx context.Context, account *domain.Account) (*Tally, error) {
	log := runctx.Logger(ctx, s.logger).With().Str("puuid", account.Puuid).Logger()
	ctx = log.WithContext(ctx)
	tally := NewTally(len(s.rules.Buckets))

	start := 0
	for page := 0; page < s.rules.MaxPages; page++ {
		if err := s.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		ids, err := s.riot.ListMatchIDs(ctx, account.Puuid, api.MatchListQuery{
			Type:      s.rules.QueueType,
			Start:     start,
			Count:     s.rules.PageSize,
			StartTime: s.rules.Earliest(),
		})
		if err != nil {
			log.Error().Err(err).Int("page", page).Int("start", start).Msg("failed to list matches")
			return nil, fmt.Errorf("failed to list matches (page %d): %w", page, err)
		}

		log.Debug().Int("page", page).Int("start", start).Int("returned", len(ids)).Msg("match page fetched")

		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			detail, err := s.matchDetail(ctx, id)
			if err != nil {
				log.Error().Err(err).Str("match_id", id).Msg("failed to fetch match")
				return nil, fmt.Errorf("failed to fetch match %s: %w", id, err)
			}
			if reason := tally.Add(s.rules, detail); reason != Included {
				log.Debug().Str("match_id", id).Stringer("reason", reason).Msg("match excluded")
			}
		}

		if len(ids) < s.rules.PageSize {
			break
		}
		start += len(ids)
	}

	log.Debug().
		Ints("counts", tally.Counts).
		Int("seen", tally.Seen).
		Msg("aggregation finished")

	return tally, nil
}

func (s *AggregatorService) matchDetail(ctx context.Context, matchID string) (*domain.MatchDetail, error) {
	log := runctx.Logger(ctx, s.logger)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, matchID)
		if err != nil {
			log.Warn().Err(err).Str("match_id", matchID).Msg("match cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	if err := s.pacer.Wait(ctx); err != nil {
		return nil, err
	}
	detail, err := s.riot.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && detail != nil {
		if err := s.cache.Put(ctx, detail); err != nil {
			log.Warn().Err(err).Str("match_id", matchID).Msg("match cache write failed")
		}
	}
	return detail, nil
}

// Pacer spaces out upstream requests.
type Pacer struct {
	delay time.Duration
	sleep backoff.Sleeper
}

func NewPacer(delay time.Duration, sleep backoff.Sleeper) *Pacer {
	if sleep == nil {
		sleep = backoff.SleepContext
	}
	return &Pacer{delay: delay, sleep: sleep}
}

func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.delay <= 0 {
		return ctx.Err()
	}
	return p.sleep(ctx, p.delay)
}
