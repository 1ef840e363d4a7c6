package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ranked-progress/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// MatchCacheRepository holds match details fetched during the current run.
// Roster members who queue together share match IDs, so one fetch can serve
// several players.
type MatchCacheRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchCacheRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchCacheRepository {
	return &MatchCacheRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Get returns (nil, nil) on a cache miss.
func (r *MatchCacheRepository) Get(ctx context.Context, matchID string) (*domain.MatchDetail, error) {
	var (
		queueID  int
		duration int64
		endedAt  int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT queue_id, duration_seconds, ended_at_ms FROM match_details WHERE match_id = ?`,
		matchID,
	).Scan(&queueID, &duration, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("match_id", matchID).Msg("failed to read cached match")
		return nil, fmt.Errorf("failed to read cached match: %w", err)
	}

	return &domain.MatchDetail{
		MatchID:  matchID,
		QueueID:  queueID,
		Duration: time.Duration(duration) * time.Second,
		EndedAt:  time.UnixMilli(endedAt).UTC(),
	}, nil
}

func (r *MatchCacheRepository) Put(ctx context.Context, detail *domain.MatchDetail) error {
	if detail == nil || detail.MatchID == "" {
		return nil
	}

	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate nanoid: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO match_details (id, match_id, queue_id, duration_seconds, ended_at_ms, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (match_id) DO UPDATE SET
			queue_id = excluded.queue_id,
			duration_seconds = excluded.duration_seconds,
			ended_at_ms = excluded.ended_at_ms,
			fetched_at = excluded.fetched_at`,
		id,
		detail.MatchID,
		detail.QueueID,
		int64(detail.Duration/time.Second),
		detail.EndedAt.UnixMilli(),
		time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("match_id", detail.MatchID).Msg("failed to cache match")
		return fmt.Errorf("failed to cache match %s: %w", detail.MatchID, err)
	}
	return nil
}

func (r *MatchCacheRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM match_details`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cached matches: %w", err)
	}
	return n, nil
}
