package runctx

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Start tags logger with a fresh run ID and attaches it to ctx.
func Start(ctx context.Context, logger zerolog.Logger) (context.Context, zerolog.Logger) {
	runID := uuid.New().String()

	loggerWithID := logger.With().Str("run_id", runID).Logger()
	ctx = loggerWithID.WithContext(ctx)

	return ctx, loggerWithID
}

// Logger returns the logger attached to ctx, or fallback when there is none.
func Logger(ctx context.Context, fallback zerolog.Logger) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return fallback
}
