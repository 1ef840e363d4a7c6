package constants

import "time"

const (
	DefaultRequestDelay = 400 * time.Millisecond
	DefaultPageSize     = 50
	DefaultMaxPages     = 8
	RemakeThreshold     = 300 * time.Second
)

const (
	RetryMaxAttempts = 12
	RetryBaseDelay   = 1 * time.Second
	RetryGrowth      = 1.6
	RetryMaxDelay    = 10 * time.Second
)

const (
	ExternalAPITimeout = 10 * time.Second
	WebhookTimeout     = 10 * time.Second
)

const (
	DBMaxOpenConns = 1
	DBMaxIdleConns = 1
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// Discord rejects message content above this length.
	WebhookContentLimit = 2000
)
