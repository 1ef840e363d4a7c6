package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"ranked-progress/internal/constants"
	"ranked-progress/internal/domain"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

type Config struct {
	RiotAPIKey   string
	WebhookURL   string
	Region       string
	RosterFile   string
	RequestDelay time.Duration
	PageSize     int
	MaxPages     int

	Retry    Retry
	Tracking Tracking
}

type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Growth      float64
	MaxDelay    time.Duration
}

// envSettings holds raw env values. Fields without envDefault are seeded
// from constants before parsing.
type envSettings struct {
	RiotAPIKey   string        `env:"RIOT_API_KEY,required,notEmpty"`
	WebhookURL   string        `env:"WEBHOOK_URL"`
	Region       string        `env:"RIOT_REGION" envDefault:"europe"`
	RosterFile   string        `env:"ROSTER_FILE" envDefault:"roster.yaml"`
	RequestDelay time.Duration `env:"REQUEST_DELAY"`
	PageSize     int           `env:"PAGE_SIZE"`
	MaxPages     int           `env:"MAX_PAGES"`

	RetryMaxAttempts int           `env:"RETRY_MAX_ATTEMPTS"`
	RetryBaseDelay   time.Duration `env:"RETRY_BASE_DELAY"`
	RetryGrowth      float64       `env:"RETRY_GROWTH"`
	RetryMaxDelay    time.Duration `env:"RETRY_MAX_DELAY"`
}

// Tracking is what gets counted and for whom. It comes from the roster file.
type Tracking struct {
	QueueID          int
	QueueType        string
	IncludeRemakes   bool
	TotalRequirement int
	Buckets          []domain.Bucket // ascending by Start
	Players          []domain.Player
}

type rosterFile struct {
	QueueID          int           `yaml:"queue_id"`
	QueueType        string        `yaml:"queue_type"`
	IncludeRemakes   bool          `yaml:"include_remakes"`
	TotalRequirement int           `yaml:"total_requirement"`
	Buckets          []bucketEntry `yaml:"buckets"`
	Players          []playerEntry `yaml:"players"`
}

type bucketEntry struct {
	Name        string `yaml:"name"`
	Start       string `yaml:"start"`
	Requirement int    `yaml:"requirement"`
}

type playerEntry struct {
	Name string `yaml:"name"`
	Tag  string `yaml:"tag"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	raw := envSettings{
		RequestDelay:     constants.DefaultRequestDelay,
		PageSize:         constants.DefaultPageSize,
		MaxPages:         constants.DefaultMaxPages,
		RetryMaxAttempts: constants.RetryMaxAttempts,
		RetryBaseDelay:   constants.RetryBaseDelay,
		RetryGrowth:      constants.RetryGrowth,
		RetryMaxDelay:    constants.RetryMaxDelay,
	}
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg := &Config{
		RiotAPIKey:   raw.RiotAPIKey,
		WebhookURL:   raw.WebhookURL,
		Region:       raw.Region,
		RosterFile:   raw.RosterFile,
		RequestDelay: raw.RequestDelay,
		PageSize:     raw.PageSize,
		MaxPages:     raw.MaxPages,
		Retry: Retry{
			MaxAttempts: raw.RetryMaxAttempts,
			BaseDelay:   raw.RetryBaseDelay,
			Growth:      raw.RetryGrowth,
			MaxDelay:    raw.RetryMaxDelay,
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	doc, err := os.ReadFile(cfg.RosterFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	tracking, err := ParseTracking(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid roster file %s: %w", cfg.RosterFile, err)
	}
	cfg.Tracking = *tracking

	if cfg.WebhookURL == "" {
		logger.Warn().Msg("WEBHOOK_URL is empty, summary will only be logged")
	}

	logger.Info().
		Str("region", cfg.Region).
		Str("roster_file", cfg.RosterFile).
		Int("players", len(cfg.Tracking.Players)).
		Int("buckets", len(cfg.Tracking.Buckets)).
		Int("queue_id", cfg.Tracking.QueueID).
		Bool("include_remakes", cfg.Tracking.IncludeRemakes).
		Dur("request_delay", cfg.RequestDelay).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Region) == "" {
		return errors.New("RIOT_REGION must not be empty")
	}
	if c.PageSize <= 0 || c.PageSize > 100 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 100, got %d", c.PageSize)
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("MAX_PAGES must be positive, got %d", c.MaxPages)
	}
	if c.RequestDelay < 0 {
		return errors.New("REQUEST_DELAY must not be negative")
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be positive, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.Growth <= 1 {
		return fmt.Errorf("RETRY_GROWTH must be greater than 1, got %v", c.Retry.Growth)
	}
	if c.Retry.BaseDelay <= 0 || c.Retry.MaxDelay < c.Retry.BaseDelay {
		return errors.New("RETRY_BASE_DELAY must be positive and not above RETRY_MAX_DELAY")
	}
	return nil
}

// ParseTracking decodes and validates a roster document.
func ParseTracking(raw []byte) (*Tracking, error) {
	doc := rosterFile{
		QueueID:   420,
		QueueType: "ranked",
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	t := &Tracking{
		QueueID:          doc.QueueID,
		QueueType:        doc.QueueType,
		IncludeRemakes:   doc.IncludeRemakes,
		TotalRequirement: doc.TotalRequirement,
	}
	if t.TotalRequirement < 0 {
		return nil, errors.New("total_requirement must not be negative")
	}

	if len(doc.Buckets) == 0 {
		return nil, errors.New("at least one bucket is required")
	}
	seen := make(map[int64]string, len(doc.Buckets))
	for _, b := range doc.Buckets {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			return nil, errors.New("bucket name is required")
		}
		start, err := time.Parse(dateLayout, strings.TrimSpace(b.Start))
		if err != nil {
			return nil, fmt.Errorf("bucket %q: invalid start date: %w", name, err)
		}
		if b.Requirement < 0 {
			return nil, fmt.Errorf("bucket %q: requirement must not be negative", name)
		}
		if other, dup := seen[start.Unix()]; dup {
			return nil, fmt.Errorf("buckets %q and %q share the same start date", other, name)
		}
		seen[start.Unix()] = name
		t.Buckets = append(t.Buckets, domain.Bucket{
			Name:        name,
			Start:       start.UTC(),
			Requirement: b.Requirement,
		})
	}
	sort.Slice(t.Buckets, func(i, j int) bool {
		return t.Buckets[i].Start.Before(t.Buckets[j].Start)
	})

	if len(doc.Players) == 0 {
		return nil, errors.New("at least one player is required")
	}
	for i, p := range doc.Players {
		name, tag := strings.TrimSpace(p.Name), strings.TrimSpace(p.Tag)
		if name == "" || tag == "" {
			return nil, fmt.Errorf("player %d: name and tag are required", i)
		}
		t.Players = append(t.Players, domain.Player{Name: name, Tag: tag})
	}

	return t, nil
}
