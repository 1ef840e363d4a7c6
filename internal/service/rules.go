package service

import (
	"time"

	"ranked-progress/internal/config"
	"ranked-progress/internal/constants"
	"ranked-progress/internal/domain"
)

// Rules decide which matches count and where.
type Rules struct {
	Buckets         []domain.Bucket // ascending by Start
	QueueID         int
	QueueType       string
	IncludeRemakes  bool
	RemakeThreshold time.Duration
	PageSize        int
	MaxPages        int
}

func NewRules(cfg *config.Config) Rules {
	return Rules{
		Buckets:         cfg.Tracking.Buckets,
		QueueID:         cfg.Tracking.QueueID,
		QueueType:       cfg.Tracking.QueueType,
		IncludeRemakes:  cfg.Tracking.IncludeRemakes,
		RemakeThreshold: constants.RemakeThreshold,
		PageSize:        cfg.PageSize,
		MaxPages:        cfg.MaxPages,
	}
}

type Exclusion int

const (
	Included Exclusion = iota
	ExcludedNoInfo
	ExcludedQueue
	ExcludedRemake
	ExcludedBeforeCutoff
)

func (e Exclusion) String() string {
	switch e {
	case Included:
		return "included"
	case ExcludedNoInfo:
		return "no_info"
	case ExcludedQueue:
		return "queue"
	case ExcludedRemake:
		return "remake"
	case ExcludedBeforeCutoff:
		return "before_cutoff"
	default:
		return "unknown"
	}
}

// Earliest is the first cutoff; nothing before it is counted anywhere.
func (r Rules) Earliest() time.Time {
	if len(r.Buckets) == 0 {
		return time.Time{}
	}
	return r.Buckets[0].Start
}

// Classify applies the filters in order (queue, remake, cutoff) and returns
// the index of the bucket the match belongs to, or -1 with the reason it was
// dropped.
func (r Rules) Classify(d *domain.MatchDetail) (int, Exclusion) {
	if d == nil {
		return -1, ExcludedNoInfo
	}
	if d.QueueID != r.QueueID {
		return -1, ExcludedQueue
	}
	if !r.IncludeRemakes && d.Duration <= r.RemakeThreshold {
		return -1, ExcludedRemake
	}
	idx := r.BucketFor(d.EndedAt)
	if idx < 0 {
		return -1, ExcludedBeforeCutoff
	}
	return idx, Included
}

// BucketFor returns the latest bucket whose start is at or before t.
func (r Rules) BucketFor(t time.Time) int {
	for i := len(r.Buckets) - 1; i >= 0; i-- {
		if !t.Before(r.Buckets[i].Start) {
			return i
		}
	}
	return -1
}
