package service

import (
	"time"

	"ranked-progress/internal/domain"
)

// Tally is the running state of one player's aggregation.
type Tally struct {
	Counts   []int
	First    time.Time
	Last     time.Time
	Seen     int
	Excluded map[Exclusion]int
}

func NewTally(buckets int) *Tally {
	return &Tally{
		Counts:   make([]int, buckets),
		Excluded: make(map[Exclusion]int),
	}
}

// Add classifies d under rules and records the outcome.
func (t *Tally) Add(rules Rules, d *domain.MatchDetail) Exclusion {
	t.Seen++
	idx, reason := rules.Classify(d)
	if reason != Included {
		t.Excluded[reason]++
		return reason
	}

	t.Counts[idx]++
	if t.First.IsZero() || d.EndedAt.Before(t.First) {
		t.First = d.EndedAt
	}
	if t.Last.IsZero() || d.EndedAt.After(t.Last) {
		t.Last = d.EndedAt
	}
	return Included
}

func (t *Tally) Total() int {
	n := 0
	for _, c := range t.Counts {
		n += c
	}
	return n
}
