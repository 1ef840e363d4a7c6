package domain

import (
	"time"
)

type Player struct {
	Name string
	Tag  string
}

func (p Player) String() string {
	return p.Name + "#" + p.Tag
}

type Account struct {
	Puuid    string
	GameName string
	TagLine  string
}

type MatchDetail struct {
	MatchID  string
	QueueID  int
	Duration time.Duration
	EndedAt  time.Time
}

// Bucket is a time window (e.g. a split) with its own match requirement.
// A bucket covers [Start, next bucket's Start).
type Bucket struct {
	Name        string
	Start       time.Time
	Requirement int
}

type BucketCount struct {
	Bucket Bucket
	Count  int
	Met    bool
}

type AggregateResult struct {
	Player           Player
	Puuid            string
	Buckets          []BucketCount
	Total            int
	TotalRequirement int
	TotalMet         bool
	FirstMatch       time.Time // zero when no match survived
	LastMatch        time.Time
	Status           string
	Err              error
}

func (r AggregateResult) Failed() bool {
	return r.Err != nil
}
