package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ranked-progress/internal/api"
	"ranked-progress/internal/backoff"
	"ranked-progress/internal/config"
	"ranked-progress/internal/domain"

	"github.com/rs/zerolog"
)

// routeFetcher answers by the first route whose pattern is a substring of
// the requested URL. Unmatched URLs get a 404.
type routeFetcher struct {
	routes []route
	calls  []string
}

type route struct {
	pattern string
	respond func(u *url.URL) ([]byte, error)
}

func (f *routeFetcher) on(pattern string, respond func(u *url.URL) ([]byte, error)) *routeFetcher {
	f.routes = append(f.routes, route{pattern: pattern, respond: respond})
	return f
}

func (f *routeFetcher) Get(_ context.Context, raw string) ([]byte, error) {
	f.calls = append(f.calls, raw)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	for _, r := range f.routes {
		if strings.Contains(raw, r.pattern) {
			return r.respond(u)
		}
	}
	return nil, &api.StatusError{Code: 404, URL: raw}
}

func (f *routeFetcher) count(pattern string) int {
	n := 0
	for _, c := range f.calls {
		if strings.Contains(c, pattern) {
			n++
		}
	}
	return n
}

func (f *routeFetcher) withAccount(name, puuid string) *routeFetcher {
	return f.on("/by-riot-id/"+url.PathEscape(name)+"/", func(*url.URL) ([]byte, error) {
		return json.Marshal(api.AccountResponse{Puuid: puuid, GameName: name})
	})
}

// withHistory serves ids for puuid honouring start/count.
func (f *routeFetcher) withHistory(puuid string, ids []string) *routeFetcher {
	return f.on("/by-puuid/"+puuid+"/ids", func(u *url.URL) ([]byte, error) {
		start, _ := strconv.Atoi(u.Query().Get("start"))
		count, _ := strconv.Atoi(u.Query().Get("count"))
		if start > len(ids) {
			start = len(ids)
		}
		end := min(start+count, len(ids))
		return json.Marshal(ids[start:end])
	})
}

func (f *routeFetcher) withMatches(details map[string]*domain.MatchDetail) *routeFetcher {
	return f.on("/lol/match/v5/matches/", func(u *url.URL) ([]byte, error) {
		id := u.Path[strings.LastIndex(u.Path, "/")+1:]
		d, ok := details[id]
		if !ok {
			return nil, &api.StatusError{Code: 404, URL: u.String()}
		}
		return matchJSON(d), nil
	})
}

func matchJSON(d *domain.MatchDetail) []byte {
	return []byte(fmt.Sprintf(
		`{"metadata":{"matchId":%q},"info":{"queueId":%d,"gameDuration":%d,"gameEndTimestamp":%d}}`,
		d.MatchID, d.QueueID, int64(d.Duration/time.Second), d.EndedAt.UnixMilli(),
	))
}

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func ranked(id string, ended time.Time) *domain.MatchDetail {
	return &domain.MatchDetail{MatchID: id, QueueID: 420, Duration: 30 * time.Minute, EndedAt: ended}
}

func testRules(buckets ...domain.Bucket) Rules {
	return Rules{
		Buckets:         buckets,
		QueueID:         420,
		QueueType:       "ranked",
		RemakeThreshold: 300 * time.Second,
		PageSize:        50,
		MaxPages:        8,
	}
}

func testConfig(players []domain.Player, buckets []domain.Bucket, total int) *config.Config {
	return &config.Config{
		RiotAPIKey: "RGAPI-test",
		Region:     "europe",
		PageSize:   50,
		MaxPages:   8,
		Tracking: config.Tracking{
			QueueID:          420,
			QueueType:        "ranked",
			TotalRequirement: total,
			Buckets:          buckets,
			Players:          players,
		},
	}
}

type memCache struct {
	items map[string]*domain.MatchDetail
	hits  int
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string]*domain.MatchDetail)}
}

func (c *memCache) Get(_ context.Context, id string) (*domain.MatchDetail, error) {
	d, ok := c.items[id]
	if ok {
		c.hits++
		return d, nil
	}
	return nil, nil
}

func (c *memCache) Put(_ context.Context, d *domain.MatchDetail) error {
	c.items[d.MatchID] = d
	return nil
}

func (c *memCache) Count(context.Context) (int, error) {
	return len(c.items), nil
}

func mustParse(t interface{ Fatalf(string, ...any) }, raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func noSleep() backoff.Policy {
	return backoff.Policy{
		MaxAttempts:  12,
		BaseDelay:    time.Second,
		GrowthFactor: 1.6,
		MaxDelay:     10 * time.Second,
		Sleep:        func(context.Context, time.Duration) error { return nil },
		Logger:       zerolog.Nop(),
	}
}
