package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ranked-progress/internal/config"
	"ranked-progress/internal/domain"
)

// RiotClient talks to the regional routing endpoints of the Riot API.
type RiotClient struct {
	apiKey  string
	baseURL string
	fetcher Fetcher
}

func NewRiotClient(cfg *config.Config, fetcher Fetcher) *RiotClient {
	return &RiotClient{
		apiKey:  cfg.RiotAPIKey,
		baseURL: RegionBaseURL(cfg.Region),
		fetcher: fetcher,
	}
}

func RegionBaseURL(region string) string {
	return fmt.Sprintf("https://%s.api.riotgames.com", strings.ToLower(strings.TrimSpace(region)))
}

type MatchListQuery struct {
	Type      string
	Start     int
	Count     int
	StartTime time.Time
}

func (c *RiotClient) GetAccount(ctx context.Context, name, tag string) (*domain.Account, error) {
	endpoint := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.baseURL, url.PathEscape(name), url.PathEscape(tag))

	resp, err := doRequest[AccountResponse](ctx, c, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if resp.Puuid == "" {
		return nil, fmt.Errorf("account %s#%s has no puuid", name, tag)
	}
	return &domain.Account{
		Puuid:    resp.Puuid,
		GameName: resp.GameName,
		TagLine:  resp.TagLine,
	}, nil
}

func (c *RiotClient) ListMatchIDs(ctx context.Context, puuid string, q MatchListQuery) ([]string, error) {
	endpoint := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids", c.baseURL, url.PathEscape(puuid))

	params := url.Values{}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	params.Set("start", strconv.Itoa(q.Start))
	params.Set("count", strconv.Itoa(q.Count))
	if !q.StartTime.IsZero() {
		params.Set("startTime", strconv.FormatInt(q.StartTime.Unix(), 10))
	}

	resp, err := doRequest[[]string](ctx, c, endpoint, params)
	if err != nil {
		return nil, err
	}
	return *resp, nil
}

// GetMatch returns nil detail when the payload carries no info block.
func (c *RiotClient) GetMatch(ctx context.Context, matchID string) (*domain.MatchDetail, error) {
	endpoint := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.baseURL, url.PathEscape(matchID))

	resp, err := doRequest[MatchResponse](ctx, c, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if resp.Info == nil {
		return nil, nil
	}

	id := resp.Metadata.MatchID
	if id == "" {
		id = matchID
	}
	return &domain.MatchDetail{
		MatchID:  id,
		QueueID:  resp.Info.QueueID,
		Duration: time.Duration(resp.Info.GameDuration) * time.Second,
		EndedAt:  time.UnixMilli(resp.Info.GameEndTimestamp).UTC(),
	}, nil
}

func doRequest[T any](ctx context.Context, client *RiotClient, endpoint string, params url.Values) (*T, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", client.apiKey)

	body, err := client.fetcher.Get(ctx, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// redactKey strips the api_key query parameter so URLs can be logged.
func redactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

type AccountResponse struct {
	Puuid    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type MatchResponse struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     *MatchInfo    `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	DataVersion  string   `json:"dataVersion"`
	Participants []string `json:"participants"`
}

type MatchInfo struct {
	QueueID            int    `json:"queueId"`
	GameMode           string `json:"gameMode"`
	GameType           string `json:"gameType"`
	GameVersion        string `json:"gameVersion"`
	GameCreation       int64  `json:"gameCreation"`
	GameStartTimestamp int64  `json:"gameStartTimestamp"`
	GameEndTimestamp   int64  `json:"gameEndTimestamp"`
	// seconds
	GameDuration int64  `json:"gameDuration"`
	PlatformID   string `json:"platformId"`
}
