// Package api is the client for the Relic community match-history API, the
// structured source the sync coordinator reads from.
package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

const baseURL = "https://aoe-api.reliclink.com/community/leaderboard/getRecentMatchHistory"

// The API endpoint serves a certificate issued for *.worldsedgelink.com, so
// verification is skipped the way every community client does.
type RelicClient struct {
	client *fasthttp.Client
}

func NewRelicClient() *RelicClient {
	return &RelicClient{
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         30 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
			TLSConfig:           &tls.Config{InsecureSkipVerify: true},
		},
	}
}

// GetRecentMatchHistory fetches one batch of match records for a native
// profile ID, newest first, plus the profile side-table used for name
// resolution.
func (c *RelicClient) GetRecentMatchHistory(ctx context.Context, profileID string, start, count int) (*MatchHistoryResponse, error) {
	url := fmt.Sprintf("%s?title=age2&profile_ids=[%s]&start=%d&count=%d", baseURL, profileID, start, count)
	return doRequest[MatchHistoryResponse](ctx, c, url)
}

// ProfileExists probes whether an ID is already valid in the native ID
// space by asking for a single match record.
func (c *RelicClient) ProfileExists(ctx context.Context, profileID string) (bool, error) {
	resp, err := c.GetRecentMatchHistory(ctx, profileID, 0, 1)
	if err != nil {
		return false, err
	}
	return len(resp.MatchHistoryStats) > 0, nil
}

func doRequest[T any](ctx context.Context, client *RelicClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type MatchHistoryResponse struct {
	MatchHistoryStats []MatchHistoryStat `json:"matchHistoryStats"`
	Profiles          []Profile          `json:"profiles"`
}

type MatchHistoryStat struct {
	ID             int64                `json:"id"`
	MatchTypeID    int                  `json:"matchtype_id"`
	MapName        string               `json:"mapname"`
	StartGameTime  int64                `json:"startgametime"`
	CompletionTime int64                `json:"completiontime"`
	Members        []MatchHistoryMember `json:"matchhistorymember"`
}

type MatchHistoryMember struct {
	ProfileID      int64 `json:"profile_id"`
	TeamID         int   `json:"teamid"`
	CivilizationID *int  `json:"civilization_id"`
	OldRating      *int  `json:"oldrating"`
	NewRating      *int  `json:"newrating"`
	Outcome        *int  `json:"outcome"`
}

type Profile struct {
	ProfileID int64  `json:"profile_id"`
	Alias     string `json:"alias"`
	Name      string `json:"name"`
}

// ProfileNames indexes the side-table by stringified profile ID, preferring
// the display alias over the internal name.
func (r *MatchHistoryResponse) ProfileNames() map[string]string {
	names := make(map[string]string, len(r.Profiles))
	for _, p := range r.Profiles {
		name := p.Alias
		if name == "" {
			name = p.Name
		}
		if name == "" {
			name = "Unknown"
		}
		names[fmt.Sprintf("%d", p.ProfileID)] = name
	}
	return names
}
