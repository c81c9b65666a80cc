// Package insights is the connector for the HTML match-listing site: the
// paginated match feed, the profile page the identity resolver probes, and
// player search. It hands back extracted fields only; callers never see
// markup.
package insights

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"aoe2-tracker/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	siteBase  = "https://www.aoe2insights.com"
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

var gameIDBadge = regexp.MustCompile(`Game Id: (\d+)`)

type Client struct {
	client *fasthttp.Client
	logger zerolog.Logger
}

func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         15 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("site error: %d", resp.StatusCode())
	}
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

// FetchMatchPage extracts the raw match tiles from one listing page. The
// second return reports end-of-data: a page with no tiles means the walk
// ran past the player's history.
func (c *Client) FetchMatchPage(ctx context.Context, userID string, page int) ([]domain.RawMatch, bool, error) {
	url := fmt.Sprintf("%s/user/%s/matches/?page=%d", siteBase, userID, page)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch match page %d for %s: %w", page, userID, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse match page %d for %s: %w", page, userID, err)
	}

	matches := parseMatchTiles(doc)
	endOfData := len(matches) == 0
	return matches, endOfData, nil
}

func parseMatchTiles(doc *goquery.Document) []domain.RawMatch {
	var matches []domain.RawMatch
	doc.Find("div.match[data-game-id]").Each(func(_ int, tile *goquery.Selection) {
		raw := domain.RawMatch{
			GameID:        tile.AttrOr("data-game-id", ""),
			Mode:          text(tile.Find(".match-mode")),
			Map:           text(tile.Find(".match-map")),
			Duration:      text(tile.Find(".match-duration")),
			StartDateTime: text(tile.Find(".match-date")),
		}
		tile.Find(".team").Each(func(_ int, teamSel *goquery.Selection) {
			team := domain.RawTeam{Won: teamSel.HasClass("won")}
			teamSel.Find(".player").Each(func(_ int, playerSel *goquery.Selection) {
				team.Players = append(team.Players, domain.RawPlayer{
					PlayerID:   playerSel.AttrOr("data-player-id", ""),
					PlayerName: text(playerSel.Find(".player-name")),
					Civ:        text(playerSel.Find(".civ")),
					Elo:        parseIntPtr(text(playerSel.Find(".rating"))),
					EloChange:  parseIntPtr(text(playerSel.Find(".rating-change"))),
					Strategy:   text(playerSel.Find(".strategy")),
					Won:        teamSel.HasClass("won"),
				})
			})
			team.Won = team.Won || teamSel.Find(".badge-win").Length() > 0
			raw.Teams = append(raw.Teams, team)
		})
		matches = append(matches, raw)
	})
	return matches
}

// FindGameID scrapes a player's profile page for the embedded native
// profile ID shown as a "Game Id" badge.
func (c *Client) FindGameID(ctx context.Context, userID string) (string, error) {
	url := fmt.Sprintf("%s/user/%s/", siteBase, userID)
	body, err := c.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch profile for %s: %w", userID, err)
	}

	m := gameIDBadge.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("no game id badge on profile %s", userID)
	}
	return string(m[1]), nil
}

// SearchPlayers scrapes the site search results into suggestions,
// deduplicated by user ID.
func (c *Client) SearchPlayers(ctx context.Context, query string, limit int) ([]domain.PlayerSuggestion, error) {
	url := fmt.Sprintf("%s/search/?q=%s", siteBase, query)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("search failed for %q: %w", query, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results for %q: %w", query, err)
	}
	return parseSearchResults(doc, limit), nil
}

func parseSearchResults(doc *goquery.Document, limit int) []domain.PlayerSuggestion {
	var results []domain.PlayerSuggestion
	seen := make(map[string]bool)
	doc.Find("a[href^='/user/']").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href := anchor.AttrOr("href", "")
		parts := strings.Split(strings.Trim(href, "/"), "/")
		if len(parts) < 2 || parts[0] != "user" {
			return true
		}
		userID := parts[1]
		if !isDigits(userID) || seen[userID] {
			return true
		}

		container := anchor.Closest("div.card-body")
		if container.Length() == 0 {
			container = anchor.Closest("div")
		}
		name := text(container.Find(".h4").First())
		if name == "" {
			name = text(anchor)
		}
		if name == "" {
			name = anchor.AttrOr("title", "")
		}
		if name == "" {
			name = container.Find("img").First().AttrOr("alt", "")
		}
		if name == "" || strings.EqualFold(name, "login") {
			return true
		}

		results = append(results, domain.PlayerSuggestion{ID: userID, Name: name})
		seen[userID] = true
		return limit <= 0 || len(results) < limit
	})
	return results
}

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.First().Text())
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseIntPtr handles ratings rendered with thin spaces or thousands
// separators; non-numeric text yields nil.
func parseIntPtr(s string) *int {
	cleaned := strings.NewReplacer(" ", "", ",", "", " ", "", "+", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return nil
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil
	}
	return &n
}
